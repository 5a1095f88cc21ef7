package ui

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/jokolay/jokolay/internal/render"
)

// textureRecord is one uploaded texture's cache entry: the opaque handle
// the renderer binds to, plus the decoded pixel dimensions billboard
// projection needs for pixel-size clamping (spec §4.6/§4.7).
type textureRecord struct {
	Handle render.TextureHandle
	Width  int
	Height int
}

// TextureCache lazily uploads package texture bytes, keyed by package
// path, exactly once. Grounded on waifu/process.go's DecodeImage pipeline;
// imaging.Decode is used in place of stdlib image.Decode because it also
// applies EXIF orientation, which stdlib's decoder ignores.
type TextureCache struct {
	next   render.TextureHandle
	byPath map[string]*textureRecord
}

// NewTextureCache returns an empty texture cache.
func NewTextureCache() *TextureCache {
	return &TextureCache{byPath: make(map[string]*textureRecord)}
}

// Ensure returns the cached texture record for path, decoding and minting a
// fresh handle from data on first use.
func (c *TextureCache) Ensure(path string, data []byte) (*textureRecord, error) {
	if rec, ok := c.byPath[path]; ok {
		return rec, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("pack/ui: decode texture %q: %w", path, err)
	}
	c.next++
	bounds := img.Bounds()
	rec := &textureRecord{Handle: c.next, Width: bounds.Dx(), Height: bounds.Dy()}
	c.byPath[path] = rec
	return rec, nil
}
