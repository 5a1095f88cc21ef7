package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jokolay/jokolay/internal/pack"
)

// textureResult is written into a pre-sized slice indexed by the entry's
// position, so the goroutine pool below needs no shared-map locking and the
// final merge into core is still deterministic regardless of completion
// order.
type textureResult struct {
	path      string
	data      []byte
	isTexture bool
	tbin      *pack.TBin
	err       error
}

// runTexturePass reads every .png and .trl entry concurrently (grounded on
// pkg/collectors' errgroup fan-out pattern; see DESIGN.md) and merges the
// results into core.Textures / core.TBins. A single malformed entry is
// reported and dropped; it never aborts the pass (spec §4.4 "Diagnostics").
func runTexturePass(ctx context.Context, core *pack.Core, entries []entry, report *Report) {
	var filtered []entry
	for _, e := range entries {
		if hasExt(e.normPath, ".png") || hasExt(e.normPath, ".trl") {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return
	}

	results := make([]textureResult, len(filtered))
	g, _ := errgroup.WithContext(ctx)
	for i, e := range filtered {
		i, e := i, e
		g.Go(func() error {
			data, err := e.open()
			if err != nil {
				results[i] = textureResult{path: e.normPath, err: err}
				return nil
			}
			if hasExt(e.normPath, ".png") {
				results[i] = textureResult{path: e.normPath, data: data, isTexture: true}
				return nil
			}
			tb, err := decodeTBin(data)
			if err != nil {
				results[i] = textureResult{path: e.normPath, err: err}
				return nil
			}
			results[i] = textureResult{path: e.normPath, tbin: tb}
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.err != nil {
			report.warnf("%s: %v", res.path, res.err)
			continue
		}
		switch {
		case res.isTexture:
			core.Textures[res.path] = res.data
		case res.tbin != nil:
			core.TBins[res.path] = res.tbin
		}
	}
}
