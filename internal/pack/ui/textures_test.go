package ui

import "testing"

var testPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestTextureCache_EnsureCachesByPath(t *testing.T) {
	c := NewTextureCache()

	rec1, err := c.Ensure("icon.png", testPNG)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if rec1.Width != 1 || rec1.Height != 1 {
		t.Errorf("expected 1x1, got %dx%d", rec1.Width, rec1.Height)
	}

	rec2, err := c.Ensure("icon.png", testPNG)
	if err != nil {
		t.Fatalf("Ensure (cached): %v", err)
	}
	if rec2.Handle != rec1.Handle {
		t.Errorf("expected cached handle %d, got %d", rec1.Handle, rec2.Handle)
	}
}

func TestTextureCache_DistinctPathsGetDistinctHandles(t *testing.T) {
	c := NewTextureCache()

	a, err := c.Ensure("a.png", testPNG)
	if err != nil {
		t.Fatalf("Ensure a: %v", err)
	}
	b, err := c.Ensure("b.png", testPNG)
	if err != nil {
		t.Fatalf("Ensure b: %v", err)
	}
	if a.Handle == b.Handle {
		t.Error("expected distinct handles for distinct paths")
	}
}

func TestTextureCache_InvalidDataErrors(t *testing.T) {
	c := NewTextureCache()
	if _, err := c.Ensure("bad.png", []byte("not an image")); err == nil {
		t.Error("expected an error decoding invalid image data")
	}
}
