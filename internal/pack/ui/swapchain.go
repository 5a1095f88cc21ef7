package ui

import (
	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/geom"
	"github.com/jokolay/jokolay/internal/pack"
	"github.com/jokolay/jokolay/internal/render"
)

// ActiveMarker is a realized, texture-bound marker ready for per-tick
// billboard projection (spec §4.6 "build an ActiveMarker").
type ActiveMarker struct {
	MarkerUUID   uuid.UUID
	Texture      render.TextureHandle
	TextureW     int
	TextureH     int
	Position     geom.Vec3
	Attrs        pack.Attrs
	MinPixelSize float32
	MaxPixelSize float32
}

// ActiveTrail is the trail analogue of ActiveMarker.
type ActiveTrail struct {
	TrailUUID uuid.UUID
	Texture   render.TextureHandle
	Nodes     []geom.Vec3
	Attrs     pack.Attrs
}

// CurrentMapData holds one package's realized geometry for the currently
// loaded map, plus the wip twins new MarkerTexture/TrailTexture messages
// are inserted into until a TextureSwapChain signal commits them (spec
// §4.6).
type CurrentMapData struct {
	ActiveMarkers map[uuid.UUID]*ActiveMarker
	ActiveTrails  map[uuid.UUID]*ActiveTrail
	WipMarkers    map[uuid.UUID]*ActiveMarker
	WipTrails     map[uuid.UUID]*ActiveTrail
}

func newCurrentMapData() *CurrentMapData {
	return &CurrentMapData{
		ActiveMarkers: make(map[uuid.UUID]*ActiveMarker),
		ActiveTrails:  make(map[uuid.UUID]*ActiveTrail),
		WipMarkers:    make(map[uuid.UUID]*ActiveMarker),
		WipTrails:     make(map[uuid.UUID]*ActiveTrail),
	}
}

// SwapChain replaces active with wip and clears wip (spec §4.6 "On
// TextureSwapChain").
func (d *CurrentMapData) SwapChain() {
	d.ActiveMarkers = d.WipMarkers
	d.ActiveTrails = d.WipTrails
	d.WipMarkers = make(map[uuid.UUID]*ActiveMarker)
	d.WipTrails = make(map[uuid.UUID]*ActiveTrail)
}
