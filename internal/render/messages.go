// Package render implements the Renderer Bridge (spec §4.8): the final hop
// between projected billboard/trail geometry and the external renderer,
// holding an active/wip double buffer of vertex objects.
package render

import (
	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/geom"
)

// TextureHandle is the opaque upload handle minted by the Package UI
// Manager's texture cache (internal/pack/ui), carried here so the renderer
// can bind the right texture without reaching back into package state.
type TextureHandle uint64

// Vertex is one corner of an emitted quad or trail strip segment (spec
// §4.7 step 7 and the trail-extrusion paragraph).
type Vertex struct {
	Pos      geom.Vec3
	UV       geom.Vec2
	Color    [4]uint8
	Alpha    float32
	FadeNear float32
	FadeFar  float32
}

// MarkerObject is one billboarded marker's six-vertex quad (two triangles),
// with Distance the camera distance used for far-to-near sort order.
type MarkerObject struct {
	MarkerUUID uuid.UUID
	Texture    TextureHandle
	Vertices   [6]Vertex
	Distance   float32
}

// TrailObject is one trail's extruded ribbon geometry.
type TrailObject struct {
	TrailUUID uuid.UUID
	Texture   TextureHandle
	Vertices  []Vertex
}

// BulkMarkerObject batches many markers from one package/tick into a
// single notify message (spec §4.8 "Accepts: BulkMarkerObject").
type BulkMarkerObject struct {
	PackageUUID uuid.UUID
	Objects     []MarkerObject
}

// BulkTrailObject is the trail analogue of BulkMarkerObject.
type BulkTrailObject struct {
	PackageUUID uuid.UUID
	Objects     []TrailObject
}

// RenderBegin asks the bridge to clear its wip buffers, starting a fresh
// frame's worth of incoming geometry.
type RenderBegin struct{}

// RenderFlush asks the bridge to publish wip as the new active buffers.
type RenderFlush struct{}

// RenderSwapChain asks the bridge to atomically swap wip into active (the
// package-texture-set-changed path, as opposed to RenderFlush's per-frame
// commit).
type RenderSwapChain struct{}

// Frame is the value Bridge.Tick publishes: the current active geometry,
// trails first then markers already sorted far-to-near for correct alpha
// compositing (spec §4.7 "sort markers far-to-near", §4.8 "draws trails
// first... then markers").
type Frame struct {
	Trails  []TrailObject
	Markers []MarkerObject
}
