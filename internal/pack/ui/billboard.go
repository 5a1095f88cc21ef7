package ui

import (
	"github.com/jokolay/jokolay/internal/geom"
	"github.com/jokolay/jokolay/internal/mumble"
	"github.com/jokolay/jokolay/internal/render"
)

// inchesPerMeter is the game's world-unit/meter conversion constant spec
// §4.7 names ("≈39.37").
const inchesPerMeter = 39.37

// defaultMinPixelSize/defaultMaxPixelSize bound an icon's screen size when
// an element's attrs don't say otherwise. Spec §4.6 says these are computed
// "on MarkerTexture", not how; these defaults are this rewrite's Open
// Question decision (DESIGN.md).
const (
	defaultMinPixelSize float32 = 8
	defaultMaxPixelSize float32 = 512
)

// mountNames maps the Mumble Link mount index to the attribute vocabulary's
// "mount" name, per the public GW2 Mumble Link context layout.
var mountNames = []string{
	"none", "jackal", "griffon", "springer", "skimmer",
	"raptor", "rollerbeetle", "warclaw", "skyscale", "skiff", "siegeturtle",
}

func mountName(index uint32) string {
	if int(index) < len(mountNames) {
		return mountNames[index]
	}
	return "none"
}

// markerDefaults resolves the billboard-relevant attribute defaults spec
// §4.7 step 2 lists.
type markerDefaults struct {
	heightOffset float32
	fadeNear     float32
	fadeFar      float32
	iconSize     float32
	alpha        float32
	color        [4]uint8
}

func resolveDefaults(a markerAttrs) markerDefaults {
	d := markerDefaults{
		heightOffset: 1.5,
		fadeNear:     -1 / inchesPerMeter,
		fadeFar:      20000 / inchesPerMeter,
		iconSize:     1.0,
		alpha:        1.0,
	}
	if a.HeightOffset != nil {
		d.heightOffset = *a.HeightOffset
	}
	if a.FadeNear != nil {
		d.fadeNear = *a.FadeNear
	}
	if a.FadeFar != nil {
		d.fadeFar = *a.FadeFar
	}
	if a.IconSize != nil {
		d.iconSize = *a.IconSize
	}
	if a.Alpha != nil {
		d.alpha = *a.Alpha
	}
	if a.Color != nil {
		d.color = *a.Color
	}
	return d
}

// markerAttrs is the subset of pack.Attrs billboard projection reads; kept
// as its own type so tests can build fixtures without pulling in the full
// ingest attribute vocabulary.
type markerAttrs = struct {
	HeightOffset *float32
	FadeNear     *float32
	FadeFar      *float32
	IconSize     *float32
	Alpha        *float32
	Color        *[4]uint8
	Mount        *string
}

// projectMarker implements spec §4.7's seven-step per-marker projection. It
// returns ok=false if the marker should be dropped this frame (mount
// mismatch or fade-far cull).
func projectMarker(mk *ActiveMarker, rec *mumble.Record, windowWidth, dpiScale float32) (render.MarkerObject, bool) {
	attrs := markerAttrs{
		HeightOffset: mk.Attrs.HeightOffset, FadeNear: mk.Attrs.FadeNear, FadeFar: mk.Attrs.FadeFar,
		IconSize: mk.Attrs.IconSize, Alpha: mk.Attrs.Alpha, Color: mk.Attrs.Color, Mount: mk.Attrs.Mount,
	}
	if attrs.Mount != nil && *attrs.Mount != "" && *attrs.Mount != mountName(rec.Mount) {
		return render.MarkerObject{}, false
	}

	d := resolveDefaults(attrs)

	distance := rec.PlayerPos.Distance(mk.Position)
	if d.fadeFar > 0 && distance > d.fadeFar {
		return render.MarkerObject{}, false
	}

	pos := mk.Position.Add(geom.Vec3{Y: d.heightOffset})

	toCam := rec.CamPos.Sub(pos)
	right := toCam.Normalize().Cross(geom.Up)
	if right.IsZero() {
		right = geom.Vec3{X: 1}
	}

	minSize, maxSize := defaultMinPixelSize, defaultMaxPixelSize
	if mk.MinPixelSize > 0 {
		minSize = mk.MinPixelSize
	}
	if mk.MaxPixelSize > 0 {
		maxSize = mk.MaxPixelSize
	}
	halfWorld := farPlaneHalfWidth(d.iconSize, distance, windowWidth, dpiScale, minSize, maxSize)

	up := geom.Up.Scale(halfWorld)
	rightOffset := right.Scale(halfWorld)

	topLeft := pos.Sub(rightOffset).Add(up)
	bottomLeft := pos.Sub(rightOffset).Sub(up)
	bottomRight := pos.Add(rightOffset).Sub(up)
	topRight := pos.Add(rightOffset).Add(up)

	mk2 := func(p geom.Vec3, u, v float32) render.Vertex {
		return render.Vertex{Pos: p, UV: geom.Vec2{X: u, Y: v}, Color: d.color, Alpha: d.alpha, FadeNear: d.fadeNear, FadeFar: d.fadeFar}
	}

	return render.MarkerObject{
		MarkerUUID: mk.MarkerUUID,
		Texture:    mk.Texture,
		Distance:   distance,
		Vertices: [6]render.Vertex{
			mk2(bottomLeft, 0, 1), mk2(topLeft, 0, 0), mk2(topRight, 1, 0),
			mk2(bottomLeft, 0, 1), mk2(topRight, 1, 0), mk2(bottomRight, 1, 1),
		},
	}, true
}

// farPlaneHalfWidth implements spec §4.7 step 6. The data model here has no
// camera projection matrix (by design: the external renderer owns true 3D
// projection), so this computes a screen-size-consistent approximation:
// a baseline pixel width proportional to window width and icon_size,
// clamped to [minPixelSize, maxPixelSize] and half the window width, then
// converted back to a world-space half-extent at the marker's distance.
// The exact proportionality constant is this rewrite's Open Question
// decision (DESIGN.md).
func farPlaneHalfWidth(iconSize, distance, windowWidth, dpiScale, minPixelSize, maxPixelSize float32) float32 {
	if dpiScale <= 0 {
		dpiScale = 1
	}
	correctedWidth := windowWidth / dpiScale
	const baselineFraction = 0.01 // 1% of the dpi-corrected window width at icon_size 1.0
	pixelSize := correctedWidth * baselineFraction * iconSize

	if pixelSize < minPixelSize {
		pixelSize = minPixelSize
	}
	if pixelSize > maxPixelSize {
		pixelSize = maxPixelSize
	}
	if half := correctedWidth / 2; pixelSize > half {
		pixelSize = half
	}

	if correctedWidth <= 0 {
		return pixelSize
	}
	worldWidth := pixelSize * distance / correctedWidth
	return worldWidth / 2
}

// projectTrail implements spec §4.7's trail-extrusion paragraph: split at
// zero separators, extrude a ribbon of the given half-width perpendicular
// to each segment, advancing V proportional to segment length over the
// ribbon's world-space height (its full width).
func projectTrail(tr *ActiveTrail) render.TrailObject {
	trailScale := float32(1.0)
	if tr.Attrs.TrailScale != nil {
		trailScale = *tr.Attrs.TrailScale
	}
	halfWidth := (20 / float32(inchesPerMeter)) * trailScale
	height := halfWidth * 2

	var verts []render.Vertex
	for _, strip := range geom.SplitStrips(tr.Nodes) {
		v := float32(0)
		for i := 0; i < len(strip)-1; i++ {
			prev, next := strip[i], strip[i+1]
			segLen := prev.Distance(next)
			right := next.Sub(prev).Normalize().Cross(geom.Up).Scale(halfWidth)

			p0 := prev.Add(right)
			p1 := prev.Sub(right)
			p2 := next.Sub(right)
			p3 := next.Add(right)

			v1 := v
			if height > 0 {
				v1 = v + segLen/height
			}

			vtx := func(p geom.Vec3, u, vv float32) render.Vertex {
				return render.Vertex{Pos: p, UV: geom.Vec2{X: u, Y: vv}}
			}
			verts = append(verts,
				vtx(p0, 0, v), vtx(p1, 1, v), vtx(p2, 1, v1),
				vtx(p0, 0, v), vtx(p2, 1, v1), vtx(p3, 0, v1),
			)
			v = v1
		}
	}

	return render.TrailObject{TrailUUID: tr.TrailUUID, Texture: tr.Texture, Vertices: verts}
}
