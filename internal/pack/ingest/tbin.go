package ingest

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jokolay/jokolay/internal/geom"
	"github.com/jokolay/jokolay/internal/pack"
)

// maxSegmentDistanceSquared is the threshold spec §4.4 defines for TBin
// segment interpolation, in the source's squared world units.
const maxSegmentDistanceSquared = 400.0

// isoEpsilon is the tolerance spec §4.4 uses for the iso_x/y/z and closed
// flags.
const isoEpsilon = 0.1

// decodeTBin implements spec §4.4 "TBin decode": an 8-byte header (version,
// map_id, both little-endian u32) followed by 12-byte (x,y,z float32)
// chunks, post-processed to interpolate long segments and to compute the
// iso/closed flags.
func decodeTBin(data []byte) (*pack.TBin, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("tbin: buffer too short (%d bytes, need at least 8)", len(data))
	}

	version := binary.LittleEndian.Uint32(data[0:4])
	mapID := binary.LittleEndian.Uint32(data[4:8])

	rest := data[8:]
	count := len(rest) / 12
	raw := make([]geom.Vec3, 0, count)
	for i := 0; i < count; i++ {
		off := i * 12
		x := math.Float32frombits(binary.LittleEndian.Uint32(rest[off : off+4]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(rest[off+4 : off+8]))
		z := math.Float32frombits(binary.LittleEndian.Uint32(rest[off+8 : off+12]))
		raw = append(raw, geom.Vec3{X: x, Y: y, Z: z})
	}

	nodes := interpolateStrips(raw)

	tb := &pack.TBin{Version: version, MapID: mapID, Nodes: nodes}
	applyIsoAndClosedFlags(tb)
	return tb, nil
}

// interpolateStrips walks consecutive node pairs and, for any pair of
// non-zero nodes whose squared distance exceeds the threshold, inserts
// evenly spaced intermediates so no resulting segment exceeds it. A zero
// vector is a strip separator and is never interpolated across or through.
func interpolateStrips(raw []geom.Vec3) []geom.Vec3 {
	if len(raw) == 0 {
		return nil
	}
	out := make([]geom.Vec3, 0, len(raw))
	out = append(out, raw[0])
	for i := 0; i < len(raw)-1; i++ {
		a, b := raw[i], raw[i+1]
		if !a.IsZero() && !b.IsZero() {
			d2 := a.DistanceSquared(b)
			if d2 > maxSegmentDistanceSquared {
				count := int(d2 / maxSegmentDistanceSquared)
				for k := 1; k <= count; k++ {
					t := float32(k) / float32(count+1)
					out = append(out, geom.Lerp(a, b, t))
				}
			}
		}
		out = append(out, b)
	}
	return out
}

func applyIsoAndClosedFlags(tb *pack.TBin) {
	if len(tb.Nodes) == 0 {
		return
	}
	first := tb.Nodes[0]
	isoX, isoY, isoZ := true, true, true
	for _, n := range tb.Nodes[1:] {
		if abs32(n.X-first.X) > isoEpsilon {
			isoX = false
		}
		if abs32(n.Y-first.Y) > isoEpsilon {
			isoY = false
		}
		if abs32(n.Z-first.Z) > isoEpsilon {
			isoZ = false
		}
	}
	tb.IsoX, tb.IsoY, tb.IsoZ = isoX, isoY, isoZ

	last := tb.Nodes[len(tb.Nodes)-1]
	tb.Closed = first.Distance(last) <= isoEpsilon
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
