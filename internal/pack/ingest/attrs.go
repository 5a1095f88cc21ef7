package ingest

import (
	"encoding/base64"

	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/pack"
)

// parseGUID decodes the XML vocabulary's base64 guid attribute. Per spec
// §6 the encoded value is 20 bytes with the first 16 forming the uuid; any
// trailing bytes are ignored. Malformed or short values report !ok so the
// caller mints a fresh uuid instead.
func parseGUID(raw string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.UUID{}, false
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return uuid.UUID{}, false
		}
	}
	if len(data) < 16 {
		return uuid.UUID{}, false
	}
	var u uuid.UUID
	copy(u[:], data[:16])
	return u, true
}

// guidOrMint parses raw as a guid attribute, minting a fresh uuid if it is
// absent or malformed.
func guidOrMint(raw string) uuid.UUID {
	if u, ok := parseGUID(raw); ok {
		return u
	}
	return uuid.New()
}

func colorAttr(n *node) *[4]uint8 {
	raw, ok := n.attr("color")
	if !ok || len(raw) < 6 {
		return nil
	}
	hex := raw
	if hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) < 6 {
		return nil
	}
	var c [4]uint8
	c[3] = 0xff
	for i := 0; i < 3; i++ {
		v, ok := hexByte(hex[i*2 : i*2+2])
		if !ok {
			return nil
		}
		c[i] = v
	}
	if len(hex) >= 8 {
		if v, ok := hexByte(hex[6:8]); ok {
			c[3] = v
		}
	}
	return &c
}

func hexByte(s string) (uint8, bool) {
	var v uint8
	for _, r := range s {
		var d uint8
		switch {
		case r >= '0' && r <= '9':
			d = uint8(r - '0')
		case r >= 'a' && r <= 'f':
			d = uint8(r-'a') + 10
		case r >= 'A' && r <= 'F':
			d = uint8(r-'A') + 10
		default:
			return 0, false
		}
		v = v<<4 | d
	}
	return v, true
}

// parseCommonAttrs reads the shared attribute vocabulary (spec §6) off n
// into a pack.Attrs. Absent attributes leave the corresponding field nil so
// category-tree inheritance (pack.Attrs.Merge) can tell unset from zero.
func parseCommonAttrs(n *node) pack.Attrs {
	var a pack.Attrs
	if v, ok := n.attr("iconfile"); ok {
		a.IconFile = &v
	}
	if v, ok := n.attr("texture"); ok {
		a.Texture = &v
	}
	if v, ok := n.attrFloat32("iconsize"); ok {
		a.IconSize = &v
	}
	if v, ok := n.attrFloat32("alpha"); ok {
		a.Alpha = &v
	}
	if v, ok := n.attrFloat32("heightoffset"); ok {
		a.HeightOffset = &v
	}
	if v, ok := n.attrFloat32("fadenear"); ok {
		a.FadeNear = &v
	}
	if v, ok := n.attrFloat32("fadefar"); ok {
		a.FadeFar = &v
	}
	if v, ok := n.attrFloat32("minsize"); ok {
		a.MinSize = &v
	}
	if v, ok := n.attrFloat32("maxsize"); ok {
		a.MaxSize = &v
	}
	if c := colorAttr(n); c != nil {
		a.Color = c
	}
	if v, ok := n.attr("mount"); ok {
		a.Mount = &v
	}
	if v, ok := n.attrInt("behavior"); ok {
		b := pack.ParseBehavior(v)
		a.Behavior = &b
	}
	if v, ok := n.attrInt("achievementid"); ok {
		a.AchievementID = &v
	}
	if v, ok := n.attrInt("achievementbit"); ok {
		a.AchievementBit = &v
	}
	if v, ok := n.attrFloat32("trailscale"); ok {
		a.TrailScale = &v
	}
	return a
}
