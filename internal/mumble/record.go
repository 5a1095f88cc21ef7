// Package mumble implements the Game-State Bridge: a shared-memory reader
// that samples the host game's published control block at a fixed rate,
// diffs it against the prior sample, and broadcasts the decoded state (spec
// §3, §4.3, §6).
package mumble

import "github.com/jokolay/jokolay/internal/geom"

// UISize mirrors the game's four UI scale presets, decoded out of the
// identity JSON blob.
type UISize int

const (
	UISizeSmall UISize = iota
	UISizeNormal
	UISizeLarge
	UISizeLarger
)

// ChangeBits flags which fields differ from the previously emitted Record
// (spec §4.3 step 5, §6 "Game-state diff").
type ChangeBits uint32

const (
	ChangeUiTick ChangeBits = 1 << iota
	ChangeCharacter
	ChangeMap
	ChangeWindowPosition
	ChangeWindowSize
	ChangeCamera
	ChangePosition
	ChangeCompass
	ChangeMount
	ChangeIdentity

	// ChangeAll marks every field changed, used for the single sentinel
	// record emitted when the segment first goes unavailable.
	ChangeAll ChangeBits = ^ChangeBits(0)
)

// Has reports whether bit is set in c.
func (c ChangeBits) Has(bit ChangeBits) bool { return c&bit != 0 }

// Identity is the UTF-16 "identity" JSON field, decoded (spec §4.3 step 4,
// §6).
type Identity struct {
	Name   string `json:"name"`
	FOV    float32 `json:"fov"`
	UISize UISize  `json:"uisz"`
	Race   int     `json:"race"`
}

// Record is the fully decoded game-state snapshot (spec §3 "Game-state
// record").
type Record struct {
	Alive  bool
	UITick uint32

	PlayerPos   geom.Vec3
	AvatarFront geom.Vec3
	CamPos      geom.Vec3
	CameraFront geom.Vec3

	Identity Identity

	MapID         uint32
	ServerAddress [28]byte // raw sockaddr mirror; first byte 2 means IPv4, address in bytes 4..8
	MapType       uint32
	ShardID       uint32
	Instance      uint32
	BuildID       uint32
	UIState       uint32

	CompassWidth    uint32
	CompassHeight   uint32
	CompassRotation float32
	PlayerMapPos    geom.Vec2
	MapCenter       geom.Vec2
	MapScale        float32

	DPI        uint32
	DPIScaling float32
	ClientPos  geom.Vec2
	ClientSize geom.Vec2

	ProcessID uint32
	Mount     uint32

	Changes ChangeBits
}

// ServerIPv4 returns the server's IPv4 address and true if ServerAddress
// encodes one (first byte 2, per spec §6).
func (r *Record) ServerIPv4() ([4]byte, bool) {
	var ip [4]byte
	if r.ServerAddress[0] != 2 {
		return ip, false
	}
	copy(ip[:], r.ServerAddress[4:8])
	return ip, true
}
