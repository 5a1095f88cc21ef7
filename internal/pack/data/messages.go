package data

import (
	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/geom"
	"github.com/jokolay/jokolay/internal/pack"
)

// ToggleCategoryMsg is a notify payload from the UI side asking the data
// manager to flip a category's selected flag (spec §4.5 "UI-side choices
// mirrored from the UI"). The category tree is owned exclusively by the
// data manager (spec §3 "Ownership"), so the UI can only ask, never write.
type ToggleCategoryMsg struct {
	PackageUUID uuid.UUID
	FullName    string
	Selected    bool
}

// SetFileActiveMsg asks the data manager to change a source file's active
// flag.
type SetFileActiveMsg struct {
	PackageUUID uuid.UUID
	FileUUID    uuid.UUID
	Active      bool
}

// MarkerTextureMsg is the realize-icon request sent to the UI manager for a
// marker that survived file/category/behavior filtering (spec §4.5 step 4,
// §4.6 "On MarkerTexture(...)"). The UI manager does not hold the package
// core (spec §3 "Ownership" gives it exclusively to the data manager), so
// the raw PNG bytes travel denormalized on the message, keyed by Path for
// the UI side's own upload cache.
type MarkerTextureMsg struct {
	PackageUUID uuid.UUID
	Path        string
	TextureData []byte
	MarkerUUID  uuid.UUID
	Position    geom.Vec3
	MapID       uint32
	Attrs       pack.Attrs
}

// TrailTextureMsg is the analogous realize-trail request (spec §4.5 step 5).
// Nodes carries the trail's decoded TBin path, for the same reason
// TextureData does: the UI manager owns geometry, not the package core that
// produced it.
type TrailTextureMsg struct {
	PackageUUID uuid.UUID
	Path        string
	TextureData []byte
	TrailUUID   uuid.UUID
	TBinPath    string
	Nodes       []geom.Vec3
	MapID       uint32
	Attrs       pack.Attrs
}

// Snapshot is the value a data manager tick publishes on its broadcast
// output when something the UI cares about changed (spec §4.5 step 7):
// the current used-file set, whether that set or the category selection
// changed (TextureSwapChain signal), and, on a map change, the active
// element closure.
type Snapshot struct {
	PackageUUID      uuid.UUID
	MapID            uint32
	CurrentlyUsed    map[uuid.UUID]bool
	SwapChain        bool
	MapChanged       bool
	ActiveCategories []uuid.UUID
}
