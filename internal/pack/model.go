// Package pack defines the in-memory package model produced by ingest and
// shared by the data-side and UI-side managers (spec §3).
package pack

import (
	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/geom"
)

// Behavior selects an element's activation policy (spec §4.5).
type Behavior int

const (
	BehaviorAlwaysVisible Behavior = iota
	BehaviorReappearOnMapChange
	BehaviorReappearOnDailyReset
	BehaviorOnlyVisibleBeforeActivation
	BehaviorReappearAfterTimer
	BehaviorReappearOnMapReset
	BehaviorWeeklyReset
	BehaviorOncePerInstance
	BehaviorDailyPerChar
	BehaviorOncePerInstancePerChar
	// BehaviorWvWObjective is not implemented upstream; per spec §9 it is
	// always visible until a WvW objective service exists.
	BehaviorWvWObjective
)

// behaviorByCode mirrors the order spec §4.5 lists the policies in. The
// wire format does not fix these numbers (spec leaves the encoding as an
// open question); this ordering is this rewrite's decision.
var behaviorByCode = []Behavior{
	BehaviorAlwaysVisible,
	BehaviorReappearOnMapChange,
	BehaviorReappearOnDailyReset,
	BehaviorOnlyVisibleBeforeActivation,
	BehaviorReappearAfterTimer,
	BehaviorReappearOnMapReset,
	BehaviorWeeklyReset,
	BehaviorOncePerInstance,
	BehaviorDailyPerChar,
	BehaviorOncePerInstancePerChar,
	BehaviorWvWObjective,
}

// ParseBehavior maps a raw numeric XML attribute to a Behavior. Out-of-range
// codes fall back to BehaviorAlwaysVisible.
func ParseBehavior(code int) Behavior {
	if code < 0 || code >= len(behaviorByCode) {
		return BehaviorAlwaysVisible
	}
	return behaviorByCode[code]
}

// Attrs is the "common attributes" block shared by categories, markers and
// trails. Fields are pointers so a category-tree inheritance pass can tell
// an explicit override apart from an unset value (SPEC_FULL §3 item 2).
type Attrs struct {
	IconFile       *string
	Texture        *string // trail texture, xml attribute "texture"
	IconSize       *float32
	Alpha          *float32
	HeightOffset   *float32
	FadeNear       *float32
	FadeFar        *float32
	MinSize        *float32
	MaxSize        *float32
	Color          *[4]uint8
	Mount          *string
	Behavior       *Behavior
	AchievementID  *int
	AchievementBit *int
	TrailScale     *float32
}

// Merge returns a new Attrs with every field child overrides taking
// precedence over the corresponding field in parent, and parent supplying
// values child leaves unset. Used to apply a category's inherited
// attributes down to its descendants (SPEC_FULL §3 item 2).
func (child Attrs) Merge(parent Attrs) Attrs {
	out := child
	if out.IconFile == nil {
		out.IconFile = parent.IconFile
	}
	if out.Texture == nil {
		out.Texture = parent.Texture
	}
	if out.IconSize == nil {
		out.IconSize = parent.IconSize
	}
	if out.Alpha == nil {
		out.Alpha = parent.Alpha
	}
	if out.HeightOffset == nil {
		out.HeightOffset = parent.HeightOffset
	}
	if out.FadeNear == nil {
		out.FadeNear = parent.FadeNear
	}
	if out.FadeFar == nil {
		out.FadeFar = parent.FadeFar
	}
	if out.MinSize == nil {
		out.MinSize = parent.MinSize
	}
	if out.MaxSize == nil {
		out.MaxSize = parent.MaxSize
	}
	if out.Color == nil {
		out.Color = parent.Color
	}
	if out.Mount == nil {
		out.Mount = parent.Mount
	}
	if out.Behavior == nil {
		out.Behavior = parent.Behavior
	}
	if out.AchievementID == nil {
		out.AchievementID = parent.AchievementID
	}
	if out.AchievementBit == nil {
		out.AchievementBit = parent.AchievementBit
	}
	if out.TrailScale == nil {
		out.TrailScale = parent.TrailScale
	}
	return out
}

// Category is a node in the named tree markers/trails/routes are grouped
// under (spec §3, §4.4).
type Category struct {
	ID             uuid.UUID
	DisplayName    string
	RelativeName   string
	FullName       string
	Separator      bool
	DefaultEnabled bool
	Attrs          Attrs
	Children       []uuid.UUID
	Parent         *uuid.UUID

	// Selected mirrors the UI's toggle state for this category. Ingest
	// initializes it from the category's default_enabled value; after that
	// it is owned by the Package Data Manager (spec §4.5).
	Selected bool
}

// TBin is a binary trail: a version/map header followed by a node sequence
// (spec §4.4).
type TBin struct {
	Version uint32
	MapID   uint32
	Nodes   []geom.Vec3
	IsoX    bool
	IsoY    bool
	IsoZ    bool
	Closed  bool
}

// Marker is a billboarded icon anchored to a world position on one map.
type Marker struct {
	GUID           uuid.UUID
	Position       geom.Vec3
	MapID          uint32
	CategoryName   string
	ParentUUID     uuid.UUID
	SourceFileUUID uuid.UUID
	Attrs          Attrs
}

// Trail is a textured ribbon along a sequence of world positions.
type Trail struct {
	GUID           uuid.UUID
	CategoryName   string
	ParentUUID     uuid.UUID
	MapID          uint32
	SourceFileUUID uuid.UUID
	Attrs          Attrs
	Dynamic        bool
	TBinPath       string
}

// Route is an authored path materialized as a synthetic dynamic Trail plus a
// synthetic TBin (spec §3).
type Route struct {
	GUID           uuid.UUID
	CategoryName   string
	ParentUUID     uuid.UUID
	MapID          uint32
	SourceFileUUID uuid.UUID
	Path           []geom.Vec3
	ResetPosition  geom.Vec3
	ResetRange     float32
	Name           string
}

// SyntheticTBinPath returns the synthetic TBin path a Route's materialized
// Trail references, per spec §3: "data/dynamic_trails/<guid>.trl".
func SyntheticTBinPath(routeGUID uuid.UUID) string {
	return "data/dynamic_trails/" + routeGUID.String() + ".trl"
}

// MapData holds every element declared for one in-game map.
type MapData struct {
	MapID   uint32
	Markers map[uuid.UUID]*Marker
	Trails  map[uuid.UUID]*Trail
	Routes  map[uuid.UUID]*Route
}

func newMapData(mapID uint32) *MapData {
	return &MapData{
		MapID:   mapID,
		Markers: make(map[uuid.UUID]*Marker),
		Trails:  make(map[uuid.UUID]*Trail),
		Routes:  make(map[uuid.UUID]*Route),
	}
}

// Core is the authoritative parsed package model produced by ingest (spec
// §3 "Package core").
type Core struct {
	UUID uuid.UUID

	Textures map[string][]byte
	TBins    map[string]*TBin

	Categories    map[uuid.UUID]*Category
	RootOrder     []uuid.UUID
	AllCategories map[string]uuid.UUID

	EntitiesParents map[uuid.UUID]uuid.UUID
	SourceFiles     map[uuid.UUID]bool

	Maps map[uint32]*MapData
}

// NewCore returns an empty package core ready for an ingest pass to fill in.
func NewCore() *Core {
	return &Core{
		UUID:            uuid.New(),
		Textures:        make(map[string][]byte),
		TBins:           make(map[string]*TBin),
		Categories:      make(map[uuid.UUID]*Category),
		AllCategories:   make(map[string]uuid.UUID),
		EntitiesParents: make(map[uuid.UUID]uuid.UUID),
		SourceFiles:     make(map[uuid.UUID]bool),
		Maps:            make(map[uint32]*MapData),
	}
}

// MapFor returns the MapData for id, creating it if absent.
func (c *Core) MapFor(id uint32) *MapData {
	m, ok := c.Maps[id]
	if !ok {
		m = newMapData(id)
		c.Maps[id] = m
	}
	return m
}

// ResolveAttrs walks a category's ancestor chain (root first) and merges
// common attributes down, so a descendant inherits whatever an ancestor set
// and did not itself override (SPEC_FULL §3 item 2).
func (c *Core) ResolveAttrs(categoryID uuid.UUID) Attrs {
	var chain []uuid.UUID
	for id := &categoryID; id != nil; {
		cat, ok := c.Categories[*id]
		if !ok {
			break
		}
		chain = append(chain, *id)
		id = cat.Parent
	}
	// chain is leaf-to-root; fold root-to-leaf so leaf attrs win.
	var resolved Attrs
	for i := len(chain) - 1; i >= 0; i-- {
		resolved = c.Categories[chain[i]].Attrs.Merge(resolved)
	}
	return resolved
}
