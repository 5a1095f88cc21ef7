// Package data implements the Package Data Manager (spec §4.5): the
// authoritative holder of every loaded package's category tree, map data,
// source-file activity, and UI-mirrored selection, plus the per-tick
// marker/trail filtering pipeline that decides what the UI side should
// realize and render.
package data

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/component"
	"github.com/jokolay/jokolay/internal/geom"
	"github.com/jokolay/jokolay/internal/mumble"
	"github.com/jokolay/jokolay/internal/pack"
)

// packageState is one loaded package plus the UI-mirrored bookkeeping spec
// §4.5 assigns to the data manager: currently-used files, category
// selection version (bumped by ToggleCategoryMsg), and per-package
// activation history.
type packageState struct {
	core       *pack.Core
	usedFiles  map[uuid.UUID]bool
	lastMapID  uint32
	hasLastMap bool

	activation *ActivationStore

	categoryVersion          int
	publishedCategoryVersion int
}

// Manager is the Package Data Manager component.
type Manager struct {
	log     *slog.Logger
	dataDir string

	packages map[uuid.UUID]*packageState
	order    []uuid.UUID // registration order, for deterministic iteration

	gameState *component.Receiver[any]
	latest    *mumble.Record

	incoming <-chan component.NotifyMsg
	toUI     chan<- component.NotifyMsg
}

// NewManager returns a data manager that persists selection and activation
// state under dataDir (one subdirectory per package uuid).
func NewManager(log *slog.Logger, dataDir string) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		log:      log.With("component", "pack-data"),
		dataDir:  dataDir,
		packages: make(map[uuid.UUID]*packageState),
	}
}

func (m *Manager) packageDir(pkgUUID uuid.UUID) string {
	return filepath.Join(m.dataDir, pkgUUID.String())
}

// LoadPackage registers a package produced by ingest, applying any
// previously persisted category selection and activation history.
func (m *Manager) LoadPackage(core *pack.Core) error {
	for _, cat := range core.Categories {
		cat.Selected = cat.DefaultEnabled
	}
	ps := &packageState{
		core:       core,
		usedFiles:  make(map[uuid.UUID]bool),
		activation: NewActivationStore(),
	}
	dir := m.packageDir(core.UUID)
	if err := LoadSelection(filepath.Join(dir, "cats.json"), core); err != nil {
		return fmt.Errorf("pack/data: load selection for %s: %w", core.UUID, err)
	}
	act, err := LoadActivation(filepath.Join(dir, "activation.json"))
	if err != nil {
		return fmt.Errorf("pack/data: load activation for %s: %w", core.UUID, err)
	}
	ps.activation = act

	m.packages[core.UUID] = ps
	m.order = append(m.order, core.UUID)
	return nil
}

// Persist writes every loaded package's current selection and activation
// state to disk (SPEC_FULL §3 items 3 and 4).
func (m *Manager) Persist() error {
	for _, pkgUUID := range m.order {
		ps := m.packages[pkgUUID]
		dir := m.packageDir(pkgUUID)
		if err := SaveSelection(filepath.Join(dir, "cats.json"), ps.core); err != nil {
			return err
		}
		if err := SaveActivation(filepath.Join(dir, "activation.json"), ps.activation); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) Init(context.Context) error { return nil }

func (m *Manager) Bind(ch component.Channels) {
	if r, ok := ch.Requirements["mumble-reader"]; ok {
		m.gameState = r
	}
	m.incoming = ch.Incoming
	if out, ok := ch.Notify["pack-ui"]; ok {
		m.toUI = out
	}
}

// FlushMessages drains the latest game-state record and any pending
// UI-originated selection requests.
func (m *Manager) FlushMessages() {
	if m.gameState != nil {
		if v, ok := m.gameState.TryRecv(); ok {
			if rec, ok := v.(*mumble.Record); ok {
				m.latest = rec
			}
		}
	}
	if m.incoming == nil {
		return
	}
	for {
		select {
		case msg, ok := <-m.incoming:
			if !ok {
				return
			}
			m.handleNotify(msg)
		default:
			return
		}
	}
}

func (m *Manager) handleNotify(msg component.NotifyMsg) {
	switch p := msg.Payload.(type) {
	case ToggleCategoryMsg:
		ps, ok := m.packages[p.PackageUUID]
		if !ok {
			return
		}
		id, ok := ps.core.AllCategories[p.FullName]
		if !ok {
			m.log.Warn("toggle request for unknown category", "full_name", p.FullName)
			return
		}
		if cat, ok := ps.core.Categories[id]; ok {
			cat.Selected = p.Selected
			ps.categoryVersion++
		}
	case SetFileActiveMsg:
		ps, ok := m.packages[p.PackageUUID]
		if !ok {
			return
		}
		if _, ok := ps.core.SourceFiles[p.FileUUID]; !ok {
			return
		}
		ps.core.SourceFiles[p.FileUUID] = p.Active
		ps.usedFiles[p.FileUUID] = p.Active
	default:
		m.log.Warn("unrecognized notify payload", "from", msg.From, "type", fmt.Sprintf("%T", msg.Payload))
	}
}

// Tick implements spec §4.5's per-tick algorithm. It returns a
// []*Snapshot of every package whose used-file set, category selection, or
// current map changed this tick, or nil if nothing did.
func (m *Manager) Tick(now time.Time) any {
	rec := m.latest
	if rec == nil || !rec.Alive {
		return nil
	}

	var out []*Snapshot
	for _, pkgUUID := range m.order {
		ps := m.packages[pkgUUID]
		if snap := m.tickPackage(pkgUUID, ps, rec, now); snap != nil {
			out = append(out, snap)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (m *Manager) tickPackage(pkgUUID uuid.UUID, ps *packageState, rec *mumble.Record, now time.Time) *Snapshot {
	core := ps.core
	mapChanged := !ps.hasLastMap || ps.lastMapID != rec.MapID
	ps.lastMapID = rec.MapID
	ps.hasLastMap = true

	mapData := core.Maps[rec.MapID]

	needed := make(map[uuid.UUID]bool)
	if mapData != nil {
		for _, mk := range mapData.Markers {
			needed[mk.SourceFileUUID] = true
		}
		for _, tr := range mapData.Trails {
			needed[tr.SourceFileUUID] = true
		}
	}

	newUsed := make(map[uuid.UUID]bool, len(needed))
	for f := range needed {
		if prior, ok := ps.usedFiles[f]; ok {
			newUsed[f] = prior
		} else {
			newUsed[f] = core.SourceFiles[f]
		}
	}
	usedChanged := !usedFilesEqual(ps.usedFiles, newUsed)
	ps.usedFiles = newUsed

	selFiles := selectedSourceFiles(core, newUsed)

	charName := rec.Identity.Name
	serverAddr, _ := rec.ServerIPv4()

	if mapData != nil {
		for _, mkID := range sortedMarkerKeys(mapData.Markers) {
			mk := mapData.Markers[mkID]
			m.considerMarker(pkgUUID, core, mk, selFiles, ps.activation, rec, now, charName, serverAddr)
		}
		for _, trID := range sortedTrailKeys(mapData.Trails) {
			tr := mapData.Trails[trID]
			m.considerTrail(pkgUUID, core, tr, selFiles, ps.activation, rec, now, charName, serverAddr)
		}
	}

	categoryChanged := ps.categoryVersion != ps.publishedCategoryVersion
	ps.publishedCategoryVersion = ps.categoryVersion

	if !mapChanged && !usedChanged && !categoryChanged {
		return nil
	}

	snap := &Snapshot{
		PackageUUID:   pkgUUID,
		MapID:         rec.MapID,
		CurrentlyUsed: newUsed,
		SwapChain:     true,
		MapChanged:    mapChanged,
	}
	if mapChanged && mapData != nil {
		snap.ActiveCategories = activeElementsClosure(core, mapData)
	}
	return snap
}

func (m *Manager) considerMarker(pkgUUID uuid.UUID, core *pack.Core, mk *pack.Marker, selFiles map[uuid.UUID]bool, act *ActivationStore, rec *mumble.Record, now time.Time, charName string, serverAddr [4]byte) {
	if !selFiles[mk.SourceFileUUID] {
		return
	}
	catID, ok := core.AllCategories[mk.CategoryName]
	if !ok || !isCategoryActive(core, catID) {
		return
	}
	attrs := mk.Attrs.Merge(core.ResolveAttrs(catID))
	behavior := pack.BehaviorAlwaysVisible
	if attrs.Behavior != nil {
		behavior = *attrs.Behavior
	}
	if act.Hidden(behavior, mk.GUID, charName, now, rec.MapID, rec.Instance, serverAddr) {
		return
	}
	if attrs.IconFile == nil || *attrs.IconFile == "" {
		return
	}
	m.sendToUI(MarkerTextureMsg{
		PackageUUID: pkgUUID,
		Path:        *attrs.IconFile,
		TextureData: core.Textures[*attrs.IconFile],
		MarkerUUID:  mk.GUID,
		Position:    mk.Position,
		MapID:       mk.MapID,
		Attrs:       attrs,
	})
}

func (m *Manager) considerTrail(pkgUUID uuid.UUID, core *pack.Core, tr *pack.Trail, selFiles map[uuid.UUID]bool, act *ActivationStore, rec *mumble.Record, now time.Time, charName string, serverAddr [4]byte) {
	if !selFiles[tr.SourceFileUUID] {
		return
	}
	catID, ok := core.AllCategories[tr.CategoryName]
	if !ok || !isCategoryActive(core, catID) {
		return
	}
	attrs := tr.Attrs.Merge(core.ResolveAttrs(catID))
	behavior := pack.BehaviorAlwaysVisible
	if attrs.Behavior != nil {
		behavior = *attrs.Behavior
	}
	if act.Hidden(behavior, tr.GUID, charName, now, rec.MapID, rec.Instance, serverAddr) {
		return
	}
	if attrs.Texture == nil || *attrs.Texture == "" {
		return
	}
	var nodes []geom.Vec3
	if tb, ok := core.TBins[tr.TBinPath]; ok {
		nodes = tb.Nodes
	}
	m.sendToUI(TrailTextureMsg{
		PackageUUID: pkgUUID,
		Path:        *attrs.Texture,
		TextureData: core.Textures[*attrs.Texture],
		TrailUUID:   tr.GUID,
		TBinPath:    tr.TBinPath,
		Nodes:       nodes,
		MapID:       tr.MapID,
		Attrs:       attrs,
	})
}

func (m *Manager) sendToUI(payload any) {
	if m.toUI == nil {
		return
	}
	select {
	case m.toUI <- component.NotifyMsg{From: "pack-data", Payload: payload}:
	default:
		m.log.Warn("dropped notify to pack-ui: channel full", "type", fmt.Sprintf("%T", payload))
	}
}

// activeElementsClosure walks entities_parents from every marker/trail on
// mapData up to the category tree's root, collecting every category
// touched along the way (spec §4.5 step 6).
func activeElementsClosure(core *pack.Core, mapData *pack.MapData) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	walk := func(elem uuid.UUID) {
		parent, ok := core.EntitiesParents[elem]
		if !ok {
			return
		}
		id := parent
		for {
			add(id)
			cat, ok := core.Categories[id]
			if !ok || cat.Parent == nil {
				return
			}
			id = *cat.Parent
		}
	}
	for guid := range mapData.Markers {
		walk(guid)
	}
	for guid := range mapData.Trails {
		walk(guid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func usedFilesEqual(a, b map[uuid.UUID]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func sortedMarkerKeys(m map[uuid.UUID]*pack.Marker) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func sortedTrailKeys(m map[uuid.UUID]*pack.Trail) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
