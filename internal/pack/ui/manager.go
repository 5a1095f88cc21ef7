// Package ui implements the Package UI Manager (spec §4.6) and its
// per-tick billboard/trail projection (spec §4.7): the texture- and
// geometry-owning half of a loaded package, as opposed to internal/pack/data's
// category/activation-owning half.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/component"
	packdata "github.com/jokolay/jokolay/internal/pack/data"
	"github.com/jokolay/jokolay/internal/mumble"
	"github.com/jokolay/jokolay/internal/render"
)

// Manager is the Package UI Manager component.
type Manager struct {
	log *slog.Logger

	textures *TextureCache
	packages map[uuid.UUID]*CurrentMapData
	order    []uuid.UUID

	gameState   *component.Receiver[any]
	dataUpdates *component.Receiver[any]
	incoming    <-chan component.NotifyMsg
	toRenderer  chan<- component.NotifyMsg

	latest     *mumble.Record
	lastMapID  uint32
	hasLastMap bool
}

// NewManager returns an unbound Package UI Manager.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		log:      log.With("component", "pack-ui"),
		textures: NewTextureCache(),
		packages: make(map[uuid.UUID]*CurrentMapData),
	}
}

func (m *Manager) mapDataFor(pkgUUID uuid.UUID) *CurrentMapData {
	d, ok := m.packages[pkgUUID]
	if !ok {
		d = newCurrentMapData()
		m.packages[pkgUUID] = d
		m.order = append(m.order, pkgUUID)
	}
	return d
}

func (m *Manager) Init(context.Context) error { return nil }

func (m *Manager) Bind(ch component.Channels) {
	if r, ok := ch.Requirements["mumble-ui"]; ok {
		m.gameState = r
	}
	if r, ok := ch.Requirements["pack-data"]; ok {
		m.dataUpdates = r
	}
	m.incoming = ch.Incoming
	if out, ok := ch.Notify["renderer"]; ok {
		m.toRenderer = out
	}
}

// FlushMessages applies every pending MarkerTexture/TrailTexture realize
// request into the relevant package's wip buffers, then any TextureSwapChain
// signal from the data manager's Snapshot (spec §4.6).
func (m *Manager) FlushMessages() {
	if m.gameState != nil {
		if v, ok := m.gameState.TryRecv(); ok {
			if rec, ok := v.(*mumble.Record); ok {
				m.latest = rec
			}
		}
	}

	if m.incoming != nil {
		for {
			select {
			case msg, ok := <-m.incoming:
				if !ok {
					break
				}
				m.applyRealizeRequest(msg.Payload)
				continue
			default:
			}
			break
		}
	}

	if m.dataUpdates != nil {
		if v, ok := m.dataUpdates.TryRecv(); ok {
			if snaps, ok := v.([]*packdata.Snapshot); ok {
				for _, snap := range snaps {
					if snap.SwapChain {
						m.mapDataFor(snap.PackageUUID).SwapChain()
					}
				}
			}
		}
	}
}

func (m *Manager) applyRealizeRequest(payload any) {
	switch p := payload.(type) {
	case packdata.MarkerTextureMsg:
		rec, err := m.textures.Ensure(p.Path, p.TextureData)
		if err != nil {
			m.log.Warn("marker texture upload failed", "path", p.Path, "error", err)
			return
		}
		am := &ActiveMarker{
			MarkerUUID: p.MarkerUUID,
			Texture:    rec.Handle,
			TextureW:   rec.Width,
			TextureH:   rec.Height,
			Position:   p.Position,
			Attrs:      p.Attrs,
		}
		if p.Attrs.MinSize != nil {
			am.MinPixelSize = *p.Attrs.MinSize
		}
		if p.Attrs.MaxSize != nil {
			am.MaxPixelSize = *p.Attrs.MaxSize
		}
		d := m.mapDataFor(p.PackageUUID)
		d.WipMarkers[p.MarkerUUID] = am
	case packdata.TrailTextureMsg:
		rec, err := m.textures.Ensure(p.Path, p.TextureData)
		if err != nil {
			m.log.Warn("trail texture upload failed", "path", p.Path, "error", err)
			return
		}
		at := &ActiveTrail{
			TrailUUID: p.TrailUUID,
			Texture:   rec.Handle,
			Nodes:     p.Nodes,
			Attrs:     p.Attrs,
		}
		d := m.mapDataFor(p.PackageUUID)
		d.WipTrails[p.TrailUUID] = at
	default:
		m.log.Warn("unrecognized realize request", "type", fmt.Sprintf("%T", payload))
	}
}

// Tick implements spec §4.6's per-tick projection trigger: on a position,
// camera, or map change, project every package's active set through the
// camera and emit the resulting geometry to the renderer. A texture-set
// swap applied in FlushMessages does not by itself trigger projection; the
// swapped-in active set is first projected on the next position, camera,
// or map change.
func (m *Manager) Tick(time.Time) any {
	rec := m.latest
	if rec == nil || !rec.Alive {
		return nil
	}

	mapChanged := !m.hasLastMap || m.lastMapID != rec.MapID
	m.lastMapID = rec.MapID
	m.hasLastMap = true

	trigger := mapChanged || rec.Changes.Has(mumble.ChangePosition) || rec.Changes.Has(mumble.ChangeCamera) || rec.Changes == mumble.ChangeAll
	if !trigger {
		return nil
	}
	if m.toRenderer == nil {
		return nil
	}

	windowWidth := rec.ClientSize.X
	if windowWidth <= 0 {
		windowWidth = 1920
	}
	dpiScale := rec.DPIScaling
	if dpiScale <= 0 {
		dpiScale = 1
	}

	m.sendToRenderer(render.RenderBegin{})
	for _, pkgUUID := range m.order {
		data := m.packages[pkgUUID]
		markers := make([]render.MarkerObject, 0, len(data.ActiveMarkers))
		for _, mkID := range sortedActiveMarkerKeys(data.ActiveMarkers) {
			obj, ok := projectMarker(data.ActiveMarkers[mkID], rec, windowWidth, dpiScale)
			if ok {
				markers = append(markers, obj)
			}
		}
		if len(markers) > 0 {
			m.sendToRenderer(render.BulkMarkerObject{PackageUUID: pkgUUID, Objects: markers})
		}

		trails := make([]render.TrailObject, 0, len(data.ActiveTrails))
		for _, trID := range sortedActiveTrailKeys(data.ActiveTrails) {
			trails = append(trails, projectTrail(data.ActiveTrails[trID]))
		}
		if len(trails) > 0 {
			m.sendToRenderer(render.BulkTrailObject{PackageUUID: pkgUUID, Objects: trails})
		}
	}
	m.sendToRenderer(render.RenderFlush{})

	return nil
}

func (m *Manager) sendToRenderer(payload any) {
	select {
	case m.toRenderer <- component.NotifyMsg{From: "pack-ui", Payload: payload}:
	default:
		m.log.Warn("dropped notify to renderer: channel full", "type", fmt.Sprintf("%T", payload))
	}
}

func sortedActiveMarkerKeys(m map[uuid.UUID]*ActiveMarker) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func sortedActiveTrailKeys(m map[uuid.UUID]*ActiveTrail) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
