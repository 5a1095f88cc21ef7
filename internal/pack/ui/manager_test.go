package ui

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/component"
	"github.com/jokolay/jokolay/internal/geom"
	"github.com/jokolay/jokolay/internal/mumble"
	packdata "github.com/jokolay/jokolay/internal/pack/data"
	"github.com/jokolay/jokolay/internal/render"
)

// tinyPNG is a 1x1 transparent PNG, small enough to embed as a fixture.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func bindManager(t *testing.T, mgr *Manager) (game *component.Broadcast[any], data *component.Broadcast[any], incoming chan component.NotifyMsg, toRenderer chan component.NotifyMsg) {
	t.Helper()
	game = component.NewBroadcast[any]()
	data = component.NewBroadcast[any]()
	incoming = make(chan component.NotifyMsg, 8)
	toRenderer = make(chan component.NotifyMsg, 8)
	mgr.Bind(component.Channels{
		Requirements: map[string]*component.Receiver[any]{
			"mumble-ui": game.Subscribe(),
			"pack-data": data.Subscribe(),
		},
		Incoming: incoming,
		Notify:   map[string]chan<- component.NotifyMsg{"renderer": toRenderer},
	})
	return game, data, incoming, toRenderer
}

func TestManager_RealizesTextureAndProjectsOnSwapChain(t *testing.T) {
	mgr := NewManager(slog.New(slog.DiscardHandler))
	game, data, incoming, toRenderer := bindManager(t, mgr)

	pkgUUID := uuid.New()
	markerID := uuid.New()

	incoming <- component.NotifyMsg{From: "pack-data", Payload: packdata.MarkerTextureMsg{
		PackageUUID: pkgUUID,
		Path:        "icon.png",
		TextureData: tinyPNG,
		MarkerUUID:  markerID,
		Position:    geom.Vec3{X: 1},
		MapID:       15,
	}}

	mgr.FlushMessages()
	if len(mgr.mapDataFor(pkgUUID).WipMarkers) != 1 {
		t.Fatalf("expected 1 wip marker, got %d", len(mgr.mapDataFor(pkgUUID).WipMarkers))
	}

	data.Publish([]*packdata.Snapshot{{PackageUUID: pkgUUID, SwapChain: true}})
	mgr.FlushMessages()
	if len(mgr.mapDataFor(pkgUUID).ActiveMarkers) != 1 {
		t.Fatalf("expected swap chain to commit to active, got %d active", len(mgr.mapDataFor(pkgUUID).ActiveMarkers))
	}

	game.Publish(&mumble.Record{
		Alive: true, MapID: 15, Changes: mumble.ChangeAll,
		CamPos: geom.Vec3{Z: -5}, PlayerPos: geom.Vec3{},
		ClientSize: geom.Vec2{X: 1920, Y: 1080}, DPIScaling: 1,
	})
	mgr.FlushMessages()
	mgr.Tick(time.Now())

	var gotBegin, gotFlush, gotBulk bool
	for i := 0; i < 3; i++ {
		select {
		case msg := <-toRenderer:
			switch msg.Payload.(type) {
			case render.RenderBegin:
				gotBegin = true
			case render.BulkMarkerObject:
				gotBulk = true
			case render.RenderFlush:
				gotFlush = true
			}
		default:
		}
	}
	if !gotBegin || !gotBulk || !gotFlush {
		t.Fatalf("expected begin+bulk+flush sequence, got begin=%v bulk=%v flush=%v", gotBegin, gotBulk, gotFlush)
	}
}

func TestManager_NoTriggerWithoutChange(t *testing.T) {
	mgr := NewManager(slog.New(slog.DiscardHandler))
	game, _, _, toRenderer := bindManager(t, mgr)

	game.Publish(&mumble.Record{Alive: true, MapID: 15, Changes: mumble.ChangeAll})
	mgr.FlushMessages()
	mgr.Tick(time.Now())
	for len(toRenderer) > 0 {
		<-toRenderer
	}

	game.Publish(&mumble.Record{Alive: true, MapID: 15, Changes: mumble.ChangeUiTick})
	mgr.FlushMessages()
	mgr.Tick(time.Now())

	select {
	case msg := <-toRenderer:
		t.Fatalf("expected no renderer output on an unchanged tick, got %#v", msg.Payload)
	default:
	}
}

func TestManager_DeadRecordIsNoOp(t *testing.T) {
	mgr := NewManager(slog.New(slog.DiscardHandler))
	game, _, _, toRenderer := bindManager(t, mgr)

	game.Publish(&mumble.Record{Alive: false})
	mgr.FlushMessages()
	if v := mgr.Tick(time.Now()); v != nil {
		t.Fatalf("expected nil tick result, got %#v", v)
	}
	select {
	case msg := <-toRenderer:
		t.Fatalf("expected no renderer output, got %#v", msg.Payload)
	default:
	}
}
