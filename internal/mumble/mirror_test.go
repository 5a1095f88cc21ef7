package mumble

import (
	"log/slog"
	"testing"
	"time"

	"github.com/jokolay/jokolay/internal/component"
)

func TestUIMirror_AutonomousRelaysPeerFeed(t *testing.T) {
	m := NewUIMirror(slog.New(slog.DiscardHandler))
	peerSend := make(chan any, 1)
	m.Bind(component.Channels{
		Peers: map[string]component.PeerLink{
			"mumble-reader": {Send: nil, Recv: peerSend},
		},
	})

	rec := &Record{UITick: 7, MapID: 3}
	peerSend <- rec

	m.FlushMessages()
	got := m.Tick(time.Now())
	if got != rec {
		t.Fatalf("expected Tick to relay the peer's record, got %v", got)
	}
}

func TestUIMirror_BindedOnUIEmitsSynthetic(t *testing.T) {
	m := NewUIMirror(slog.New(slog.DiscardHandler))
	incoming := make(chan component.NotifyMsg, 4)
	m.Bind(component.Channels{Incoming: incoming})

	incoming <- component.NotifyMsg{From: "debug-ui", Payload: BindedOnUIMsg{}}
	incoming <- component.NotifyMsg{From: "debug-ui", Payload: ValueMsg{Record: Record{UITick: 99, MapID: 50}}}
	m.FlushMessages()

	got, ok := m.Tick(time.Now()).(*Record)
	if !ok {
		t.Fatalf("expected Tick to return a synthetic *Record")
	}
	if got.MapID != 50 || got.UITick != 99 {
		t.Errorf("synthetic record = %+v, want MapID=50 UITick=99", got)
	}
	if got.Changes != ChangeAll {
		t.Error("expected synthetic tick to force ChangeAll")
	}

	incoming <- component.NotifyMsg{From: "debug-ui", Payload: AutonomousMsg{}}
	m.FlushMessages()
	if got := m.Tick(time.Now()); got != nil {
		t.Errorf("expected nil after switching back to autonomous with no peer feed, got %v", got)
	}
}
