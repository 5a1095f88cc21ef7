package mumble

import (
	"context"
	"log/slog"
	"time"

	"github.com/jokolay/jokolay/internal/component"
)

type mirrorMode int

const (
	modeAutonomous mirrorMode = iota
	modeBoundToUI
)

// UIMirror is the UI-world peer of a Reader (spec §4.3 "the UI half of the
// reader"). By default it relays whatever live Record its peer Reader last
// sent; an "editable mumble" debug source can notify it to instead emit a
// UI-supplied synthetic Record, for testing overlay behavior without the
// game running.
type UIMirror struct {
	log *slog.Logger

	peer     component.PeerLink
	hasPeer  bool
	incoming <-chan component.NotifyMsg

	mode      mirrorMode
	synthetic *Record
	latest    *Record
}

// NewUIMirror constructs the UI-side mirror component.
func NewUIMirror(log *slog.Logger) *UIMirror {
	return &UIMirror{log: log.With("component", "mumble-ui")}
}

func (m *UIMirror) Init(ctx context.Context) error { return nil }

func (m *UIMirror) Bind(ch component.Channels) {
	if link, ok := ch.Peers["mumble-reader"]; ok {
		m.peer, m.hasPeer = link, true
	}
	m.incoming = ch.Incoming
}

// FlushMessages drains both the peer link (live samples) and the
// notification stream (Autonomous / BindedOnUI / Value), never blocking.
func (m *UIMirror) FlushMessages() {
	if m.hasPeer {
	drainPeer:
		for {
			select {
			case v := <-m.peer.Recv:
				if rec, ok := v.(*Record); ok {
					m.latest = rec
				}
			default:
				break drainPeer
			}
		}
	}

	if m.incoming == nil {
		return
	}
	for {
		select {
		case msg := <-m.incoming:
			switch p := msg.Payload.(type) {
			case AutonomousMsg:
				m.mode = modeAutonomous
			case BindedOnUIMsg:
				m.mode = modeBoundToUI
			case ValueMsg:
				rec := p.Record
				rec.Alive = true
				m.synthetic = &rec
			}
		default:
			return
		}
	}
}

func (m *UIMirror) Tick(now time.Time) any {
	if m.mode == modeBoundToUI {
		if m.synthetic == nil {
			return nil
		}
		out := *m.synthetic
		out.Changes = ChangeAll
		return &out
	}
	if m.latest == nil {
		return nil
	}
	return m.latest
}
