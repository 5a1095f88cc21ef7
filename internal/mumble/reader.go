package mumble

import (
	"context"
	"log/slog"
	"time"

	"github.com/jokolay/jokolay/internal/component"
)

// Reader is the background-world half of the Game-State Bridge: it owns the
// shared-memory handle exclusively (spec §5 "ownership") and publishes the
// decoded Record on its broadcast output every tick. If a UI-world peer is
// wired under the name "mumble-ui", it also forwards every live sample to that peer over the
// point-to-point link so the UI mirror can echo or override it.
type Reader struct {
	log  *slog.Logger
	name string

	backend Backend
	peer    component.PeerLink
	hasPeer bool

	prior               *Record
	alive               bool
	emittedDeadSentinel bool
}

// NewReader constructs a Reader that will open the named shared-memory
// segment on Init.
func NewReader(log *slog.Logger, segmentName string) *Reader {
	return &Reader{log: log.With("component", "mumble-reader"), name: segmentName}
}

func (r *Reader) Init(ctx context.Context) error {
	backend, err := openBackend(r.name)
	if err != nil {
		return err
	}
	r.backend = backend
	return nil
}

func (r *Reader) Bind(ch component.Channels) {
	if link, ok := ch.Peers["mumble-ui"]; ok {
		r.peer, r.hasPeer = link, true
	}
}

func (r *Reader) FlushMessages() {}

// Tick implements spec §4.3's per-tick algorithm: probe, read, skip
// uninitialized frames, decode, diff, emit.
func (r *Reader) Tick(now time.Time) any {
	if !r.backend.Probe() {
		r.alive = false
		if !r.emittedDeadSentinel {
			r.emittedDeadSentinel = true
			r.prior = nil
			sentinel := &Record{Alive: false, Changes: ChangeAll}
			r.forward(sentinel)
			return sentinel
		}
		return nil
	}

	wasAlive := r.alive
	r.alive = true
	if !wasAlive {
		r.emittedDeadSentinel = false
	}

	raw, err := r.backend.Read()
	if err != nil {
		r.log.Warn("read control block", "error", err)
		return nil
	}

	rec, err := decodeControlBlock(raw)
	if err != nil {
		r.log.Warn("decode control block", "error", err)
		return nil
	}

	if rec.UITick == 0 && r.prior != nil && r.prior.UITick != 0 {
		// The game just (re)started; treat the next good frame as fresh.
		r.prior = nil
	}
	if rec.UITick == 0 || (rec.ClientPos.X == 0 && rec.ClientPos.Y == 0) {
		return nil
	}

	rec.Alive = true
	rec.Changes = computeChanges(r.prior, rec)
	r.prior = rec

	r.forward(rec)
	return rec
}

func (r *Reader) forward(rec *Record) {
	if !r.hasPeer {
		return
	}
	select {
	case r.peer.Send <- rec:
	default:
	}
}
