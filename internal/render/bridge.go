package render

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jokolay/jokolay/internal/component"
)

// Bridge is the Renderer Bridge component: a pure notify sink that
// accumulates geometry into wip buffers and publishes a sorted Frame once
// committed. Grounded on internal/mumble.UIMirror's notify-driven mode
// switch for the drain-then-dispatch shape, generalized to an
// accumulate-then-commit buffer pair.
type Bridge struct {
	log *slog.Logger

	incoming <-chan component.NotifyMsg

	activeTrails  []TrailObject
	activeMarkers []MarkerObject
	wipTrails     []TrailObject
	wipMarkers    []MarkerObject
}

// NewBridge returns an unbound Renderer Bridge.
func NewBridge(log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{log: log.With("component", "renderer")}
}

func (b *Bridge) Init(context.Context) error { return nil }

func (b *Bridge) Bind(ch component.Channels) {
	b.incoming = ch.Incoming
}

// FlushMessages drains every pending geometry/control message and applies
// it to the wip buffers, per spec §4.8's accepted-message list.
func (b *Bridge) FlushMessages() {
	if b.incoming == nil {
		return
	}
	for {
		select {
		case msg, ok := <-b.incoming:
			if !ok {
				return
			}
			b.apply(msg.Payload)
		default:
			return
		}
	}
}

func (b *Bridge) apply(payload any) {
	switch p := payload.(type) {
	case RenderBegin:
		b.wipTrails = nil
		b.wipMarkers = nil
	case BulkMarkerObject:
		b.wipMarkers = append(b.wipMarkers, p.Objects...)
	case BulkTrailObject:
		b.wipTrails = append(b.wipTrails, p.Objects...)
	case MarkerObject:
		b.wipMarkers = append(b.wipMarkers, p)
	case TrailObject:
		b.wipTrails = append(b.wipTrails, p)
	case RenderFlush:
		b.commit()
	case RenderSwapChain:
		b.commit()
	default:
		b.log.Warn("unrecognized render message", "type", fmt.Sprintf("%T", payload))
	}
}

// commit publishes wip as the new active buffers and clears wip. RenderFlush
// and RenderSwapChain both call this: the former is the steady per-frame
// commit, the latter the package-texture-set-changed commit, but neither
// needs distinct handling once a single goroutine owns Bridge.
func (b *Bridge) commit() {
	b.activeTrails = b.wipTrails
	b.activeMarkers = b.wipMarkers
	b.wipTrails = nil
	b.wipMarkers = nil
}

// Tick publishes the current active geometry, markers sorted far-to-near
// for correct alpha compositing (spec §4.7, §4.8).
func (b *Bridge) Tick(time.Time) any {
	if len(b.activeTrails) == 0 && len(b.activeMarkers) == 0 {
		return nil
	}
	markers := make([]MarkerObject, len(b.activeMarkers))
	copy(markers, b.activeMarkers)
	sort.Slice(markers, func(i, j int) bool { return markers[i].Distance > markers[j].Distance })

	return &Frame{Trails: b.activeTrails, Markers: markers}
}
