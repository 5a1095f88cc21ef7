package overlaywin

import (
	"context"
	"log/slog"
	"time"

	"github.com/jokolay/jokolay/internal/component"
	"github.com/jokolay/jokolay/internal/mumble"
)

// MinWidth/MinHeight are the overlay's minimum window size (spec §4.9).
const (
	MinWidth  int32 = 640
	MinHeight int32 = 480
)

// Manager is the Window Manager component. It never touches an actual
// window handle; it publishes the pose the host should apply, mirroring
// how internal/render.Bridge publishes frames for an external renderer.
type Manager struct {
	log *slog.Logger

	monitorWidth  int32
	monitorHeight int32

	gameState *component.Receiver[any]

	latest        *mumble.Record
	windowChanged bool
}

// NewManager returns an unbound Window Manager. monitorWidth/monitorHeight
// are the primary monitor's resolution, supplied by the host since this
// package has no windowing system of its own to query it from (spec's
// original queries GLFW's primary monitor video mode at construction; here
// the host does that query and hands the result in).
func NewManager(log *slog.Logger, monitorWidth, monitorHeight int32) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		log:           log.With("component", "window-manager"),
		monitorWidth:  monitorWidth,
		monitorHeight: monitorHeight,
		windowChanged: true,
	}
}

func (m *Manager) Init(context.Context) error { return nil }

func (m *Manager) Bind(ch component.Channels) {
	if r, ok := ch.Requirements["mumble-ui"]; ok {
		m.gameState = r
	}
}

func (m *Manager) FlushMessages() {
	if m.gameState == nil {
		return
	}
	v, ok := m.gameState.TryRecv()
	if !ok {
		return
	}
	rec, ok := v.(*mumble.Record)
	if !ok || !rec.Alive {
		return
	}
	if rec.Changes.Has(mumble.ChangeWindowPosition) || rec.Changes.Has(mumble.ChangeWindowSize) || rec.Changes == mumble.ChangeAll {
		m.windowChanged = true
	}
	m.latest = rec
}

// Tick implements spec §4.9: on a pending window change, clamp the game's
// reported client position/size to the minimum and monitor-minus-one-pixel
// bounds and publish the result. Returns nil when nothing changed.
func (m *Manager) Tick(time.Time) any {
	if !m.windowChanged || m.latest == nil {
		return nil
	}
	m.windowChanged = false
	pose := clampPose(m.latest, m.monitorWidth, m.monitorHeight)
	return &pose
}

func clampPose(rec *mumble.Record, monitorWidth, monitorHeight int32) Pose {
	x := int32(rec.ClientPos.X)
	y := int32(rec.ClientPos.Y)
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	width := int32(rec.ClientSize.X)
	height := int32(rec.ClientSize.Y)
	if width < MinWidth {
		width = MinWidth
	}
	if monitorWidth > 0 && width > monitorWidth {
		width = monitorWidth
	}
	if height < MinHeight {
		height = MinHeight
	}
	if monitorHeight > 0 && height > monitorHeight {
		height = monitorHeight
	}

	// Trimmed by one pixel on the trailing edges: when gw2 runs in windowed
	// fullscreen the reported size is the full monitor resolution, and
	// setting the overlay to that exact size blanks it on focus (a
	// fullscreen-optimization quirk on Windows). One pixel is
	// imperceptible and keeps transparency working.
	return Pose{X: x, Y: y, Width: width - 1, Height: height - 1}
}
