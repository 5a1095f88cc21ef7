// Package tracing implements the peripheral debug/notification dashboard
// spec.md calls out as "peripheral and not specified" but carries anyway,
// the same way the teacher never ships without its bubbletea TUI.
package tracing

import (
	"time"

	"github.com/jokolay/jokolay/internal/mumble"
)

// ComponentHealth is one component's last-observed liveness, pushed in on
// every Snapshot.
type ComponentHealth struct {
	Name     string
	Alive    bool
	LastTick time.Time
}

// Snapshot is everything the dashboard renders for one refresh: component
// health, the last game-state record, and any ingest warnings accumulated
// since the dashboard started.
type Snapshot struct {
	Components     []ComponentHealth
	GameState      *mumble.Record
	IngestWarnings []string
	UpdatedAt      time.Time
}
