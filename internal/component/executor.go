package component

import (
	"context"
	"log/slog"
	"time"
)

// Executor holds the ordered, bound component set for one world and drives
// one tick per loop iteration, per spec §4.2.
type Executor struct {
	world      World
	log        *slog.Logger
	components []boundComponent
	senders    map[string]*Broadcast[any]
}

// Init runs Init on every bound component in order, stopping at the first
// error.
func (e *Executor) Init(ctx context.Context) error {
	for _, b := range e.components {
		if err := b.comp.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Tick runs one scheduling round: flush every component's inbound messages,
// then tick every component in invocation order, then publish each
// component's returned value on its own broadcast output. Producers run
// before their consumers within the round because components is already in
// dependency order.
func (e *Executor) Tick(now time.Time) {
	for _, b := range e.components {
		b.comp.FlushMessages()
	}
	for _, b := range e.components {
		v := b.comp.Tick(now)
		if v == nil {
			continue
		}
		if bc, ok := e.senders[b.name]; ok {
			bc.Publish(v)
		}
	}
}

// Names returns the bound component names in invocation order, for
// diagnostics.
func (e *Executor) Names() []string {
	out := make([]string, len(e.components))
	for i, b := range e.components {
		out[i] = b.name
	}
	return out
}

// Run drives Tick on the given interval until ctx is cancelled. Grounded on
// pkg/collectors/runner.go's runCollector: an immediate first tick, then a
// ticker loop that exits on context cancellation.
func (e *Executor) Run(ctx context.Context, interval time.Duration) {
	e.Tick(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Debug("executor stopping", "reason", ctx.Err())
			return
		case now := <-ticker.C:
			e.Tick(now)
		}
	}
}
