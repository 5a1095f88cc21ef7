package ingest

import (
	"fmt"
	"time"
)

// Report carries ingest diagnostics (spec §4.4 "Diagnostics", SPEC_FULL §3
// item 1).
type Report struct {
	Categories        int
	LateCategories    []string
	Markers           int
	Trails            int
	Routes            int
	DroppedRoutes     int
	MissingTextures   []string
	Warnings          []string
	PassDurations     map[string]time.Duration
}

func newReport() *Report {
	return &Report{PassDurations: make(map[string]time.Duration)}
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) timePass(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.PassDurations[name] = time.Since(start)
	return err
}
