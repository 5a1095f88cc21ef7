// Package ingest implements the multi-pass marker-package parser (spec §4.4
// "Package Ingest and Lifecycle Engine"): it turns a zip or folder Source
// into a fully linked pack.Core plus a diagnostics Report.
package ingest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/pack"
)

type parsedFile struct {
	sourceUUID uuid.UUID
	tree       *node
}

// Ingest reads every entry out of src and runs the full pipeline: textures
// and TBins, then the two category passes, then element registration. On a
// pass-3 error the caller's existing package is left untouched (spec §4.4
// "a failed re-ingest must not disturb the currently loaded package").
func Ingest(ctx context.Context, src Source) (*pack.Core, *Report, error) {
	entries, err := src.Entries()
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: listing entries: %w", err)
	}

	core := pack.NewCore()
	report := newReport()

	_ = report.timePass("textures", func() error {
		runTexturePass(ctx, core, entries, report)
		return nil
	})

	var parsed []parsedFile
	for _, e := range entries {
		if !hasExt(e.normPath, ".xml") {
			continue
		}
		data, err := e.open()
		if err != nil {
			report.warnf("%s: %v", e.normPath, err)
			continue
		}
		tree, err := parseXMLTree(bytes.NewReader(data))
		if err != nil {
			report.warnf("%s: %v", e.normPath, err)
			continue
		}
		sourceUUID := uuid.New()
		core.SourceFiles[sourceUUID] = true
		parsed = append(parsed, parsedFile{sourceUUID: sourceUUID, tree: tree})
	}

	ci := newCategoryIndex()
	_ = report.timePass("category_discover", func() error {
		for _, pf := range parsed {
			discoverCategoriesPass1(pf.tree, pf.sourceUUID, ci)
		}
		return nil
	})
	_ = report.timePass("category_reassemble", func() error {
		for _, pf := range parsed {
			orphanRescuePass2(pf.tree, pf.sourceUUID, ci, report)
		}
		reassembleTree(ci, report)
		return nil
	})
	finalizeCategories(core, ci)
	report.Categories = len(ci.byFull)

	err = report.timePass("elements", func() error {
		for _, pf := range parsed {
			overlay := findDescendant(pf.tree, "OverlayData")
			if overlay == nil {
				continue
			}
			if err := runElementPass3(core, pf.sourceUUID, overlay, report); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, report, err
	}

	return core, report, nil
}
