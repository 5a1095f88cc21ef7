package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/pack"
)

// isCategoryActive reports whether cat and every one of its ancestors has
// Selected set, per spec §4.5 step 3's "selected categories" definition.
func isCategoryActive(core *pack.Core, id uuid.UUID) bool {
	for {
		cat, ok := core.Categories[id]
		if !ok {
			return false
		}
		if !cat.Selected {
			return false
		}
		if cat.Parent == nil {
			return true
		}
		id = *cat.Parent
	}
}

// selectedSourceFiles computes spec §4.5 step 3's second set: the
// intersection of each source file's active flag and the set of files
// needed by the current map (used).
func selectedSourceFiles(core *pack.Core, used map[uuid.UUID]bool) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(used))
	for f, active := range used {
		if active && core.SourceFiles[f] {
			out[f] = true
		}
	}
	return out
}

// atomicWriteJSON writes v to path via a temp-file-then-rename, grounded on
// cache/store.go's Store.Set.
func atomicWriteJSON(path string, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("pack/data: marshal %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("pack/data: create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("pack/data: create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("pack/data: write temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pack/data: close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("pack/data: rename temp for %s: %w", path, err)
	}
	success = true
	return nil
}

// categorySelection is the on-disk shape of cats.json: a flat list keyed by
// full category name, since that name is stable across re-ingests while
// category uuids are minted fresh every run.
type categorySelection struct {
	Categories map[string]bool `json:"categories"`
	Files      map[string]bool `json:"files"`
}

// SaveSelection writes the current category-selected flags and source-file
// active flags for core to path (SPEC_FULL §3 item 3 persistence).
func SaveSelection(path string, core *pack.Core) error {
	sel := categorySelection{
		Categories: make(map[string]bool, len(core.AllCategories)),
		Files:      make(map[string]bool, len(core.SourceFiles)),
	}
	for full, id := range core.AllCategories {
		if cat, ok := core.Categories[id]; ok {
			sel.Categories[full] = cat.Selected
		}
	}
	for f, active := range core.SourceFiles {
		sel.Files[f.String()] = active
	}
	return atomicWriteJSON(path, sel)
}

// LoadSelection reads cats.json written by SaveSelection and applies it to
// core. Unknown full names or file uuids (a package re-ingested with
// different content) are skipped rather than treated as an error.
func LoadSelection(path string, core *pack.Core) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("pack/data: read %s: %w", path, err)
	}
	var sel categorySelection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return fmt.Errorf("pack/data: decode %s: %w", path, err)
	}
	for full, selected := range sel.Categories {
		id, ok := core.AllCategories[full]
		if !ok {
			continue
		}
		if cat, ok := core.Categories[id]; ok {
			cat.Selected = selected
		}
	}
	for rawFile, active := range sel.Files {
		id, err := uuid.Parse(rawFile)
		if err != nil {
			continue
		}
		if _, ok := core.SourceFiles[id]; ok {
			core.SourceFiles[id] = active
		}
	}
	return nil
}

// activationDoc is the on-disk shape of activation.json.
type activationDoc struct {
	Global  map[string]ActivationInfo            `json:"global"`
	PerChar map[string]map[string]ActivationInfo `json:"per_char"`
}

// SaveActivation writes store to path (SPEC_FULL §3 item 4).
func SaveActivation(path string, store *ActivationStore) error {
	doc := activationDoc{
		Global:  make(map[string]ActivationInfo, len(store.Global)),
		PerChar: make(map[string]map[string]ActivationInfo, len(store.PerChar)),
	}
	for id, info := range store.Global {
		doc.Global[id.String()] = info
	}
	for name, m := range store.PerChar {
		out := make(map[string]ActivationInfo, len(m))
		for id, info := range m {
			out[id.String()] = info
		}
		doc.PerChar[name] = out
	}
	return atomicWriteJSON(path, doc)
}

// LoadActivation reads activation.json written by SaveActivation.
func LoadActivation(path string) (*ActivationStore, error) {
	store := NewActivationStore()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("pack/data: read %s: %w", path, err)
	}
	var doc activationDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("pack/data: decode %s: %w", path, err)
	}
	for rawID, info := range doc.Global {
		id, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}
		store.Global[id] = info
	}
	for name, m := range doc.PerChar {
		out := make(map[uuid.UUID]ActivationInfo, len(m))
		for rawID, info := range m {
			id, err := uuid.Parse(rawID)
			if err != nil {
				continue
			}
			out[id] = info
		}
		store.PerChar[name] = out
	}
	return store, nil
}
