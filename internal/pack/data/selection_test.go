package data

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/pack"
)

func TestSaveLoadSelection_RoundTrip(t *testing.T) {
	core := pack.NewCore()
	catID := uuid.New()
	core.Categories[catID] = &pack.Category{ID: catID, FullName: "root", RelativeName: "root", Selected: true}
	core.AllCategories["root"] = catID
	fileID := uuid.New()
	core.SourceFiles[fileID] = false

	dir := t.TempDir()
	path := filepath.Join(dir, "cats.json")
	if err := SaveSelection(path, core); err != nil {
		t.Fatalf("SaveSelection: %v", err)
	}

	core2 := pack.NewCore()
	core2.Categories[catID] = &pack.Category{ID: catID, FullName: "root", RelativeName: "root", Selected: false}
	core2.AllCategories["root"] = catID
	core2.SourceFiles[fileID] = true

	if err := LoadSelection(path, core2); err != nil {
		t.Fatalf("LoadSelection: %v", err)
	}
	if !core2.Categories[catID].Selected {
		t.Error("expected Selected=true restored from disk")
	}
	if core2.SourceFiles[fileID] {
		t.Error("expected source file active=false restored from disk")
	}
}

func TestLoadSelection_MissingFileIsNotAnError(t *testing.T) {
	core := pack.NewCore()
	if err := LoadSelection(filepath.Join(t.TempDir(), "missing.json"), core); err != nil {
		t.Fatalf("expected no error for a missing selection file, got %v", err)
	}
}

func TestSaveLoadActivation_RoundTrip(t *testing.T) {
	store := NewActivationStore()
	elem := uuid.New()
	when := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)
	store.Global[elem] = ActivationInfo{ActivatedAt: when, MapID: 15}
	store.PerChar["Foo.1000"] = map[uuid.UUID]ActivationInfo{elem: {ActivatedAt: when, Instance: 7}}

	path := filepath.Join(t.TempDir(), "activation.json")
	if err := SaveActivation(path, store); err != nil {
		t.Fatalf("SaveActivation: %v", err)
	}

	loaded, err := LoadActivation(path)
	if err != nil {
		t.Fatalf("LoadActivation: %v", err)
	}
	got, ok := loaded.Global[elem]
	if !ok || got.MapID != 15 || !got.ActivatedAt.Equal(when) {
		t.Fatalf("global activation not restored correctly: %#v", got)
	}
	perChar, ok := loaded.PerChar["Foo.1000"][elem]
	if !ok || perChar.Instance != 7 {
		t.Fatalf("per-character activation not restored correctly: %#v", perChar)
	}
}

func TestLoadActivation_MissingFileReturnsEmptyStore(t *testing.T) {
	store, err := LoadActivation(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.Global) != 0 || len(store.PerChar) != 0 {
		t.Fatal("expected an empty store")
	}
}
