package ingest

import (
	"context"
	"testing"

	"github.com/jokolay/jokolay/internal/geom"
)

// memSource is an in-memory Source for tests; it mirrors zipSource/
// folderSource's lazy-open shape without touching the filesystem.
type memSource struct {
	files map[string][]byte
}

func (m *memSource) Entries() ([]entry, error) {
	entries := make([]entry, 0, len(m.files))
	for path, data := range m.files {
		data := data
		entries = append(entries, entry{
			normPath: normalizePath(path),
			open:     func() ([]byte, error) { return data, nil },
		})
	}
	sortEntries(entries)
	return entries, nil
}

func (m *memSource) Close() error { return nil }

func TestIngest_RoundTrip(t *testing.T) {
	overlay := `<OverlayData>
		<MarkerCategory name="parent" DisplayName="Parent">
			<MarkerCategory name="child1" DisplayName="Child One">
				<MarkerCategory name="subchild" DisplayName="Sub Child"/>
			</MarkerCategory>
			<MarkerCategory name="child2" DisplayName="Child Two"/>
		</MarkerCategory>
		<POIs>
			<POI MapID="15" xpos="39.37" ypos="39.37" zpos="39.37" Category="parent.child1.subchild"/>
			<Trail trail_data="data/basic.trl" Category="parent.child2"/>
		</POIs>
	</OverlayData>`

	trl := encodeTBinFixture(0, 15, []geom.Vec3{{X: 0, Y: 0, Z: 0}})

	src := &memSource{files: map[string][]byte{
		"categories.xml": []byte(overlay),
		"data/basic.trl": trl,
	}}

	core, report, err := Ingest(context.Background(), src)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if report.Categories != 4 {
		t.Fatalf("expected 4 categories (parent, child1, subchild, child2), got %d", report.Categories)
	}
	if report.Markers != 1 {
		t.Fatalf("expected 1 marker, got %d", report.Markers)
	}
	if report.Trails != 1 {
		t.Fatalf("expected 1 trail, got %d", report.Trails)
	}
	if report.DroppedRoutes != 0 {
		t.Fatalf("expected no dropped routes, got %d", report.DroppedRoutes)
	}

	mapData, ok := core.Maps[15]
	if !ok {
		t.Fatal("expected map 15 to be populated")
	}
	if len(mapData.Markers) != 1 {
		t.Fatalf("expected 1 marker on map 15, got %d", len(mapData.Markers))
	}
	for _, m := range mapData.Markers {
		want := geom.Vec3{X: 39.37, Y: 39.37, Z: 39.37}
		if m.Position != want {
			t.Errorf("marker position = %+v, want %+v", m.Position, want)
		}
		if m.CategoryName != "parent.child1.subchild" {
			t.Errorf("marker category = %q, want parent.child1.subchild", m.CategoryName)
		}
	}
	if len(mapData.Trails) != 1 {
		t.Fatalf("expected 1 trail on map 15, got %d", len(mapData.Trails))
	}
	for _, tr := range mapData.Trails {
		if tr.Dynamic {
			t.Error("expected authored trail to be non-dynamic")
		}
		if tr.TBinPath != "data/basic.trl" {
			t.Errorf("trail tbin path = %q, want data/basic.trl", tr.TBinPath)
		}
	}

	subchildID, ok := core.AllCategories["parent.child1.subchild"]
	if !ok {
		t.Fatal("expected parent.child1.subchild to be registered")
	}
	subchild := core.Categories[subchildID]
	if subchild.Parent == nil {
		t.Fatal("expected subchild to have a parent")
	}
	childID := core.AllCategories["parent.child1"]
	if *subchild.Parent != childID {
		t.Error("subchild's parent does not point at parent.child1")
	}
}

func TestIngest_CategoryOrphanRescue(t *testing.T) {
	overlay := `<OverlayData>
		<POIs>
			<POI MapID="1" xpos="0" ypos="0" zpos="0" Category="a.b.c"/>
		</POIs>
	</OverlayData>`

	src := &memSource{files: map[string][]byte{"orphans.xml": []byte(overlay)}}

	core, report, err := Ingest(context.Background(), src)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	for _, full := range []string{"a", "a.b", "a.b.c"} {
		if _, ok := core.AllCategories[full]; !ok {
			t.Errorf("expected category %q to exist after orphan rescue, it does not", full)
		}
	}
	if report.Categories != 3 {
		t.Fatalf("expected 3 categories (a, a.b, a.b.c), got %d", report.Categories)
	}
	if len(report.LateCategories) != 3 {
		t.Fatalf("expected 3 late categories recorded, got %d: %v", len(report.LateCategories), report.LateCategories)
	}

	bID := core.AllCategories["a.b"]
	cID := core.AllCategories["a.b.c"]
	aID := core.AllCategories["a"]
	b := core.Categories[bID]
	c := core.Categories[cID]
	if b.Parent == nil || *b.Parent != aID {
		t.Error("a.b's parent should be a")
	}
	if c.Parent == nil || *c.Parent != bID {
		t.Error("a.b.c's parent should be a.b")
	}
	if c.RelativeName != "c" {
		t.Errorf("a.b.c's relative name = %q, want c", c.RelativeName)
	}
	if report.Markers != 1 {
		t.Fatalf("expected 1 marker, got %d", report.Markers)
	}
}
