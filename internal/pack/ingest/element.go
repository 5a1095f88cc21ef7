package ingest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/geom"
	"github.com/jokolay/jokolay/internal/pack"
)

// registerElement claims guid against a parent category in core's global
// entity table, minting a fresh uuid on collision (spec §4.4 "uuid
// collisions: mint a fresh uuid and continue").
func registerElement(core *pack.Core, guid, parentID uuid.UUID) uuid.UUID {
	for {
		if _, exists := core.EntitiesParents[guid]; !exists {
			core.EntitiesParents[guid] = parentID
			return guid
		}
		guid = uuid.New()
	}
}

func resolveCategory(core *pack.Core, raw string) (string, uuid.UUID, bool) {
	full := strings.ToLower(raw)
	id, ok := core.AllCategories[full]
	return full, id, ok
}

// runElementPass3 walks <poi>/<trail>/<route> under one source file's
// <POIs> block and registers markers, trails and routes (spec §4.4 pass 3).
// By the time this runs, pass 2 has guaranteed every referenced category
// exists, so a missing category here means ingest's own passes are out of
// order and is reported as an error rather than a warning.
func runElementPass3(core *pack.Core, sourceFileUUID uuid.UUID, overlay *node, report *Report) error {
	pois := overlay.firstChildNamed("POIs")
	if pois == nil {
		return nil
	}
	for _, child := range pois.children {
		var err error
		switch {
		case child.is("poi"):
			err = buildMarker(core, child, sourceFileUUID, report)
		case child.is("trail"):
			err = buildTrail(core, child, sourceFileUUID, report)
		case child.is("route"):
			err = buildRoute(core, child, sourceFileUUID, report)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func buildMarker(core *pack.Core, n *node, sourceFileUUID uuid.UUID, report *Report) error {
	mapID, ok := n.attrUint32("mapid")
	if !ok {
		report.warnf("poi: missing map_id, skipped")
		return nil
	}
	rawCat, ok := n.attr("category")
	if !ok || rawCat == "" {
		report.warnf("poi: missing category, skipped")
		return nil
	}
	catFull, catID, ok := resolveCategory(core, rawCat)
	if !ok {
		return fmt.Errorf("ingest: poi references unknown category %q", catFull)
	}

	x, _ := n.attrFloat32("xpos")
	y, _ := n.attrFloat32("ypos")
	z, _ := n.attrFloat32("zpos")
	guid := registerElement(core, guidOrMint(n.attrString("guid")), catID)
	attrs := parseCommonAttrs(n)

	core.MapFor(mapID).Markers[guid] = &pack.Marker{
		GUID:           guid,
		Position:       geom.Vec3{X: x, Y: y, Z: z},
		MapID:          mapID,
		CategoryName:   catFull,
		ParentUUID:     catID,
		SourceFileUUID: sourceFileUUID,
		Attrs:          attrs,
	}
	report.Markers++

	if attrs.IconFile != nil {
		norm := normalizePath(*attrs.IconFile)
		if _, ok := core.Textures[norm]; !ok {
			report.MissingTextures = append(report.MissingTextures, norm)
		}
	}
	return nil
}

func buildTrail(core *pack.Core, n *node, sourceFileUUID uuid.UUID, report *Report) error {
	rawPath, ok := n.attr("trail_data")
	if !ok || rawPath == "" {
		report.warnf("trail: missing trail_data, skipped")
		return nil
	}
	norm := normalizePath(rawPath)
	tb, ok := core.TBins[norm]
	if !ok {
		report.warnf("trail: missing referenced tbin %q, skipped", norm)
		return nil
	}
	rawCat, ok := n.attr("category")
	if !ok || rawCat == "" {
		report.warnf("trail: missing category, skipped")
		return nil
	}
	catFull, catID, ok := resolveCategory(core, rawCat)
	if !ok {
		return fmt.Errorf("ingest: trail references unknown category %q", catFull)
	}

	guid := registerElement(core, guidOrMint(n.attrString("guid")), catID)
	core.MapFor(tb.MapID).Trails[guid] = &pack.Trail{
		GUID:           guid,
		CategoryName:   catFull,
		ParentUUID:     catID,
		MapID:          tb.MapID,
		SourceFileUUID: sourceFileUUID,
		Attrs:          parseCommonAttrs(n),
		Dynamic:        false,
		TBinPath:       norm,
	}
	report.Trails++
	return nil
}

// buildRoute registers the authored route and, per spec §3, also
// materializes a synthetic dynamic Trail and a synthetic TBin built
// directly from the route's own path (the synthetic trail gets its own
// freshly minted entity
// identity; only the synthetic TBin's file path is keyed off the route's
// guid, via pack.SyntheticTBinPath).
func buildRoute(core *pack.Core, n *node, sourceFileUUID uuid.UUID, report *Report) error {
	routePOIs := n.childrenNamed("poi")

	mapID, hasMap := n.attrUint32("mapid")
	var firstPOI *node
	if len(routePOIs) > 0 {
		firstPOI = routePOIs[0]
	}
	if !hasMap && firstPOI != nil {
		mapID, hasMap = firstPOI.attrUint32("mapid")
	}
	if !hasMap {
		report.DroppedRoutes++
		report.warnf("route: no resolvable map_id, dropped")
		return nil
	}

	rawCat, ok := n.attr("category")
	if (!ok || rawCat == "") && firstPOI != nil {
		rawCat, ok = firstPOI.attr("category")
	}
	if !ok || rawCat == "" {
		report.DroppedRoutes++
		report.warnf("route: no resolvable category, dropped")
		return nil
	}
	catFull, catID, ok := resolveCategory(core, rawCat)
	if !ok {
		return fmt.Errorf("ingest: route references unknown category %q", catFull)
	}

	guid := registerElement(core, guidOrMint(n.attrString("guid")), catID)

	path := make([]geom.Vec3, 0, len(routePOIs))
	for _, p := range routePOIs {
		x, _ := p.attrFloat32("xpos")
		y, _ := p.attrFloat32("ypos")
		z, _ := p.attrFloat32("zpos")
		path = append(path, geom.Vec3{X: x, Y: y, Z: z})
	}

	resetX, _ := n.attrFloat32("resetposx")
	resetY, _ := n.attrFloat32("resetposy")
	resetZ, _ := n.attrFloat32("resetposz")
	resetRange, _ := n.attrFloat32("resetrange")

	core.MapFor(mapID).Routes[guid] = &pack.Route{
		GUID:           guid,
		CategoryName:   catFull,
		ParentUUID:     catID,
		MapID:          mapID,
		SourceFileUUID: sourceFileUUID,
		Path:           path,
		ResetPosition:  geom.Vec3{X: resetX, Y: resetY, Z: resetZ},
		ResetRange:     resetRange,
		Name:           n.attrString("name"),
	}
	report.Routes++

	synthPath := pack.SyntheticTBinPath(guid)
	synthTB := &pack.TBin{Version: 0, MapID: mapID, Nodes: interpolateStrips(path)}
	applyIsoAndClosedFlags(synthTB)
	core.TBins[synthPath] = synthTB

	trailGUID := registerElement(core, uuid.New(), catID)
	core.MapFor(mapID).Trails[trailGUID] = &pack.Trail{
		GUID:           trailGUID,
		CategoryName:   catFull,
		ParentUUID:     catID,
		MapID:          mapID,
		SourceFileUUID: sourceFileUUID,
		Attrs:          parseCommonAttrs(n),
		Dynamic:        true,
		TBinPath:       synthPath,
	}
	report.Trails++
	return nil
}
