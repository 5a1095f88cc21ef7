package ingest

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jokolay/jokolay/internal/pack"
)

// pendingCategory accumulates what every source file contributes to one
// category's dotted full name before the tree is reassembled and handed off
// to pack.Core (spec §4.4 "Category passes").
type pendingCategory struct {
	id             uuid.UUID
	displayName    string
	relativeName   string
	fullName       string
	parentFullName string
	separator      bool
	defaultEnabled bool
	attrs          pack.Attrs
	declaredBy     map[uuid.UUID]bool
}

// categoryIndex is keyed by dotted full name (lowercase) for the duration of
// a single ingest.
type categoryIndex struct {
	byFull map[string]*pendingCategory
}

func newCategoryIndex() *categoryIndex {
	return &categoryIndex{byFull: make(map[string]*pendingCategory)}
}

// register adds pc if its full name is new, returning false if a category
// by that name already exists (the caller should merge into the existing
// one instead).
func (ci *categoryIndex) register(pc *pendingCategory) bool {
	if _, exists := ci.byFull[pc.fullName]; exists {
		return false
	}
	ci.byFull[pc.fullName] = pc
	return true
}

func (ci *categoryIndex) touch(full string, sourceFileUUID uuid.UUID) {
	if pc, ok := ci.byFull[full]; ok {
		pc.declaredBy[sourceFileUUID] = true
	}
}

// discoverCategoriesPass1 walks the nested <MarkerCategory> tree under
// <OverlayData> (spec §4.4 pass 1 "discover"). A category with no name
// attribute is skipped along with its subtree.
func discoverCategoriesPass1(tree *node, sourceFileUUID uuid.UUID, ci *categoryIndex) {
	overlay := findDescendant(tree, "OverlayData")
	if overlay == nil {
		return
	}

	var walk func(n *node, parentFull string)
	walk = func(n *node, parentFull string) {
		name := n.attrString("name")
		if name == "" {
			return
		}
		relative := strings.ToLower(name)
		full := relative
		if parentFull != "" {
			full = parentFull + "." + relative
		}

		if _, exists := ci.byFull[full]; exists {
			ci.touch(full, sourceFileUUID)
		} else {
			ci.register(&pendingCategory{
				id:             guidOrMint(n.attrString("guid")),
				displayName:    firstNonEmpty(n.attrString("displayname"), name),
				relativeName:   relative,
				fullName:       full,
				parentFullName: parentFull,
				separator:      n.attrBool("separator"),
				defaultEnabled: n.attrBoolDefault("defaulttoggle", true),
				attrs:          parseCommonAttrs(n),
				declaredBy:     map[uuid.UUID]bool{sourceFileUUID: true},
			})
		}

		for _, child := range n.childrenNamed("MarkerCategory") {
			walk(child, full)
		}
	}

	for _, top := range overlay.childrenNamed("MarkerCategory") {
		walk(top, "")
	}
}

// orphanRescuePass2 scans <poi>/<trail>/<route> elements for a "category"
// attribute that names a category pass 1 never saw, and registers a
// placeholder for it (spec §4.4 pass 2 "orphan rescue").
func orphanRescuePass2(tree *node, sourceFileUUID uuid.UUID, ci *categoryIndex, report *Report) {
	overlay := findDescendant(tree, "OverlayData")
	if overlay == nil {
		return
	}
	pois := overlay.firstChildNamed("POIs")
	if pois == nil {
		return
	}

	rescue := func(n *node) {
		cat, ok := n.attr("category")
		if !ok || cat == "" {
			return
		}
		full := strings.ToLower(cat)
		if _, exists := ci.byFull[full]; exists {
			ci.touch(full, sourceFileUUID)
			return
		}
		ci.register(&pendingCategory{
			id:             uuid.New(),
			displayName:    cat,
			relativeName:   full,
			fullName:       full,
			defaultEnabled: true,
			declaredBy:     map[uuid.UUID]bool{sourceFileUUID: true},
		})
		report.LateCategories = append(report.LateCategories, full)
	}

	for _, child := range pois.children {
		switch {
		case child.is("poi"), child.is("trail"):
			rescue(child)
		case child.is("route"):
			if first := child.firstChildNamed("poi"); first != nil {
				rescue(first)
			}
		}
	}
}

// reassembleTree fixes up the categories orphan rescue minted with a dotted
// full name as their own relative name: it splits the dotted name, mints any
// missing dotted ancestors, and rewrites the category's relative/parent name
// so the final tree nests it correctly (spec §4.4 pass 2 "category tree
// reassembly").
func reassembleTree(ci *categoryIndex, report *Report) {
	for _, full := range sortedKeys(ci.byFull) {
		pc := ci.byFull[full]
		if pc.relativeName != pc.fullName || !strings.Contains(full, ".") {
			continue
		}

		parts := strings.Split(full, ".")
		anc := parts[0]
		if _, exists := ci.byFull[anc]; !exists {
			ci.register(&pendingCategory{
				id:             uuid.New(),
				displayName:    anc,
				relativeName:   anc,
				fullName:       anc,
				defaultEnabled: true,
				declaredBy:     map[uuid.UUID]bool{},
			})
			report.LateCategories = append(report.LateCategories, anc)
		}
		for i := 1; i < len(parts)-1; i++ {
			parentAnc := anc
			anc = anc + "." + parts[i]
			if _, exists := ci.byFull[anc]; !exists {
				ci.register(&pendingCategory{
					id:             uuid.New(),
					displayName:    parts[i],
					relativeName:   parts[i],
					fullName:       anc,
					parentFullName: parentAnc,
					defaultEnabled: true,
					declaredBy:     map[uuid.UUID]bool{},
				})
				report.LateCategories = append(report.LateCategories, anc)
			}
		}

		pc.relativeName = parts[len(parts)-1]
		pc.parentFullName = strings.Join(parts[:len(parts)-1], ".")
	}
}

// finalizeCategories converts the accumulated pendingCategory set into
// pack.Category entries wired into core, linking parent/child relations and
// the root order.
func finalizeCategories(core *pack.Core, ci *categoryIndex) {
	for _, pc := range ci.byFull {
		core.Categories[pc.id] = &pack.Category{
			ID:             pc.id,
			DisplayName:    pc.displayName,
			RelativeName:   pc.relativeName,
			FullName:       pc.fullName,
			Separator:      pc.separator,
			DefaultEnabled: pc.defaultEnabled,
			Attrs:          pc.attrs,
			Selected:       pc.defaultEnabled,
		}
		core.AllCategories[pc.fullName] = pc.id
	}

	for _, full := range sortedKeys(ci.byFull) {
		pc := ci.byFull[full]
		if pc.parentFullName == "" {
			core.RootOrder = append(core.RootOrder, pc.id)
			continue
		}
		parentPC, ok := ci.byFull[pc.parentFullName]
		if !ok {
			core.RootOrder = append(core.RootOrder, pc.id)
			continue
		}
		cat := core.Categories[pc.id]
		parentID := parentPC.id
		cat.Parent = &parentID
		parentCat := core.Categories[parentID]
		parentCat.Children = append(parentCat.Children, pc.id)
	}
}
