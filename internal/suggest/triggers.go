package suggest

// triggers.go — Pure lookup tables telling the host when to re-run each
// analyzer family after an editor action. The engine never watches the
// editor itself; the host consults these predicates.

// Analyzer family identifiers.
const (
	FamilyLayout      = "layout"
	FamilyComposition = "composition"
	FamilyStructural  = "structural"
	FamilyTemplate    = "template"
)

// Editor action identifiers, by convention with the host.
const (
	ActionNodeAdded      = "node-added"
	ActionNodeRemoved    = "node-removed"
	ActionPropChanged    = "prop-changed"
	ActionPasted         = "pasted"
	ActionPageDuplicated = "page-duplicated"
	ActionPageOpened     = "page-opened"
)

// recomputeTable maps family → the actions that invalidate its results.
// Structural edits invalidate everything; prop tweaks only concern the
// layout and composition families; template fingerprints change only when
// the structure does.
var recomputeTable = map[string]map[string]bool{
	FamilyLayout: {
		ActionNodeAdded:      true,
		ActionNodeRemoved:    true,
		ActionPropChanged:    true,
		ActionPasted:         true,
		ActionPageDuplicated: true,
		ActionPageOpened:     true,
	},
	FamilyComposition: {
		ActionNodeAdded:      true,
		ActionNodeRemoved:    true,
		ActionPropChanged:    true,
		ActionPasted:         true,
		ActionPageDuplicated: true,
		ActionPageOpened:     true,
	},
	FamilyStructural: {
		ActionNodeAdded:      true,
		ActionNodeRemoved:    true,
		ActionPasted:         true,
		ActionPageDuplicated: true,
		ActionPageOpened:     true,
	},
	FamilyTemplate: {
		ActionNodeAdded:      true,
		ActionNodeRemoved:    true,
		ActionPasted:         true,
		ActionPageDuplicated: true,
	},
}

// ShouldRecompute reports whether the named analyzer family must re-run
// after the given editor action. Unknown families and actions are false.
func ShouldRecompute(family, action string) bool {
	return recomputeTable[family][action]
}
