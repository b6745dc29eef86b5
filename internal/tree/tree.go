// Package tree defines the page component tree and the traversal helpers
// and node predicates shared by every analyzer.
//
// A Page owns a single acyclic tree rooted at CanvasRoot. Node IDs are
// unique document-wide; traversal order is the only meaningful order.
package tree

import (
	"strconv"
	"strings"
)

// Node is one component in a page's canvas tree.
type Node struct {
	ID       string         `yaml:"id"`
	Type     string         `yaml:"type"`
	Props    map[string]any `yaml:"props,omitempty"`
	Children []*Node        `yaml:"children,omitempty"`
}

// PageType enumerates the known page kinds.
type PageType string

const (
	PageLanding     PageType = "landing"
	PageOptin       PageType = "optin"
	PageAppointment PageType = "appointment"
	PageThankYou    PageType = "thank_you"
)

// Page is a single document page. LayoutPersonality and LayoutIntent, when
// present, are authoritative and short-circuit inference.
type Page struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	Type              PageType `yaml:"type"`
	CanvasRoot        *Node    `yaml:"canvas_root"`
	LayoutPersonality string   `yaml:"layout_personality,omitempty"`
	LayoutIntent      string   `yaml:"layout_intent,omitempty"`
}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// Flatten returns the subtree rooted at n in depth-first order, node before
// children. A nil node yields an empty slice.
func Flatten(n *Node) []*Node {
	if n == nil {
		return nil
	}
	out := []*Node{n}
	for _, c := range n.Children {
		out = append(out, Flatten(c)...)
	}
	return out
}

// Sections returns the top-level sections of a page: the direct children of
// root, or root itself when it has no children.
func Sections(root *Node) []*Node {
	if root == nil {
		return nil
	}
	if len(root.Children) == 0 {
		return []*Node{root}
	}
	return root.Children
}

// FindParent returns the parent of the node with the given id, or nil if the
// id is the root or absent.
func FindParent(root *Node, id string) *Node {
	if root == nil {
		return nil
	}
	for _, c := range root.Children {
		if c.ID == id {
			return root
		}
		if p := FindParent(c, id); p != nil {
			return p
		}
	}
	return nil
}

// FindNode returns the node with the given id within the subtree, or nil.
func FindNode(root *Node, id string) *Node {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, c := range root.Children {
		if n := FindNode(c, id); n != nil {
			return n
		}
	}
	return nil
}

// ChildIndex returns the index of id among parent's children, or -1.
func ChildIndex(parent *Node, id string) int {
	if parent == nil {
		return -1
	}
	for i, c := range parent.Children {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// MaxDepth returns the depth of the deepest node; a single node has depth 1.
func MaxDepth(n *Node) int {
	if n == nil {
		return 0
	}
	max := 0
	for _, c := range n.Children {
		if d := MaxDepth(c); d > max {
			max = d
		}
	}
	return max + 1
}

// CountBy returns how many nodes in the subtree satisfy pred.
func CountBy(root *Node, pred func(*Node) bool) int {
	n := 0
	for _, node := range Flatten(root) {
		if pred(node) {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Predicates
//
// Each predicate is total: type-set membership first, then a prop-based
// override via props.variant or props.role, defaulting to false. Predicates
// never consult parent context.
// ---------------------------------------------------------------------------

var (
	ctaTypes      = set("button", "cta", "link-button")
	headlineTypes = set("headline", "heading", "title")
	textTypes     = set("text", "paragraph", "rich-text")
	inputTypes    = set("input", "textarea", "select", "form-field")
	heroTypes     = set("hero")
	sectionTypes  = set("section", "hero")
	groupingTypes = set("section", "hero", "container", "group", "stack", "row", "column", "form")
	headingRoles  = set("headline", "heading")
)

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}

// StringProp returns props[key] as a string, or "" when absent or non-string.
func StringProp(n *Node, key string) string {
	if n == nil || n.Props == nil {
		return ""
	}
	s, _ := n.Props[key].(string)
	return s
}

func hasRoleOrVariant(n *Node, want map[string]bool) bool {
	return want[StringProp(n, "variant")] || want[StringProp(n, "role")]
}

// IsCTA reports whether n is a call-to-action element.
func IsCTA(n *Node) bool {
	if n == nil {
		return false
	}
	return ctaTypes[n.Type] || hasRoleOrVariant(n, set("cta"))
}

// IsHeadline reports whether n is a headline element.
func IsHeadline(n *Node) bool {
	if n == nil {
		return false
	}
	return headlineTypes[n.Type] || hasRoleOrVariant(n, headingRoles)
}

// IsText reports whether n is a body-text element. Headlines are not text.
func IsText(n *Node) bool {
	if n == nil {
		return false
	}
	if IsHeadline(n) {
		return false
	}
	return textTypes[n.Type] || hasRoleOrVariant(n, set("body"))
}

// IsInput reports whether n is a form input element.
func IsInput(n *Node) bool {
	if n == nil {
		return false
	}
	return inputTypes[n.Type] || hasRoleOrVariant(n, set("input"))
}

// IsHero reports whether n is a hero element.
func IsHero(n *Node) bool {
	if n == nil {
		return false
	}
	return heroTypes[n.Type] || hasRoleOrVariant(n, set("hero"))
}

// IsSection reports whether n is a section-level container.
func IsSection(n *Node) bool {
	if n == nil {
		return false
	}
	return sectionTypes[n.Type] || hasRoleOrVariant(n, set("section"))
}

// IsGrouping reports whether n is a grouping container.
func IsGrouping(n *Node) bool {
	if n == nil {
		return false
	}
	return groupingTypes[n.Type] || hasRoleOrVariant(n, set("group"))
}

// IsMedia reports whether n is an image or video element.
func IsMedia(n *Node) bool {
	if n == nil {
		return false
	}
	return n.Type == "image" || n.Type == "video"
}

// IsScheduling reports whether n is an appointment/calendar element.
func IsScheduling(n *Node) bool {
	if n == nil {
		return false
	}
	return n.Type == "calendar" || n.Type == "scheduler" || n.Type == "appointment" ||
		hasRoleOrVariant(n, set("scheduling"))
}

// ---------------------------------------------------------------------------
// Numeric props
// ---------------------------------------------------------------------------

// NumProp returns props[key] as a float64, falling back when the key is
// absent or the value is not numeric. Accepts int, float64, and numeric
// strings (with an optional px suffix); never propagates NaN.
func NumProp(n *Node, key string, fallback float64) float64 {
	if n == nil || n.Props == nil {
		return fallback
	}
	v, ok := n.Props[key]
	if !ok {
		return fallback
	}
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		if x != x { // NaN
			return fallback
		}
		return x
	case float32:
		return float64(x)
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(x), "px")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != f {
			return fallback
		}
		return f
	default:
		return fallback
	}
}

// Gap returns the container gap of n, defaulting to def.
func Gap(n *Node, def float64) float64 {
	return NumProp(n, "gap", def)
}

// FontSize returns the font size of n, defaulting to def.
func FontSize(n *Node, def float64) float64 {
	return NumProp(n, "fontSize", def)
}
