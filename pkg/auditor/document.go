// --- START OF FINAL REVISED FILE pkg/auditor/document.go ---
package auditor

// Node is the read side of one node in the host document.
// Optional attributes are reported as (value, ok); the auditor never assumes presence.
type Node interface {
	ID() string
	Name() string
	Kind() NodeKind
	// Parent is absent for pages and for nodes that have been removed.
	Parent() (Node, bool)
	// Children returns the ordered children. Leaves return nil, nil.
	Children() ([]Node, error)
	// MainTemplate resolves an instance's template.
	MainTemplate() (Node, bool)
	// Remote reports whether a template is defined outside the current document.
	Remote() bool
	// Overrides returns the instance's override map keyed by overridden property.
	Overrides() (map[string]any, bool)
	// Instances returns the ids of every instance of a template.
	Instances() ([]string, bool)
}

// Page is a top level node that can enumerate its descendants in pre-order.
type Page interface {
	Node
	Descendants() ([]Node, error)
}

// Document is the host document model the auditor scans and mutates.
//
// Implementations are expected to be single writer. The Engine never issues
// mutations while a scan is in flight.
type Document interface {
	Name() string
	NodeByID(id string) (Node, bool)
	Pages() ([]Page, error)
	CurrentPage() (Page, bool)
	Selection() []Node

	// DetachInstance converts an instance into a plain container. No-op for other kinds.
	DetachInstance(node Node) error
	RemoveNode(node Node) error
	SetSelection(nodes []Node) error
	ScrollIntoView(nodes []Node) error
	SetCurrentPage(page Page) error
}

// PageOf walks parents until it reaches a page. Returns false for detached nodes.
func PageOf(node Node) (Page, bool) {
	current := node
	for current != nil {
		if p, ok := current.(Page); ok {
			return p, true
		}
		parent, ok := current.Parent()
		if !ok {
			return nil, false
		}
		current = parent
	}
	return nil, false
}

// displayName falls back to the default label for unnamed nodes.
func displayName(node Node) string {
	if name := node.Name(); name != "" {
		return name
	}
	switch node.Kind() {
	case KindComponent:
		return UnnamedComponent
	case KindComponentSet:
		return UnnamedComponentSet
	default:
		return UnnamedNode
	}
}

// --- END OF FINAL REVISED FILE pkg/auditor/document.go ---
