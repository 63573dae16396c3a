// --- START OF FINAL REVISED FILE internal/testutil/fake_document.go ---
package testutil

import (
	"errors"
	"fmt"
	"slices"

	"github.com/stackvity/template-auditor/pkg/auditor"
)

// FakeNode is a hand-built auditor.Node with fault injection.
// Fields are exported so tests can tweak a tree after building it.
type FakeNode struct {
	IDValue     string
	NameValue   string
	KindValue   auditor.NodeKind
	ParentNode  auditor.Node
	ChildNodes  []auditor.Node
	ChildrenErr error
	PanicOnKind bool // Kind() panics, for analysis-error paths

	Main        auditor.Node
	RemoteValue bool
	OverrideMap map[string]any
	InstanceIDs []string
}

func (n *FakeNode) ID() string   { return n.IDValue }
func (n *FakeNode) Name() string { return n.NameValue }

func (n *FakeNode) Kind() auditor.NodeKind {
	if n.PanicOnKind {
		panic(fmt.Sprintf("kind unavailable for %s", n.IDValue))
	}
	return n.KindValue
}

func (n *FakeNode) Parent() (auditor.Node, bool) {
	return n.ParentNode, n.ParentNode != nil
}

func (n *FakeNode) Children() ([]auditor.Node, error) {
	if n.ChildrenErr != nil {
		return nil, n.ChildrenErr
	}
	return n.ChildNodes, nil
}

func (n *FakeNode) MainTemplate() (auditor.Node, bool) {
	if n.KindValue != auditor.KindInstance || n.Main == nil {
		return nil, false
	}
	return n.Main, true
}

func (n *FakeNode) Remote() bool { return n.RemoteValue }

func (n *FakeNode) Overrides() (map[string]any, bool) {
	if n.KindValue != auditor.KindInstance {
		return nil, false
	}
	return n.OverrideMap, true
}

func (n *FakeNode) Instances() ([]string, bool) {
	if n.KindValue != auditor.KindComponent {
		return nil, false
	}
	return n.InstanceIDs, true
}

// Add appends children and points their parent at n.
func (n *FakeNode) Add(children ...*FakeNode) *FakeNode {
	for _, c := range children {
		c.ParentNode = n
		n.ChildNodes = append(n.ChildNodes, c)
	}
	return n
}

// FakePage is a FakeNode that is also an auditor.Page.
type FakePage struct {
	FakeNode
	DescendantsErr error
}

// Add appends children and points their parent at the page.
func (p *FakePage) Add(children ...*FakeNode) *FakePage {
	for _, c := range children {
		c.ParentNode = p
		p.ChildNodes = append(p.ChildNodes, c)
	}
	return p
}

// Descendants walks the page's children in pre-order.
func (p *FakePage) Descendants() ([]auditor.Node, error) {
	if p.DescendantsErr != nil {
		return nil, p.DescendantsErr
	}
	var out []auditor.Node
	var visit func(nodes []auditor.Node)
	visit = func(nodes []auditor.Node) {
		for _, n := range nodes {
			out = append(out, n)
			if kids, err := n.Children(); err == nil {
				visit(kids)
			}
		}
	}
	visit(p.ChildNodes)
	return out, nil
}

// --- Builders ---

func NewPage(id, name string) *FakePage {
	return &FakePage{FakeNode: FakeNode{IDValue: id, NameValue: name, KindValue: auditor.KindContainer}}
}

func Container(id, name string, children ...*FakeNode) *FakeNode {
	return (&FakeNode{IDValue: id, NameValue: name, KindValue: auditor.KindContainer}).Add(children...)
}

func Other(id, name string) *FakeNode {
	return &FakeNode{IDValue: id, NameValue: name, KindValue: auditor.KindOther}
}

// Component builds a template used by the given instance ids.
func Component(id, name string, instanceIDs ...string) *FakeNode {
	return &FakeNode{IDValue: id, NameValue: name, KindValue: auditor.KindComponent, InstanceIDs: instanceIDs}
}

func ComponentSet(id, name string, variants ...*FakeNode) *FakeNode {
	return (&FakeNode{IDValue: id, NameValue: name, KindValue: auditor.KindComponentSet}).Add(variants...)
}

// Instance builds an instance of main. A nil main gives a missing template.
func Instance(id, name string, main *FakeNode) *FakeNode {
	n := &FakeNode{IDValue: id, NameValue: name, KindValue: auditor.KindInstance, OverrideMap: map[string]any{}}
	if main != nil {
		n.Main = main
	}
	return n
}

// WithOverrides sets count synthetic overrides.
func (n *FakeNode) WithOverrides(count int) *FakeNode {
	n.OverrideMap = make(map[string]any, count)
	for i := 0; i < count; i++ {
		n.OverrideMap[fmt.Sprintf("prop%d", i)] = i
	}
	return n
}

// ErrFakeHost is returned by FakeDocument operations configured to fail.
var ErrFakeHost = errors.New("fake host failure")

// FakeDocument is an auditor.Document over FakeNodes.
// Not safe for concurrent mutation.
type FakeDocument struct {
	NameValue    string
	PageList     []*FakePage
	PagesErr     error
	Current      *FakePage
	Selected     []auditor.Node
	Scrolled     []auditor.Node
	SelectionErr error
	ScrollErr    error

	FailDetach  map[string]bool // node ids whose detach returns ErrFakeHost
	FailRemove  map[string]bool
	PanicRemove map[string]bool

	Detached []string
	Removed  []string
	index    map[string]auditor.Node
}

var _ auditor.Document = (*FakeDocument)(nil)

// NewFakeDocument indexes every node reachable from pages. The first page is current.
func NewFakeDocument(name string, pages ...*FakePage) *FakeDocument {
	d := &FakeDocument{
		NameValue:   name,
		PageList:    pages,
		FailDetach:  map[string]bool{},
		FailRemove:  map[string]bool{},
		PanicRemove: map[string]bool{},
		index:       map[string]auditor.Node{},
	}
	if len(pages) > 0 {
		d.Current = pages[0]
	}
	for _, p := range pages {
		d.Register(p)
	}
	return d
}

// Register indexes n and its subtree. Use it for nodes that live off-page.
func (d *FakeDocument) Register(n auditor.Node) {
	d.index[n.ID()] = n
	kids, err := n.Children()
	if err != nil {
		return
	}
	for _, c := range kids {
		d.Register(c)
	}
}

func (d *FakeDocument) Name() string { return d.NameValue }

func (d *FakeDocument) NodeByID(id string) (auditor.Node, bool) {
	n, ok := d.index[id]
	return n, ok
}

func (d *FakeDocument) Pages() ([]auditor.Page, error) {
	if d.PagesErr != nil {
		return nil, d.PagesErr
	}
	out := make([]auditor.Page, len(d.PageList))
	for i, p := range d.PageList {
		out[i] = p
	}
	return out, nil
}

func (d *FakeDocument) CurrentPage() (auditor.Page, bool) {
	if d.Current == nil {
		return nil, false
	}
	return d.Current, true
}

func (d *FakeDocument) Selection() []auditor.Node { return d.Selected }

func (d *FakeDocument) DetachInstance(node auditor.Node) error {
	if d.FailDetach[node.ID()] {
		return ErrFakeHost
	}
	d.Detached = append(d.Detached, node.ID())
	if fn, ok := node.(*FakeNode); ok && fn.KindValue == auditor.KindInstance {
		fn.KindValue = auditor.KindContainer
		fn.Main = nil
		fn.OverrideMap = nil
	}
	return nil
}

func (d *FakeDocument) RemoveNode(node auditor.Node) error {
	id := node.ID()
	if d.PanicRemove[id] {
		panic("host exploded removing " + id)
	}
	if d.FailRemove[id] {
		return ErrFakeHost
	}
	d.Removed = append(d.Removed, id)
	d.forget(node)
	if fn, ok := node.(*FakeNode); ok {
		if parent, ok := fn.ParentNode.(interface{ unlinkChild(string) }); ok {
			parent.unlinkChild(id)
		}
		fn.ParentNode = nil
	}
	return nil
}

func (d *FakeDocument) forget(n auditor.Node) {
	delete(d.index, n.ID())
	if kids, err := n.Children(); err == nil {
		for _, c := range kids {
			d.forget(c)
		}
	}
}

func (n *FakeNode) unlinkChild(id string) {
	n.ChildNodes = slices.DeleteFunc(n.ChildNodes, func(c auditor.Node) bool { return c.ID() == id })
}

func (d *FakeDocument) SetSelection(nodes []auditor.Node) error {
	if d.SelectionErr != nil {
		return d.SelectionErr
	}
	d.Selected = nodes
	return nil
}

func (d *FakeDocument) ScrollIntoView(nodes []auditor.Node) error {
	if d.ScrollErr != nil {
		return d.ScrollErr
	}
	d.Scrolled = nodes
	return nil
}

func (d *FakeDocument) SetCurrentPage(page auditor.Page) error {
	for _, p := range d.PageList {
		if p.ID() == page.ID() {
			d.Current = p
			return nil
		}
	}
	return fmt.Errorf("%w: page %s", auditor.ErrNodeNotFound, page.ID())
}

// --- END OF FINAL REVISED FILE internal/testutil/fake_document.go ---
