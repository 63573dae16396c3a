// --- START OF FINAL REVISED FILE pkg/auditor/document/model.go ---
// Package document is an in-memory design document host backed by snapshot files.
package document

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/stackvity/template-auditor/pkg/auditor"
)

// Document implements auditor.Document over a tree built from a Snapshot.
type Document struct {
	mu          sync.RWMutex
	name        string
	pages       []*node
	library     []*node
	byID        map[string]*node
	instancesOf map[string]map[string]struct{} // template id -> instance ids
	currentPage string
	selection   []string
	viewport    []string
	dirty       bool
}

type node struct {
	doc       *Document
	id        string
	name      string
	typeName  string
	kind      auditor.NodeKind
	isPage    bool
	parent    *node
	children  []*node
	main      string
	remote    bool
	overrides map[string]any
}

// pageNode gives page nodes the auditor.Page method set.
type pageNode struct{ *node }

var (
	_ auditor.Document = (*Document)(nil)
	_ auditor.Node     = (*node)(nil)
	_ auditor.Page     = pageNode{}
)

// New builds a Document from snap. Duplicate or empty ids are rejected.
func New(snap *Snapshot) (*Document, error) {
	d := &Document{
		name:        snap.Name,
		byID:        make(map[string]*node),
		instancesOf: make(map[string]map[string]struct{}),
	}
	for i := range snap.Library {
		n, err := d.build(&snap.Library[i], nil, false)
		if err != nil {
			return nil, err
		}
		d.library = append(d.library, n)
	}
	for i := range snap.Pages {
		n, err := d.build(&snap.Pages[i], nil, true)
		if err != nil {
			return nil, err
		}
		d.pages = append(d.pages, n)
	}
	if snap.CurrentPage != "" {
		if p, ok := d.byID[snap.CurrentPage]; ok && p.isPage {
			d.currentPage = p.id
		}
	}
	if d.currentPage == "" && len(d.pages) > 0 {
		d.currentPage = d.pages[0].id
	}
	for _, id := range snap.Selection {
		if _, ok := d.byID[id]; ok {
			d.selection = append(d.selection, id)
		}
	}
	return d, nil
}

func (d *Document) build(ns *NodeSpec, parent *node, isPage bool) (*node, error) {
	if ns.ID == "" {
		return nil, fmt.Errorf("%w: node without id under %q", ErrSnapshotSchema, parentID(parent))
	}
	if _, dup := d.byID[ns.ID]; dup {
		return nil, fmt.Errorf("%w: duplicate node id %q", ErrSnapshotSchema, ns.ID)
	}
	n := &node{
		doc:      d,
		id:       ns.ID,
		name:     ns.Name,
		typeName: ns.Type,
		kind:     kindFromType(ns.Type),
		isPage:   isPage,
		parent:   parent,
		main:     ns.Main,
		remote:   ns.Remote,
	}
	if isPage {
		n.kind = auditor.KindContainer
		n.typeName = "page"
	}
	if n.kind == auditor.KindInstance {
		n.overrides = maps.Clone(ns.Overrides)
		if n.overrides == nil {
			n.overrides = map[string]any{}
		}
		d.link(n)
	}
	d.byID[n.id] = n
	for i := range ns.Children {
		child, err := d.build(&ns.Children[i], n, false)
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}
	return n, nil
}

func parentID(n *node) string {
	if n == nil {
		return "<root>"
	}
	return n.id
}

func (d *Document) link(inst *node) {
	if inst.main == "" {
		return
	}
	set, ok := d.instancesOf[inst.main]
	if !ok {
		set = make(map[string]struct{})
		d.instancesOf[inst.main] = set
	}
	set[inst.id] = struct{}{}
}

func (d *Document) unlink(inst *node) {
	if set, ok := d.instancesOf[inst.main]; ok {
		delete(set, inst.id)
		if len(set) == 0 {
			delete(d.instancesOf, inst.main)
		}
	}
}

// wrap returns the auditor view of n. Pages are wrapped so type assertions to auditor.Page hold.
func wrap(n *node) auditor.Node {
	if n.isPage {
		return pageNode{n}
	}
	return n
}

// --- auditor.Node ---

func (n *node) ID() string {
	return n.id
}

func (n *node) Name() string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.name
}

func (n *node) Kind() auditor.NodeKind {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.kind
}

func (n *node) Parent() (auditor.Node, bool) {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	if n.parent == nil {
		return nil, false
	}
	return wrap(n.parent), true
}

func (n *node) Children() ([]auditor.Node, error) {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	if len(n.children) == 0 {
		return nil, nil
	}
	out := make([]auditor.Node, len(n.children))
	for i, c := range n.children {
		out[i] = wrap(c)
	}
	return out, nil
}

func (n *node) MainTemplate() (auditor.Node, bool) {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	if n.kind != auditor.KindInstance || n.main == "" {
		return nil, false
	}
	main, ok := n.doc.byID[n.main]
	if !ok {
		return nil, false
	}
	return wrap(main), true
}

func (n *node) Remote() bool {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.remote
}

func (n *node) Overrides() (map[string]any, bool) {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	if n.kind != auditor.KindInstance {
		return nil, false
	}
	return maps.Clone(n.overrides), true
}

func (n *node) Instances() ([]string, bool) {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	if n.kind != auditor.KindComponent {
		return nil, false
	}
	return slices.Sorted(maps.Keys(n.doc.instancesOf[n.id])), true
}

// Descendants returns every node under the page in pre-order.
func (p pageNode) Descendants() ([]auditor.Node, error) {
	p.doc.mu.RLock()
	defer p.doc.mu.RUnlock()
	var out []auditor.Node
	stack := slices.Clone(p.children)
	slices.Reverse(stack)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, wrap(n))
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return out, nil
}

// --- auditor.Document ---

func (d *Document) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

func (d *Document) NodeByID(id string) (auditor.Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return wrap(n), true
}

func (d *Document) Pages() ([]auditor.Page, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]auditor.Page, len(d.pages))
	for i, p := range d.pages {
		out[i] = pageNode{p}
	}
	return out, nil
}

func (d *Document) CurrentPage() (auditor.Page, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byID[d.currentPage]
	if !ok || !p.isPage {
		return nil, false
	}
	return pageNode{p}, true
}

func (d *Document) Selection() []auditor.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []auditor.Node
	for _, id := range d.selection {
		if n, ok := d.byID[id]; ok {
			out = append(out, wrap(n))
		}
	}
	return out
}

// DetachInstance turns an instance into a plain container. Other kinds are left alone.
func (d *Document) DetachInstance(target auditor.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(target)
	if err != nil {
		return err
	}
	if n.kind != auditor.KindInstance {
		return nil
	}
	d.unlink(n)
	n.kind = auditor.KindContainer
	n.typeName = "container"
	n.main = ""
	n.overrides = nil
	d.dirty = true
	return nil
}

// RemoveNode unlinks a node and its subtree. Pages cannot be removed.
func (d *Document) RemoveNode(target auditor.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(target)
	if err != nil {
		return err
	}
	if n.isPage {
		return fmt.Errorf("cannot remove page %q", n.id)
	}
	if n.parent != nil {
		n.parent.children = slices.DeleteFunc(n.parent.children, func(c *node) bool { return c == n })
	} else {
		d.library = slices.DeleteFunc(d.library, func(c *node) bool { return c == n })
	}
	d.forget(n)
	n.parent = nil
	d.selection = slices.DeleteFunc(d.selection, func(id string) bool {
		_, ok := d.byID[id]
		return !ok
	})
	d.dirty = true
	return nil
}

// forget drops n and its subtree from the indexes.
func (d *Document) forget(n *node) {
	for _, c := range n.children {
		d.forget(c)
	}
	if n.kind == auditor.KindInstance {
		d.unlink(n)
	}
	delete(d.byID, n.id)
}

func (d *Document) SetSelection(nodes []auditor.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(nodes))
	for _, target := range nodes {
		n, err := d.lookup(target)
		if err != nil {
			return err
		}
		ids = append(ids, n.id)
	}
	d.selection = ids
	return nil
}

func (d *Document) ScrollIntoView(nodes []auditor.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = d.viewport[:0]
	for _, target := range nodes {
		if target != nil {
			d.viewport = append(d.viewport, target.ID())
		}
	}
	return nil
}

func (d *Document) SetCurrentPage(page auditor.Page) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(page)
	if err != nil {
		return err
	}
	if !n.isPage {
		return fmt.Errorf("%w: %s is not a page", auditor.ErrWrongNodeKind, n.id)
	}
	d.currentPage = n.id
	return nil
}

// Viewport returns the ids last scrolled into view.
func (d *Document) Viewport() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.viewport)
}

// Dirty reports whether the tree was mutated since it was built or last marked clean.
func (d *Document) Dirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dirty
}

// MarkClean resets Dirty, typically after the snapshot was saved.
func (d *Document) MarkClean() {
	d.mu.Lock()
	d.dirty = false
	d.mu.Unlock()
}

func (d *Document) lookup(target auditor.Node) (*node, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil node", auditor.ErrNodeNotFound)
	}
	// ID does not lock, safe to call under d.mu.
	id := target.ID()
	n, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", auditor.ErrNodeNotFound, id)
	}
	return n, nil
}

// Snapshot serializes the current tree.
func (d *Document) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := &Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		Name:          d.name,
		CurrentPage:   d.currentPage,
		Selection:     slices.Clone(d.selection),
		Pages:         make([]NodeSpec, 0, len(d.pages)),
	}
	for _, l := range d.library {
		snap.Library = append(snap.Library, specOf(l))
	}
	for _, p := range d.pages {
		snap.Pages = append(snap.Pages, specOf(p))
	}
	return snap
}

func specOf(n *node) NodeSpec {
	ns := NodeSpec{
		ID:     n.id,
		Name:   n.name,
		Type:   n.typeName,
		Main:   n.main,
		Remote: n.remote,
	}
	if n.isPage {
		ns.Type = ""
	}
	if len(n.overrides) > 0 {
		ns.Overrides = maps.Clone(n.overrides)
	}
	for _, c := range n.children {
		ns.Children = append(ns.Children, specOf(c))
	}
	return ns
}

// --- END OF FINAL REVISED FILE pkg/auditor/document/model.go ---
