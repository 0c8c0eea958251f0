package sweep

import (
	"sync"

	"github.com/nextlevelbuilder/sweeper/pkg/dom"
)

// fakeNode is an in-memory dom.Element. Each node lists the selectors it
// answers to; Query walks descendants in document order.
type fakeNode struct {
	mu           sync.Mutex
	match        map[string]bool
	attrs        map[string]string
	text         string
	hidden       bool
	visibleAfter int // stays hidden for the first N Visible() calls
	visChecks    int
	clicks       int
	clickErr     error
	clickPanic   string // non-empty: Click panics with this value
	onClick      func() // runs after a successful click, outside the lock
	kids         []*fakeNode
}

func node(selectors ...string) *fakeNode {
	m := make(map[string]bool, len(selectors))
	for _, s := range selectors {
		m[s] = true
	}
	return &fakeNode{match: m, attrs: map[string]string{}}
}

func (n *fakeNode) withAttr(name, value string) *fakeNode {
	n.attrs[name] = value
	return n
}

func (n *fakeNode) withText(s string) *fakeNode {
	n.text = s
	return n
}

func (n *fakeNode) withKids(kids ...*fakeNode) *fakeNode {
	n.kids = append(n.kids, kids...)
	return n
}

func (n *fakeNode) Query(selector string) []dom.Element {
	n.mu.Lock()
	defer n.mu.Unlock()
	return collect(n.kids, selector)
}

func (n *fakeNode) Attr(name string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.attrs[name]
}

func (n *fakeNode) Text() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}

func (n *fakeNode) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visChecks++
	if n.visibleAfter > 0 && n.visChecks <= n.visibleAfter {
		return false
	}
	return !n.hidden
}

func (n *fakeNode) Click() error {
	n.mu.Lock()
	n.clicks++
	panicMsg := n.clickPanic
	hook := n.onClick
	err := n.clickErr
	n.mu.Unlock()
	if panicMsg != "" {
		panic(panicMsg)
	}
	if hook != nil {
		hook()
	}
	return err
}

func (n *fakeNode) setAttr(name, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[name] = value
}

func (n *fakeNode) clickCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clicks
}

func collect(nodes []*fakeNode, selector string) []dom.Element {
	var out []dom.Element
	for _, n := range nodes {
		if n.match[selector] {
			out = append(out, n)
		}
		out = append(out, collect(n.kids, selector)...)
	}
	return out
}

// fakeDoc is an in-memory dom.Document.
type fakeDoc struct {
	mu    sync.Mutex
	roots []*fakeNode
}

func doc(roots ...*fakeNode) *fakeDoc {
	return &fakeDoc{roots: roots}
}

func (d *fakeDoc) Query(selector string) []dom.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return collect(d.roots, selector)
}

func (d *fakeDoc) add(roots ...*fakeNode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roots = append(d.roots, roots...)
}

// fakeIdentity and fakeView are mutable collaborator fakes.
type fakeIdentity struct {
	mu     sync.Mutex
	handle string
}

func (f *fakeIdentity) Current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handle
}

func (f *fakeIdentity) set(h string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handle = h
}

type fakeView struct {
	mu sync.Mutex
	ok bool
}

func (f *fakeView) Qualifies() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ok
}

func (f *fakeView) set(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ok = ok
}

// fakeBus records emitted events.
type busEvent struct {
	event   string
	payload any
}

type fakeBus struct {
	mu     sync.Mutex
	events []busEvent
}

func (f *fakeBus) Emit(event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, busEvent{event: event, payload: payload})
}

func (f *fakeBus) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.event == event {
			n++
		}
	}
	return n
}

func (f *fakeBus) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}
