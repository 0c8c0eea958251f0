package browser

import (
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/nextlevelbuilder/sweeper/pkg/dom"
)

// Page wraps a rod page as a dom.Document. Query errors (e.g. a navigation
// racing the lookup) surface as empty results; the agent's retry budgets
// absorb transient misses.
type Page struct {
	p      *rod.Page
	logger *slog.Logger
}

// Query returns all elements matching the selector, in document order.
// Never waits for elements to appear.
func (pg *Page) Query(selector string) []dom.Element {
	els, err := pg.p.Elements(selector)
	if err != nil {
		pg.logger.Debug("page query failed", "selector", selector, "error", err)
		return nil
	}
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out
}

// URL returns the page's current location, or "" when unavailable.
func (pg *Page) URL() string {
	info, err := pg.p.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

// Path returns the path component of the current location.
func (pg *Page) Path() string {
	u, err := url.Parse(pg.URL())
	if err != nil {
		return ""
	}
	return u.Path
}

// OnNavigate invokes fn with the new URL after every main-frame navigation.
// The subscription lives until the page closes.
func (pg *Page) OnNavigate(fn func(url string)) {
	go pg.p.EachEvent(func(e *proto.PageFrameNavigated) {
		if e.Frame == nil || e.Frame.ParentID != "" {
			return // sub-frame
		}
		fn(e.Frame.URL)
	})()
}

// element adapts a rod element to dom.Element.
type element struct {
	el *rod.Element
}

func (e *element) Query(selector string) []dom.Element {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out
}

func (e *element) Attr(name string) string {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

func (e *element) Text() string {
	s, err := e.el.Text()
	if err != nil {
		return ""
	}
	return s
}

// Visible reports whether the element has a rendered box. An element present
// in the tree but hidden does not count.
func (e *element) Visible() bool {
	v, err := e.el.Visible()
	if err != nil {
		return false
	}
	return v
}

func (e *element) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

var _ dom.Document = (*Page)(nil)
var _ dom.Element = (*element)(nil)
