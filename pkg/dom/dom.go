// Package dom abstracts the rendered document the sweep agent operates on.
// The production implementation lives in pkg/browser (go-rod); tests use an
// in-memory fake.
package dom

// Element is a single rendered node.
type Element interface {
	// Query returns the element's descendants matching the selector, in
	// document order. Never blocks waiting for elements to appear.
	Query(selector string) []Element

	// Attr returns the value of an attribute, or "" if absent.
	Attr(name string) string

	// Text returns the element's visible text content.
	Text() string

	// Visible reports whether the element has a non-zero rendered box.
	// An element can exist in the tree and still be hidden; that counts
	// as not visible.
	Visible() bool

	// Click simulates a user click on the element.
	Click() error
}

// Document is the queryable root of the page.
type Document interface {
	// Query returns all elements matching the selector, in document order.
	Query(selector string) []Element
}
