package browser

import (
	"strings"
	"sync"
)

// IdentityResolver reads the signed-in handle off the page. The site renders
// a profile link whose href is "/<handle>"; that element may not exist yet
// while the app shell loads, in which case Current returns "" and the agent
// stays gated until a later re-check.
type IdentityResolver struct {
	page     *Page
	selector string

	// static wins over DOM detection when set (config override).
	static string

	mu     sync.Mutex
	cached string
}

// NewIdentityResolver creates a resolver for the given page. static, when
// non-empty, pins the identity instead of detecting it.
func NewIdentityResolver(page *Page, selector, static string) *IdentityResolver {
	return &IdentityResolver{page: page, selector: selector, static: static}
}

// Current returns the raw handle, or "" when no identity is resolvable.
// A successfully detected handle is cached: the profile link can disappear
// on some views even though the session is still signed in.
func (r *IdentityResolver) Current() string {
	if r.static != "" {
		return r.static
	}

	for _, el := range r.page.Query(r.selector) {
		href := el.Attr("href")
		handle := handleFromHref(href)
		if handle != "" {
			r.mu.Lock()
			r.cached = handle
			r.mu.Unlock()
			return handle
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cached
}

// Invalidate drops the cached handle, e.g. after a sign-out navigation.
func (r *IdentityResolver) Invalidate() {
	r.mu.Lock()
	r.cached = ""
	r.mu.Unlock()
}

// handleFromHref extracts the first path segment of a profile link.
func handleFromHref(href string) string {
	href = strings.TrimPrefix(href, "/")
	if href == "" {
		return ""
	}
	if i := strings.IndexAny(href, "/?#"); i >= 0 {
		href = href[:i]
	}
	return href
}
