package browser

// ViewChecker reports whether the page is on the qualifying view: the one
// navigation context the agent is permitted to sweep.
type ViewChecker struct {
	page     *Page
	homePath string
}

// NewViewChecker creates a checker for the given page and qualifying path.
func NewViewChecker(page *Page, homePath string) *ViewChecker {
	return &ViewChecker{page: page, homePath: homePath}
}

// Qualifies returns true when the page's current path is the qualifying one.
func (v *ViewChecker) Qualifies() bool {
	return v.page.Path() == v.homePath
}
