package sweep

import (
	"net/url"
	"strings"

	"github.com/nextlevelbuilder/sweeper/pkg/dom"
)

// findTarget returns the first content unit, in document order, that belongs
// to a flagged item and is attributable to the given identity. Returns nil
// when nothing qualifies. Repeated calls against an unchanged document are
// deterministic.
func findTarget(doc dom.Document, sel Selectors, identity string) dom.Element {
	if identity == "" {
		return nil
	}
	for _, item := range doc.Query(sel.FlaggedItem) {
		if !markerMatches(item.Attr(sel.FlagAttr), sel.FlagMarkers) {
			continue
		}
		for _, unit := range item.Query(sel.ContentUnit) {
			if unitAuthoredBy(unit, sel, identity) {
				return unit
			}
		}
	}
	return nil
}

// markerMatches reports whether the flag attribute value contains any of the
// configured markers, case-insensitively. An item may carry several markers;
// one match qualifies it.
func markerMatches(value string, markers []string) bool {
	if value == "" {
		return false
	}
	value = strings.ToLower(value)
	for _, m := range markers {
		if m != "" && strings.Contains(value, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// unitAuthoredBy reports whether the content unit is self-authored by the
// identity. A unit carrying a repost marker never qualifies: reposted content
// shows the original author's identity reference but is not deletable by the
// reposter through this workflow.
func unitAuthoredBy(unit dom.Element, sel Selectors, identity string) bool {
	if len(unit.Query(sel.RepostMarker)) > 0 {
		return false
	}
	return authorLink(unit, sel, identity) != nil
}

// authorLink returns the first outbound reference in the unit whose path is
// exactly /<identity> or starts with /<identity>/, case-insensitively.
func authorLink(unit dom.Element, sel Selectors, identity string) dom.Element {
	prefix := "/" + identity
	for _, link := range unit.Query(sel.AuthorLink) {
		p := strings.ToLower(hrefPath(link.Attr("href")))
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return link
		}
	}
	return nil
}

// permalinkOf returns the identity's reference path inside the unit, used to
// announce and deduplicate deletions. "" when the unit has no such link.
func permalinkOf(unit dom.Element, sel Selectors, identity string) string {
	if link := authorLink(unit, sel, identity); link != nil {
		return hrefPath(link.Attr("href"))
	}
	return ""
}

// normalizeIdentity lowercases the handle and strips a leading "@".
func normalizeIdentity(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "@")
	return strings.ToLower(s)
}

// hrefPath extracts the path component of an href, which may be a bare path
// or an absolute URL.
func hrefPath(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		// Bare path; cut query and fragment.
		if i := strings.IndexAny(href, "?#"); i >= 0 {
			return href[:i]
		}
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Path
}
