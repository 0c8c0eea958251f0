package sweep

import (
	"testing"
)

var testSel = DefaultSelectors()

func flaggedItem(marker string, units ...*fakeNode) *fakeNode {
	return node(testSel.FlaggedItem).withAttr(testSel.FlagAttr, marker).withKids(units...)
}

func unit(href string, repost bool) *fakeNode {
	u := node(testSel.ContentUnit)
	if href != "" {
		u.withKids(node(testSel.AuthorLink).withAttr("href", href))
	}
	if repost {
		u.withKids(node(testSel.RepostMarker))
	}
	return u
}

func TestFindTarget_FirstQualifyingUnit(t *testing.T) {
	want := unit("/alice/status/1", false)
	d := doc(
		flaggedItem("flagged", unit("/bob/status/9", false), want),
		flaggedItem("flagged", unit("/alice/status/2", false)),
	)

	got := findTarget(d, testSel, "alice")
	if got != want {
		t.Fatalf("findTarget returned %v, want the first alice unit", got)
	}

	// Unchanged document, same answer.
	if again := findTarget(d, testSel, "alice"); again != want {
		t.Error("findTarget is not deterministic for an unchanged document")
	}
}

func TestFindTarget_MarkerCaseInsensitiveSubstring(t *testing.T) {
	u := unit("/alice", false)
	d := doc(flaggedItem("Maybe-FLAGGED plus-other-markers", u))

	if got := findTarget(d, testSel, "alice"); got != u {
		t.Fatalf("marker substring match failed, got %v", got)
	}
}

func TestFindTarget_UnmarkedItemSkipped(t *testing.T) {
	d := doc(
		flaggedItem("benign", unit("/alice", false)),
		flaggedItem("", unit("/alice", false)),
	)

	if got := findTarget(d, testSel, "alice"); got != nil {
		t.Fatalf("expected nil for unmarked items, got %v", got)
	}
}

func TestFindTarget_RepostExcluded(t *testing.T) {
	reposted := unit("/alice", true)
	own := unit("/alice/status/42", false)
	d := doc(flaggedItem("flagged", reposted, own))

	got := findTarget(d, testSel, "alice")
	if got == reposted {
		t.Fatal("repost-marked unit must not be selected")
	}
	if got != own {
		t.Fatalf("expected the later self-authored unit, got %v", got)
	}
}

func TestFindTarget_RepostOnlyYieldsNone(t *testing.T) {
	d := doc(flaggedItem("flagged", unit("/alice", true)))

	if got := findTarget(d, testSel, "alice"); got != nil {
		t.Fatalf("expected nil when the only match is a repost, got %v", got)
	}
}

func TestFindTarget_IdentityPrefixRules(t *testing.T) {
	cases := []struct {
		name  string
		href  string
		match bool
	}{
		{"exact path", "/alice", true},
		{"status sub-path", "/alice/status/123", true},
		{"case differs", "/Alice/Status/123", true},
		{"prefix of longer handle", "/alicesmith", false},
		{"other user", "/bob/status/1", false},
		{"absolute url", "https://example.com/alice/status/5", true},
		{"query string", "/alice?src=sidebar", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := doc(flaggedItem("flagged", unit(tc.href, false)))
			got := findTarget(d, testSel, "alice")
			if tc.match && got == nil {
				t.Errorf("href %q should match identity alice", tc.href)
			}
			if !tc.match && got != nil {
				t.Errorf("href %q should not match identity alice", tc.href)
			}
		})
	}
}

func TestNormalizeIdentity(t *testing.T) {
	cases := map[string]string{
		"@Alice":  "alice",
		"alice":   "alice",
		" @BOB  ": "bob",
		"":        "",
		"@":       "",
	}
	for in, want := range cases {
		if got := normalizeIdentity(in); got != want {
			t.Errorf("normalizeIdentity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindTarget_EmptyIdentity(t *testing.T) {
	d := doc(flaggedItem("flagged", unit("/alice", false)))
	if got := findTarget(d, testSel, ""); got != nil {
		t.Fatalf("empty identity must never match, got %v", got)
	}
}

func TestPermalinkOf(t *testing.T) {
	u := unit("/alice/status/77", false)
	if got := permalinkOf(u, testSel, "alice"); got != "/alice/status/77" {
		t.Errorf("permalinkOf = %q, want /alice/status/77", got)
	}
	if got := permalinkOf(unit("/bob", false), testSel, "alice"); got != "" {
		t.Errorf("permalinkOf for foreign unit = %q, want empty", got)
	}
}

func TestHrefPath(t *testing.T) {
	cases := map[string]string{
		"/alice/status/1?ref=x":       "/alice/status/1",
		"/alice#section":              "/alice",
		"https://example.com/a/b?x=1": "/a/b",
		"":                            "",
		"not a url\x7f://":            "",
	}
	for in, want := range cases {
		if got := hrefPath(in); got != want {
			t.Errorf("hrefPath(%q) = %q, want %q", in, got, want)
		}
	}
}
