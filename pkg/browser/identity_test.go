package browser

import "testing"

func TestHandleFromHref(t *testing.T) {
	cases := map[string]string{
		"/alice":              "alice",
		"/alice/with_replies": "alice",
		"/alice?src=nav":      "alice",
		"/alice#top":          "alice",
		"/":                   "",
		"":                    "",
	}
	for in, want := range cases {
		if got := handleFromHref(in); got != want {
			t.Errorf("handleFromHref(%q) = %q, want %q", in, got, want)
		}
	}
}
