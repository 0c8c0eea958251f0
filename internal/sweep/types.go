// Package sweep implements the deletion agent: a polling scan/select/delete
// state machine that walks a rendered document for posts flagged by an
// external classifier and, when one is attributable to the signed-in identity,
// drives the open-menu → select-delete → confirm interaction to remove it.
package sweep

import (
	"time"
)

// Identity resolves the signed-in account the agent acts on behalf of.
type Identity interface {
	// Current returns the raw handle, possibly with a leading "@", or ""
	// when no identity is signed in.
	Current() string
}

// View reports whether the current navigation context is one the agent is
// permitted to operate on.
type View interface {
	Qualifies() bool
}

// Publisher receives status events. Emission is fire-and-forget.
type Publisher interface {
	Emit(event string, payload any)
}

// Selectors is the domain data locating the UI surfaces the agent interacts
// with. The algorithm never hardcodes these; they ship as config defaults.
type Selectors struct {
	// FlaggedItem matches timeline nodes the classifier annotated.
	FlaggedItem string `json:"flaggedItem"`
	// FlagAttr is the attribute carrying the classifier's marker value.
	FlagAttr string `json:"flagAttr"`
	// FlagMarkers are the marker substrings that qualify an item,
	// compared case-insensitively.
	FlagMarkers []string `json:"flagMarkers"`
	// ContentUnit matches the post-like elements inside a flagged item.
	ContentUnit string `json:"contentUnit"`
	// AuthorLink matches the outbound identity references inside a unit.
	AuthorLink string `json:"authorLink"`
	// RepostMarker marks a unit as reposted/shared content. Reposts carry
	// the original author's identity reference but are not deletable.
	RepostMarker string `json:"repostMarker"`
	// Caret lists alternative queries for the per-post menu affordance,
	// tried in priority order.
	Caret []string `json:"caret"`
	// MenuItem matches entries of the opened menu.
	MenuItem string `json:"menuItem"`
	// DeleteLabel is the case-insensitive substring identifying the delete
	// menu entry.
	DeleteLabel string `json:"deleteLabel"`
	// ConfirmButton matches the final confirmation button.
	ConfirmButton string `json:"confirmButton"`
}

// Config holds the agent's tunables. All fields are overridable from the
// config file; zero values are replaced by defaults in New.
type Config struct {
	ScanInterval    time.Duration
	StepDelay       time.Duration
	PostDeleteDelay time.Duration
	CaretAttempts   int
	CaretDelay      time.Duration
	MenuAttempts    int
	ConfirmAttempts int

	// MaxPerMinute caps confirmed deletions per minute. 0 disables the cap.
	MaxPerMinute int

	Selectors Selectors
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		ScanInterval:    4 * time.Second,
		StepDelay:       400 * time.Millisecond,
		PostDeleteDelay: 500 * time.Millisecond,
		CaretAttempts:   5,
		CaretDelay:      250 * time.Millisecond,
		MenuAttempts:    4,
		ConfirmAttempts: 4,
		Selectors:       DefaultSelectors(),
	}
}

// DefaultSelectors returns the stock site selectors.
func DefaultSelectors() Selectors {
	return Selectors{
		FlaggedItem:  `[data-flag-state]`,
		FlagAttr:     "data-flag-state",
		FlagMarkers:  []string{"flagged", "flagged-adjacent", "maybe-flagged"},
		ContentUnit:  "article",
		AuthorLink:   `a[href^="/"]`,
		RepostMarker: `[data-testid="socialContext"]`,
		Caret: []string{
			`[data-testid="caret"]`,
			`[aria-label="More"]`,
			`div[role="button"][aria-haspopup="menu"]`,
		},
		MenuItem:      `[role="menuitem"]`,
		DeleteLabel:   "delete",
		ConfirmButton: `[data-testid="confirmationSheetConfirm"]`,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.ScanInterval <= 0 {
		c.ScanInterval = d.ScanInterval
	}
	if c.StepDelay <= 0 {
		c.StepDelay = d.StepDelay
	}
	if c.PostDeleteDelay <= 0 {
		c.PostDeleteDelay = d.PostDeleteDelay
	}
	if c.CaretAttempts <= 0 {
		c.CaretAttempts = d.CaretAttempts
	}
	if c.CaretDelay <= 0 {
		c.CaretDelay = d.CaretDelay
	}
	if c.MenuAttempts <= 0 {
		c.MenuAttempts = d.MenuAttempts
	}
	if c.ConfirmAttempts <= 0 {
		c.ConfirmAttempts = d.ConfirmAttempts
	}
	if c.Selectors.FlaggedItem == "" {
		c.Selectors = d.Selectors
	}
	if c.Selectors.DeleteLabel == "" {
		c.Selectors.DeleteLabel = d.Selectors.DeleteLabel
	}
}
