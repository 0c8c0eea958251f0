package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nextlevelbuilder/sweeper/pkg/dom"
)

// runWorkflow executes the three-step deletion protocol against one target
// unit. Each step has its own bounded retry budget; the first failed step
// short-circuits the rest. A partially opened menu left behind by a failed
// run is harmless: target selection keys off flag markers, not menu state.
func (a *Agent) runWorkflow(ctx context.Context, target dom.Element) error {
	cfg := a.config()

	var caret dom.Element
	err := a.tracer.Span(ctx, "sweep.step.caret", func(ctx context.Context) error {
		caret = a.findCaretWithRetry(target, cfg)
		if caret == nil {
			slog.Warn("sweep: caret button not found",
				"attempts", cfg.CaretAttempts, "delay", cfg.CaretDelay)
			return ErrCaretNotFound
		}
		if err := caret.Click(); err != nil {
			return fmt.Errorf("click caret: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.sleep(cfg.StepDelay)

	err = a.tracer.Span(ctx, "sweep.step.menu", func(ctx context.Context) error {
		item := a.findDeleteItemWithRetry(cfg)
		if item == nil {
			slog.Warn("sweep: delete menu item not found", "attempts", cfg.MenuAttempts)
			return ErrMenuItemNotFound
		}
		if err := item.Click(); err != nil {
			return fmt.Errorf("click delete menu item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.sleep(cfg.StepDelay)

	err = a.tracer.Span(ctx, "sweep.step.confirm", func(ctx context.Context) error {
		btn := a.findConfirmWithRetry(cfg)
		if btn == nil {
			slog.Warn("sweep: confirm button not found", "attempts", cfg.ConfirmAttempts)
			return ErrConfirmNotFound
		}
		if err := btn.Click(); err != nil {
			return fmt.Errorf("click confirm: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Give the page time to remove the node so the next tick does not
	// re-match the same post.
	a.sleep(cfg.PostDeleteDelay)
	return nil
}

// findCaretWithRetry polls the target for the menu affordance. Alternatives
// are tried in priority order on every attempt; the first visible match wins.
// Attempts are spaced by a fixed delay.
func (a *Agent) findCaretWithRetry(target dom.Element, cfg Config) dom.Element {
	for attempt := 1; attempt <= cfg.CaretAttempts; attempt++ {
		for _, q := range cfg.Selectors.Caret {
			for _, el := range target.Query(q) {
				if el.Visible() {
					return el
				}
			}
		}
		if attempt < cfg.CaretAttempts {
			a.sleep(cfg.CaretDelay)
		}
	}
	return nil
}

// findDeleteItemWithRetry scans all currently rendered menu entries for one
// whose visible text contains the delete label, case-insensitively. The delay
// between attempts grows linearly with the attempt number.
func (a *Agent) findDeleteItemWithRetry(cfg Config) dom.Element {
	label := strings.ToLower(cfg.Selectors.DeleteLabel)
	for attempt := 1; attempt <= cfg.MenuAttempts; attempt++ {
		for _, el := range a.doc.Query(cfg.Selectors.MenuItem) {
			if !el.Visible() {
				continue
			}
			if strings.Contains(strings.ToLower(el.Text()), label) {
				return el
			}
		}
		if attempt < cfg.MenuAttempts {
			a.sleep(time.Duration(attempt) * cfg.StepDelay)
		}
	}
	return nil
}

// findConfirmWithRetry polls for the confirmation button to become visible,
// with the same linear backoff as the menu step.
func (a *Agent) findConfirmWithRetry(cfg Config) dom.Element {
	for attempt := 1; attempt <= cfg.ConfirmAttempts; attempt++ {
		for _, el := range a.doc.Query(cfg.Selectors.ConfirmButton) {
			if el.Visible() {
				return el
			}
		}
		if attempt < cfg.ConfirmAttempts {
			a.sleep(time.Duration(attempt) * cfg.StepDelay)
		}
	}
	return nil
}

// sleep blocks for d on the agent's clock. Workflow waits are not cancelled
// by Stop or Destroy; they only prevent future cycles.
func (a *Agent) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-a.clock.After(d)
}
