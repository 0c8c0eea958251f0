package sweep

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fastConfig keeps the retry budgets but shrinks every delay to 1ms so the
// full retry ladders run in a few milliseconds.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.ScanInterval = time.Hour
	cfg.StepDelay = time.Millisecond
	cfg.PostDeleteDelay = time.Millisecond
	cfg.CaretDelay = time.Millisecond
	return cfg
}

func newTestAgent(d *fakeDoc, cfg Config) (*Agent, *fakeBus) {
	b := &fakeBus{}
	a := New(d, &fakeIdentity{handle: "alice"}, &fakeView{ok: true}, b, WithConfig(cfg))
	return a, b
}

// workflowScene builds a target with a caret, plus a delete menu entry and a
// confirm button rendered at document level.
type workflowScene struct {
	target  *fakeNode
	item    *fakeNode
	caret   *fakeNode
	menu    *fakeNode
	confirm *fakeNode
	doc     *fakeDoc
}

func newWorkflowScene() *workflowScene {
	s := &workflowScene{
		caret:   node(testSel.Caret[0]),
		menu:    node(testSel.MenuItem).withText("Delete post"),
		confirm: node(testSel.ConfirmButton),
	}
	s.target = unit("/alice/status/1", false).withKids(s.caret)
	s.item = flaggedItem("flagged", s.target)
	s.doc = doc(s.item, s.menu, s.confirm)
	return s
}

// unflagOnConfirm makes a confirmed deletion remove the item's flag marker,
// the way the live page drops the post from the timeline.
func (s *workflowScene) unflagOnConfirm() {
	s.confirm.onClick = func() { s.item.setAttr(testSel.FlagAttr, "") }
}

func TestRunWorkflow_Success(t *testing.T) {
	s := newWorkflowScene()
	a, _ := newTestAgent(s.doc, fastConfig())

	if err := a.runWorkflow(context.Background(), s.target); err != nil {
		t.Fatalf("runWorkflow failed: %v", err)
	}
	if s.caret.clickCount() != 1 {
		t.Errorf("caret clicks = %d, want 1", s.caret.clickCount())
	}
	if s.menu.clickCount() != 1 {
		t.Errorf("menu clicks = %d, want 1", s.menu.clickCount())
	}
	if s.confirm.clickCount() != 1 {
		t.Errorf("confirm clicks = %d, want 1", s.confirm.clickCount())
	}
}

func TestRunWorkflow_CaretNeverVisible(t *testing.T) {
	s := newWorkflowScene()
	s.caret.hidden = true
	a, _ := newTestAgent(s.doc, fastConfig())

	err := a.runWorkflow(context.Background(), s.target)
	if !errors.Is(err, ErrCaretNotFound) {
		t.Fatalf("err = %v, want ErrCaretNotFound", err)
	}
	if n := s.caret.visChecks; n != fastConfig().CaretAttempts {
		t.Errorf("visibility checks = %d, want %d", n, fastConfig().CaretAttempts)
	}
	if s.caret.clickCount() != 0 || s.menu.clickCount() != 0 || s.confirm.clickCount() != 0 {
		t.Error("no step may click after the caret search exhausts")
	}
}

func TestRunWorkflow_CaretAppearsLate(t *testing.T) {
	s := newWorkflowScene()
	s.caret.visibleAfter = 2
	a, _ := newTestAgent(s.doc, fastConfig())

	if err := a.runWorkflow(context.Background(), s.target); err != nil {
		t.Fatalf("runWorkflow failed: %v", err)
	}
	if s.caret.clickCount() != 1 {
		t.Errorf("caret clicks = %d, want 1", s.caret.clickCount())
	}
}

func TestRunWorkflow_CaretAlternativePriority(t *testing.T) {
	s := newWorkflowScene()
	s.caret.hidden = true
	alt := node(testSel.Caret[1])
	s.target.withKids(alt)
	a, _ := newTestAgent(s.doc, fastConfig())

	if err := a.runWorkflow(context.Background(), s.target); err != nil {
		t.Fatalf("runWorkflow failed: %v", err)
	}
	if alt.clickCount() != 1 {
		t.Error("the first visible alternative should be clicked")
	}
	if s.caret.clickCount() != 0 {
		t.Error("the hidden primary affordance must not be clicked")
	}
}

func TestRunWorkflow_MenuItemNotFound(t *testing.T) {
	s := newWorkflowScene()
	s.menu.withText("Report post") // no delete entry anywhere
	a, _ := newTestAgent(s.doc, fastConfig())

	err := a.runWorkflow(context.Background(), s.target)
	if !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("err = %v, want ErrMenuItemNotFound", err)
	}
	if s.confirm.clickCount() != 0 {
		t.Error("confirm must not be clicked after the menu step fails")
	}
}

func TestRunWorkflow_MenuMatchIsCaseInsensitive(t *testing.T) {
	s := newWorkflowScene()
	s.menu.withText("DELETE THIS POST")
	a, _ := newTestAgent(s.doc, fastConfig())

	if err := a.runWorkflow(context.Background(), s.target); err != nil {
		t.Fatalf("runWorkflow failed: %v", err)
	}
	if s.menu.clickCount() != 1 {
		t.Errorf("menu clicks = %d, want 1", s.menu.clickCount())
	}
}

func TestRunWorkflow_HiddenMenuItemSkipped(t *testing.T) {
	s := newWorkflowScene()
	s.menu.hidden = true
	a, _ := newTestAgent(s.doc, fastConfig())

	err := a.runWorkflow(context.Background(), s.target)
	if !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("err = %v, want ErrMenuItemNotFound", err)
	}
}

func TestRunWorkflow_ConfirmNotFound(t *testing.T) {
	s := newWorkflowScene()
	s.confirm.hidden = true
	a, _ := newTestAgent(s.doc, fastConfig())

	err := a.runWorkflow(context.Background(), s.target)
	if !errors.Is(err, ErrConfirmNotFound) {
		t.Fatalf("err = %v, want ErrConfirmNotFound", err)
	}
}

func TestRunWorkflow_ClickErrorPropagates(t *testing.T) {
	s := newWorkflowScene()
	detached := errors.New("node detached")
	s.confirm.clickErr = detached
	a, _ := newTestAgent(s.doc, fastConfig())

	err := a.runWorkflow(context.Background(), s.target)
	if !errors.Is(err, detached) {
		t.Fatalf("err = %v, want wrapped click error", err)
	}
	if !strings.Contains(err.Error(), "click confirm") {
		t.Errorf("err = %v, want context about the confirm click", err)
	}
}
