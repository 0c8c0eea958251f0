package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/sweeper/internal/bus"
	"github.com/nextlevelbuilder/sweeper/internal/tracing"
	"github.com/nextlevelbuilder/sweeper/pkg/dom"
	"github.com/nextlevelbuilder/sweeper/pkg/protocol"
)

const deletedDedupeTTL = 20 * time.Minute

// Agent is the deletion agent. State is in-memory only and resets on each
// Start; there is no history across activations.
//
// Invariant: busy implies running. busy is set only while a deletion attempt
// is in flight and is always cleared when the attempt ends, success or not.
type Agent struct {
	doc      dom.Document
	identity Identity
	view     View
	pub      Publisher
	clock    clock.Clock
	tracer   *tracing.Tracer
	seen     *bus.DedupeCache

	mu           sync.Mutex
	cfg          Config
	limiter      *rate.Limiter
	running      bool
	busy         bool
	deletedCount int
	lastError    string
	stopCh       chan struct{}
}

// Option configures an Agent.
type Option func(*Agent)

// WithConfig overrides the default tunables.
func WithConfig(cfg Config) Option {
	return func(a *Agent) { a.cfg = cfg }
}

// WithClock sets the time source (default wall clock).
func WithClock(c clock.Clock) Option {
	return func(a *Agent) { a.clock = c }
}

// WithTracer attaches an OTLP tracer. Nil is fine.
func WithTracer(t *tracing.Tracer) Option {
	return func(a *Agent) { a.tracer = t }
}

// New creates an Agent over the given document and collaborators.
func New(doc dom.Document, identity Identity, view View, pub Publisher, opts ...Option) *Agent {
	a := &Agent{
		doc:      doc,
		identity: identity,
		view:     view,
		pub:      pub,
		clock:    clock.WallClock,
		cfg:      DefaultConfig(),
		seen:     bus.NewDedupeCache(deletedDedupeTTL, 1000),
	}
	for _, o := range opts {
		o(a)
	}
	a.cfg.applyDefaults()
	a.limiter = newDeletionLimiter(a.cfg.MaxPerMinute)
	return a
}

// newDeletionLimiter builds the token bucket capping confirmed deletions.
// Returns nil (no cap) when perMinute <= 0.
func newDeletionLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
}

// Start arms the poll scheduler and triggers one immediate scan cycle.
// No-op when already running. When the agent is unavailable (no identity or
// wrong view), it records the reason, publishes status, and stays idle.
func (a *Agent) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	if _, ok, reason := a.availability(); !ok {
		a.mu.Lock()
		a.lastError = reason
		a.mu.Unlock()
		slog.Info("sweep: not starting", "reason", reason)
		a.publish()
		return
	}

	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.busy = false
	a.deletedCount = 0
	a.lastError = ""
	stop := make(chan struct{})
	a.stopCh = stop
	interval := a.cfg.ScanInterval
	a.mu.Unlock()

	go a.loop(stop)
	slog.Info("sweep agent started", "interval", interval)
	a.publish()

	// First cycle runs right away instead of waiting a full interval.
	go a.scanOnce()
}

// Stop disarms the scheduler. When already stopped it only records the reason
// (if any) and republishes status, so an unavailability reason can surface
// while idle. An in-flight workflow is not aborted; it just becomes the last.
func (a *Agent) Stop(reason string) {
	a.mu.Lock()
	if !a.running {
		if reason != "" {
			a.lastError = reason
		}
		a.mu.Unlock()
		a.publish()
		return
	}
	a.running = false
	a.busy = false
	if reason != "" {
		a.lastError = reason
	}
	stop := a.stopCh
	a.stopCh = nil
	a.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	slog.Info("sweep agent stopped", "reason", reason)
	a.publish()
}

// Destroy unconditionally disarms the scheduler. Used for teardown
// independent of logical state.
func (a *Agent) Destroy() {
	a.mu.Lock()
	stop := a.stopCh
	a.stopCh = nil
	a.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	slog.Debug("sweep agent destroyed")
}

// OnContextChange re-evaluates availability after a navigation or identity
// change. A running agent that lost its operating context stops with the
// reason; otherwise status is republished so observers see the change.
func (a *Agent) OnContextChange() {
	_, ok, reason := a.availability()

	a.mu.Lock()
	running := a.running
	a.mu.Unlock()

	if running && !ok {
		a.Stop(reason)
		return
	}
	a.publish()
}

// Running reports whether the scheduler is armed.
func (a *Agent) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// DeletedCount returns the number of confirmed deletions this activation.
func (a *Agent) DeletedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deletedCount
}

// UpdateConfig swaps the tunables live. The scan interval takes effect on the
// next timer re-arm; selector and retry changes apply to the next cycle.
func (a *Agent) UpdateConfig(cfg Config) {
	cfg.applyDefaults()
	a.mu.Lock()
	a.cfg = cfg
	a.limiter = newDeletionLimiter(cfg.MaxPerMinute)
	a.mu.Unlock()
	slog.Info("sweep config updated", "interval", cfg.ScanInterval)
}

// Status assembles the current snapshot.
func (a *Agent) Status() protocol.SweepStatus {
	id := normalizeIdentity(a.identity.Current())
	canRun := id != "" && a.view.Qualifies()

	a.mu.Lock()
	st := protocol.SweepStatus{
		Running:      a.running,
		Deleting:     a.busy,
		DeletedCount: a.deletedCount,
		Identity:     id,
		CanRun:       canRun,
	}
	lastError := a.lastError
	a.mu.Unlock()

	st.Message = statusMessage(st, lastError)
	return st
}

func (a *Agent) publish() {
	a.pub.Emit(protocol.EventStatus, a.Status())
}

// availability returns the normalized identity and whether the agent may
// operate right now; reason is set when it may not.
func (a *Agent) availability() (identity string, ok bool, reason string) {
	identity = normalizeIdentity(a.identity.Current())
	if identity == "" {
		return "", false, reasonNoIdentity
	}
	if !a.view.Qualifies() {
		return identity, false, reasonWrongView
	}
	return identity, true, ""
}

func (a *Agent) config() Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

func (a *Agent) interval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.ScanInterval
}

// loop is the poll scheduler: one recurring timer per activation. Each tick
// launches a scan cycle on its own goroutine; overlap between a slow cycle
// and the next tick is prevented by the busy flag, not by the scheduler.
func (a *Agent) loop(stop chan struct{}) {
	timer := a.clock.NewTimer(a.interval())
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.Chan():
			go a.scanOnce()
			timer.Reset(a.interval())
		}
	}
}

// scanOnce is one scan cycle. Only one candidate is processed per cycle; a
// found-nothing tick is the common case and stays cheap. All failures are
// contained here: nothing propagates past the cycle except through lastError
// and the log.
func (a *Agent) scanOnce() {
	a.mu.Lock()
	if !a.running || a.busy {
		a.mu.Unlock()
		return
	}
	limiter := a.limiter
	a.mu.Unlock()

	// Self-deactivate the moment the operating context disappears, without
	// waiting for an external signal.
	identity, ok, reason := a.availability()
	if !ok {
		a.Stop(reason)
		return
	}

	cfg := a.config()
	target := findTarget(a.doc, cfg.Selectors, identity)
	if target == nil {
		return
	}

	if limiter != nil && !limiter.Allow() {
		slog.Debug("sweep: deletion cap reached, skipping tick")
		return
	}

	a.mu.Lock()
	if !a.running || a.busy {
		a.mu.Unlock()
		return
	}
	a.busy = true
	// The stop channel identifies this activation. A Stop (or Stop+Start)
	// while the workflow is sleeping replaces it, and this cycle's result
	// must then be discarded: the counter, lastError and the busy flag all
	// belong to the new activation by then.
	token := a.stopCh
	a.mu.Unlock()
	a.publish()

	cycleID := uuid.NewString()[:8]
	permalink := permalinkOf(target, cfg.Selectors, identity)

	err := a.tracer.Span(context.Background(), "sweep.cycle", func(ctx context.Context) error {
		return a.runGuarded(ctx, target)
	})

	a.mu.Lock()
	if a.stopCh != token {
		a.mu.Unlock()
		slog.Debug("sweep: discarding result of a superseded cycle", "cycle", cycleID)
		return
	}
	if err != nil {
		a.lastError = err.Error()
		a.busy = false
		a.mu.Unlock()
		slog.Warn("sweep: deletion attempt failed", "cycle", cycleID, "error", err)
		a.publish()
		return
	}
	a.deletedCount++
	total := a.deletedCount
	// Guaranteed cleanup: the agent must never stay stuck busy.
	a.busy = false
	a.mu.Unlock()
	slog.Info("sweep: post deleted", "cycle", cycleID, "permalink", permalink, "total", total)

	if permalink == "" || !a.seen.IsDuplicate(permalink) {
		a.pub.Emit(protocol.EventDeleted, protocol.DeletedPost{
			CycleID:   cycleID,
			Permalink: permalink,
			Identity:  identity,
		})
	}
	a.publish()
}

// runGuarded converts a workflow panic into an error so it is contained at
// the cycle boundary like any other failure.
func (a *Agent) runGuarded(ctx context.Context, target dom.Element) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workflow panic: %v", r)
		}
	}()
	return a.runWorkflow(ctx, target)
}
