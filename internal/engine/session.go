package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/probably-a-wizard/internal/catalog"
	"github.com/talgya/probably-a-wizard/internal/economy"
	"github.com/talgya/probably-a-wizard/internal/metrics"
	"github.com/talgya/probably-a-wizard/internal/tuning"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Saves is the versioned snapshot store a session persists through.
type Saves interface {
	Load(ctx context.Context) (economy.Snapshot, bool)
	Save(ctx context.Context, snap economy.Snapshot) error
	Clear(ctx context.Context) error
}

// Options configures Open. Zero values take defaults.
type Options struct {
	Tuning  tuning.Tuning
	Metrics *metrics.Recorder
	Now     func() time.Time
}

// EventKind classifies what subscribers receive.
type EventKind string

const (
	EventNotification EventKind = "notification"
	EventTick         EventKind = "tick"
	EventReset        EventKind = "reset"
)

// Event is pushed to subscribers after the state lock is released.
type Event struct {
	Kind         EventKind                    `json:"kind"`
	Tick         uint64                       `json:"tick,omitempty"`
	Notification *economy.Notification        `json:"notification,omitempty"`
	Gains        map[catalog.Resource]float64 `json:"gains,omitempty"`
}

// Status is a point-in-time summary of a running session.
type Status struct {
	SessionID     string    `json:"sessionId"`
	StartedAt     time.Time `json:"startedAt"`
	Tick          uint64    `json:"tick"`
	Speed         float64   `json:"speed"`
	Running       bool      `json:"running"`
	Built         int       `json:"built"`
	Unlocked      int       `json:"unlocked"`
	Discovered    int       `json:"discovered"`
	Housed        int       `json:"housed"`
	Capacity      int       `json:"capacity"`
	Notifications int       `json:"notifications"`
}

type pendingSave struct {
	gen  uint64
	snap economy.Snapshot
}

// Session owns one game: the state, its production accumulators, the clock
// and the background saver. Every action and every tick runs entirely under
// the session lock, so no reader ever sees a half-applied change.
type Session struct {
	ID        string
	StartedAt time.Time

	saves   Saves
	tune    tuning.Tuning
	metrics *metrics.Recorder
	now     func() time.Time
	clock   *Clock

	mu        sync.Mutex
	state     *economy.State
	prod      *Production
	closed    bool
	published map[string]bool
	sinceLast map[catalog.Resource]float64

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	// saveMu orders snapshot writes against Reset; gen invalidates queued
	// snapshots taken before a reset.
	saveMu    sync.Mutex
	gen       atomic.Uint64
	queue     chan pendingSave
	saverDone chan struct{}
}

// Open loads the saved game, or starts a new one, credits offline progress
// and starts the background saver. The clock is not started; call Start.
func Open(ctx context.Context, saves Saves, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tuning.Validate() != nil {
		opts.Tuning = tuning.Default()
	}

	s := &Session{
		ID:        uuid.NewString(),
		saves:     saves,
		tune:      opts.Tuning,
		metrics:   opts.Metrics,
		now:       opts.Now,
		prod:      NewProduction(opts.Tuning.ConversionSecondsPerManager),
		published: make(map[string]bool),
		sinceLast: make(map[catalog.Resource]float64),
		subs:      make(map[int]func(Event)),
		queue:     make(chan pendingSave, 1),
		saverDone: make(chan struct{}),
	}
	s.StartedAt = s.now()

	snap, found := saves.Load(ctx)
	if !found {
		s.state = economy.New()
		slog.Info("starting new game", "session", s.ID)
	} else {
		s.state = economy.Restore(snap)
		elapsed := OfflineElapsed(snap.LastActive(), s.StartedAt, s.tune.OfflineCap())
		s.metrics.Offline(elapsed)
		summary, gained := CatchUp(s.state, snap.LastActive(), s.StartedAt, s.tune.OfflineCap())
		if gained {
			for r, q := range summary.Gains {
				s.metrics.Produced(r.String(), "offline", q)
			}
		}
		slog.Info("game restored", "session", s.ID,
			"built", len(s.state.BuiltBuildings()), "unlocked", len(s.state.Unlocked()))
	}

	s.clock = NewClock(s.tune.TickInterval())
	s.clock.ReportEvery = s.tune.ReportEveryTicks
	s.clock.OnTick = s.tick
	s.clock.OnReport = s.report

	go s.runSaver()

	s.mu.Lock()
	for _, n := range s.state.PendingNotifications() {
		s.published[n.ID] = true
	}
	if found {
		s.enqueueSaveLocked()
	}
	s.mu.Unlock()
	return s
}

// Clock returns the session clock.
func (s *Session) Clock() *Clock { return s.clock }

// Start runs the clock on its own goroutine.
func (s *Session) Start() {
	go s.clock.Run()
}

// Close stops the clock, writes a final snapshot and waits for the saver to
// drain or ctx to expire.
func (s *Session) Close(ctx context.Context) error {
	s.clock.Stop()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.enqueueSaveLocked()
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	select {
	case <-s.saverDone:
		slog.Info("session closed", "session", s.ID, "tick", s.clock.Tick())
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for final save: %w", ctx.Err())
	}
}

// Do runs a state-changing action under the session lock. Successful actions
// schedule a save.
func (s *Session) Do(action string, fn func(st *economy.State) economy.Result) economy.Result {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return economy.Result{Reason: "Session closed."}
	}
	res := fn(s.state)
	if res.OK {
		s.enqueueSaveLocked()
	}
	events := s.collectLocked()
	s.mu.Unlock()

	s.metrics.Action(action, res.OK)
	if !res.OK {
		slog.Debug("action rejected", "action", action, "reason", res.Reason)
	}
	s.publish(events)
	return res
}

// Combine tries a manager pairing. Only a new discovery schedules a save.
func (s *Session) Combine(a, b catalog.ManagerID) economy.CombineResult {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return economy.CombineResult{}
	}
	res := s.state.AttemptCombine(a, b)
	if res.OK && !res.AlreadyKnown {
		s.enqueueSaveLocked()
		slog.Info("manager discovered", "manager", res.Discovered.String(), "from", catalog.CombinationKey(a, b))
	}
	s.mu.Unlock()

	s.metrics.Action("combine", res.OK)
	return res
}

// View calls fn with the state under the session lock. fn must not keep the
// pointer or call mutating methods.
func (s *Session) View(fn func(st *economy.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Snapshot serialises the current state.
func (s *Session) Snapshot() economy.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot(s.now())
}

// TakeNotifications consumes every pending notification.
func (s *Session) TakeNotifications() []economy.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.TakeNotifications()
	for _, n := range out {
		delete(s.published, n.ID)
	}
	return out
}

// DismissNotification drops one pending notification.
func (s *Session) DismissNotification(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.published, id)
	return s.state.DismissNotification(id)
}

// Reset deletes the saved game and returns to a fresh state. The in-memory
// reset happens even when clearing storage fails.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.gen.Add(1)
	select {
	case <-s.queue:
	default:
	}

	s.saveMu.Lock()
	err := s.saves.Clear(ctx)
	s.saveMu.Unlock()

	s.state = economy.New()
	s.prod.Reset()
	clear(s.published)
	clear(s.sinceLast)
	s.mu.Unlock()

	s.metrics.Action("reset", err == nil)
	s.publish([]Event{{Kind: EventReset, Tick: s.clock.Tick()}})
	if err != nil {
		return fmt.Errorf("clear saves: %w", err)
	}
	slog.Info("game reset", "session", s.ID)
	return nil
}

// Status summarises the session.
func (s *Session) Status() Status {
	st := Status{
		SessionID: s.ID,
		StartedAt: s.StartedAt,
		Tick:      s.clock.Tick(),
		Speed:     s.clock.Speed(),
		Running:   s.clock.Running(),
	}
	s.View(func(state *economy.State) {
		st.Built = len(state.BuiltBuildings())
		st.Unlocked = len(state.Unlocked())
		st.Discovered = len(state.Discovered())
		st.Housed = state.HousedPeople()
		st.Capacity = state.HousingCapacity()
		st.Notifications = len(state.PendingNotifications())
	})
	return st
}

// Subscribe registers fn for session events. fn runs on the goroutine that
// produced the event and must not block. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	s.subMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, e := range events {
		for _, fn := range subs {
			fn(e)
		}
	}
}

// collectLocked turns notifications not yet pushed into events.
func (s *Session) collectLocked() []Event {
	var events []Event
	for _, n := range s.state.PendingNotifications() {
		if s.published[n.ID] {
			continue
		}
		s.published[n.ID] = true
		events = append(events, Event{Kind: EventNotification, Notification: &n})
	}
	return events
}

func (s *Session) tick(tick uint64, dt float64) {
	start := time.Now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	rep := s.prod.Advance(s.state, dt)
	if !rep.Empty() {
		for r, q := range rep.Gains {
			s.sinceLast[r] += q
		}
		s.enqueueSaveLocked()
	}
	events := s.collectLocked()
	s.mu.Unlock()

	s.metrics.Tick(time.Since(start))
	for r, q := range rep.Gains {
		s.metrics.Produced(r.String(), "tick", q)
	}
	for b, n := range rep.Conversions {
		s.metrics.Converted(b.String(), n)
	}
	s.publish(events)
}

func (s *Session) report(tick uint64) {
	s.mu.Lock()
	gains := make(map[catalog.Resource]float64, len(s.sinceLast))
	for r, q := range s.sinceLast {
		gains[r] = q
	}
	clear(s.sinceLast)
	s.mu.Unlock()

	slog.Debug("tick report", "tick", tick, "resources_gained", len(gains))
	s.publish([]Event{{Kind: EventTick, Tick: tick, Gains: gains}})
}

// enqueueSaveLocked hands the saver the latest snapshot, replacing any
// snapshot it has not picked up yet.
func (s *Session) enqueueSaveLocked() {
	if s.closed {
		return
	}
	item := pendingSave{gen: s.gen.Load(), snap: s.state.Snapshot(s.now())}
	select {
	case s.queue <- item:
		return
	default:
	}
	select {
	case <-s.queue:
	default:
	}
	select {
	case s.queue <- item:
	default:
	}
}

func (s *Session) runSaver() {
	defer close(s.saverDone)
	for item := range s.queue {
		s.saveMu.Lock()
		if item.gen == s.gen.Load() {
			err := s.saves.Save(context.Background(), item.snap)
			s.metrics.Save(err)
			if err != nil {
				slog.Error("save failed", "session", s.ID, "error", err)
			}
		}
		s.saveMu.Unlock()
	}
}
