// Package services implements the application layer (use cases)
// following hexagonal architecture principles.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/metrics"
	"github.com/shajanthanx/life-v2-sub002/internal/overlay"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// EngineOptions configures an Engine. Zero values fall back to defaults.
type EngineOptions struct {
	Clock           domain.Clock
	Location        *time.Location
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
	StreakLimit     int
	BulkConcurrency int
	PersistTimeout  time.Duration
}

// Engine computes consistency figures and runs optimistic toggles against a
// record store.
type Engine struct {
	store   ports.RecordStore
	overlay *overlay.Store
	clock   domain.Clock
	loc     *time.Location
	logger  *zap.Logger
	metrics *metrics.Metrics

	streakLimit     int
	bulkConcurrency int
	persistTimeout  time.Duration
}

// NewEngine creates a new consistency engine.
func NewEngine(store ports.RecordStore, opts EngineOptions) *Engine {
	e := &Engine{
		store:           store,
		overlay:         overlay.New(),
		clock:           opts.Clock,
		loc:             opts.Location,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		streakLimit:     opts.StreakLimit,
		bulkConcurrency: opts.BulkConcurrency,
		persistTimeout:  opts.PersistTimeout,
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.streakLimit <= 0 {
		e.streakLimit = domain.DefaultStreakLimit
	}
	if e.bulkConcurrency <= 0 {
		e.bulkConcurrency = 8
	}
	if e.persistTimeout <= 0 {
		e.persistTimeout = 10 * time.Second
	}
	return e
}

// Overlay exposes the optimistic state container for subscription.
func (e *Engine) Overlay() *overlay.Store {
	return e.overlay
}

// Today is the current calendar day in the engine's zone.
func (e *Engine) Today() domain.Day {
	return e.clock.Today(e.loc)
}

// Location is the zone calendar days are evaluated in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Close discards the overlay. Writes still in flight resolve silently.
func (e *Engine) Close() {
	e.overlay.Close()
}

// View returns a copy of habit with optimistic values applied.
func (e *Engine) View(habit *domain.Habit) *domain.Habit {
	return e.overlay.Apply(habit)
}

// Load fetches the authoritative records of habit into it.
func (e *Engine) Load(ctx context.Context, habit *domain.Habit) error {
	start := time.Now()
	records, err := e.store.FetchRecords(ctx, habit.ID)
	e.metrics.ObservePersist("fetch", time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: fetch records for %s: %w", domain.ErrPersistence, habit.Name, err)
	}
	habit.Records = records
	e.checkDuplicates(habit)
	return nil
}

// Refresh reloads habit from the store and drops settled overlay entries the
// store now covers. Writes that settle while the fetch is running stay in the
// overlay until the next refresh.
func (e *Engine) Refresh(ctx context.Context, habit *domain.Habit) error {
	mark := e.overlay.Mark()
	if err := e.Load(ctx, habit); err != nil {
		return err
	}
	if n := e.overlay.Forget(habit.ID, mark); n > 0 {
		e.logger.Debug("overlay reconciled", zap.String("habit_id", habit.ID), zap.Int("dropped", n))
	}
	return nil
}

func (e *Engine) checkDuplicates(habit *domain.Habit) {
	for _, day := range domain.DuplicateDays(habit.Records) {
		e.logger.Warn("duplicate same-day records, first match wins",
			zap.String("habit_id", habit.ID),
			zap.String("habit", habit.Name),
			zap.Stringer("day", day),
			zap.Error(domain.ErrDuplicateRecord),
		)
	}
}

// Calendar is the zone and streak limit every streak figure is computed with.
func (e *Engine) Calendar() domain.Calendar {
	return domain.Calendar{Location: e.loc, StreakLimit: e.streakLimit}
}

func (e *Engine) refDay(ref *domain.Day) domain.Day {
	if ref != nil {
		return *ref
	}
	return e.Today()
}

// CurrentStreak counts consecutive completed days ending at ref, or today
// when ref is nil. Optimistic values count.
func (e *Engine) CurrentStreak(habit *domain.Habit, ref *domain.Day) int {
	return e.View(habit).CurrentStreak(e.refDay(ref), e.Calendar())
}

// WeekStreak counts consecutive ISO weeks with a completion, ending at the
// week of ref (today when nil).
func (e *Engine) WeekStreak(habit *domain.Habit, ref *domain.Day) int {
	return e.View(habit).WeekStreak(e.refDay(ref), e.Calendar())
}

// Summarize is the dashboard summary of habit as of today.
func (e *Engine) Summarize(habit *domain.Habit) domain.Summary {
	return domain.Summarize(e.View(habit), e.Today(), e.Calendar())
}

// LongestStreak returns the longest run of completed days in the history.
func (e *Engine) LongestStreak(habit *domain.Habit) int {
	return domain.LongestStreak(e.View(habit).Records)
}

// CompletionRate returns the completion percentage over [start, end].
func (e *Engine) CompletionRate(habit *domain.Habit, start, end domain.Day) (float64, error) {
	w, err := domain.NewWindow(start, end)
	if err != nil {
		return 0, err
	}
	return e.View(habit).CompletionRate(w), nil
}

// Toggle flips habit's completion on day. The returned channel already holds
// the pending state; it then yields exactly one settled state and is closed.
// A settled state with a non-nil Err means the write failed and the display
// was rolled back.
func (e *Engine) Toggle(ctx context.Context, habit *domain.Habit, day domain.Day) (<-chan overlay.State, error) {
	pending, err := e.begin(habit, day)
	if err != nil {
		return nil, err
	}

	ch := make(chan overlay.State, 2)
	ch <- pending
	go func() {
		defer close(ch)
		st := e.persist(ctx, habit, pending)
		e.metrics.CountToggle(st.Err)
		ch <- st
	}()
	return ch, nil
}

// ToggleWait toggles and blocks until the write settles.
func (e *Engine) ToggleWait(ctx context.Context, habit *domain.Habit, day domain.Day) domain.ToggleResult {
	ch, err := e.Toggle(ctx, habit, day)
	if err != nil {
		e.metrics.CountToggle(err)
		return domain.ToggleResult{HabitID: habit.ID, HabitName: habit.Name, Day: day, Err: err}
	}

	var last overlay.State
	for st := range ch {
		last = st
	}
	return domain.ToggleResult{
		HabitID:   habit.ID,
		HabitName: habit.Name,
		Day:       day,
		Value:     last.Value,
		Err:       last.Err,
	}
}

// BulkToggle toggles every (habit, day) pair. All pairs turn pending before
// any write starts; writes then run with bounded concurrency. One result is
// returned per pair, in habits-major order.
func (e *Engine) BulkToggle(ctx context.Context, habits []*domain.Habit, days []domain.Day) []domain.ToggleResult {
	habits = uniqueHabits(habits)
	days = uniqueDays(days)

	results := make([]domain.ToggleResult, len(habits)*len(days))
	pending := make([]overlay.State, len(results))
	begun := make([]bool, len(results))

	for i, habit := range habits {
		for j, day := range days {
			idx := i*len(days) + j
			results[idx] = domain.ToggleResult{HabitID: habit.ID, HabitName: habit.Name, Day: day}
			st, err := e.begin(habit, day)
			if err != nil {
				results[idx].Err = err
				continue
			}
			pending[idx] = st
			begun[idx] = true
		}
	}

	var g errgroup.Group
	g.SetLimit(e.bulkConcurrency)
	for i, habit := range habits {
		for j := range days {
			idx := i*len(days) + j
			if !begun[idx] {
				e.metrics.CountBulkPair(results[idx].Err)
				continue
			}
			g.Go(func() error {
				st := e.persist(ctx, habit, pending[idx])
				results[idx].Value = st.Value
				results[idx].Err = st.Err
				e.metrics.CountBulkPair(st.Err)
				return nil
			})
		}
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.logger.Info("bulk toggle finished",
		zap.Int("pairs", len(results)),
		zap.Int("failed", failed),
	)
	return results
}

func (e *Engine) begin(habit *domain.Habit, day domain.Day) (overlay.State, error) {
	key := overlay.Key{HabitID: habit.ID, Day: day}
	st, err := e.overlay.Begin(key, habit.CompletedOn(day))
	if err != nil {
		return overlay.State{}, &domain.ToggleError{HabitID: habit.ID, HabitName: habit.Name, Day: day, Err: err}
	}
	return st, nil
}

// persist writes the pending intent and resolves it in the overlay. The
// returned state describes this write's outcome even when a later toggle
// has superseded it or the overlay has been closed.
func (e *Engine) persist(ctx context.Context, habit *domain.Habit, pending overlay.State) overlay.State {
	key := pending.Key
	pctx, cancel := context.WithTimeout(ctx, e.persistTimeout)
	defer cancel()

	start := time.Now()
	rec, err := e.store.UpsertRecord(pctx, habit.ID, key.Day, pending.Value, nil)
	e.metrics.ObservePersist("upsert", time.Since(start))
	if err == nil && rec == nil {
		err = errors.New("store returned no record")
	}

	if err != nil {
		terr := &domain.ToggleError{
			HabitID:   habit.ID,
			HabitName: habit.Name,
			Day:       key.Day,
			Err:       fmt.Errorf("%w: %w", domain.ErrPersistence, err),
		}
		st, current := e.overlay.Fail(key, pending.Seq, terr)
		if current {
			e.metrics.CountRollback()
			e.logger.Warn("toggle failed, rolled back",
				zap.String("habit", habit.Name),
				zap.Stringer("day", key.Day),
				zap.Bool("restored", st.Value),
				zap.Error(err),
			)
			return st
		}
		e.logger.Debug("superseded toggle failed",
			zap.String("habit", habit.Name),
			zap.Stringer("day", key.Day),
			zap.Uint64("seq", pending.Seq),
			zap.Error(err),
		)
		e.metrics.CountStale()
		return overlay.State{Key: key, Phase: overlay.Settled, Value: !pending.Value, Err: terr, Seq: pending.Seq}
	}

	st, current := e.overlay.Confirm(key, pending.Seq, rec)
	if current {
		e.logger.Debug("toggle settled",
			zap.String("habit", habit.Name),
			zap.Stringer("day", key.Day),
			zap.Bool("value", rec.IsCompleted),
		)
		return st
	}
	e.metrics.CountStale()
	return overlay.State{Key: key, Phase: overlay.Settled, Value: rec.IsCompleted, Record: rec, Seq: pending.Seq}
}

func uniqueHabits(habits []*domain.Habit) []*domain.Habit {
	seen := make(map[string]struct{}, len(habits))
	out := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		out = append(out, h)
	}
	return out
}

func uniqueDays(days []domain.Day) []domain.Day {
	seen := make(map[domain.Day]struct{}, len(days))
	out := make([]domain.Day, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
