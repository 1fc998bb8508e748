// Package overlay holds optimistic completion values for (habit, day) pairs
// while their writes are in flight.
//
// Every toggle is issued a sequence number. Only the resolution of the most
// recently issued toggle for a key may change what is displayed; earlier
// resolutions update the settled bookkeeping silently. The backend may still
// apply concurrent writes in a different order than they were issued, in which
// case Refresh on the engine reconciles the two.
package overlay

import (
	"errors"
	"sync"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

// ErrClosed is returned when a toggle is started on a closed store.
var ErrClosed = errors.New("overlay store is closed")

// Phase is the lifecycle position of a key.
type Phase int

const (
	Settled Phase = iota
	Pending
)

func (p Phase) String() string {
	if p == Pending {
		return "pending"
	}
	return "settled"
}

// Key identifies one habit on one calendar day.
type Key struct {
	HabitID string
	Day     domain.Day
}

// State is a snapshot of one key as seen by the UI.
type State struct {
	Key    Key
	Phase  Phase
	Value  bool
	Record *domain.HabitRecord
	Err    error
	Seq    uint64
}

type entry struct {
	display    bool
	pending    bool
	latestSeq  uint64
	settled    bool
	settledSeq uint64
	resolvedAt uint64
	record     *domain.HabitRecord
}

func (e *entry) state(key Key) State {
	s := State{Key: key, Value: e.display, Record: e.record, Seq: e.latestSeq}
	if e.pending {
		s.Phase = Pending
	}
	return s
}

// Store is the single owner of overlay state for a session.
type Store struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	seq      uint64
	resolved uint64
	subs     map[int]func(State)
	nextSub  int
	closed   bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[Key]*entry),
		subs:    make(map[int]func(State)),
	}
}

// Subscribe registers fn to receive every displayed state change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Lookup returns the overlay state of key, if any.
func (s *Store) Lookup(key Key) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return State{}, false
	}
	return e.state(key), true
}

// Begin flips the displayed value of key and marks it pending. base is the
// value the caller sees when the store has no entry for key yet.
// The pending state is published before Begin returns.
func (s *Store) Begin(key Key, base bool) (State, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return State{}, ErrClosed
	}

	e, ok := s.entries[key]
	if !ok {
		e = &entry{display: base, settled: base}
		s.entries[key] = e
	}
	s.seq++
	e.latestSeq = s.seq
	e.pending = true
	e.display = !e.display

	st := e.state(key)
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, st)
	return st, nil
}

// Confirm records a successful write for the toggle numbered seq.
// It reports whether the displayed state changed.
func (s *Store) Confirm(key Key, seq uint64, rec *domain.HabitRecord) (State, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return State{}, false
	}
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return State{}, false
	}

	s.resolved++
	e.resolvedAt = s.resolved

	if seq > e.settledSeq {
		e.settled = rec.IsCompleted
		e.settledSeq = seq
		e.record = rec
	}
	if seq != e.latestSeq {
		st := State{Key: key, Phase: Settled, Value: rec.IsCompleted, Record: rec, Seq: seq}
		s.mu.Unlock()
		return st, false
	}

	e.pending = false
	e.display = rec.IsCompleted
	st := e.state(key)
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, st)
	return st, true
}

// Fail records a failed write for the toggle numbered seq. When seq is the
// latest toggle the display rolls back to the last settled value.
func (s *Store) Fail(key Key, seq uint64, err error) (State, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return State{}, false
	}
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return State{}, false
	}

	s.resolved++
	e.resolvedAt = s.resolved

	if seq != e.latestSeq {
		st := State{Key: key, Phase: Settled, Value: e.settled, Err: err, Seq: seq}
		s.mu.Unlock()
		return st, false
	}

	e.pending = false
	e.display = e.settled
	st := e.state(key)
	st.Err = err
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, st)
	return st, true
}

// Apply returns a copy of h with every overlay value for h substituted into
// its records.
func (s *Store) Apply(h *domain.Habit) *domain.Habit {
	view := h.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if key.HabitID != h.ID {
			continue
		}
		if r, ok := view.RecordFor(key.Day); ok {
			r.IsCompleted = e.display
			continue
		}
		rec := domain.HabitRecord{HabitID: h.ID, Date: key.Day, IsCompleted: e.display}
		if e.record != nil {
			rec = *e.record
			rec.IsCompleted = e.display
		}
		view.Records = append(view.Records, rec)
	}
	return view
}

// Mark returns a position in the store's resolution history. Entries
// resolved at or before the mark had their writes finish before Mark
// returned.
func (s *Store) Mark() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// Forget drops settled entries for habitID that resolved at or before mark.
// Pending entries and entries resolved after mark are kept; a read taken
// after mark may not contain their writes.
func (s *Store) Forget(habitID string, mark uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, e := range s.entries {
		if key.HabitID == habitID && !e.pending && e.resolvedAt <= mark {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

// PendingCount returns the number of keys awaiting resolution.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.entries {
		if e.pending {
			n++
		}
	}
	return n
}

// Close discards all state. Resolutions arriving afterwards are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.entries = make(map[Key]*entry)
	s.subs = make(map[int]func(State))
}

func (s *Store) subscribers() []func(State) {
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
