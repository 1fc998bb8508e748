package overlay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
)

var testKey = Key{HabitID: "h1", Day: domain.NewDay(2024, 1, 14)}

func record(value bool) *domain.HabitRecord {
	return &domain.HabitRecord{ID: "r1", HabitID: testKey.HabitID, Date: testKey.Day, IsCompleted: value}
}

func TestBegin_PublishesPendingSynchronously(t *testing.T) {
	s := New()
	var seen []State
	s.Subscribe(func(st State) { seen = append(seen, st) })

	st, err := s.Begin(testKey, false)
	require.NoError(t, err)

	assert.Equal(t, Pending, st.Phase)
	assert.True(t, st.Value)
	require.Len(t, seen, 1)
	assert.Equal(t, st, seen[0])

	got, ok := s.Lookup(testKey)
	require.True(t, ok)
	assert.Equal(t, Pending, got.Phase)
}

func TestConfirm_Settles(t *testing.T) {
	s := New()
	st, _ := s.Begin(testKey, false)

	settled, changed := s.Confirm(testKey, st.Seq, record(true))
	assert.True(t, changed)
	assert.Equal(t, Settled, settled.Phase)
	assert.True(t, settled.Value)
	assert.Equal(t, 0, s.PendingCount())
}

func TestFail_RollsBack(t *testing.T) {
	s := New()
	st, _ := s.Begin(testKey, true)
	assert.False(t, st.Value)

	boom := errors.New("boom")
	rolled, changed := s.Fail(testKey, st.Seq, boom)
	assert.True(t, changed)
	assert.Equal(t, Settled, rolled.Phase)
	assert.True(t, rolled.Value)
	assert.ErrorIs(t, rolled.Err, boom)
}

func TestRapidToggles_OutOfOrderResolution(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(s *Store, first, second State)
		want    bool
	}{
		{
			name: "second resolves first",
			resolve: func(s *Store, first, second State) {
				s.Confirm(testKey, second.Seq, record(false))
				s.Confirm(testKey, first.Seq, record(true))
			},
			want: false,
		},
		{
			name: "in order",
			resolve: func(s *Store, first, second State) {
				s.Confirm(testKey, first.Seq, record(true))
				s.Confirm(testKey, second.Seq, record(false))
			},
			want: false,
		},
		{
			name: "latest fails after earlier confirmed",
			resolve: func(s *Store, first, second State) {
				s.Confirm(testKey, first.Seq, record(true))
				s.Fail(testKey, second.Seq, errors.New("boom"))
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			var displayed []bool
			s.Subscribe(func(st State) { displayed = append(displayed, st.Value) })

			first, _ := s.Begin(testKey, false)
			second, _ := s.Begin(testKey, false)
			assert.False(t, second.Value)

			tt.resolve(s, first, second)

			got, _ := s.Lookup(testKey)
			assert.Equal(t, Settled, got.Phase)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.want, displayed[len(displayed)-1])
		})
	}
}

func TestStaleResolution_DoesNotFlipDisplay(t *testing.T) {
	s := New()
	first, _ := s.Begin(testKey, false)
	second, _ := s.Begin(testKey, false)

	var flips int
	s.Subscribe(func(State) { flips++ })

	_, changed := s.Confirm(testKey, first.Seq, record(true))
	assert.False(t, changed)
	assert.Equal(t, 0, flips)

	got, _ := s.Lookup(testKey)
	assert.Equal(t, Pending, got.Phase)
	assert.False(t, got.Value)

	s.Confirm(testKey, second.Seq, record(false))
	assert.Equal(t, 1, flips)
}

func TestClose_IgnoresLateResolution(t *testing.T) {
	s := New()
	st, _ := s.Begin(testKey, false)
	s.Close()

	assert.NotPanics(t, func() {
		_, changed := s.Confirm(testKey, st.Seq, record(true))
		assert.False(t, changed)
		_, changed = s.Fail(testKey, st.Seq, errors.New("late"))
		assert.False(t, changed)
	})

	_, err := s.Begin(testKey, false)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestUnsubscribe(t *testing.T) {
	s := New()
	calls := 0
	unsubscribe := s.Subscribe(func(State) { calls++ })

	s.Begin(testKey, false)
	unsubscribe()
	s.Begin(testKey, false)

	assert.Equal(t, 1, calls)
}

func TestApply(t *testing.T) {
	s := New()
	h := &domain.Habit{
		ID: "h1",
		Records: []domain.HabitRecord{
			{HabitID: "h1", Date: domain.NewDay(2024, 1, 13), IsCompleted: true},
		},
	}

	s.Begin(Key{HabitID: "h1", Day: domain.NewDay(2024, 1, 13)}, true)
	s.Begin(testKey, false)
	s.Begin(Key{HabitID: "other", Day: testKey.Day}, false)

	view := s.Apply(h)
	assert.False(t, view.CompletedOn(domain.NewDay(2024, 1, 13)))
	assert.True(t, view.CompletedOn(testKey.Day))
	assert.Len(t, view.Records, 2)

	assert.True(t, h.CompletedOn(domain.NewDay(2024, 1, 13)), "original must not change")
	assert.Len(t, h.Records, 1)
}

func TestForget_KeepsPending(t *testing.T) {
	s := New()
	settledKey := Key{HabitID: "h1", Day: domain.NewDay(2024, 1, 13)}
	st, _ := s.Begin(settledKey, false)
	s.Confirm(settledKey, st.Seq, record(true))
	s.Begin(testKey, false)

	assert.Equal(t, 1, s.Forget("h1", s.Mark()))
	_, ok := s.Lookup(settledKey)
	assert.False(t, ok)
	_, ok = s.Lookup(testKey)
	assert.True(t, ok)
}

func TestForget_KeepsEntriesResolvedAfterMark(t *testing.T) {
	s := New()
	early := Key{HabitID: "h1", Day: domain.NewDay(2024, 1, 12)}
	st, _ := s.Begin(early, false)
	s.Confirm(early, st.Seq, record(true))

	// testKey is in flight when the mark is taken and settles afterwards.
	late, _ := s.Begin(testKey, false)
	mark := s.Mark()
	s.Confirm(testKey, late.Seq, record(true))

	assert.Equal(t, 1, s.Forget("h1", mark))
	_, ok := s.Lookup(early)
	assert.False(t, ok)
	got, ok := s.Lookup(testKey)
	require.True(t, ok, "a write that settled after the mark must stay in the overlay")
	assert.True(t, got.Value)

	assert.Equal(t, 1, s.Forget("h1", s.Mark()))
}

func TestForget_FailureAfterMarkKept(t *testing.T) {
	s := New()
	st, _ := s.Begin(testKey, true)
	mark := s.Mark()
	s.Fail(testKey, st.Seq, errors.New("boom"))

	assert.Equal(t, 0, s.Forget("h1", mark))
}
