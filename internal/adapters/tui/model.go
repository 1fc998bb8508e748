// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"context"
	"fmt"
	"reflect"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shajanthanx/life-v2-sub002/internal/config"
	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/overlay"
)

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// Engine is what the board needs from the consistency engine.
type Engine interface {
	Today() domain.Day
	Calendar() domain.Calendar
	View(habit *domain.Habit) *domain.Habit
	Toggle(ctx context.Context, habit *domain.Habit, day domain.Day) (<-chan overlay.State, error)
	Overlay() *overlay.Store
}

// settledMsg carries the final state of one toggle.
type settledMsg struct {
	habit string
	state overlay.State
}

// habitsMsg carries a reloaded habit list.
type habitsMsg struct {
	habits []*domain.Habit
	err    error
}

const (
	minDays     = 3
	maxDays     = 14
	defaultDays = 7
)

// Model is the habit board: one row per habit, one column per recent day.
type Model struct {
	ctx    context.Context
	engine Engine
	reload func() ([]*domain.Habit, error)

	habits []*domain.Habit
	today  domain.Day
	pinned bool
	days   int
	row    int
	col    int // 0 is the oldest visible day

	inFlight int
	status   string
	failed   bool

	keys   keyMap
	help   help.Model
	theme  config.ThemeConfig
	width  int
	height int
}

// NewModel creates a board over habits. reload may be nil.
func NewModel(ctx context.Context, engine Engine, habits []*domain.Habit, reload func() ([]*domain.Habit, error), theme *config.ThemeConfig) Model {
	m := Model{
		ctx:    ctx,
		engine: engine,
		reload: reload,
		habits: habits,
		today:  engine.Today(),
		days:   defaultDays,
		keys:   defaultKeyMap(),
		help:   help.New(),
		theme:  resolveTheme(theme),
	}
	m.col = m.days - 1
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

// selectedDay is the day under the cursor.
func (m Model) selectedDay() domain.Day {
	return m.today.AddDays(m.col - (m.days - 1))
}

// window is the range of visible days.
func (m Model) window() domain.Window {
	return domain.Trailing(m.today, m.days)
}

func waitSettled(habit string, ch <-chan overlay.State) tea.Cmd {
	return func() tea.Msg {
		var last overlay.State
		for st := range ch {
			last = st
		}
		return settledMsg{habit: habit, state: last}
	}
}

func reloadCmd(reload func() ([]*domain.Habit, error)) tea.Cmd {
	return func() tea.Msg {
		habits, err := reload()
		return habitsMsg{habits: habits, err: err}
	}
}

// toggle flips the selected cell. The pending value is visible as soon as
// this returns; the write settles later through settledMsg.
func (m Model) toggle() (Model, tea.Cmd) {
	if len(m.habits) == 0 {
		return m, nil
	}
	habit := m.habits[m.row]
	day := m.selectedDay()
	if day.Before(m.engine.Calendar().CreatedOn(habit)) {
		m.status = fmt.Sprintf("%s did not exist on %s", habit.Name, day)
		m.failed = true
		return m, nil
	}

	ch, err := m.engine.Toggle(m.ctx, habit, day)
	if err != nil {
		m.status = err.Error()
		m.failed = true
		return m, nil
	}
	// Drain the pending state; the cmd below waits for the settled one.
	<-ch
	m.inFlight++
	m.status = ""
	m.failed = false
	return m, waitSettled(habit.Name, ch)
}

func (m Model) clampDays() int {
	if m.width == 0 {
		return m.days
	}
	n := (m.width - nameWidth - statsWidth) / cellWidth
	if n < minDays {
		n = minDays
	}
	if n > maxDays {
		n = maxDays
	}
	return n
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.row > 0 {
				m.row--
			}
		case key.Matches(msg, m.keys.Down):
			if m.row < len(m.habits)-1 {
				m.row++
			}
		case key.Matches(msg, m.keys.Left):
			if m.col > 0 {
				m.col--
			}
		case key.Matches(msg, m.keys.Right):
			if m.col < m.days-1 {
				m.col++
			}
		case key.Matches(msg, m.keys.Today):
			m.col = m.days - 1
		case key.Matches(msg, m.keys.Toggle):
			return m.toggle()
		case key.Matches(msg, m.keys.Refresh):
			if m.reload != nil {
				m.status = "refreshing"
				m.failed = false
				return m, reloadCmd(m.reload)
			}
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		days := m.clampDays()
		m.col += days - m.days
		if m.col < 0 {
			m.col = 0
		}
		m.days = days

	case settledMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		if msg.state.Err != nil {
			m.status = fmt.Sprintf("Couldn't save, reverted: %v", msg.state.Err)
			m.failed = true
		}

	case habitsMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.failed = true
			return m, nil
		}
		m.habits = msg.habits
		if !m.pinned {
			m.today = m.engine.Today()
		}
		if m.row >= len(m.habits) {
			m.row = max(len(m.habits)-1, 0)
		}
		m.status = ""
		m.failed = false
	}

	return m, nil
}

// EndingOn moves the newest visible column to day.
func (m Model) EndingOn(day domain.Day) Model {
	if !day.IsZero() {
		m.today, m.pinned = day, true
	}
	return m
}

// RunBoard launches the full-screen habit board. A zero end shows the
// week up to today.
func RunBoard(ctx context.Context, engine Engine, habits []*domain.Habit, reload func() ([]*domain.Habit, error), end domain.Day, theme *config.ThemeConfig) error {
	m := NewModel(ctx, engine, habits, reload, theme).EndingOn(end)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
