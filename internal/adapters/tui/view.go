package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/overlay"
)

const (
	nameWidth  = 20
	cellWidth  = 3
	statsWidth = 18
)

type styles struct {
	title   lipgloss.Style
	done    lipgloss.Style
	pending lipgloss.Style
	missed  lipgloss.Style
	help    lipgloss.Style
	err     lipgloss.Style
	cursor  lipgloss.Style
}

func (m Model) styles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle)),
		done:    lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorDone)),
		pending: lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorPending)),
		missed:  lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorMissed)),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp)),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorError)),
		cursor:  lipgloss.NewStyle().Reverse(true),
	}
}

// cell renders one (habit, day) slot.
func (m Model) cell(st styles, view *domain.Habit, day domain.Day, selected bool) string {
	icon, style := m.theme.IconMissed, st.missed
	if view.CompletedOn(day) {
		icon, style = m.theme.IconDone, st.done
	}
	if s, ok := m.engine.Overlay().Lookup(overlay.Key{HabitID: view.ID, Day: day}); ok && s.Phase == overlay.Pending {
		icon, style = m.theme.IconPending, st.pending
	}
	if day.Before(m.engine.Calendar().CreatedOn(view)) {
		icon, style = " ", st.help
	}
	if selected {
		style = style.Inherit(st.cursor)
	}
	return " " + style.Render(icon) + " "
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:n-1]
	}
	return string(r) + "…"
}

// View renders the TUI.
func (m Model) View() string {
	st := m.styles()
	var b strings.Builder

	b.WriteString(st.title.Render(fmt.Sprintf("Habits · %s", m.today.Time(m.engine.Calendar().Location).Format("Mon Jan 2"))))
	b.WriteString("\n\n")

	if len(m.habits) == 0 {
		b.WriteString(st.help.Render("No habits yet. Add one with: life habit add <name>"))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	// Header: weekday initials, today last.
	header := strings.Repeat(" ", nameWidth)
	w := m.window()
	w.Each(func(d domain.Day) {
		label := d.Weekday().String()[:2]
		if d == m.today {
			label = st.title.Render(label)
		}
		header += " " + label
	})
	header += fmt.Sprintf("  %6s %6s", "streak", "7d")
	b.WriteString(st.help.Render(header))
	b.WriteString("\n")

	for i, habit := range m.habits {
		view := m.engine.View(habit)
		name := fmt.Sprintf("%-*s", nameWidth, truncate(habit.Name, nameWidth-2))
		if i == m.row {
			name = st.title.Render(name)
		}
		b.WriteString(name)

		col := 0
		w.Each(func(d domain.Day) {
			b.WriteString(m.cell(st, view, d, i == m.row && col == m.col))
			col++
		})

		sum := domain.Summarize(view, m.today, m.engine.Calendar())
		streak := sum.CurrentStreak
		unit := "d"
		if habit.Frequency == domain.FrequencyWeekly {
			streak, unit = sum.WeekStreak, "w"
		}
		b.WriteString(fmt.Sprintf(" %6s %5.1f%%", fmt.Sprintf("%d%s", streak, unit), sum.Rate7))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.status != "" && m.failed:
		b.WriteString(st.err.Render(m.status))
	case m.status != "":
		b.WriteString(st.help.Render(m.status))
	case m.inFlight > 0:
		b.WriteString(st.pending.Render(fmt.Sprintf("saving %d…", m.inFlight)))
	default:
		b.WriteString(st.help.Render(fmt.Sprintf("%s  %s", m.habits[m.row].Name, m.selectedDay())))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}
