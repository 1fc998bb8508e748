package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shajanthanx/life-v2-sub002/internal/config"
)

// Choice is one option of a one-question menu.
type Choice struct {
	Label string
	Hint  string
}

// Answer is the outcome of a prompt. Index is set by RunChoice, Text by
// RunPrompt.
type Answer struct {
	Index   int
	Text    string
	Aborted bool
}

// promptKeys reuses the board bindings; enter always confirms here.
type promptKeys struct {
	up, down, confirm, cancel key.Binding
}

func newPromptKeys() promptKeys {
	board := defaultKeyMap()
	return promptKeys{
		up:      key.NewBinding(key.WithKeys(append(board.Up.Keys(), "shift+tab")...)),
		down:    key.NewBinding(key.WithKeys(append(board.Down.Keys(), "tab")...)),
		confirm: key.NewBinding(key.WithKeys("enter")),
		cancel:  key.NewBinding(key.WithKeys("esc", "ctrl+c")),
	}
}

type choiceModel struct {
	question string
	choices  []Choice
	cursor   int
	keys     promptKeys
	theme    config.ThemeConfig
	answer   Answer
	done     bool
}

func newChoiceModel(question string, choices []Choice, initial int, theme *config.ThemeConfig) choiceModel {
	if initial < 0 || initial >= len(choices) {
		initial = 0
	}
	return choiceModel{
		question: question,
		choices:  choices,
		cursor:   initial,
		keys:     newPromptKeys(),
		theme:    resolveTheme(theme),
	}
}

func (m choiceModel) Init() tea.Cmd { return nil }

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.cancel):
		m.answer, m.done = Answer{Aborted: true}, true
		return m, tea.Quit
	case key.Matches(km, m.keys.confirm):
		m.answer, m.done = Answer{Index: m.cursor}, true
		return m, tea.Quit
	case key.Matches(km, m.keys.up):
		m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
	case key.Matches(km, m.keys.down):
		m.cursor = (m.cursor + 1) % len(m.choices)
	}
	return m, nil
}

func (m choiceModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	on := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorDone))
	off := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	width := 0
	for _, c := range m.choices {
		width = max(width, lipgloss.Width(c.Label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title.Render(m.question))
	for i, c := range m.choices {
		icon, style := m.theme.IconMissed, off
		if i == m.cursor {
			icon, style = m.theme.IconDone, on
		}
		fmt.Fprintf(&b, "  %s\n", style.Render(fmt.Sprintf("%s %-*s  %s", icon, width, c.Label, c.Hint)))
	}
	fmt.Fprintf(&b, "\n  %s\n", off.Render("↑/↓ move · enter choose · esc cancel"))
	return b.String()
}

type promptModel struct {
	question string
	input    textinput.Model
	keys     promptKeys
	theme    config.ThemeConfig
	err      error
	answer   Answer
	done     bool
}

func newPromptModel(question, placeholder string, validate func(string) error, theme *config.ThemeConfig) promptModel {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 80
	in.Width = 40
	in.Validate = validate
	in.Focus()
	return promptModel{
		question: question,
		input:    in,
		keys:     newPromptKeys(),
		theme:    resolveTheme(theme),
	}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.cancel):
			m.answer, m.done = Answer{Aborted: true}, true
			return m, tea.Quit
		case key.Matches(km, m.keys.confirm):
			value := strings.TrimSpace(m.input.Value())
			if m.input.Validate != nil {
				if err := m.input.Validate(value); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.answer, m.done = Answer{Text: value}, true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = nil
	return m, cmd
}

func (m promptModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	bad := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorError))

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s %s\n", title.Render(m.question), m.input.View())
	if m.err != nil {
		fmt.Fprintf(&b, "  %s\n", bad.Render(m.err.Error()))
	}
	fmt.Fprintf(&b, "\n  %s\n", dim.Render("enter confirm · esc cancel"))
	return b.String()
}

// RunChoice asks one multiple-choice question inline.
func RunChoice(question string, choices []Choice, initial int, theme *config.ThemeConfig) Answer {
	if len(choices) == 0 {
		return Answer{Aborted: true}
	}
	final, err := tea.NewProgram(newChoiceModel(question, choices, initial, theme)).Run()
	if err != nil {
		return Answer{Aborted: true}
	}
	return final.(choiceModel).answer
}

// RunPrompt asks for one line of text inline. validate may be nil; a
// rejected value keeps the prompt open with the error shown.
func RunPrompt(question, placeholder string, validate func(string) error, theme *config.ThemeConfig) Answer {
	final, err := tea.NewProgram(newPromptModel(question, placeholder, validate, theme)).Run()
	if err != nil {
		return Answer{Aborted: true}
	}
	return final.(promptModel).answer
}
