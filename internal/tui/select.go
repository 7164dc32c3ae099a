package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// SelectModel is a single-choice list. The cursor wraps at both ends.
type SelectModel struct {
	question string
	choices  []string
	cursor   int
	chosen   bool
	aborted  bool
	keys     selectKeys
	help     help.Model
}

// NewSelectModel creates a SelectModel with the cursor on the first choice.
func NewSelectModel(question string, choices []string) SelectModel {
	return SelectModel{
		question: question,
		choices:  choices,
		keys:     SelectKeyMap(),
		help:     help.New(),
	}
}

// Init implements tea.Model.
func (m SelectModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses and window resizes.
func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if len(m.choices) > 0 {
				m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
			}
		case key.Matches(msg, m.keys.Down):
			if len(m.choices) > 0 {
				m.cursor = (m.cursor + 1) % len(m.choices)
			}
		case key.Matches(msg, m.keys.Choose):
			if len(m.choices) > 0 {
				m.chosen = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// View renders the question, the choices with a cursor and the help bar.
// Once answered only the question and the answer remain.
func (m SelectModel) View() string {
	if m.chosen {
		return questionLine(m.question, m.choices[m.cursor]) + "\n"
	}
	if m.aborted {
		return questionLine(m.question, "") + "\n"
	}

	var b strings.Builder
	b.WriteString(questionLine(m.question, ""))
	b.WriteString("\n")
	for i, c := range m.choices {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ " + c))
		} else {
			b.WriteString("  " + c)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen index, or false if the list was aborted or
// is still open.
func (m SelectModel) Selected() (int, bool) {
	if !m.chosen {
		return -1, false
	}
	return m.cursor, true
}
