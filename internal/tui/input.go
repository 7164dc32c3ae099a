package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputModel is a one-line text field with an optional default.
type InputModel struct {
	question  string
	def       string
	input     textinput.Model
	submitted bool
	aborted   bool
	keys      inputKeys
}

// NewInputModel creates a focused InputModel showing def as placeholder.
func NewInputModel(question, def string) InputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = def
	ti.PlaceholderStyle = defaultStyle
	ti.Focus()

	return InputModel{
		question: question,
		def:      def,
		input:    ti,
		keys:     InputKeyMap(),
	}
}

// Init starts the cursor blink.
func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles submit and abort, forwarding everything else to the field.
func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the question followed by the field, or by the final answer
// once submitted.
func (m InputModel) View() string {
	if m.submitted {
		v, _ := m.Value()
		return questionLine(m.question, v) + "\n"
	}
	if m.aborted {
		return questionLine(m.question, "") + "\n"
	}
	return questionLine(m.question, "") + " " + m.input.View() + "\n"
}

// Value returns the submitted text, or the default when nothing was typed.
// It reports false if the field was aborted or is still open.
func (m InputModel) Value() (string, bool) {
	if !m.submitted {
		return "", false
	}
	if v := m.input.Value(); v != "" {
		return v, true
	}
	return m.def, true
}
