package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	answerColor = lipgloss.AdaptiveColor{Light: "6", Dark: "14"}
	dimColor    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}

	markStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"}).Bold(true)
	questionStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(answerColor)
	defaultStyle  = lipgloss.NewStyle().Foreground(dimColor)
)

// StatusBadge renders a completeness label: green when complete, yellow
// otherwise.
func StatusBadge(complete bool, label string) string {
	color := lipgloss.AdaptiveColor{Light: "3", Dark: "11"}
	if complete {
		color = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
	}
	return lipgloss.NewStyle().Foreground(color).Render(label)
}

// questionLine renders "? question" with an optional answer suffix.
func questionLine(question, answer string) string {
	line := markStyle.Render("?") + " " + questionStyle.Render(question)
	if answer != "" {
		line += " " + answerStyle.Render(answer)
	}
	return line
}
