// Package tui holds the interactive terminal screens of the aggregate command.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(1, 0, 1, 2)

	itemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 0, 0, 2)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// RenderResult formats the final prediction for the terminal.
func RenderResult(sku, score, outputPath string) string {
	return scoreStyle.Render(labelStyle.Render("Box "+sku+"  ")+score) +
		"\n" + labelStyle.Render("written to "+outputPath) + "\n"
}
