package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var sectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("214"))

type reviewModel struct {
	content   string
	viewport  viewport.Model
	ready     bool
	confirmed bool
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// title and hint take four lines
		h := msg.Height - 4
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "y":
			m.confirmed = true
			return m, tea.Quit
		case "q", "n", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	// Forward other keys (pgup/pgdn/arrows) to the viewport.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m reviewModel) View() string {
	if !m.ready {
		return "loading..."
	}
	return titleStyle.Render("Review the prompt inputs") + "\n" +
		m.viewport.View() + "\n" +
		hintStyle.Render("↑/↓ scroll  enter send  q abort")
}

// renderReview lays out the future box above the historical boxes, one per line.
func renderReview(futureBox string, historical []string) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Future box"))
	b.WriteString("\n  ")
	b.WriteString(futureBox)
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Historical boxes"))
	b.WriteString("\n")
	if len(historical) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, h := range historical {
		b.WriteString("  ")
		b.WriteString(h)
		b.WriteString("\n")
	}
	return b.String()
}

// Review shows the summaries that will be sent to the score service in a
// scrollable full-screen view. Returns true when the user confirms.
func Review(futureBox string, historical []string) (bool, error) {
	m := reviewModel{content: renderReview(futureBox, historical)}
	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	return result.(reviewModel).confirmed, nil
}
