package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

const (
	noChoice   = -1
	quitChoice = -2
)

type pickerModel struct {
	skus   []string
	cursor int
	chosen int
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.chosen = quitChoice
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.skus)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.skus) - 1
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := titleStyle.Render("Select the box to score")
	s += "\n"

	for i, sku := range m.skus {
		if i == m.cursor {
			s += selectedStyle.Render("> "+sku) + "\n"
		} else {
			s += itemStyle.Render(sku) + "\n"
		}
	}

	s += hintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

// PickSKU shows an interactive selector over skus.
// Returns the chosen sku, or ok=false if the user quit.
func PickSKU(skus []string) (sku string, ok bool, err error) {
	p := tea.NewProgram(pickerModel{skus: skus, chosen: noChoice})
	result, err := p.Run()
	if err != nil {
		return "", false, err
	}

	final := result.(pickerModel)
	if final.chosen < 0 {
		return "", false, nil
	}
	return skus[final.chosen], true, nil
}
