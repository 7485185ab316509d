package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user interrupts a screen.
var ErrCancelled = errors.New("cancelled")

type workDoneMsg struct {
	value string
	err   error
}

type loaderModel struct {
	label   string
	work    func(ctx context.Context) (string, error)
	ctx     context.Context
	spinner spinner.Model
	value   string
	err     error
	done    bool
}

func newLoaderModel(ctx context.Context, label string, work func(ctx context.Context) (string, error)) loaderModel {
	return loaderModel{
		label: label,
		work:  work,
		ctx:   ctx,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.doWork())
}

func (m loaderModel) doWork() tea.Cmd {
	work, ctx := m.work, m.ctx
	return func() tea.Msg {
		v, err := work(ctx)
		return workDoneMsg{value: v, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.value = msg.value
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner labelled label while work runs. It renders inline
// (no alt screen).
func RunLoader(ctx context.Context, label string, work func(ctx context.Context) (string, error)) (string, error) {
	p := tea.NewProgram(newLoaderModel(ctx, label, work))
	result, err := p.Run()
	if err != nil {
		return "", err
	}
	final := result.(loaderModel)
	return final.value, final.err
}
