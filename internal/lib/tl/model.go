package tl

import (
	"strings"

	"github.com/ImSingee/go-ex/mr"
	tea "github.com/charmbracelet/bubbletea"
)

type eventStepStart struct {
	Id string
}

type eventStepSuccess struct {
	Id string
}

type eventStepFail struct {
	Id  string
	Err error
}

type eventStepSkip struct {
	Id string
}

type stepStatus uint8

const (
	stepStatusPending stepStatus = iota
	stepStatusRunning
	stepStatusSuccess
	stepStatusFailed
	stepStatusSkipped
)

type stepModel struct {
	id          string
	title       string
	status      stepStatus
	errorReason string
}

func (m stepModel) update(msg tea.Msg) stepModel {
	switch v := msg.(type) {
	case *eventStepStart:
		if m.id == v.Id {
			m.status = stepStatusRunning
		}
	case *eventStepSuccess:
		if m.id == v.Id {
			m.status = stepStatusSuccess
		}
	case *eventStepFail:
		if m.id == v.Id {
			m.status = stepStatusFailed
			if v.Err != nil {
				m.errorReason = v.Err.Error()
			}
		}
	case *eventStepSkip:
		if m.id == v.Id {
			m.status = stepStatusSkipped
		}
	}
	return m
}

func (m stepModel) view() string {
	b := strings.Builder{}

	switch m.status {
	case stepStatusPending:
		b.WriteString(symGray("○"))
	case stepStatusRunning:
		b.WriteString(symBlue(">"))
	case stepStatusSuccess:
		b.WriteString(symGreen("✓"))
	case stepStatusFailed:
		b.WriteString(symRed("✗"))
	case stepStatusSkipped:
		b.WriteString(symGray("-"))
	}
	b.WriteString(" ")
	b.WriteString(m.title)
	if m.status == stepStatusSkipped {
		b.WriteString(" (skipped)")
	}
	b.WriteString("\n")

	if m.errorReason != "" {
		b.WriteString("  ERROR: ")
		b.WriteString(strings.TrimSpace(m.errorReason))
		b.WriteString("\n")
	}

	return b.String()
}

type model struct {
	steps []stepModel
}

func newModel(steps []*Step) model {
	return model{
		steps: mr.Map(steps, func(s *Step, _ int) stepModel {
			return stepModel{id: s.id, title: s.Title}
		}),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		return m, tea.Quit
	}

	steps := make([]stepModel, len(m.steps))
	for i, s := range m.steps {
		steps[i] = s.update(msg)
	}
	m.steps = steps

	return m, nil
}

func (m model) View() string {
	return strings.Join(mr.Map(m.steps, func(s stepModel, _ int) string {
		return s.view()
	}), "")
}
