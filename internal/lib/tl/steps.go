// Package tl renders a list of sequential steps in the terminal while they
// run.
package tl

import (
	"context"
	"fmt"
	"io"

	"github.com/ImSingee/go-ex/ee"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

var ErrCanceled = ee.New("canceled")

type Step struct {
	Title string
	Run   func(ctx context.Context) error

	id string
}

// Run runs steps one by one and renders their status to w. The first
// failing step stops the list; the steps after it are shown as skipped.
// The returned error is the failing step's error, or ErrCanceled when ctx
// is done or the user pressed ctrl+c before all steps ran.
//
// Run always waits for the running step to return.
func Run(ctx context.Context, w io.Writer, steps []*Step, opts ...tea.ProgramOption) error {
	for _, s := range steps {
		if s.id != "" {
			panic("Cannot use the same step more than once")
		}
		s.id = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithOutput(w), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(newModel(steps), opts...)

	result := make(chan error, 1)
	go func() {
		result <- runSteps(ctx, steps, p.Send)
		p.Send(tea.Quit())
	}()

	_, runErr := p.Run()

	// the program may quit first (ctrl+c), stop the remaining steps
	cancel()
	err := <-result

	if runErr != nil && !ee.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return err
}

func runSteps(ctx context.Context, steps []*Step, send func(tea.Msg)) error {
	for i, s := range steps {
		if ctx.Err() != nil {
			skip(steps[i:], send)
			return ErrCanceled
		}

		send(&eventStepStart{Id: s.id})

		err := runStep(ctx, s)
		if err != nil {
			send(&eventStepFail{Id: s.id, Err: err})
			skip(steps[i+1:], send)
			return err
		}

		send(&eventStepSuccess{Id: s.id})
	}
	return nil
}

func skip(steps []*Step, send func(tea.Msg)) {
	for _, s := range steps {
		send(&eventStepSkip{Id: s.id})
	}
}

func runStep(ctx context.Context, s *Step) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("panic: %v", e)
		}
	}()

	if s.Run == nil {
		return ee.New("no Run function provided")
	}

	return s.Run(ctx)
}
