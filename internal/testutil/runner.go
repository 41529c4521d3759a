package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/ImSingee/mozinstall/internal/lib/proc"
)

// Call is a command seen by FakeRunner
type Call struct {
	Name string
	Args []string
}

func (c Call) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// FakeRunner records commands instead of running them. Handler decides the
// result of each call; a nil Handler succeeds with no output.
type FakeRunner struct {
	Handler func(call Call) *proc.Result

	mu    sync.Mutex
	calls []Call
}

func (r *FakeRunner) Run(ctx context.Context, name string, args ...string) *proc.Result {
	call := Call{Name: name, Args: append([]string(nil), args...)}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	if r.Handler == nil {
		return &proc.Result{}
	}
	return r.Handler(call)
}

func (r *FakeRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Call(nil), r.calls...)
}

// CallsWith returns the calls whose first argument is sub
func (r *FakeRunner) CallsWith(sub string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if len(c.Args) > 0 && c.Args[0] == sub {
			out = append(out, c)
		}
	}
	return out
}
