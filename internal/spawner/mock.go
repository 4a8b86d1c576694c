package spawner

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a test double recording every Run call and returning canned
// Outcomes keyed by the exact command string, following the teacher's
// service/build_test.go preference for hand-written fakes over a mocking
// framework.
type Mock struct {
	mu      sync.Mutex
	Results map[string]Outcome
	Errs    map[string]error
	Calls   []MockCall
}

// MockCall records one invocation for assertions.
type MockCall struct {
	Command string
	Cwd     string
	Skip    bool
}

// NewMock returns an empty Mock; commands with no registered Outcome
// succeed by default with output "ok: <command>".
func NewMock() *Mock {
	return &Mock{Results: map[string]Outcome{}, Errs: map[string]error{}}
}

func (m *Mock) Run(_ context.Context, command, cwd string, skip bool) (Outcome, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Command: command, Cwd: cwd, Skip: skip})
	m.mu.Unlock()

	if skip {
		return Outcome{Success: true, Skipped: true}, nil
	}
	if err, ok := m.Errs[command]; ok {
		return Outcome{}, err
	}
	if out, ok := m.Results[command]; ok {
		return out, nil
	}
	return Outcome{Success: true, Output: fmt.Sprintf("ok: %s", command)}, nil
}

// CallCount returns how many times command was invoked (skip or not).
func (m *Mock) CallCount(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Command == command {
			n++
		}
	}
	return n
}
