// Package hardcovertest provides a scripted hardcover.Executor for service tests.
package hardcovertest

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"sync"

	"github.com/listenupapp/hardcover-sync/internal/hardcover"
)

// Call is one recorded Execute call.
type Call struct {
	Op        string
	Variables jsontext.Value
}

// Decode unmarshals the recorded variables into v.
func (c Call) Decode(v any) error {
	return json.Unmarshal(c.Variables, v)
}

type reply struct {
	data string
	err  error
}

// Executor answers operations with scripted JSON data. Replies queued for an
// operation are used in order; the last one repeats.
type Executor struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   []Call
}

// New creates an executor with nothing scripted.
func New() *Executor {
	return &Executor{replies: make(map[string][]reply)}
}

// On queues data as the next reply to op.
func (e *Executor) On(op hardcover.Operation, data string) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replies[op.Name] = append(e.replies[op.Name], reply{data: data})
	return e
}

// Fail queues err as the next reply to op.
func (e *Executor) Fail(op hardcover.Operation, err error) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replies[op.Name] = append(e.replies[op.Name], reply{err: err})
	return e
}

// Execute implements hardcover.Executor.
func (e *Executor) Execute(_ context.Context, op hardcover.Operation, variables any, out any) error {
	vars, err := json.Marshal(variables)
	if err != nil {
		return fmt.Errorf("encode variables of %s: %w", op.Name, err)
	}

	e.mu.Lock()
	e.calls = append(e.calls, Call{Op: op.Name, Variables: vars})
	queue := e.replies[op.Name]
	if len(queue) == 0 {
		e.mu.Unlock()
		return fmt.Errorf("no reply scripted for %s", op.Name)
	}
	next := queue[0]
	if len(queue) > 1 {
		e.replies[op.Name] = queue[1:]
	}
	e.mu.Unlock()

	if next.err != nil {
		return next.err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(next.data), out)
}

// Calls returns every call in order.
func (e *Executor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// CallsTo returns the calls made to op.
func (e *Executor) CallsTo(op hardcover.Operation) []Call {
	e.mu.Lock()
	defer e.mu.Unlock()

	var calls []Call
	for _, c := range e.calls {
		if c.Op == op.Name {
			calls = append(calls, c)
		}
	}
	return calls
}

// Count returns how many times op was executed.
func (e *Executor) Count(op hardcover.Operation) int {
	return len(e.CallsTo(op))
}

// Reset forgets recorded calls, keeping the script.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}
