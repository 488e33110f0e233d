package runtime

import (
	"fmt"
	"sync"
	"time"

	"rocketlang/core-go/pkg/types"
)

// DefaultWaitTimeout bounds wait/together joins when no timeout is given.
const DefaultWaitTimeout = 30 * time.Second

// TaskStatus tracks a background task's lifecycle.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskResolved
	TaskFailed
)

// Task is a non-blocking handle for a background task started by `parallel`
// or `together`. The caller keeps executing and later joins via Await.
type Task struct {
	Name string

	mu     sync.Mutex
	status TaskStatus
	value  any
	errMsg string
	done   chan struct{}
}

// NewTask creates a pending handle.
func NewTask(name string) *Task {
	return &Task{Name: name, done: make(chan struct{})}
}

// RocketType implements types.Typed.
func (t *Task) RocketType() types.Type {
	return types.Custom("task")
}

// Status returns the current lifecycle state.
func (t *Task) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Resolve completes the task with a value. Later completions are ignored.
func (t *Task) Resolve(value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TaskPending {
		return
	}
	t.status = TaskResolved
	t.value = value
	close(t.done)
}

// Fail completes the task with an error message.
func (t *Task) Fail(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TaskPending {
		return
	}
	t.status = TaskFailed
	t.errMsg = message
	close(t.done)
}

// Await joins the task, racing completion against the timeout. Either
// outcome is wrapped in a Result; timeouts never surface as errors.
func (t *Task) Await(timeout time.Duration) *Result {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.done:
		return t.snapshot()
	case <-timer.C:
		return Fail(fmt.Sprintf("task '%s' timed out after %s", t.Name, timeout))
	}
}

func (t *Task) snapshot() *Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == TaskFailed {
		return Fail(t.errMsg)
	}
	return Ok(t.value)
}
