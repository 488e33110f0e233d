package runtime

import (
	"strings"
	"testing"
	"time"
)

func TestParallelReturnsHandleWithoutBlocking(t *testing.T) {
	release := make(chan struct{})
	r := New(Options{
		Executor: func(name string, params map[string]any) (any, error) {
			<-release
			return "slow result", nil
		},
	})
	cmd := NewCommand("saath", map[string]any{"name": "job"}).WithBody(
		NewCommand("slow_tool", nil),
	)
	start := time.Now()
	value, err := r.Execute(cmd)
	if err != nil {
		t.Fatalf("parallel failed: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("parallel should not block on the body")
	}
	task, ok := value.(*Task)
	if !ok || task.Name != "job" {
		t.Fatalf("expected a task handle, got %#v", value)
	}
	if task.Status() != TaskPending {
		t.Fatalf("task should still be pending")
	}

	close(release)
	waited, err := r.Execute(NewCommand("ruko", map[string]any{"task": "$job", "timeout": 1.0}))
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	res, ok := waited.(*Result)
	if !ok || !res.Success || res.Value != "slow result" {
		t.Fatalf("unexpected wait result %#v", waited)
	}
}

func TestWaitTimeoutReturnsFailureResult(t *testing.T) {
	r := New(Options{
		Executor: func(name string, params map[string]any) (any, error) {
			time.Sleep(500 * time.Millisecond)
			return nil, nil
		},
	})
	if _, err := r.Execute(NewCommand("parallel", map[string]any{"name": "stuck"}).WithBody(NewCommand("slow_tool", nil))); err != nil {
		t.Fatalf("parallel failed: %v", err)
	}
	value, err := r.Execute(NewCommand("wait", map[string]any{"task": "stuck", "timeout": 0.05}))
	if err != nil {
		t.Fatalf("wait should convert timeouts into Results, not errors: %v", err)
	}
	res, ok := value.(*Result)
	if !ok || res.Success || !strings.Contains(res.Error, "timed out") {
		t.Fatalf("unexpected wait result %#v", value)
	}
}

func TestTogetherPartialSuccess(t *testing.T) {
	r := New(Options{
		Executor: func(name string, params map[string]any) (any, error) {
			if name == "ok_tool" {
				return "fine", nil
			}
			return nil, &toolError{"exploded"}
		},
	})
	cmd := NewCommand("sabsaath", map[string]any{"timeout": 2.0})
	cmd.Tasks = []TaskSpec{
		{Name: "a", Body: []*Command{NewCommand("ok_tool", nil)}},
		{Name: "b", Body: []*Command{NewCommand("bad_tool", nil)}},
	}
	value, err := r.Execute(cmd)
	if err != nil {
		t.Fatalf("together must not propagate task failures: %v", err)
	}
	results, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected per-task results, got %#v", value)
	}
	if results["a"] != "fine" {
		t.Fatalf("task a should resolve to its value: %#v", results["a"])
	}
	bRes, ok := results["b"].(*Result)
	if !ok || bRes.Success || !strings.Contains(bRes.Error, "exploded") {
		t.Fatalf("task b should bind a failure Result: %#v", results["b"])
	}

	// Successful names bind their raw value into scope; failures bind Results.
	if v, err := r.GetVariable("a"); err != nil || v != "fine" {
		t.Fatalf("scope binding for a wrong: %#v %v", v, err)
	}
	if v, err := r.GetVariable("b"); err != nil {
		t.Fatalf("scope binding for b missing: %v", err)
	} else if res, ok := v.(*Result); !ok || res.Success {
		t.Fatalf("scope binding for b should be a failure Result: %#v", v)
	}
}

func TestTogetherGroupTimeout(t *testing.T) {
	r := New(Options{
		Executor: func(name string, params map[string]any) (any, error) {
			time.Sleep(500 * time.Millisecond)
			return "late", nil
		},
	})
	cmd := NewCommand("together", map[string]any{"timeout": 0.05})
	cmd.Tasks = []TaskSpec{
		{Name: "x", Body: []*Command{NewCommand("slow_tool", nil)}},
		{Name: "y", Body: []*Command{NewCommand("slow_tool", nil)}},
	}
	value, err := r.Execute(cmd)
	if err != nil {
		t.Fatalf("group timeout must be a Result, not an error: %v", err)
	}
	res, ok := value.(*Result)
	if !ok || res.Success || !strings.Contains(res.Error, "timed out") {
		t.Fatalf("unexpected together result %#v", value)
	}
}

type toolError struct{ msg string }

func (e *toolError) Error() string { return e.msg }
