package runtime

import (
	"strings"
	"testing"
)

func newTestRuntime(t *testing.T) (*Runtime, *[]string) {
	t.Helper()
	var output []string
	r := New(Options{
		OnOutput: func(s string) { output = append(output, s) },
	})
	return r, &output
}

func TestLetConstAndPrint(t *testing.T) {
	r, output := newTestRuntime(t)

	let := NewCommand("banao", map[string]any{"name": "greeting", "value": "namaste"})
	if _, err := r.Execute(let); err != nil {
		t.Fatalf("let failed: %v", err)
	}
	print := NewCommand("dikhao", map[string]any{"message": "${greeting} duniya"})
	if _, err := r.Execute(print); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if len(*output) != 1 || (*output)[0] != "namaste duniya" {
		t.Fatalf("unexpected output %v", *output)
	}
}

func TestConstReassignmentFails(t *testing.T) {
	r, _ := newTestRuntime(t)
	if _, err := r.Execute(NewCommand("const", map[string]any{"name": "pi", "value": 3.14})); err != nil {
		t.Fatalf("const failed: %v", err)
	}
	_, err := r.Execute(NewCommand("let", map[string]any{"name": "pi", "value": 3.0}))
	if err == nil || !strings.Contains(err.Error(), "constant") {
		t.Fatalf("expected constant reassignment error, got %v", err)
	}
}

func TestConstRedefinitionFails(t *testing.T) {
	r, _ := newTestRuntime(t)
	if _, err := r.Execute(NewCommand("const", map[string]any{"name": "pi", "value": 3.14})); err != nil {
		t.Fatalf("const failed: %v", err)
	}
	_, err := r.Execute(NewCommand("sthir", map[string]any{"name": "pi", "value": 0.0}))
	if err == nil || !strings.Contains(err.Error(), "constant") {
		t.Fatalf("expected constant redefinition error, got %v", err)
	}
	if v, _ := r.global.Get("pi"); v != 3.14 {
		t.Fatalf("failed redefinition must not clobber the value, got %#v", v)
	}
}

func TestSynonymsResolveToSameHandler(t *testing.T) {
	for _, keyword := range []string{"let", "set", "banao", "rakho"} {
		if ResolveOp(keyword) != OpLet {
			t.Fatalf("keyword %q should resolve to OpLet", keyword)
		}
	}
	for _, keyword := range []string{"print", "dikhao", "bolo"} {
		if ResolveOp(keyword) != OpPrint {
			t.Fatalf("keyword %q should resolve to OpPrint", keyword)
		}
	}
}

func TestFunctionCallWithReturn(t *testing.T) {
	r, _ := newTestRuntime(t)
	define := NewCommand("function", map[string]any{
		"name":   "double",
		"params": []any{"n: number"},
	}).WithBody(
		NewCommand("return", map[string]any{"value": "$n"}),
	)
	if _, err := r.Execute(define); err != nil {
		t.Fatalf("function definition failed: %v", err)
	}
	value, err := r.Execute(NewCommand("double", nil).WithArgs(21.0))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if got, ok := value.(float64); !ok || got != 21.0 {
		t.Fatalf("unexpected call result %#v", value)
	}
}

func TestReturnOutsideFunction(t *testing.T) {
	r, _ := newTestRuntime(t)
	_, err := r.Execute(NewCommand("return", map[string]any{"value": 1.0}))
	if err == nil || !strings.Contains(err.Error(), "return outside function") {
		t.Fatalf("expected return-outside-function error, got %v", err)
	}
}

func TestTypeCheckingRejectsBadArgument(t *testing.T) {
	r, _ := newTestRuntime(t)
	r.SetTypeChecking(true)
	define := NewCommand("function", map[string]any{
		"name":   "shout",
		"params": []any{"message: text"},
	}).WithBody(
		NewCommand("return", map[string]any{"value": "$message"}),
	)
	if _, err := r.Execute(define); err != nil {
		t.Fatalf("function definition failed: %v", err)
	}
	_, err := r.Execute(NewCommand("shout", nil).WithArgs(42.0))
	if err == nil {
		t.Fatalf("expected type error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "shout") || !strings.Contains(msg, "message") ||
		!strings.Contains(msg, "text") || !strings.Contains(msg, "number") {
		t.Fatalf("type error should name function, parameter and both types: %v", err)
	}
}

func TestTypeCheckingDisabledAllowsAnything(t *testing.T) {
	r, _ := newTestRuntime(t)
	define := NewCommand("function", map[string]any{
		"name":   "shout",
		"params": []any{"message: text"},
	}).WithBody(
		NewCommand("return", map[string]any{"value": "$message"}),
	)
	if _, err := r.Execute(define); err != nil {
		t.Fatalf("function definition failed: %v", err)
	}
	if _, err := r.Execute(NewCommand("shout", nil).WithArgs(42.0)); err != nil {
		t.Fatalf("call should pass without type checking: %v", err)
	}
}

func TestIfElse(t *testing.T) {
	r, output := newTestRuntime(t)
	r.SetVariable("count", 3.0)
	cmd := NewCommand("agar", map[string]any{"condition": "$count > 5"})
	cmd.Body = []*Command{NewCommand("print", map[string]any{"message": "big"})}
	cmd.Else = []*Command{NewCommand("print", map[string]any{"message": "small"})}
	if _, err := r.Execute(cmd); err != nil {
		t.Fatalf("if failed: %v", err)
	}
	if len(*output) != 1 || (*output)[0] != "small" {
		t.Fatalf("unexpected output %v", *output)
	}
}

func TestForLoopOverList(t *testing.T) {
	r, output := newTestRuntime(t)
	cmd := NewCommand("har", map[string]any{
		"var": "fruit",
		"in":  []any{"aam", "kela"},
	}).WithBody(
		NewCommand("print", map[string]any{"message": "$fruit"}),
	)
	if _, err := r.Execute(cmd); err != nil {
		t.Fatalf("for failed: %v", err)
	}
	if len(*output) != 2 || (*output)[0] != "aam" || (*output)[1] != "kela" {
		t.Fatalf("unexpected output %v", *output)
	}
}

func TestWhileLoopIterationCap(t *testing.T) {
	r, _ := newTestRuntime(t)
	cmd := NewCommand("jabtak", map[string]any{"condition": true}).WithBody(
		NewCommand("let", map[string]any{"name": "x", "value": 1.0}),
	)
	_, err := r.Execute(cmd)
	if err == nil || !strings.Contains(err.Error(), "exceeded maximum iterations") {
		t.Fatalf("expected iteration cap error, got %v", err)
	}
	if !strings.Contains(err.Error(), "10000") {
		t.Fatalf("cap error should state the limit: %v", err)
	}
}

func TestWhileLoopTerminates(t *testing.T) {
	calls := 0
	var r *Runtime
	r = New(Options{
		Executor: func(name string, params map[string]any) (any, error) {
			calls++
			r.SetVariable("n", float64(calls))
			return nil, nil
		},
	})
	r.SetVariable("n", 0.0)
	cmd := NewCommand("while", map[string]any{"condition": "$n < 3"}).WithBody(
		NewCommand("bump_n", nil),
	)
	if _, err := r.Execute(cmd); err != nil {
		t.Fatalf("while failed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 iterations, got %d", calls)
	}
}

func TestTryCatchFinally(t *testing.T) {
	r, output := newTestRuntime(t)
	cmd := NewCommand("koshish", map[string]any{"catch": "problem"})
	cmd.Body = []*Command{NewCommand("no_such_tool", nil)}
	cmd.Else = []*Command{NewCommand("print", map[string]any{"message": "caught: ${problem}"})}
	cmd.Finally = []*Command{NewCommand("print", map[string]any{"message": "done"})}
	if _, err := r.Execute(cmd); err != nil {
		t.Fatalf("try should swallow the error: %v", err)
	}
	if len(*output) != 2 || !strings.HasPrefix((*output)[0], "caught: ") || (*output)[1] != "done" {
		t.Fatalf("unexpected output %v", *output)
	}
}

func TestTryWithoutCatchPropagates(t *testing.T) {
	r, output := newTestRuntime(t)
	cmd := NewCommand("try", nil)
	cmd.Body = []*Command{NewCommand("no_such_tool", nil)}
	cmd.Finally = []*Command{NewCommand("print", map[string]any{"message": "cleanup"})}
	_, err := r.Execute(cmd)
	if err == nil || !strings.Contains(err.Error(), "no_such_tool") {
		t.Fatalf("error should propagate when there is no catch block, got %v", err)
	}
	if len(*output) != 1 || (*output)[0] != "cleanup" {
		t.Fatalf("finally should still run: %v", *output)
	}
}

func TestResultConstruction(t *testing.T) {
	r, _ := newTestRuntime(t)
	value, err := r.Execute(NewCommand("safal", map[string]any{"value": 7.0}))
	if err != nil {
		t.Fatalf("success failed: %v", err)
	}
	res, ok := value.(*Result)
	if !ok || !res.Success || res.Value != 7.0 {
		t.Fatalf("unexpected result %#v", value)
	}
	value, err = r.Execute(NewCommand("asafal", map[string]any{"error": "boom"}))
	if err != nil {
		t.Fatalf("failure failed: %v", err)
	}
	res, ok = value.(*Result)
	if !ok || res.Success || res.Error != "boom" {
		t.Fatalf("unexpected result %#v", value)
	}
}

func TestToolExecutorFallthrough(t *testing.T) {
	var gotName string
	var gotParams map[string]any
	r := New(Options{
		Executor: func(name string, params map[string]any) (any, error) {
			gotName = name
			gotParams = params
			return "done", nil
		},
	})
	r.SetVariable("path", "/tmp/x")
	value, err := r.Execute(NewCommand("read_file", map[string]any{"file": "$path"}))
	if err != nil {
		t.Fatalf("tool call failed: %v", err)
	}
	if value != "done" || gotName != "read_file" {
		t.Fatalf("unexpected executor call %q -> %#v", gotName, value)
	}
	if gotParams["file"] != "/tmp/x" {
		t.Fatalf("params should be resolved before crossing the boundary: %#v", gotParams)
	}
}

func TestBuiltinFunctions(t *testing.T) {
	r, _ := newTestRuntime(t)
	value, err := r.Execute(NewCommand("upper", nil).WithArgs("chota"))
	if err != nil {
		t.Fatalf("upper failed: %v", err)
	}
	if value != "CHOTA" {
		t.Fatalf("unexpected upper result %#v", value)
	}
	value, err = r.Execute(NewCommand("sum", nil).WithArgs([]any{1.0, 2.0, 3.0}))
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if value != 6.0 {
		t.Fatalf("unexpected sum result %#v", value)
	}
}

func TestExecuteAllStopsOnError(t *testing.T) {
	r, _ := newTestRuntime(t)
	results, err := r.ExecuteAll([]*Command{
		NewCommand("let", map[string]any{"name": "a", "value": 1.0}),
		NewCommand("no_such_tool", nil),
		NewCommand("let", map[string]any{"name": "b", "value": 2.0}),
	})
	if err == nil {
		t.Fatalf("expected error from unknown command")
	}
	if len(results) != 1 {
		t.Fatalf("expected one completed command, got %d", len(results))
	}
	if r.global.Has("b") {
		t.Fatalf("commands after the failure should not run")
	}
}
