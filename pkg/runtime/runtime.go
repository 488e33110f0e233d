// Package runtime implements the RocketLang tree-walking interpreter:
// lexical scoping, user-defined and built-in functions, control flow,
// Result/Maybe values, and channel/task based concurrency.
package runtime

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"rocketlang/core-go/pkg/types"
)

// MaxWhileIterations is the safety valve against accidental infinite loops.
const MaxWhileIterations = 10000

// ToolExecutor is the single capability boundary the runtime calls out to
// for anything outside pure language semantics.
type ToolExecutor func(name string, params map[string]any) (any, error)

// Options configures a Runtime instance.
type Options struct {
	Executor     ToolExecutor
	OnOutput     func(string)
	OnError      func(error)
	TypeChecking bool
}

// Runtime evaluates commands against a single global scope plus per-call
// activation scopes. All registries are instance fields; nothing is shared
// between runtimes.
type Runtime struct {
	opts   Options
	global *Environment

	mu        sync.Mutex
	functions map[string]*Function
	channels  map[string]*Channel
	tasks     map[string]*Task
	taskSeq   int
}

// flow threads non-local control through statement evaluation; return is an
// explicit outcome, not a thrown sentinel.
type flow int

const (
	flowNone flow = iota
	flowReturn
)

// New constructs a runtime with built-in functions pre-seeded.
func New(opts Options) *Runtime {
	r := &Runtime{
		opts:      opts,
		global:    NewEnvironment(nil),
		functions: make(map[string]*Function),
		channels:  make(map[string]*Channel),
		tasks:     make(map[string]*Task),
	}
	for name, fn := range builtinFunctions() {
		r.functions[name] = fn
	}
	return r
}

// SetTypeChecking toggles argument/return type validation on function calls.
func (r *Runtime) SetTypeChecking(enabled bool) {
	r.mu.Lock()
	r.opts.TypeChecking = enabled
	r.mu.Unlock()
}

func (r *Runtime) typeChecking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.TypeChecking
}

// DefineFunction registers a function in the runtime's function table.
func (r *Runtime) DefineFunction(fn *Function) error {
	if fn == nil || fn.Name == "" {
		return fmt.Errorf("runtime: function needs a name")
	}
	r.mu.Lock()
	r.functions[fn.Name] = fn
	r.mu.Unlock()
	return nil
}

func (r *Runtime) lookupFunction(name string) (*Function, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.functions[name]
	return fn, ok
}

// SetVariable binds a name in the global scope.
func (r *Runtime) SetVariable(name string, value any) {
	r.global.Define(name, value)
}

// GetVariable reads a name from the global scope chain.
func (r *Runtime) GetVariable(name string) (any, error) {
	return r.global.Get(name)
}

// Channel returns a channel from the runtime's channel table.
func (r *Runtime) Channel(name string) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[name]
	return ch, ok
}

// Execute evaluates a single top-level command.
func (r *Runtime) Execute(cmd *Command) (any, error) {
	value, ctl, err := r.eval(cmd, r.global)
	if err != nil {
		r.reportError(err)
		return nil, err
	}
	if ctl == flowReturn {
		err := fmt.Errorf("runtime: return outside function")
		r.reportError(err)
		return nil, err
	}
	return value, nil
}

// ExecuteAll evaluates commands in order, stopping at the first error.
func (r *Runtime) ExecuteAll(cmds []*Command) ([]any, error) {
	results := make([]any, 0, len(cmds))
	for _, cmd := range cmds {
		value, err := r.Execute(cmd)
		if err != nil {
			return results, err
		}
		results = append(results, value)
	}
	return results, nil
}

func (r *Runtime) reportError(err error) {
	if r.opts.OnError != nil && err != nil {
		r.opts.OnError(err)
	}
}

func (r *Runtime) output(text string) {
	if r.opts.OnOutput != nil {
		r.opts.OnOutput(text)
	}
}

func (r *Runtime) eval(cmd *Command, env *Environment) (any, flow, error) {
	if cmd == nil {
		return nil, flowNone, fmt.Errorf("runtime: nil command")
	}
	switch cmd.Op {
	case OpLet:
		return r.evalBinding(cmd, env, false)
	case OpConst:
		return r.evalBinding(cmd, env, true)
	case OpFunction:
		return r.evalFunctionDefinition(cmd)
	case OpReturn:
		value := resolveValue(cmd.Params["value"], env)
		return value, flowReturn, nil
	case OpIf:
		return r.evalIf(cmd, env)
	case OpFor:
		return r.evalFor(cmd, env)
	case OpWhile:
		return r.evalWhile(cmd, env)
	case OpTry:
		return r.evalTry(cmd, env)
	case OpSuccess:
		return Ok(resolveValue(cmd.Params["value"], env)), flowNone, nil
	case OpFailure:
		message := Stringify(resolveValue(firstParam(cmd, "error", "message"), env))
		return Fail(message), flowNone, nil
	case OpParallel:
		return r.evalParallel(cmd, env)
	case OpWait:
		return r.evalWait(cmd, env)
	case OpTogether:
		return r.evalTogether(cmd, env)
	case OpChannelCreate:
		return r.evalChannelCreate(cmd, env)
	case OpChannelSend:
		return r.evalChannelSend(cmd, env)
	case OpChannelReceive:
		return r.evalChannelReceive(cmd, env)
	case OpChannelClose:
		ch, err := r.channelFor(cmd, env)
		if err != nil {
			return nil, flowNone, err
		}
		ch.Close()
		return nil, flowNone, nil
	case OpPrint:
		value := resolveValue(firstParam(cmd, "message", "value"), env)
		r.output(Stringify(value))
		return value, flowNone, nil
	case OpCall:
		return r.evalCall(cmd, env)
	default:
		return nil, flowNone, fmt.Errorf("runtime: unhandled operation for keyword '%s'", cmd.Name)
	}
}

func firstParam(cmd *Command, keys ...string) any {
	for _, key := range keys {
		if v, ok := cmd.param(key); ok {
			return v
		}
	}
	if len(cmd.Args) > 0 {
		return cmd.Args[0]
	}
	return nil
}

func (r *Runtime) evalBinding(cmd *Command, env *Environment, constant bool) (any, flow, error) {
	name := cmd.stringParam("name")
	if name == "" {
		return nil, flowNone, fmt.Errorf("runtime: %s needs a 'name' parameter", cmd.Name)
	}
	value := resolveValue(cmd.Params["value"], env)
	if annotation := cmd.stringParam("type"); annotation != "" && r.typeChecking() {
		expected, err := types.Parse(annotation)
		if err != nil {
			return nil, flowNone, fmt.Errorf("runtime: variable '%s': %w", name, err)
		}
		actual := types.Infer(value)
		if !types.Compatible(expected, actual) {
			return nil, flowNone, fmt.Errorf("runtime: variable '%s' expects %s, got %s",
				name, types.Format(expected, types.LocaleEN), types.Format(actual, types.LocaleEN))
		}
	}
	if constant {
		if err := env.DefineConst(name, value); err != nil {
			return nil, flowNone, err
		}
	} else if env.Has(name) {
		if err := env.Assign(name, value); err != nil {
			return nil, flowNone, err
		}
	} else {
		env.Define(name, value)
	}
	return value, flowNone, nil
}

func (r *Runtime) evalFunctionDefinition(cmd *Command) (any, flow, error) {
	name := cmd.stringParam("name")
	if name == "" {
		return nil, flowNone, fmt.Errorf("runtime: function definition needs a 'name' parameter")
	}
	fn := &Function{
		Name:       name,
		Params:     parseParamSpecs(cmd.Params["params"]),
		ReturnType: cmd.stringParam("returns"),
		Body:       cmd.Body,
	}
	if err := r.DefineFunction(fn); err != nil {
		return nil, flowNone, err
	}
	return nil, flowNone, nil
}

func parseParamSpecs(raw any) []Param {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	params := make([]Param, 0, len(list))
	for _, entry := range list {
		switch spec := entry.(type) {
		case string:
			name, typeName, _ := strings.Cut(spec, ":")
			params = append(params, Param{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typeName)})
		case map[string]any:
			p := Param{}
			if n, ok := spec["name"].(string); ok {
				p.Name = n
			}
			if t, ok := spec["type"].(string); ok {
				p.Type = t
			}
			params = append(params, p)
		}
	}
	return params
}

func (r *Runtime) evalBlock(body []*Command, env *Environment) (any, flow, error) {
	var last any
	for _, cmd := range body {
		value, ctl, err := r.eval(cmd, env)
		if err != nil {
			return nil, flowNone, err
		}
		if ctl == flowReturn {
			return value, flowReturn, nil
		}
		last = value
	}
	return last, flowNone, nil
}

func (r *Runtime) evalIf(cmd *Command, env *Environment) (any, flow, error) {
	ok, err := r.evalCondition(cmd.Params["condition"], env)
	if err != nil {
		return nil, flowNone, err
	}
	if ok {
		return r.evalBlock(cmd.Body, env.Extend())
	}
	if len(cmd.Else) > 0 {
		return r.evalBlock(cmd.Else, env.Extend())
	}
	return nil, flowNone, nil
}

func (r *Runtime) evalWhile(cmd *Command, env *Environment) (any, flow, error) {
	var last any
	for i := 0; ; i++ {
		if i >= MaxWhileIterations {
			return nil, flowNone, fmt.Errorf("runtime: while loop exceeded maximum iterations (%d)", MaxWhileIterations)
		}
		ok, err := r.evalCondition(cmd.Params["condition"], env)
		if err != nil {
			return nil, flowNone, err
		}
		if !ok {
			return last, flowNone, nil
		}
		value, ctl, err := r.evalBlock(cmd.Body, env.Extend())
		if err != nil {
			return nil, flowNone, err
		}
		if ctl == flowReturn {
			return value, flowReturn, nil
		}
		last = value
	}
}

func (r *Runtime) evalFor(cmd *Command, env *Environment) (any, flow, error) {
	variable := firstNonEmpty(cmd.stringParam("var"), cmd.stringParam("variable"), "item")
	var items []any
	if raw, ok := cmd.param("in"); ok {
		resolved := resolveValue(raw, env)
		list, ok := resolved.([]any)
		if !ok {
			return nil, flowNone, fmt.Errorf("runtime: for loop expects a list, got %s",
				types.Format(types.Infer(resolved), types.LocaleEN))
		}
		items = list
	} else {
		from, okFrom := AsNumber(resolveValue(cmd.Params["from"], env))
		to, okTo := AsNumber(resolveValue(cmd.Params["to"], env))
		if !okFrom || !okTo {
			return nil, flowNone, fmt.Errorf("runtime: for loop needs 'in' or numeric 'from'/'to'")
		}
		for n := from; n <= to; n++ {
			items = append(items, n)
		}
	}
	var last any
	for _, item := range items {
		child := env.Extend()
		child.Define(variable, item)
		value, ctl, err := r.evalBlock(cmd.Body, child)
		if err != nil {
			return nil, flowNone, err
		}
		if ctl == flowReturn {
			return value, flowReturn, nil
		}
		last = value
	}
	return last, flowNone, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r *Runtime) evalTry(cmd *Command, env *Environment) (any, flow, error) {
	value, ctl, err := r.evalBlock(cmd.Body, env.Extend())
	// No catch block means the error propagates after finally runs.
	if err != nil && len(cmd.Else) > 0 {
		catchEnv := env.Extend()
		name := firstNonEmpty(cmd.stringParam("catch"), "error")
		catchEnv.Define(name, err.Error())
		value, ctl, err = r.evalBlock(cmd.Else, catchEnv)
	}
	if len(cmd.Finally) > 0 {
		if _, _, finErr := r.evalBlock(cmd.Finally, env.Extend()); finErr != nil {
			return nil, flowNone, finErr
		}
	}
	return value, ctl, err
}

func (r *Runtime) evalCall(cmd *Command, env *Environment) (any, flow, error) {
	args := r.callArguments(cmd, env)
	if fn, ok := r.lookupFunction(cmd.Name); ok {
		value, err := r.callFunction(fn, args)
		return value, flowNone, err
	}
	if r.opts.Executor == nil {
		return nil, flowNone, fmt.Errorf("runtime: unknown command '%s' and no tool executor configured", cmd.Name)
	}
	params := make(map[string]any, len(cmd.Params))
	for key, raw := range cmd.Params {
		params[key] = resolveValue(raw, env)
	}
	if len(args) > 0 {
		params["args"] = args
	}
	value, err := r.opts.Executor(cmd.Name, params)
	if err != nil {
		return nil, flowNone, fmt.Errorf("runtime: tool '%s': %w", cmd.Name, err)
	}
	return value, flowNone, nil
}

func (r *Runtime) callArguments(cmd *Command, env *Environment) []any {
	raw := cmd.Args
	if raw == nil {
		if list, ok := cmd.Params["args"].([]any); ok {
			raw = list
		}
	}
	args := make([]any, len(raw))
	for i, a := range raw {
		args[i] = resolveValue(a, env)
	}
	return args
}

// callFunction binds arguments positionally into a fresh activation scope
// under the global environment and runs the body. With type checking on,
// argument and return types are validated before use.
func (r *Runtime) callFunction(fn *Function, args []any) (any, error) {
	if r.typeChecking() {
		for i, param := range fn.Params {
			if param.Type == "" || i >= len(args) {
				continue
			}
			expected, err := types.Parse(param.Type)
			if err != nil {
				return nil, fmt.Errorf("runtime: function '%s' parameter '%s': %w", fn.Name, param.Name, err)
			}
			actual := types.Infer(args[i])
			if !types.Compatible(expected, actual) {
				return nil, fmt.Errorf("runtime: function '%s' parameter '%s' expects %s, got %s",
					fn.Name, param.Name, types.Format(expected, types.LocaleEN), types.Format(actual, types.LocaleEN))
			}
		}
	}
	if fn.IsBuiltin() {
		return callBuiltin(fn.Name, args)
	}
	scope := r.global.Extend()
	for i, param := range fn.Params {
		if i < len(args) {
			scope.Define(param.Name, args[i])
		} else {
			scope.Define(param.Name, nil)
		}
	}
	value, ctl, err := r.evalBlock(fn.Body, scope)
	if err != nil {
		return nil, err
	}
	if ctl != flowReturn {
		value = nil
	}
	if fn.ReturnType != "" && r.typeChecking() {
		expected, err := types.Parse(fn.ReturnType)
		if err != nil {
			return nil, fmt.Errorf("runtime: function '%s' return type: %w", fn.Name, err)
		}
		actual := types.Infer(value)
		if !types.Compatible(expected, actual) {
			return nil, fmt.Errorf("runtime: function '%s' should return %s, got %s",
				fn.Name, types.Format(expected, types.LocaleEN), types.Format(actual, types.LocaleEN))
		}
	}
	return value, nil
}

//-----------------------------------------------------------------------------
// Conditions
//-----------------------------------------------------------------------------

var comparisonOps = []string{"==", "!=", ">=", "<=", ">", "<"}

func (r *Runtime) evalCondition(raw any, env *Environment) (bool, error) {
	if s, ok := raw.(string); ok {
		for _, op := range comparisonOps {
			if left, right, found := strings.Cut(s, op); found {
				lv := resolveValue(strings.TrimSpace(left), env)
				rv := resolveValue(strings.TrimSpace(right), env)
				return compareValues(op, lv, rv)
			}
		}
	}
	return Truthy(resolveValue(raw, env)), nil
}

func compareValues(op string, left, right any) (bool, error) {
	if ln, lok := AsNumber(left); lok {
		if rn, rok := AsNumber(right); rok {
			switch op {
			case "==":
				return ln == rn, nil
			case "!=":
				return ln != rn, nil
			case ">":
				return ln > rn, nil
			case "<":
				return ln < rn, nil
			case ">=":
				return ln >= rn, nil
			case "<=":
				return ln <= rn, nil
			}
		}
	}
	ls, rs := Stringify(left), Stringify(right)
	switch op {
	case "==":
		return ls == rs, nil
	case "!=":
		return ls != rs, nil
	case ">":
		return ls > rs, nil
	case "<":
		return ls < rs, nil
	case ">=":
		return ls >= rs, nil
	case "<=":
		return ls <= rs, nil
	default:
		return false, fmt.Errorf("runtime: unsupported comparison '%s'", op)
	}
}

//-----------------------------------------------------------------------------
// Concurrency
//-----------------------------------------------------------------------------

func (r *Runtime) nextTaskName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taskSeq++
	return fmt.Sprintf("task-%d", r.taskSeq)
}

func (r *Runtime) registerTask(task *Task) {
	r.mu.Lock()
	r.tasks[task.Name] = task
	r.mu.Unlock()
}

func (r *Runtime) spawn(name string, body []*Command, env *Environment) *Task {
	task := NewTask(name)
	r.registerTask(task)
	child := env.Extend()
	go func() {
		value, _, err := r.evalBlock(body, child)
		if err != nil {
			task.Fail(err.Error())
			return
		}
		task.Resolve(value)
	}()
	return task
}

// evalParallel starts the block's body as one background task and returns
// its handle without blocking.
func (r *Runtime) evalParallel(cmd *Command, env *Environment) (any, flow, error) {
	name := cmd.stringParam("name")
	if name == "" {
		name = r.nextTaskName()
	}
	task := r.spawn(name, cmd.Body, env)
	env.Define(name, task)
	return task, flowNone, nil
}

// evalWait joins a background task, racing it against the timeout and
// converting either outcome into a Result.
func (r *Runtime) evalWait(cmd *Command, env *Environment) (any, flow, error) {
	timeout := r.timeoutParam(cmd, env, DefaultWaitTimeout)
	target := resolveValue(firstParam(cmd, "task", "for"), env)
	switch v := target.(type) {
	case *Task:
		return v.Await(timeout), flowNone, nil
	case string:
		r.mu.Lock()
		task, ok := r.tasks[v]
		r.mu.Unlock()
		if !ok {
			return nil, flowNone, fmt.Errorf("runtime: no task named '%s'", v)
		}
		return task.Await(timeout), flowNone, nil
	case *Result:
		return v, flowNone, nil
	default:
		// Waiting on an already-materialized value succeeds immediately.
		return Ok(target), flowNone, nil
	}
}

// evalTogether launches every named task concurrently, races the group
// against one shared timeout, and binds each name to its own outcome:
// the resolved value on success, a failure Result otherwise. Partial
// success stays representable.
func (r *Runtime) evalTogether(cmd *Command, env *Environment) (any, flow, error) {
	if len(cmd.Tasks) == 0 {
		return nil, flowNone, fmt.Errorf("runtime: together block needs at least one task")
	}
	timeout := r.timeoutParam(cmd, env, DefaultWaitTimeout)
	deadline := time.Now().Add(timeout)

	handles := make([]*Task, len(cmd.Tasks))
	for i, spec := range cmd.Tasks {
		handles[i] = r.spawn(spec.Name, spec.Body, env)
	}

	results := make(map[string]any, len(cmd.Tasks))
	groupTimedOut := false
	for i, spec := range cmd.Tasks {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			groupTimedOut = true
			results[spec.Name] = Fail(fmt.Sprintf("task '%s' timed out", spec.Name))
			env.Define(spec.Name, results[spec.Name])
			continue
		}
		res := handles[i].Await(remaining)
		if res.Success {
			results[spec.Name] = res.Value
			env.Define(spec.Name, res.Value)
			continue
		}
		if time.Until(deadline) <= 0 {
			groupTimedOut = true
		}
		results[spec.Name] = res
		env.Define(spec.Name, res)
	}
	if groupTimedOut {
		return Fail(fmt.Sprintf("together block timed out after %s", timeout)), flowNone, nil
	}
	return results, flowNone, nil
}

func (r *Runtime) timeoutParam(cmd *Command, env *Environment, fallback time.Duration) time.Duration {
	if raw, ok := cmd.param("timeout"); ok {
		if seconds, ok := AsNumber(resolveValue(raw, env)); ok && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return fallback
}

//-----------------------------------------------------------------------------
// Channels
//-----------------------------------------------------------------------------

func (r *Runtime) evalChannelCreate(cmd *Command, env *Environment) (any, flow, error) {
	name := firstNonEmpty(cmd.stringParam("name"), cmd.stringParam("channel"))
	if name == "" {
		return nil, flowNone, fmt.Errorf("runtime: channel creation needs a 'name' parameter")
	}
	size := DefaultChannelSize
	if n, ok := AsNumber(resolveValue(cmd.Params["size"], env)); ok && n > 0 {
		size = int(n)
	}
	ch := NewChannel(name, size)
	r.mu.Lock()
	r.channels[name] = ch
	r.mu.Unlock()
	env.Define(name, ch)
	return ch, flowNone, nil
}

func (r *Runtime) channelFor(cmd *Command, env *Environment) (*Channel, error) {
	target := resolveValue(firstParam(cmd, "channel", "name"), env)
	switch v := target.(type) {
	case *Channel:
		return v, nil
	case string:
		r.mu.Lock()
		ch, ok := r.channels[v]
		r.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("runtime: channel '%s' not found", v)
		}
		return ch, nil
	default:
		return nil, fmt.Errorf("runtime: '%s' does not name a channel", cmd.Name)
	}
}

func (r *Runtime) evalChannelSend(cmd *Command, env *Environment) (any, flow, error) {
	ch, err := r.channelFor(cmd, env)
	if err != nil {
		return nil, flowNone, err
	}
	value := resolveValue(cmd.Params["value"], env)
	if err := ch.Send(value); err != nil {
		return nil, flowNone, err
	}
	return nil, flowNone, nil
}

func (r *Runtime) evalChannelReceive(cmd *Command, env *Environment) (any, flow, error) {
	ch, err := r.channelFor(cmd, env)
	if err != nil {
		return nil, flowNone, err
	}
	timeout := r.timeoutParam(cmd, env, DefaultWaitTimeout)
	return ch.Receive(timeout), flowNone, nil
}
