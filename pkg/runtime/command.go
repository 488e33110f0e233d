package runtime

import (
	"strings"

	"rocketlang/core-go/pkg/ast"
)

// Op is the canonical operation a command keyword resolves to. Synonyms are
// normalized exactly once, when the command is built, so the evaluator
// switches over a closed set instead of re-matching strings per call.
type Op int

const (
	// OpCall covers keywords that are not language constructs: user or
	// built-in function names, and anything else falls through to the
	// injected tool executor.
	OpCall Op = iota
	OpLet
	OpConst
	OpFunction
	OpReturn
	OpIf
	OpFor
	OpWhile
	OpTry
	OpSuccess
	OpFailure
	OpParallel
	OpWait
	OpTogether
	OpChannelCreate
	OpChannelSend
	OpChannelReceive
	OpChannelClose
	OpPrint
)

// keywordOps maps every accepted keyword synonym (English plus romanized
// Hindi) to its canonical operation.
var keywordOps = map[string]Op{
	"let":   OpLet,
	"set":   OpLet,
	"banao": OpLet,
	"rakho": OpLet,
	"const": OpConst,
	"sthir": OpConst,
	"achal": OpConst,

	"function": OpFunction,
	"func":     OpFunction,
	"kaam":     OpFunction,
	"karya":    OpFunction,
	"return":   OpReturn,
	"wapas":    OpReturn,

	"if":     OpIf,
	"agar":   OpIf,
	"for":    OpFor,
	"har":    OpFor,
	"while":  OpWhile,
	"jabtak": OpWhile,

	"try":     OpTry,
	"koshish": OpTry,

	"success": OpSuccess,
	"safal":   OpSuccess,
	"failure": OpFailure,
	"asafal":  OpFailure,
	"vifal":   OpFailure,

	"parallel": OpParallel,
	"saath":    OpParallel,
	"wait":     OpWait,
	"ruko":     OpWait,
	"together": OpTogether,
	"sabsaath": OpTogether,
	"milkar":   OpTogether,

	"make_channel":  OpChannelCreate,
	"nali_banao":    OpChannelCreate,
	"send":          OpChannelSend,
	"bhejo":         OpChannelSend,
	"receive":       OpChannelReceive,
	"pakdo":         OpChannelReceive,
	"close_channel": OpChannelClose,
	"nali_band":     OpChannelClose,

	"print":  OpPrint,
	"dikhao": OpPrint,
	"bolo":   OpPrint,
}

// ResolveOp maps a raw keyword to its canonical operation. Unrecognized
// keywords resolve to OpCall and are handled by name at dispatch time.
func ResolveOp(keyword string) Op {
	if op, ok := keywordOps[strings.ToLower(strings.TrimSpace(keyword))]; ok {
		return op
	}
	return OpCall
}

// TaskSpec is one named sub-task of a together block. Order matters: tasks
// launch in declaration order.
type TaskSpec struct {
	Name string     `json:"name"`
	Body []*Command `json:"body"`
}

// Command is one executable unit produced by the (externally injected)
// command parser. Op is derived from Name at construction.
type Command struct {
	Op      Op             `json:"-"`
	Name    string         `json:"name"`
	Params  map[string]any `json:"params,omitempty"`
	Args    []any          `json:"args,omitempty"`
	Body    []*Command     `json:"body,omitempty"`
	Else    []*Command     `json:"else,omitempty"`
	Finally []*Command     `json:"finally,omitempty"`
	Tasks   []TaskSpec     `json:"tasks,omitempty"`
	Pos     *ast.Position  `json:"pos,omitempty"`
}

// NewCommand builds a command and resolves its canonical operation.
func NewCommand(name string, params map[string]any) *Command {
	if params == nil {
		params = make(map[string]any)
	}
	return &Command{Op: ResolveOp(name), Name: name, Params: params}
}

// WithBody attaches a nested block and returns the command for chaining.
func (c *Command) WithBody(body ...*Command) *Command {
	c.Body = body
	return c
}

// WithArgs attaches positional call arguments.
func (c *Command) WithArgs(args ...any) *Command {
	c.Args = args
	return c
}

// param reads a named parameter, tolerating a nil map.
func (c *Command) param(key string) (any, bool) {
	if c.Params == nil {
		return nil, false
	}
	v, ok := c.Params[key]
	return v, ok
}

func (c *Command) stringParam(key string) string {
	if v, ok := c.param(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
