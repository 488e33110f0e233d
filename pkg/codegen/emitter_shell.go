package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"rocketlang/core-go/pkg/ast"
)

// shellEmitter lowers a deliberately small subset of the language to POSIX
// sh: variables, echo, arithmetic, if/for/while, and functions with
// positional parameters. Everything else produces a warning and a marker
// comment so the script stays runnable around the gap.
type shellEmitter struct {
	opts     ShellOptions
	buf      lineBuffer
	warnings []string
}

func newShellEmitter(opts ShellOptions) *shellEmitter {
	if opts.Shebang == "" {
		opts.Shebang = "#!/bin/sh"
	}
	return &shellEmitter{opts: opts}
}

func (e *shellEmitter) warnf(format string, args ...any) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

func (e *shellEmitter) emit(program *ast.Program) *Result {
	e.buf.writef("%s", e.opts.Shebang)
	e.buf.blank()
	for _, stmt := range program.Body {
		e.statement(stmt)
	}
	return &Result{Target: TargetShell, Code: e.buf.String(), Warnings: e.warnings}
}

func (e *shellEmitter) unsupported(kind ast.NodeType) {
	e.warnf("sh: unsupported construct %s", kind)
	e.buf.writef("# unsupported: %s", kind)
}

func (e *shellEmitter) statement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		if s.TypeAnnotation != "" {
			e.warnf("sh: type annotation on %q ignored", s.Name)
		}
		value, ok := e.expression(s.Value)
		if !ok {
			e.unsupported(s.Value.NodeType())
			return
		}
		e.buf.writef("%s=%s", s.Name, value)
	case *ast.FunctionDeclaration:
		if s.ReturnType != "" || s.Async {
			e.warnf("sh: function %q loses its type signature", s.Name)
		}
		e.buf.writef("%s() {", s.Name)
		e.buf.indent++
		for i, p := range s.Params {
			e.buf.writef("%s=$%d", p.Name, i+1)
		}
		for _, inner := range s.Body {
			e.statement(inner)
		}
		e.buf.indent--
		e.buf.writef("}")
	case *ast.IfStatement:
		cond, ok := e.condition(s.Condition)
		if !ok {
			e.unsupported(s.Condition.NodeType())
			return
		}
		e.buf.writef("if %s; then", cond)
		e.block(s.Then)
		for _, clause := range s.ElseIfs {
			elifCond, elifOK := e.condition(clause.Condition)
			if !elifOK {
				e.unsupported(clause.Condition.NodeType())
				continue
			}
			e.buf.writef("elif %s; then", elifCond)
			e.block(clause.Body)
		}
		if len(s.Else) > 0 {
			e.buf.writef("else")
			e.block(s.Else)
		}
		e.buf.writef("fi")
	case *ast.ForStatement:
		if s.Iterable != nil {
			items, ok := e.iterable(s.Iterable)
			if !ok {
				e.unsupported(s.Iterable.NodeType())
				return
			}
			e.buf.writef("for %s in %s; do", s.Variable, items)
		} else {
			from, fromOK := e.expression(s.From)
			to, toOK := e.expression(s.To)
			if !fromOK || !toOK {
				e.unsupported(s.NodeType())
				return
			}
			e.buf.writef("for %s in $(seq %s %s); do", s.Variable, from, to)
		}
		e.block(s.Body)
		e.buf.writef("done")
	case *ast.WhileStatement:
		cond, ok := e.condition(s.Condition)
		if !ok {
			e.unsupported(s.Condition.NodeType())
			return
		}
		e.buf.writef("while %s; do", cond)
		e.block(s.Body)
		e.buf.writef("done")
	case *ast.ReturnStatement:
		if s.Value == nil {
			e.buf.writef("return")
			return
		}
		value, ok := e.expression(s.Value)
		if !ok {
			e.unsupported(s.Value.NodeType())
			return
		}
		// Shell functions hand values back on stdout.
		e.buf.writef("echo %s", value)
		e.buf.writef("return")
	case *ast.ExpressionStatement:
		e.expressionStatement(s.Expression)
	case *ast.TypeAlias:
		e.warnf("sh: type alias %q has no shell equivalent", s.Name)
		e.buf.writef("# unsupported: %s", s.NodeType())
	case *ast.ParallelBlock, *ast.TogetherBlock:
		e.warnf("sh: concurrency blocks are not expressible in the shell subset")
		e.buf.writef("# unsupported: %s", stmt.NodeType())
	default:
		e.unsupported(stmt.NodeType())
	}
}

func (e *shellEmitter) block(body []ast.Statement) {
	e.buf.indent++
	if len(body) == 0 {
		e.buf.writef(":")
	}
	for _, stmt := range body {
		e.statement(stmt)
	}
	e.buf.indent--
}

func (e *shellEmitter) expressionStatement(expr ast.Expression) {
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		e.unsupported(expr.NodeType())
		return
	}
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok {
		e.unsupported(call.Callee.NodeType())
		return
	}
	args := make([]string, 0, len(call.Args))
	for _, arg := range call.Args {
		value, argOK := e.expression(arg)
		if !argOK {
			e.unsupported(arg.NodeType())
			return
		}
		args = append(args, value)
	}
	name := callee.Name
	if name == "print" {
		name = "echo"
	}
	if len(args) == 0 {
		e.buf.writef("%s", name)
		return
	}
	e.buf.writef("%s %s", name, strings.Join(args, " "))
}

// condition renders a boolean test for if/while. Comparisons become test(1)
// invocations; bare expressions are tested for non-emptiness.
func (e *shellEmitter) condition(expr ast.Expression) (string, bool) {
	if bin, ok := expr.(*ast.BinaryExpression); ok {
		op, known := shellComparisons[bin.Operator]
		if known {
			left, leftOK := e.expression(bin.Left)
			right, rightOK := e.expression(bin.Right)
			if !leftOK || !rightOK {
				return "", false
			}
			return fmt.Sprintf("[ %s %s %s ]", left, op, right), true
		}
	}
	value, ok := e.expression(expr)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("[ -n %s ]", value), true
}

var shellComparisons = map[string]string{
	"==": "=",
	"!=": "!=",
	">":  "-gt",
	"<":  "-lt",
	">=": "-ge",
	"<=": "-le",
}

func (e *shellEmitter) iterable(expr ast.Expression) (string, bool) {
	if arr, ok := expr.(*ast.ArrayLiteral); ok {
		items := make([]string, 0, len(arr.Elements))
		for _, elem := range arr.Elements {
			value, elemOK := e.expression(elem)
			if !elemOK {
				return "", false
			}
			items = append(items, value)
		}
		return strings.Join(items, " "), true
	}
	if value, ok := e.expression(expr); ok {
		return value, true
	}
	return "", false
}

// expression renders the expression subset the shell backend understands.
// The second return is false for constructs outside the subset.
func (e *shellEmitter) expression(expr ast.Expression) (string, bool) {
	switch x := expr.(type) {
	case *ast.Literal:
		return shellLiteral(x.Value), true
	case *ast.Identifier:
		return fmt.Sprintf("\"$%s\"", x.Name), true
	case *ast.BinaryExpression:
		if _, comparison := shellComparisons[x.Operator]; comparison {
			return e.condition(x)
		}
		left, leftOK := e.expression(x.Left)
		right, rightOK := e.expression(x.Right)
		if !leftOK || !rightOK {
			return "", false
		}
		return fmt.Sprintf("$((%s %s %s))", stripQuotes(left), x.Operator, stripQuotes(right)), true
	case *ast.CallExpression:
		callee, ok := x.Callee.(*ast.Identifier)
		if !ok {
			return "", false
		}
		args := make([]string, 0, len(x.Args))
		for _, arg := range x.Args {
			value, argOK := e.expression(arg)
			if !argOK {
				return "", false
			}
			args = append(args, value)
		}
		if len(args) == 0 {
			return fmt.Sprintf("\"$(%s)\"", callee.Name), true
		}
		return fmt.Sprintf("\"$(%s %s)\"", callee.Name, strings.Join(args, " ")), true
	case *ast.TemplateString:
		var sb strings.Builder
		for _, part := range x.Parts {
			if part.Expr != nil {
				id, ok := part.Expr.(*ast.Identifier)
				if !ok {
					return "", false
				}
				sb.WriteString("${" + id.Name + "}")
				continue
			}
			sb.WriteString(part.Text)
		}
		return strconv.Quote(sb.String()), true
	default:
		return "", false
	}
}

// stripQuotes unwraps "$x" to $x for arithmetic contexts.
func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func shellLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "\"\""
	case string:
		return strconv.Quote(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return strconv.Quote(fmt.Sprintf("%v", v))
	}
}
