package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"rocketlang/core-go/pkg/ast"
)

// jsPreamble provides the runtime helpers generated code relies on:
// Result/Maybe constructors, a channel with buffer + waiter queue matching
// the interpreter's semantics, and the parallel/together combinators.
const jsPreamble = `// RocketLang runtime helpers
const success = (value) => ({ success: true, value });
const failure = (error) => ({ success: false, error: String(error) });
const some = (value) => ({ present: true, value });
const none = () => ({ present: false });

function makeChannel(maxSize = 10) {
  const buffer = [];
  const waiters = [];
  let closed = false;
  return {
    send(value) {
      if (closed) throw new Error('channel is closed');
      const waiter = waiters.shift();
      if (waiter) { waiter(success(value)); return; }
      if (buffer.length >= maxSize) throw new Error('channel buffer full');
      buffer.push(value);
    },
    receive(timeoutMs = 30000) {
      if (buffer.length > 0) return Promise.resolve(success(buffer.shift()));
      if (closed) return Promise.resolve(failure('channel is closed'));
      return new Promise((resolve) => {
        const timer = setTimeout(() => {
          const idx = waiters.indexOf(settle);
          if (idx >= 0) waiters.splice(idx, 1);
          resolve(failure('timeout waiting on channel'));
        }, timeoutMs);
        const settle = (result) => { clearTimeout(timer); resolve(result); };
        waiters.push(settle);
      });
    },
    close() {
      closed = true;
      while (waiters.length > 0) waiters.shift()(failure('channel is closed'));
    },
  };
}

async function parallel(tasks) {
  return Promise.all(tasks.map((task) =>
    Promise.resolve().then(task).then(success, failure)));
}

async function together(tasks) {
  const names = Object.keys(tasks);
  const settled = await parallel(names.map((name) => tasks[name]));
  const results = {};
  names.forEach((name, i) => { results[name] = settled[i]; });
  return results;
}
`

type jsEmitter struct {
	opts     JSOptions
	buf      lineBuffer
	warnings []string
	imports  []string

	// fnDepth tracks function nesting; topAwait records that an await was
	// emitted at depth zero, which CommonJS only allows inside an async
	// wrapper.
	fnDepth  int
	topAwait bool
}

func newJSEmitter(opts JSOptions) *jsEmitter {
	return &jsEmitter{opts: opts}
}

func (e *jsEmitter) warnf(format string, args ...any) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

func (e *jsEmitter) emit(program *ast.Program) *Result {
	for _, stmt := range program.Body {
		e.statement(stmt)
	}
	body := e.buf.String()
	if e.topAwait && !e.opts.ESModules {
		// CommonJS has no top-level await; run the program inside an
		// async IIFE so the file stays loadable with require().
		var b strings.Builder
		b.WriteString("(async () => {\n")
		for _, line := range e.buf.lines {
			if line != "" {
				b.WriteString("\t")
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
		b.WriteString("})();\n")
		body = b.String()
	}
	code := jsPreamble + "\n" + body
	return &Result{Target: TargetJS, Code: code, Warnings: e.warnings, Imports: e.imports}
}

func (e *jsEmitter) markAwait() {
	if e.fnDepth == 0 {
		e.topAwait = true
	}
}

func (e *jsEmitter) statement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		keyword := "let"
		if s.Const {
			keyword = "const"
		}
		e.buf.writef("%s %s = %s;", keyword, s.Name, e.expression(s.Value))
	case *ast.FunctionDeclaration:
		prefix := ""
		if s.Async {
			prefix = "async "
		}
		e.buf.writef("%sfunction %s(%s) {", prefix, s.Name, jsParams(s.Params))
		e.fnDepth++
		e.block(s.Body)
		e.fnDepth--
		e.buf.writef("}")
	case *ast.IfStatement:
		e.buf.writef("if (%s) {", e.expression(s.Condition))
		e.block(s.Then)
		for _, clause := range s.ElseIfs {
			e.buf.writef("} else if (%s) {", e.expression(clause.Condition))
			e.block(clause.Body)
		}
		if len(s.Else) > 0 {
			e.buf.writef("} else {")
			e.block(s.Else)
		}
		e.buf.writef("}")
	case *ast.ForStatement:
		if s.Iterable != nil {
			e.buf.writef("for (const %s of %s) {", s.Variable, e.expression(s.Iterable))
		} else {
			e.buf.writef("for (let %s = %s; %s <= %s; %s++) {",
				s.Variable, e.expression(s.From), s.Variable, e.expression(s.To), s.Variable)
		}
		e.block(s.Body)
		e.buf.writef("}")
	case *ast.WhileStatement:
		e.buf.writef("while (%s) {", e.expression(s.Condition))
		e.block(s.Body)
		e.buf.writef("}")
	case *ast.TryStatement:
		e.buf.writef("try {")
		e.block(s.Body)
		param := s.CatchParam
		if param == "" {
			param = "error"
		}
		e.buf.writef("} catch (%s) {", param)
		e.block(s.Catch)
		if len(s.Finally) > 0 {
			e.buf.writef("} finally {")
			e.block(s.Finally)
		}
		e.buf.writef("}")
	case *ast.ReturnStatement:
		if s.Value != nil {
			e.buf.writef("return %s;", e.expression(s.Value))
		} else {
			e.buf.writef("return;")
		}
	case *ast.ImportStatement:
		e.importStatement(s)
	case *ast.ExportStatement:
		e.exportStatement(s)
	case *ast.TypeAlias:
		// JS has no type layer; keep the alias visible for readers.
		e.buf.writef("// type %s = %s", s.Name, s.Type)
	case *ast.ParallelBlock:
		e.markAwait()
		e.buf.writef("await parallel([")
		e.buf.indent++
		for _, task := range s.Body {
			e.buf.writef("async () => {")
			e.block([]ast.Statement{task})
			e.buf.writef("},")
		}
		e.buf.indent--
		e.buf.writef("]);")
	case *ast.TogetherBlock:
		names := make([]string, len(s.Tasks))
		for i, task := range s.Tasks {
			names[i] = task.Name
		}
		e.markAwait()
		e.buf.writef("const { %s } = await together({", strings.Join(names, ", "))
		e.buf.indent++
		for _, task := range s.Tasks {
			e.buf.writef("%s: async () => {", task.Name)
			e.block(task.Body)
			e.buf.writef("},")
		}
		e.buf.indent--
		e.buf.writef("});")
	case *ast.ExpressionStatement:
		e.buf.writef("%s;", e.expression(s.Expression))
	default:
		e.warnf("js: unsupported statement %s", stmt.NodeType())
		e.buf.writef("// unsupported: %s", stmt.NodeType())
	}
}

func (e *jsEmitter) block(body []ast.Statement) {
	e.buf.indent++
	for _, stmt := range body {
		e.statement(stmt)
	}
	e.buf.indent--
}

func (e *jsEmitter) importStatement(s *ast.ImportStatement) {
	e.imports = append(e.imports, s.Source)
	source := strconv.Quote(s.Source)
	switch {
	case s.Namespace != "":
		if e.opts.ESModules {
			e.buf.writef("import * as %s from %s;", s.Namespace, source)
		} else {
			e.buf.writef("const %s = require(%s);", s.Namespace, source)
		}
	case s.All:
		if e.opts.ESModules {
			e.buf.writef("import %s from %s;", moduleBinding(s.Source), source)
		} else {
			e.buf.writef("const %s = require(%s);", moduleBinding(s.Source), source)
		}
	default:
		bindings := make([]string, len(s.Items))
		for i, item := range s.Items {
			if item.Alias != "" && item.Alias != item.Name {
				if e.opts.ESModules {
					bindings[i] = fmt.Sprintf("%s as %s", item.Name, item.Alias)
				} else {
					bindings[i] = fmt.Sprintf("%s: %s", item.Name, item.Alias)
				}
			} else {
				bindings[i] = item.Name
			}
		}
		if e.opts.ESModules {
			e.buf.writef("import { %s } from %s;", strings.Join(bindings, ", "), source)
		} else {
			e.buf.writef("const { %s } = require(%s);", strings.Join(bindings, ", "), source)
		}
	}
}

func (e *jsEmitter) exportStatement(s *ast.ExportStatement) {
	if s.Declaration != nil {
		start := len(e.buf.lines)
		e.statement(s.Declaration)
		if e.opts.ESModules {
			if start < len(e.buf.lines) {
				indent := strings.Repeat("\t", e.buf.indent)
				e.buf.lines[start] = indent + "export " + strings.TrimPrefix(e.buf.lines[start], indent)
			}
			return
		}
		if named, ok := exportedName(s.Declaration); ok {
			e.buf.writef("module.exports.%s = %s;", named, named)
		}
		return
	}
	if e.opts.ESModules {
		e.buf.writef("export { %s };", strings.Join(s.Names, ", "))
		return
	}
	for _, name := range s.Names {
		e.buf.writef("module.exports.%s = %s;", name, name)
	}
}

func exportedName(stmt ast.Statement) (string, bool) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return s.Name, true
	case *ast.FunctionDeclaration:
		return s.Name, true
	default:
		return "", false
	}
}

func moduleBinding(source string) string {
	name := source
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, ".rl")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "mod"
	}
	return b.String()
}

func jsParams(params []*ast.FunctionParameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func (e *jsEmitter) expression(expr ast.Expression) string {
	switch x := expr.(type) {
	case nil:
		return "undefined"
	case *ast.Literal:
		return jsLiteral(x.Value)
	case *ast.Identifier:
		return x.Name
	case *ast.BinaryExpression:
		return fmt.Sprintf("(%s %s %s)", e.expression(x.Left), x.Operator, e.expression(x.Right))
	case *ast.UnaryExpression:
		return fmt.Sprintf("%s%s", x.Operator, e.expression(x.Operand))
	case *ast.CallExpression:
		args := make([]string, len(x.Args))
		for i, arg := range x.Args {
			args[i] = e.expression(arg)
		}
		return fmt.Sprintf("%s(%s)", e.expression(x.Callee), strings.Join(args, ", "))
	case *ast.MemberExpression:
		return fmt.Sprintf("%s.%s", e.expression(x.Object), x.Property)
	case *ast.IndexExpression:
		return fmt.Sprintf("%s[%s]", e.expression(x.Object), e.expression(x.Index))
	case *ast.ConditionalExpression:
		return fmt.Sprintf("(%s ? %s : %s)",
			e.expression(x.Test), e.expression(x.Consequent), e.expression(x.Alternate))
	case *ast.ArrowFunction:
		prefix := ""
		if x.Async {
			prefix = "async "
		}
		if x.Expr != nil {
			return fmt.Sprintf("%s(%s) => %s", prefix, jsParams(x.Params), e.expression(x.Expr))
		}
		sub := newJSEmitter(e.opts)
		sub.block(x.Body)
		body := strings.Join(sub.buf.lines, "\n")
		e.warnings = append(e.warnings, sub.warnings...)
		return fmt.Sprintf("%s(%s) => {\n%s\n}", prefix, jsParams(x.Params), body)
	case *ast.ArrayLiteral:
		elems := make([]string, len(x.Elements))
		for i, elem := range x.Elements {
			elems[i] = e.expression(elem)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *ast.ObjectLiteral:
		fields := make([]string, len(x.Fields))
		for i, field := range x.Fields {
			fields[i] = fmt.Sprintf("%s: %s", field.Key, e.expression(field.Value))
		}
		return "{ " + strings.Join(fields, ", ") + " }"
	case *ast.AwaitExpression:
		e.markAwait()
		return fmt.Sprintf("await %s", e.expression(x.Operand))
	case *ast.ResultExpression:
		if x.Success {
			return fmt.Sprintf("success(%s)", e.expression(x.Value))
		}
		return fmt.Sprintf("failure(%s)", e.expression(x.Error))
	case *ast.ChannelExpression:
		switch x.Op {
		case ast.ChannelCreate:
			if x.Size != nil {
				return fmt.Sprintf("makeChannel(%s)", e.expression(x.Size))
			}
			return "makeChannel()"
		case ast.ChannelSend:
			return fmt.Sprintf("%s.send(%s)", x.Channel, e.expression(x.Value))
		default:
			e.markAwait()
			return fmt.Sprintf("await %s.receive()", x.Channel)
		}
	case *ast.PipeExpression:
		return fmt.Sprintf("%s(%s)", e.expression(x.Right), e.expression(x.Left))
	case *ast.TemplateString:
		var b strings.Builder
		b.WriteString("`")
		for _, part := range x.Parts {
			if part.Expr != nil {
				b.WriteString("${" + e.expression(part.Expr) + "}")
			} else {
				b.WriteString(part.Text)
			}
		}
		b.WriteString("`")
		return b.String()
	default:
		e.warnf("js: unsupported expression %s", expr.NodeType())
		return fmt.Sprintf("/* unsupported: %s */ undefined", expr.NodeType())
	}
}

func jsLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
