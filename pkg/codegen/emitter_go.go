package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rocketlang/core-go/pkg/ast"
	"rocketlang/core-go/pkg/types"
)

// goResultHelpers is emitted once per file, right after the imports.
const goResultHelpers = `type Result[T any] struct {
	Success bool
	Value   T
	Error   error
}

func Success[T any](value T) Result[T] {
	return Result[T]{Success: true, Value: value}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{Success: false, Error: err}
}
`

type goEmitter struct {
	opts     GoOptions
	buf      lineBuffer
	warnings []string
	imports  map[string]struct{}
	wgSeq    int
}

func newGoEmitter(opts GoOptions) *goEmitter {
	if opts.PackageName == "" {
		opts.PackageName = "main"
	}
	return &goEmitter{opts: opts, imports: make(map[string]struct{})}
}

func (e *goEmitter) warnf(format string, args ...any) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

func (e *goEmitter) need(pkg string) {
	e.imports[pkg] = struct{}{}
}

func (e *goEmitter) emit(program *ast.Program) *Result {
	for _, stmt := range program.Body {
		e.statement(stmt)
	}

	var header lineBuffer
	header.writef("package %s", e.opts.PackageName)
	header.blank()
	if len(e.imports) > 0 {
		pkgs := make([]string, 0, len(e.imports))
		for pkg := range e.imports {
			pkgs = append(pkgs, pkg)
		}
		sort.Strings(pkgs)
		header.writef("import (")
		for _, pkg := range pkgs {
			header.writef("\t%q", pkg)
		}
		header.writef(")")
		header.blank()
	}

	code := header.String() + goResultHelpers + "\n" + e.buf.String()
	return &Result{Target: TargetGo, Code: code, Warnings: e.warnings}
}

// goType maps a RocketLang type annotation to target syntax. Unresolvable
// annotations degrade to interface{}.
func goType(annotation string) string {
	if annotation == "" {
		return "interface{}"
	}
	parsed, err := types.Parse(annotation)
	if err != nil {
		return "interface{}"
	}
	return goTypeOf(parsed)
}

func goTypeOf(t types.Type) string {
	switch v := t.(type) {
	case types.PrimitiveType:
		switch v.Name {
		case types.PrimitiveNumber:
			return "float64"
		case types.PrimitiveText:
			return "string"
		case types.PrimitiveBool:
			return "bool"
		default:
			return "interface{}"
		}
	case types.GenericType:
		switch v.Name {
		case types.GenericList:
			return "[]" + goTypeOf(v.Args[0])
		case types.GenericMap:
			return fmt.Sprintf("map[%s]%s", goTypeOf(v.Args[0]), goTypeOf(v.Args[1]))
		case types.GenericChannel:
			return "chan " + goTypeOf(v.Args[0])
		default:
			return "interface{}"
		}
	case types.ResultType:
		return fmt.Sprintf("Result[%s]", goTypeOf(v.Value))
	case types.MaybeType:
		return "*" + goTypeOf(v.Inner)
	default:
		return "interface{}"
	}
}

func (e *goEmitter) statement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		if s.TypeAnnotation != "" {
			e.buf.writef("var %s %s = %s", s.Name, goType(s.TypeAnnotation), e.expression(s.Value))
		} else {
			e.buf.writef("%s := %s", s.Name, e.expression(s.Value))
		}
	case *ast.FunctionDeclaration:
		params := make([]string, len(s.Params))
		for i, p := range s.Params {
			params[i] = fmt.Sprintf("%s %s", p.Name, goType(p.TypeAnnotation))
		}
		signature := fmt.Sprintf("func %s(%s)", s.Name, strings.Join(params, ", "))
		if s.ReturnType != "" {
			signature += " " + goType(s.ReturnType)
		}
		e.buf.writef("%s {", signature)
		e.block(s.Body)
		e.buf.writef("}")
		e.buf.blank()
	case *ast.IfStatement:
		e.buf.writef("if %s {", e.expression(s.Condition))
		e.block(s.Then)
		for _, clause := range s.ElseIfs {
			e.buf.writef("} else if %s {", e.expression(clause.Condition))
			e.block(clause.Body)
		}
		if len(s.Else) > 0 {
			e.buf.writef("} else {")
			e.block(s.Else)
		}
		e.buf.writef("}")
	case *ast.ForStatement:
		if s.Iterable != nil {
			e.buf.writef("for _, %s := range %s {", s.Variable, e.expression(s.Iterable))
		} else {
			e.buf.writef("for %s := %s; %s <= %s; %s++ {",
				s.Variable, e.expression(s.From), s.Variable, e.expression(s.To), s.Variable)
		}
		e.block(s.Body)
		e.buf.writef("}")
	case *ast.WhileStatement:
		e.buf.writef("for %s {", e.expression(s.Condition))
		e.block(s.Body)
		e.buf.writef("}")
	case *ast.ReturnStatement:
		if s.Value != nil {
			e.buf.writef("return %s", e.expression(s.Value))
		} else {
			e.buf.writef("return")
		}
	case *ast.TypeAlias:
		e.buf.writef("type %s = %s", s.Name, goType(s.Type))
	case *ast.ParallelBlock:
		e.waitGroup(s.Body, nil)
	case *ast.TogetherBlock:
		names := make([]string, len(s.Tasks))
		bodies := make([][]ast.Statement, len(s.Tasks))
		for i, task := range s.Tasks {
			names[i] = task.Name
			bodies[i] = task.Body
		}
		e.waitGroup(nil, &togetherSpec{names: names, bodies: bodies})
	case *ast.ExpressionStatement:
		e.buf.writef("%s", e.expression(s.Expression))
	case *ast.TryStatement, *ast.ImportStatement, *ast.ExportStatement:
		e.warnf("go: unsupported statement %s", stmt.NodeType())
		e.buf.writef("// unsupported: %s", stmt.NodeType())
	default:
		e.warnf("go: unsupported statement %s", stmt.NodeType())
		e.buf.writef("// unsupported: %s", stmt.NodeType())
	}
}

type togetherSpec struct {
	names  []string
	bodies [][]ast.Statement
}

// waitGroup lowers parallel/together blocks: one goroutine per sub-task,
// synchronized by a counter; together pre-declares one result variable per
// named task and recovers failures into it.
func (e *goEmitter) waitGroup(body []ast.Statement, together *togetherSpec) {
	e.need("sync")
	e.wgSeq++
	wg := fmt.Sprintf("wg%d", e.wgSeq)

	count := len(body)
	if together != nil {
		count = len(together.names)
		for _, name := range together.names {
			e.buf.writef("var %s Result[interface{}]", name)
		}
	}
	e.buf.writef("var %s sync.WaitGroup", wg)
	e.buf.writef("%s.Add(%d)", wg, count)

	spawn := func(assign string, stmts []ast.Statement) {
		e.buf.writef("go func() {")
		e.buf.indent++
		e.buf.writef("defer %s.Done()", wg)
		if assign != "" {
			e.need("fmt")
			e.buf.writef("defer func() {")
			e.buf.indent++
			e.buf.writef("if r := recover(); r != nil {")
			e.buf.indent++
			e.buf.writef("%s = Failure[interface{}](fmt.Errorf(\"%%v\", r))", assign)
			e.buf.indent--
			e.buf.writef("}")
			e.buf.indent--
			e.buf.writef("}()")
		}
		for _, stmt := range stmts {
			e.statement(stmt)
		}
		if assign != "" {
			// A task without a trailing expression still completed.
			e.buf.writef("%s = Success[interface{}](nil)", assign)
		}
		e.buf.indent--
		e.buf.writef("}()")
	}

	if together != nil {
		for i, name := range together.names {
			stmts := together.bodies[i]
			// The task's final expression becomes its Result value.
			if n := len(stmts); n > 0 {
				if last, ok := stmts[n-1].(*ast.ExpressionStatement); ok {
					e.buf.writef("// task %s", name)
					head := stmts[:n-1]
					e.spawnTogether(wg, name, head, last.Expression)
					continue
				}
			}
			spawn(name, stmts)
		}
	} else {
		for _, stmt := range body {
			spawn("", []ast.Statement{stmt})
		}
	}
	e.buf.writef("%s.Wait()", wg)
}

func (e *goEmitter) spawnTogether(wg, name string, head []ast.Statement, last ast.Expression) {
	e.need("fmt")
	e.buf.writef("go func() {")
	e.buf.indent++
	e.buf.writef("defer %s.Done()", wg)
	e.buf.writef("defer func() {")
	e.buf.indent++
	e.buf.writef("if r := recover(); r != nil {")
	e.buf.indent++
	e.buf.writef("%s = Failure[interface{}](fmt.Errorf(\"%%v\", r))", name)
	e.buf.indent--
	e.buf.writef("}")
	e.buf.indent--
	e.buf.writef("}()")
	for _, stmt := range head {
		e.statement(stmt)
	}
	e.buf.writef("%s = Success[interface{}](%s)", name, e.expression(last))
	e.buf.indent--
	e.buf.writef("}()")
}

func (e *goEmitter) block(body []ast.Statement) {
	e.buf.indent++
	for _, stmt := range body {
		e.statement(stmt)
	}
	e.buf.indent--
}

func (e *goEmitter) expression(expr ast.Expression) string {
	switch x := expr.(type) {
	case nil:
		return "nil"
	case *ast.Literal:
		return goLiteral(x.Value)
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
		callee := e.expression(x.Callee)
		if id, ok := x.Callee.(*ast.Identifier); ok && id.Name == "print" {
			e.need("fmt")
			callee = "fmt.Println"
		}
		return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
	case *ast.MemberExpression:
		return fmt.Sprintf("%s.%s", e.expression(x.Object), x.Property)
	case *ast.IndexExpression:
		return fmt.Sprintf("%s[%s]", e.expression(x.Object), e.expression(x.Index))
	case *ast.ArrayLiteral:
		elems := make([]string, len(x.Elements))
		for i, elem := range x.Elements {
			elems[i] = e.expression(elem)
		}
		return fmt.Sprintf("[]interface{}{%s}", strings.Join(elems, ", "))
	case *ast.ObjectLiteral:
		fields := make([]string, len(x.Fields))
		for i, field := range x.Fields {
			fields[i] = fmt.Sprintf("%q: %s", field.Key, e.expression(field.Value))
		}
		return fmt.Sprintf("map[string]interface{}{%s}", strings.Join(fields, ", "))
	case *ast.ResultExpression:
		if x.Success {
			return fmt.Sprintf("Success[interface{}](%s)", e.expression(x.Value))
		}
		e.need("fmt")
		return fmt.Sprintf("Failure[interface{}](fmt.Errorf(\"%%v\", %s))", e.expression(x.Error))
	case *ast.ChannelExpression:
		switch x.Op {
		case ast.ChannelCreate:
			size := "10"
			if x.Size != nil {
				size = e.expression(x.Size)
			}
			return fmt.Sprintf("make(chan interface{}, %s)", size)
		case ast.ChannelSend:
			return fmt.Sprintf("%s <- %s", x.Channel, e.expression(x.Value))
		default:
			return fmt.Sprintf("<-%s", x.Channel)
		}
	case *ast.PipeExpression:
		return fmt.Sprintf("%s(%s)", e.expression(x.Right), e.expression(x.Left))
	case *ast.AwaitExpression:
		// Joins are expressed via the wait-group lowering; a bare await is
		// already synchronous in the Go model.
		return e.expression(x.Operand)
	case *ast.TemplateString:
		e.need("fmt")
		var format strings.Builder
		var args []string
		for _, part := range x.Parts {
			if part.Expr != nil {
				format.WriteString("%v")
				args = append(args, e.expression(part.Expr))
			} else {
				format.WriteString(strings.ReplaceAll(part.Text, "%", "%%"))
			}
		}
		if len(args) == 0 {
			return strconv.Quote(format.String())
		}
		return fmt.Sprintf("fmt.Sprintf(%q, %s)", format.String(), strings.Join(args, ", "))
	default:
		e.warnf("go: unsupported expression %s", expr.NodeType())
		return fmt.Sprintf("/* unsupported: %s */ nil", expr.NodeType())
	}
}

func goLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
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
