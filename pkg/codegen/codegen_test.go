package codegen

import (
	"strings"
	"testing"

	"rocketlang/core-go/pkg/ast"
)

// simpleProgram is the cross-target smoke program: a binding and a call.
func simpleProgram() *ast.Program {
	return ast.NewProgram([]ast.Statement{
		ast.NewVariableDeclaration("greeting", ast.NewLiteral("hello"), false),
		ast.NewExpressionStatement(ast.NewCallExpression(
			ast.NewIdentifier("print"),
			[]ast.Expression{ast.NewIdentifier("greeting")},
		)),
	})
}

func TestCompileAllTargets(t *testing.T) {
	program := simpleProgram()

	js, err := Compile(program, Options{Target: "js"})
	if err != nil {
		t.Fatalf("js compile failed: %v", err)
	}
	if !strings.Contains(js.Code, "let greeting = \"hello\";") {
		t.Fatalf("js binding missing:\n%s", js.Code)
	}
	if !strings.Contains(js.Code, "print(greeting);") {
		t.Fatalf("js call missing:\n%s", js.Code)
	}
	if strings.Contains(js.Code, "(async () => {") {
		t.Fatalf("await-free programs should not be wrapped:\n%s", js.Code)
	}
	if len(js.Warnings) != 0 {
		t.Fatalf("js warnings: %v", js.Warnings)
	}

	goRes, err := Compile(program, Options{Target: "go"})
	if err != nil {
		t.Fatalf("go compile failed: %v", err)
	}
	if !strings.Contains(goRes.Code, "package main") {
		t.Fatalf("go package header missing:\n%s", goRes.Code)
	}
	if got := strings.Count(goRes.Code, "type Result[T any] struct"); got != 1 {
		t.Fatalf("Result helpers should appear exactly once, got %d", got)
	}
	if !strings.Contains(goRes.Code, "greeting := \"hello\"") {
		t.Fatalf("go binding missing:\n%s", goRes.Code)
	}
	if !strings.Contains(goRes.Code, "fmt.Println(greeting)") {
		t.Fatalf("go print call missing:\n%s", goRes.Code)
	}

	sh, err := Compile(program, Options{Target: "sh"})
	if err != nil {
		t.Fatalf("sh compile failed: %v", err)
	}
	if len(sh.Warnings) != 0 {
		t.Fatalf("the simple program must emit shell without warnings: %v", sh.Warnings)
	}
	if !strings.Contains(sh.Code, "greeting=\"hello\"") {
		t.Fatalf("shell assignment missing:\n%s", sh.Code)
	}
	if !strings.Contains(sh.Code, "echo \"$greeting\"") {
		t.Fatalf("shell echo missing:\n%s", sh.Code)
	}
	if !strings.HasPrefix(sh.Code, "#!/bin/sh\n") {
		t.Fatalf("shell shebang missing:\n%s", sh.Code)
	}
}

func TestNormalizeTargetSynonyms(t *testing.T) {
	cases := map[string]Target{
		"js":         TargetJS,
		"javascript": TargetJS,
		"node":       TargetJS,
		"GO":         TargetGo,
		"golang":     TargetGo,
		" shell ":    TargetShell,
		"bash":       TargetShell,
		"posix":      TargetShell,
	}
	for name, want := range cases {
		got, err := NormalizeTarget(name)
		if err != nil {
			t.Fatalf("NormalizeTarget(%q) failed: %v", name, err)
		}
		if got != want {
			t.Fatalf("NormalizeTarget(%q) = %q, want %q", name, got, want)
		}
	}
	if _, err := NormalizeTarget("cobol"); err == nil {
		t.Fatalf("unknown targets must be rejected")
	}
}

func TestShellWarnsOnUnsupportedConstructs(t *testing.T) {
	program := ast.NewProgram([]ast.Statement{
		ast.NewParallelBlock([]ast.Statement{
			ast.NewExpressionStatement(ast.NewCallExpression(ast.NewIdentifier("work"), nil)),
		}),
	})
	res, err := Compile(program, Options{Target: "sh"})
	if err != nil {
		t.Fatalf("best-effort emission must not fail: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning for the concurrency block")
	}
	if !strings.Contains(res.Code, "# unsupported: ParallelBlock") {
		t.Fatalf("marker comment missing:\n%s", res.Code)
	}
}

func TestFailOnWarnings(t *testing.T) {
	program := ast.NewProgram([]ast.Statement{
		ast.NewParallelBlock(nil),
	})
	if _, err := Compile(program, Options{Target: "sh", FailOnWarnings: true}); err == nil {
		t.Fatalf("FailOnWarnings should turn warnings into an error")
	}
	if _, err := Compile(program, Options{Target: "sh"}); err != nil {
		t.Fatalf("default policy keeps warnings soft: %v", err)
	}
}

func TestJSConcurrencyEmission(t *testing.T) {
	program := ast.NewProgram([]ast.Statement{
		ast.NewTogetherBlock([]*ast.NamedTask{
			ast.NewNamedTask("posts", []ast.Statement{
				ast.NewExpressionStatement(ast.NewCallExpression(ast.NewIdentifier("fetchPosts"), nil)),
			}),
			ast.NewNamedTask("user", []ast.Statement{
				ast.NewExpressionStatement(ast.NewCallExpression(ast.NewIdentifier("fetchUser"), nil)),
			}),
		}),
	})
	res, err := Compile(program, Options{Target: "js"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(res.Code, "const { posts, user } = await together({") {
		t.Fatalf("together destructuring missing:\n%s", res.Code)
	}
	if !strings.Contains(res.Code, "function makeChannel(") {
		t.Fatalf("runtime preamble missing:\n%s", res.Code)
	}
}

func TestJSTopLevelAwaitWrapsCommonJS(t *testing.T) {
	// require() plus top-level await is loadable as neither CJS nor ESM,
	// so the body must run inside an async IIFE.
	program := ast.NewProgram([]ast.Statement{
		ast.NewImportStatement([]ast.ImportItem{{Name: "fetchPosts"}}, "./api.rl"),
		ast.NewTogetherBlock([]*ast.NamedTask{
			ast.NewNamedTask("posts", []ast.Statement{
				ast.NewExpressionStatement(ast.NewCallExpression(ast.NewIdentifier("fetchPosts"), nil)),
			}),
		}),
	})

	cjs, err := Compile(program, Options{Target: "js"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(cjs.Code, "(async () => {") || !strings.HasSuffix(cjs.Code, "})();\n") {
		t.Fatalf("commonjs output with top-level await must be wrapped:\n%s", cjs.Code)
	}
	if !strings.Contains(cjs.Code, "\tconst { fetchPosts } = require(\"./api.rl\");") {
		t.Fatalf("require should sit inside the wrapper:\n%s", cjs.Code)
	}

	esm, err := Compile(program, Options{Target: "js", JS: JSOptions{ESModules: true}})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if strings.Contains(esm.Code, "(async () => {") {
		t.Fatalf("esm supports top-level await, no wrapper expected:\n%s", esm.Code)
	}

	// Awaits inside a function body do not force the wrapper.
	loader := ast.NewFunctionDeclaration("load", nil, []ast.Statement{
		ast.NewParallelBlock([]ast.Statement{
			ast.NewExpressionStatement(ast.NewCallExpression(ast.NewIdentifier("work"), nil)),
		}),
	})
	loader.Async = true
	fnOnly := ast.NewProgram([]ast.Statement{loader})
	res, err := Compile(fnOnly, Options{Target: "js"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if strings.Contains(res.Code, "(async () => {") {
		t.Fatalf("function-local await must not wrap the module:\n%s", res.Code)
	}
}

func TestJSModuleSyntax(t *testing.T) {
	program := ast.NewProgram([]ast.Statement{
		ast.NewImportStatement([]ast.ImportItem{{Name: "join"}, {Name: "map", Alias: "collect"}}, "./lists.rl"),
		ast.NewExportStatement(ast.NewFunctionDeclaration("double", []*ast.FunctionParameter{
			ast.NewFunctionParameter("n", "number"),
		}, []ast.Statement{
			ast.NewReturnStatement(ast.NewBinaryExpression("*", ast.NewIdentifier("n"), ast.NewLiteral(2.0))),
		}), nil),
	})

	cjs, err := Compile(program, Options{Target: "js"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(cjs.Code, "const { join, map: collect } = require(\"./lists.rl\");") {
		t.Fatalf("commonjs import wrong:\n%s", cjs.Code)
	}
	if !strings.Contains(cjs.Code, "module.exports.double = double;") {
		t.Fatalf("commonjs export wrong:\n%s", cjs.Code)
	}
	if len(cjs.Imports) != 1 || cjs.Imports[0] != "./lists.rl" {
		t.Fatalf("import list wrong: %v", cjs.Imports)
	}

	esm, err := Compile(program, Options{Target: "js", JS: JSOptions{ESModules: true}})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(esm.Code, "import { join, map as collect } from \"./lists.rl\";") {
		t.Fatalf("esm import wrong:\n%s", esm.Code)
	}
	if !strings.Contains(esm.Code, "export function double(n) {") {
		t.Fatalf("esm export wrong:\n%s", esm.Code)
	}
}

func TestGoTypeMapping(t *testing.T) {
	cases := map[string]string{
		"number":              "float64",
		"text":                "string",
		"bool":                "bool",
		"nothing":             "interface{}",
		"any":                 "interface{}",
		"list<number>":        "[]float64",
		"map<text, bool>":     "map[string]bool",
		"channel<text>":       "chan string",
		"result<number>":      "Result[float64]",
		"maybe<text>":         "*string",
		"list<list<number>>":  "[][]float64",
		"sankhya":             "float64",
		"suchi<shabd>":        "[]string",
		"UserProfile":         "interface{}",
		"":                    "interface{}",
		"not a real <<type>>": "interface{}",
	}
	for annotation, want := range cases {
		if got := goType(annotation); got != want {
			t.Fatalf("goType(%q) = %q, want %q", annotation, got, want)
		}
	}
}

func TestGoConcurrencyEmission(t *testing.T) {
	program := ast.NewProgram([]ast.Statement{
		ast.NewTogetherBlock([]*ast.NamedTask{
			ast.NewNamedTask("a", []ast.Statement{
				ast.NewExpressionStatement(ast.NewCallExpression(ast.NewIdentifier("fetchA"), nil)),
			}),
			ast.NewNamedTask("b", []ast.Statement{
				ast.NewExpressionStatement(ast.NewCallExpression(ast.NewIdentifier("fetchB"), nil)),
			}),
		}),
	})
	res, err := Compile(program, Options{Target: "go", Go: GoOptions{PackageName: "tasks"}})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	for _, want := range []string{
		"package tasks",
		"var a Result[interface{}]",
		"var b Result[interface{}]",
		"var wg1 sync.WaitGroup",
		"wg1.Add(2)",
		"wg1.Wait()",
		"\"sync\"",
	} {
		if !strings.Contains(res.Code, want) {
			t.Fatalf("missing %q in:\n%s", want, res.Code)
		}
	}
}

func TestGoTogetherTaskWithoutTrailingExpression(t *testing.T) {
	program := ast.NewProgram([]ast.Statement{
		ast.NewTogetherBlock([]*ast.NamedTask{
			ast.NewNamedTask("setup", []ast.Statement{
				ast.NewVariableDeclaration("tmp", ast.NewLiteral(1.0), false),
			}),
		}),
	})
	res, err := Compile(program, Options{Target: "go"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	// The zero Result value reads as a failure; completion must be recorded.
	if !strings.Contains(res.Code, "setup = Success[interface{}](nil)") {
		t.Fatalf("statement-only task must record success:\n%s", res.Code)
	}
}

func TestGoChannelEmission(t *testing.T) {
	program := ast.NewProgram([]ast.Statement{
		ast.NewVariableDeclaration("jobs",
			ast.NewChannelExpression(ast.ChannelCreate, "jobs"), false),
		ast.NewExpressionStatement(func() ast.Expression {
			send := ast.NewChannelExpression(ast.ChannelSend, "jobs")
			send.Value = ast.NewLiteral("task-1")
			return send
		}()),
		ast.NewVariableDeclaration("next",
			ast.NewChannelExpression(ast.ChannelReceive, "jobs"), false),
	})
	res, err := Compile(program, Options{Target: "go"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	for _, want := range []string{
		"jobs := make(chan interface{}, 10)",
		"jobs <- \"task-1\"",
		"next := <-jobs",
	} {
		if !strings.Contains(res.Code, want) {
			t.Fatalf("missing %q in:\n%s", want, res.Code)
		}
	}
}

func TestShellControlFlow(t *testing.T) {
	program := ast.NewProgram([]ast.Statement{
		ast.NewVariableDeclaration("count", ast.NewLiteral(3.0), false),
		ast.NewIfStatement(
			ast.NewBinaryExpression(">", ast.NewIdentifier("count"), ast.NewLiteral(1.0)),
			[]ast.Statement{ast.NewExpressionStatement(ast.NewCallExpression(
				ast.NewIdentifier("print"), []ast.Expression{ast.NewLiteral("many")},
			))},
			[]ast.Statement{ast.NewExpressionStatement(ast.NewCallExpression(
				ast.NewIdentifier("print"), []ast.Expression{ast.NewLiteral("few")},
			))},
		),
		ast.NewForStatement("item",
			ast.NewArrayLiteral([]ast.Expression{ast.NewLiteral("a"), ast.NewLiteral("b")}),
			[]ast.Statement{ast.NewExpressionStatement(ast.NewCallExpression(
				ast.NewIdentifier("print"), []ast.Expression{ast.NewIdentifier("item")},
			))},
		),
	})
	res, err := Compile(program, Options{Target: "sh"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	for _, want := range []string{
		"count=3",
		"if [ \"$count\" -gt 1 ]; then",
		"else",
		"fi",
		"for item in \"a\" \"b\"; do",
		"done",
	} {
		if !strings.Contains(res.Code, want) {
			t.Fatalf("missing %q in:\n%s", want, res.Code)
		}
	}
}

func TestShellFunctions(t *testing.T) {
	program := ast.NewProgram([]ast.Statement{
		ast.NewFunctionDeclaration("greet", []*ast.FunctionParameter{
			ast.NewFunctionParameter("who", ""),
		}, []ast.Statement{
			ast.NewReturnStatement(ast.NewTemplateString([]ast.TemplatePart{
				{Text: "hello "},
				{Expr: ast.NewIdentifier("who")},
			})),
		}),
	})
	res, err := Compile(program, Options{Target: "sh"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	for _, want := range []string{
		"greet() {",
		"who=$1",
		"echo \"hello ${who}\"",
	} {
		if !strings.Contains(res.Code, want) {
			t.Fatalf("missing %q in:\n%s", want, res.Code)
		}
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("untyped function should emit cleanly: %v", res.Warnings)
	}
}

func TestTargetMetadata(t *testing.T) {
	if TargetExtension(TargetJS) != ".js" || TargetExtension(TargetGo) != ".go" || TargetExtension(TargetShell) != ".sh" {
		t.Fatalf("wrong extensions")
	}
	if TargetExtension(Target("weird")) != ".txt" {
		t.Fatalf("unknown targets fall back to .txt")
	}
	if TargetMIMEType(TargetJS) != "text/javascript" {
		t.Fatalf("wrong mime for js")
	}
}
