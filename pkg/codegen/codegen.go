// Package codegen compiles RocketLang ASTs to three targets: JavaScript
// (Promise-based concurrency), Go (goroutine/channel concurrency), and a
// best-effort POSIX shell subset.
package codegen

import (
	"fmt"
	"strings"

	"rocketlang/core-go/pkg/ast"
)

// Target identifies a code generation backend.
type Target string

const (
	TargetJS    Target = "js"
	TargetGo    Target = "go"
	TargetShell Target = "sh"
)

// targetSynonyms normalizes the accepted target spellings.
var targetSynonyms = map[string]Target{
	"js":         TargetJS,
	"javascript": TargetJS,
	"node":       TargetJS,
	"go":         TargetGo,
	"golang":     TargetGo,
	"sh":         TargetShell,
	"shell":      TargetShell,
	"bash":       TargetShell,
	"posix":      TargetShell,
}

// NormalizeTarget resolves a target spelling to its canonical backend.
func NormalizeTarget(name string) (Target, error) {
	if t, ok := targetSynonyms[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("codegen: unknown target %q", name)
}

// JSOptions configures the JavaScript backend.
type JSOptions struct {
	// ESModules switches import/export emission to ESM syntax.
	ESModules bool
}

// GoOptions configures the Go backend.
type GoOptions struct {
	PackageName string
}

// ShellOptions configures the shell backend.
type ShellOptions struct {
	// Shebang overrides the interpreter line (default #!/bin/sh).
	Shebang string
}

// Options selects a target and per-target configuration.
type Options struct {
	Target string
	JS     JSOptions
	Go     GoOptions
	Shell  ShellOptions

	// FailOnWarnings downgrades best-effort partial output to a hard error.
	FailOnWarnings bool
}

// Result is the outcome of a compilation.
type Result struct {
	Target   Target
	Code     string
	Warnings []string
	Imports  []string
}

// Compile walks the program and produces source text for the requested
// target. The JS and Go backends warn on constructs they cannot express
// instead of failing the whole emission; the shell backend is an explicit
// best-effort subset.
func Compile(program *ast.Program, opts Options) (*Result, error) {
	if program == nil {
		return nil, fmt.Errorf("codegen: missing program")
	}
	target, err := NormalizeTarget(opts.Target)
	if err != nil {
		return nil, err
	}
	var result *Result
	switch target {
	case TargetJS:
		result = newJSEmitter(opts.JS).emit(program)
	case TargetGo:
		result = newGoEmitter(opts.Go).emit(program)
	case TargetShell:
		result = newShellEmitter(opts.Shell).emit(program)
	}
	if opts.FailOnWarnings && len(result.Warnings) > 0 {
		return result, fmt.Errorf("codegen: %s emission produced %d warning(s): %s",
			target, len(result.Warnings), strings.Join(result.Warnings, "; "))
	}
	return result, nil
}

// TargetExtension returns the file extension for emitted sources.
func TargetExtension(target Target) string {
	switch target {
	case TargetJS:
		return ".js"
	case TargetGo:
		return ".go"
	case TargetShell:
		return ".sh"
	default:
		return ".txt"
	}
}

// TargetMIMEType returns the media type for emitted sources.
func TargetMIMEType(target Target) string {
	switch target {
	case TargetJS:
		return "text/javascript"
	case TargetGo:
		return "text/x-go"
	case TargetShell:
		return "application/x-sh"
	default:
		return "text/plain"
	}
}

// lineBuffer is the shared indentation-aware accumulator the emitters write
// through.
type lineBuffer struct {
	lines  []string
	indent int
}

func (b *lineBuffer) writef(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if line == "" {
		b.lines = append(b.lines, "")
		return
	}
	b.lines = append(b.lines, strings.Repeat("\t", b.indent)+line)
}

func (b *lineBuffer) blank() {
	b.lines = append(b.lines, "")
}

func (b *lineBuffer) String() string {
	return strings.Join(b.lines, "\n") + "\n"
}
