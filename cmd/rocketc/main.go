package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"rocketlang/core-go/pkg/ast"
	"rocketlang/core-go/pkg/codegen"
)

func main() {
	target := flag.String("target", "js", "code generation target (js, go, sh)")
	output := flag.String("o", "", "output file (default out.<ext> next to the input)")
	pkgName := flag.String("pkg", "main", "package name for the Go target")
	esModules := flag.Bool("esm", false, "emit ES module syntax for the JS target")
	shebang := flag.String("shebang", "", "override the shell target's interpreter line")
	strict := flag.Bool("strict", false, "treat emission warnings as errors")
	flag.Parse()

	entry := flag.Arg(0)
	if entry == "" {
		fmt.Fprintln(os.Stderr, "usage: rocketc [options] <program.json>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	data, err := os.ReadFile(entry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	program, err := ast.DecodeProgram(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	result, err := codegen.Compile(program, codegen.Options{
		Target:         *target,
		JS:             codegen.JSOptions{ESModules: *esModules},
		Go:             codegen.GoOptions{PackageName: *pkgName},
		Shell:          codegen.ShellOptions{Shebang: *shebang},
		FailOnWarnings: *strict,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(os.Stderr, warning)
	}

	out := *output
	if out == "" {
		out = filepath.Join(filepath.Dir(entry), "out"+codegen.TargetExtension(result.Target))
	}
	if err := os.WriteFile(out, []byte(result.Code), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
