package modules

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"rocketlang/core-go/pkg/runtime"
)

// scriptLoader wires a loader whose parse callback records one import per
// "import <spec>" line and whose exec callback exports a marker value.
func scriptLoader(t *testing.T, dir string) *Loader {
	t.Helper()
	loader := NewLoader(NewResolver(dir), LoaderOptions{
		Parse: func(source string) ([]*runtime.Command, []string, error) {
			var imports []string
			for _, line := range strings.Split(source, "\n") {
				if rest, ok := strings.CutPrefix(line, "import "); ok {
					imports = append(imports, strings.TrimSpace(rest))
				}
			}
			return nil, imports, nil
		},
		Exec: func(commands []*runtime.Command) (map[string]any, error) {
			return map[string]any{"answer": 42.0}, nil
		},
	})
	return loader
}

func TestLoadCachesByResolvedPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib.rl"), "import ./other\n")
	from := filepath.Join(dir, "main.rl")
	writeFile(t, from, "")

	loader := scriptLoader(t, dir)
	first, err := loader.Load("./lib", from)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := loader.Load("./lib.rl", from)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if first != second {
		t.Fatalf("same resolved path must return the same module instance")
	}
	if first.Exports["answer"] != 42.0 {
		t.Fatalf("exports missing: %#v", first.Exports)
	}
	if len(first.Dependencies) != 1 || first.Dependencies[0] != "./other" {
		t.Fatalf("dependencies not collected: %v", first.Dependencies)
	}

	loader.ClearCache()
	third, err := loader.Load("./lib", from)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if third == first {
		t.Fatalf("ClearCache should force a fresh module")
	}
}

func TestLoadCircularDependency(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rl"), "import ./b\n")
	writeFile(t, filepath.Join(dir, "b.rl"), "import ./a\n")

	// Exec loads the partner module mid-execution, closing the cycle
	// a -> b -> a.
	depth := 0
	var loader *Loader
	loader = NewLoader(NewResolver(dir), LoaderOptions{
		Parse: func(source string) ([]*runtime.Command, []string, error) {
			return nil, nil, nil
		},
		Exec: func(commands []*runtime.Command) (map[string]any, error) {
			depth++
			switch depth {
			case 1:
				if _, err := loader.Load("./b", filepath.Join(dir, "a.rl")); err != nil {
					return nil, err
				}
			case 2:
				if _, err := loader.Load("./a", filepath.Join(dir, "b.rl")); err != nil {
					return nil, err
				}
			}
			return nil, nil
		},
	})

	_, err := loader.Load("./a", filepath.Join(dir, "main.rl"))
	var circular *CircularDependencyError
	if !errors.As(err, &circular) {
		t.Fatalf("expected CircularDependencyError, got %v", err)
	}
	if !strings.HasSuffix(circular.Path, "a.rl") {
		t.Fatalf("error names the wrong module: %s", circular.Path)
	}
}

func TestLoadJSONDataModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json"), `{"host": "localhost", "port": 8080}`)

	loader := NewLoader(NewResolver(dir), LoaderOptions{})
	mod, err := loader.Load("./config.json", filepath.Join(dir, "main.rl"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if mod.Exports["host"] != "localhost" || mod.Exports["port"] != 8080.0 {
		t.Fatalf("unexpected exports %#v", mod.Exports)
	}

	writeFile(t, filepath.Join(dir, "items.json"), `[1, 2, 3]`)
	items, err := loader.Load("./items.json", filepath.Join(dir, "main.rl"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := items.Exports["default"]; !ok {
		t.Fatalf("non-object JSON should export default: %#v", items.Exports)
	}
}

func TestLoadBuiltinDelegatesToExecutor(t *testing.T) {
	var calledTool string
	loader := NewLoader(NewResolver(t.TempDir()), LoaderOptions{
		Executor: func(name string, params map[string]any) (any, error) {
			calledTool = name
			return 7.0, nil
		},
	})

	mod, err := loader.Load("math", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !mod.IsBuiltin {
		t.Fatalf("math should be a builtin")
	}
	round, ok := mod.Exports["round"].(BuiltinFunc)
	if !ok {
		t.Fatalf("round export missing: %#v", mod.Exports["round"])
	}
	value, err := round(6.6)
	if err != nil {
		t.Fatalf("builtin call: %v", err)
	}
	if value != 7.0 || calledTool != "math.round" {
		t.Fatalf("builtin should delegate to the executor: %v %q", value, calledTool)
	}

	again, err := loader.Load("ganit", "")
	if err != nil {
		t.Fatalf("load synonym: %v", err)
	}
	if again != mod {
		t.Fatalf("builtin synonyms must share one module instance")
	}
}

func TestLoadBuiltinWithoutExecutor(t *testing.T) {
	loader := NewLoader(NewResolver(t.TempDir()), LoaderOptions{})
	mod, err := loader.Load("json", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	parse := mod.Exports["parse"].(BuiltinFunc)
	if _, err := parse("{}"); err == nil {
		t.Fatalf("builtins without an executor must fail at call time")
	}
}

func TestLoadURLModule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.rl" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("import ./dep\n"))
	}))
	defer server.Close()

	loader := scriptLoader(t, t.TempDir())
	mod, err := loader.Load(server.URL+"/lib.rl", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if mod.Exports["answer"] != 42.0 {
		t.Fatalf("url module exports wrong: %#v", mod.Exports)
	}

	if _, err := loader.Load(server.URL+"/missing.rl", ""); err == nil {
		t.Fatalf("non-200 responses should fail the load")
	}
}

func TestImportProjections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib.rl"), "")
	from := filepath.Join(dir, "main.rl")
	writeFile(t, from, "")

	loader := NewLoader(NewResolver(dir), LoaderOptions{
		Parse: func(source string) ([]*runtime.Command, []string, error) {
			return nil, nil, nil
		},
		Exec: func(commands []*runtime.Command) (map[string]any, error) {
			return map[string]any{"alpha": 1.0, "beta": 2.0}, nil
		},
	})

	named, err := loader.Import(ImportSpec{
		Source:   "./lib",
		FromFile: from,
		Items:    []ImportItem{{Name: "alpha"}, {Name: "beta", Alias: "b"}},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if named["alpha"] != 1.0 || named["b"] != 2.0 {
		t.Fatalf("named import wrong: %#v", named)
	}

	ns, err := loader.Import(ImportSpec{Source: "./lib", FromFile: from, Namespace: "lib"})
	if err != nil {
		t.Fatalf("namespace import: %v", err)
	}
	exports, ok := ns["lib"].(map[string]any)
	if !ok || exports["alpha"] != 1.0 {
		t.Fatalf("namespace import wrong: %#v", ns)
	}

	all, err := loader.Import(ImportSpec{Source: "./lib", FromFile: from, All: true})
	if err != nil {
		t.Fatalf("import all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("import all wrong: %#v", all)
	}

	_, err = loader.Import(ImportSpec{
		Source:   "./lib",
		FromFile: from,
		Items:    []ImportItem{{Name: "gamma"}},
	})
	var missing *MissingExportError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingExportError, got %v", err)
	}
	if missing.Name != "gamma" || !strings.HasSuffix(missing.Path, "lib.rl") {
		t.Fatalf("error detail wrong: %+v", missing)
	}
}

func TestBuiltinNames(t *testing.T) {
	names := BuiltinNames()
	if len(names) != 12 {
		t.Fatalf("expected 12 builtin modules, got %d: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names must be sorted: %v", names)
		}
	}
}
