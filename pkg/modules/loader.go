package modules

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rocketlang/core-go/pkg/runtime"
)

// ParseFunc turns RocketLang source into commands plus the import
// specifiers found in the body.
type ParseFunc func(source string) ([]*runtime.Command, []string, error)

// ExecFunc runs parsed commands and returns the module's top-level exports.
type ExecFunc func(commands []*runtime.Command) (map[string]any, error)

// Module is a loaded module. Exports are write-once at load time.
type Module struct {
	Path         string
	Exports      map[string]any
	Dependencies []string
	IsBuiltin    bool
}

// CircularDependencyError reports a module requested while it was already
// being loaded.
type CircularDependencyError struct {
	Path string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("modules: circular dependency on %s", e.Path)
}

// MissingExportError reports an import of a name the module does not export.
type MissingExportError struct {
	Name string
	Path string
}

func (e *MissingExportError) Error() string {
	return fmt.Sprintf("modules: %s does not export %q", e.Path, e.Name)
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// Parse and Exec handle RocketLang-source modules. Without them, only
	// builtin and .json modules load.
	Parse ParseFunc
	Exec  ExecFunc
	// Executor backs the builtin module stubs.
	Executor runtime.ToolExecutor
	// HTTPClient fetches URL modules; defaults to a 30s-timeout client.
	HTTPClient *http.Client
}

// Loader loads modules through a Resolver and caches them by resolved path
// for the lifetime of the loader.
type Loader struct {
	resolver *Resolver
	opts     LoaderOptions

	mu       sync.Mutex
	cache    map[string]*Module
	loading  map[string]bool
	builtins map[string]*Module
}

// NewLoader builds a loader over the given resolver.
func NewLoader(resolver *Resolver, opts LoaderOptions) *Loader {
	if resolver == nil {
		resolver = NewResolver("")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{
		resolver: resolver,
		opts:     opts,
		cache:    make(map[string]*Module),
		loading:  make(map[string]bool),
		builtins: make(map[string]*Module),
	}
}

// Resolver exposes the loader's resolver for configuration.
func (l *Loader) Resolver() *Resolver { return l.resolver }

// Load resolves and loads a module. Repeated loads of the same resolved path
// return the same *Module.
func (l *Loader) Load(specifier, fromFile string) (*Module, error) {
	res, err := l.resolver.Resolve(specifier, fromFile)
	if err != nil {
		return nil, err
	}
	if res.Kind == KindBuiltin {
		return l.builtin(res.Path), nil
	}

	l.mu.Lock()
	if mod, ok := l.cache[res.Path]; ok {
		l.mu.Unlock()
		return mod, nil
	}
	if l.loading[res.Path] {
		l.mu.Unlock()
		return nil, &CircularDependencyError{Path: res.Path}
	}
	l.loading[res.Path] = true
	l.mu.Unlock()

	mod, err := l.loadResolved(res)

	l.mu.Lock()
	delete(l.loading, res.Path)
	if err == nil {
		l.cache[res.Path] = mod
	}
	l.mu.Unlock()
	return mod, err
}

func (l *Loader) builtin(name string) *Module {
	l.mu.Lock()
	defer l.mu.Unlock()
	if mod, ok := l.builtins[name]; ok {
		return mod
	}
	mod := builtinModule(name, l.opts.Executor)
	l.builtins[name] = mod
	return mod
}

func (l *Loader) loadResolved(res Resolution) (*Module, error) {
	switch res.Kind {
	case KindURL:
		source, err := l.fetchURL(res.Path)
		if err != nil {
			return nil, err
		}
		return l.loadSource(res.Path, source)
	case KindFile, KindPackage:
		if strings.EqualFold(filepath.Ext(res.Path), ".json") {
			return loadJSONModule(res.Path)
		}
		data, err := os.ReadFile(res.Path)
		if err != nil {
			return nil, fmt.Errorf("modules: read %s: %w", res.Path, err)
		}
		return l.loadSource(res.Path, string(data))
	default:
		return nil, fmt.Errorf("modules: cannot load resolution kind %q", res.Kind)
	}
}

func (l *Loader) loadSource(path, source string) (*Module, error) {
	if l.opts.Parse == nil || l.opts.Exec == nil {
		return nil, fmt.Errorf("modules: loading %s requires parse and exec callbacks", path)
	}
	commands, imports, err := l.opts.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("modules: parse %s: %w", path, err)
	}
	exports, err := l.opts.Exec(commands)
	if err != nil {
		return nil, fmt.Errorf("modules: execute %s: %w", path, err)
	}
	if exports == nil {
		exports = map[string]any{}
	}
	return &Module{Path: path, Exports: exports, Dependencies: imports}, nil
}

// loadJSONModule decodes a .json file as a data module. Objects export their
// keys directly; other values export as "default".
func loadJSONModule(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modules: read %s: %w", path, err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("modules: parse %s: %w", path, err)
	}
	exports, ok := value.(map[string]any)
	if !ok {
		exports = map[string]any{"default": value}
	}
	return &Module{Path: path, Exports: exports}, nil
}

func (l *Loader) fetchURL(url string) (string, error) {
	resp, err := l.opts.HTTPClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("modules: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("modules: fetch %s: status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("modules: fetch %s: %w", url, err)
	}
	return string(body), nil
}

// ImportItem names one imported binding with an optional alias.
type ImportItem struct {
	Name  string
	Alias string
}

// ImportSpec describes one import statement: named items, a namespace
// import, or import-all.
type ImportSpec struct {
	Source    string
	FromFile  string
	Items     []ImportItem
	Namespace string
	All       bool
}

// Import loads the target module and projects the requested bindings.
func (l *Loader) Import(spec ImportSpec) (map[string]any, error) {
	mod, err := l.Load(spec.Source, spec.FromFile)
	if err != nil {
		return nil, err
	}
	if spec.Namespace != "" {
		return map[string]any{spec.Namespace: mod.Exports}, nil
	}
	if spec.All {
		bindings := make(map[string]any, len(mod.Exports))
		for name, value := range mod.Exports {
			bindings[name] = value
		}
		return bindings, nil
	}
	bindings := make(map[string]any, len(spec.Items))
	for _, item := range spec.Items {
		value, ok := mod.Exports[item.Name]
		if !ok {
			return nil, &MissingExportError{Name: item.Name, Path: mod.Path}
		}
		name := item.Alias
		if name == "" {
			name = item.Name
		}
		bindings[name] = value
	}
	return bindings, nil
}

// ClearCache evicts every cached module, builtins included.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*Module)
	l.loading = make(map[string]bool)
	l.builtins = make(map[string]*Module)
}
