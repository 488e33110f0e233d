// Package modules resolves and loads RocketLang modules: builtin export
// tables, local files, rocket_modules packages, and URL sources.
package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Kind classifies what a specifier resolved to.
type Kind string

const (
	KindFile    Kind = "file"
	KindPackage Kind = "package"
	KindBuiltin Kind = "builtin"
	KindURL     Kind = "url"
)

// Resolution records where a specifier points.
type Resolution struct {
	Kind      Kind
	Path      string
	Specifier string
}

// packageDirName is the per-project dependency directory searched along the
// ancestor chain.
const packageDirName = "rocket_modules"

// Resolver classifies module specifiers. Results are memoized per
// (fromFile, specifier) pair.
type Resolver struct {
	// BaseDir anchors relative specifiers when fromFile is empty.
	BaseDir string
	// Extensions are probed in order when a file path has no match as-is.
	Extensions []string
	// Aliases substitute specifier prefixes before resolution.
	Aliases map[string]string
	// Manifest and Fetcher back git-sourced packages: a package missing
	// from every rocket_modules directory is fetched if the manifest pins
	// it to a git dependency.
	Manifest *Manifest
	Fetcher  *GitFetcher

	mu   sync.Mutex
	memo map[string]Resolution
}

// NewResolver builds a resolver rooted at baseDir with the default .rl
// extension list.
func NewResolver(baseDir string) *Resolver {
	return &Resolver{
		BaseDir:    baseDir,
		Extensions: []string{".rl"},
		memo:       make(map[string]Resolution),
	}
}

// Resolve classifies a specifier. Precedence: builtin name, URL, package
// name, then file path.
func (r *Resolver) Resolve(specifier, fromFile string) (Resolution, error) {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		return Resolution{}, fmt.Errorf("modules: empty specifier")
	}

	key := fromFile + "\x00" + specifier
	r.mu.Lock()
	if r.memo == nil {
		r.memo = make(map[string]Resolution)
	}
	if res, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return res, nil
	}
	r.mu.Unlock()

	res, err := r.resolve(specifier, fromFile)
	if err != nil {
		return Resolution{}, err
	}

	r.mu.Lock()
	r.memo[key] = res
	r.mu.Unlock()
	return res, nil
}

func (r *Resolver) resolve(specifier, fromFile string) (Resolution, error) {
	if name, ok := builtinSynonyms[strings.ToLower(specifier)]; ok {
		return Resolution{Kind: KindBuiltin, Path: name, Specifier: specifier}, nil
	}
	if strings.HasPrefix(specifier, "http://") || strings.HasPrefix(specifier, "https://") {
		return Resolution{Kind: KindURL, Path: specifier, Specifier: specifier}, nil
	}
	if url, ok := strings.CutPrefix(specifier, "git+"); ok {
		path, err := r.fetchGitPackage(gitPackageName(url), Dependency{Git: url, Branch: "main"})
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Kind: KindPackage, Path: path, Specifier: specifier}, nil
	}
	if isPackageName(specifier) {
		path, err := r.resolvePackage(specifier, fromFile)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Kind: KindPackage, Path: path, Specifier: specifier}, nil
	}
	path, err := r.resolveFile(specifier, fromFile)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Kind: KindFile, Path: path, Specifier: specifier}, nil
}

// isPackageName reports whether the specifier names a package rather than a
// path: @scope/name or a bare name with no path prefix.
func isPackageName(specifier string) bool {
	if strings.HasPrefix(specifier, "@") {
		return true
	}
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return false
	}
	if strings.HasPrefix(specifier, "/") {
		return false
	}
	return !strings.ContainsAny(specifier, "/\\.")
}

func (r *Resolver) startDir(fromFile string) string {
	if fromFile != "" {
		return filepath.Dir(fromFile)
	}
	if r.BaseDir != "" {
		return r.BaseDir
	}
	return "."
}

// resolvePackage walks the ancestor chain looking for
// rocket_modules/<name>, trying aliases first, and picks the entry file via
// the package manifest's main field or index.rl.
func (r *Resolver) resolvePackage(specifier, fromFile string) (string, error) {
	names := []string{specifier}
	if alias, ok := r.Aliases[specifier]; ok {
		names = []string{alias, specifier}
	}

	dir, err := filepath.Abs(r.startDir(fromFile))
	if err != nil {
		return "", fmt.Errorf("modules: resolve %q: %w", specifier, err)
	}
	for {
		for _, name := range names {
			root := filepath.Join(dir, packageDirName, name)
			info, statErr := os.Stat(root)
			if statErr != nil || !info.IsDir() {
				continue
			}
			if entry, entryErr := r.packageEntry(root); entryErr == nil {
				return entry, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if r.Manifest != nil {
		if dep, ok := r.Manifest.Dependencies[specifier]; ok {
			return r.fetchGitPackage(specifier, dep)
		}
	}
	return "", fmt.Errorf("modules: package %q not found from %s", specifier, r.startDir(fromFile))
}

func (r *Resolver) fetchGitPackage(name string, dep Dependency) (string, error) {
	if r.Fetcher == nil {
		return "", fmt.Errorf("modules: package %q requires a git fetcher", name)
	}
	root, err := r.Fetcher.Ensure(name, dep)
	if err != nil {
		return "", err
	}
	return r.packageEntry(root)
}

// gitPackageName derives a package name from a git URL's final segment.
func gitPackageName(url string) string {
	name := strings.TrimSuffix(url, ".git")
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	return sanitizeSegment(name)
}

func (r *Resolver) packageEntry(root string) (string, error) {
	if manifest, err := LoadManifest(filepath.Join(root, ManifestFileName)); err == nil && manifest.Main != "" {
		entry := filepath.Join(root, manifest.Main)
		if _, statErr := os.Stat(entry); statErr == nil {
			return entry, nil
		}
	}
	for _, ext := range r.extensions() {
		entry := filepath.Join(root, "index"+ext)
		if _, err := os.Stat(entry); err == nil {
			return entry, nil
		}
	}
	return "", fmt.Errorf("modules: no entry file in %s", root)
}

// resolveFile applies alias substitution, anchors the path, and probes
// extensions: as-is, each configured extension, then index.<ext> for
// directories.
func (r *Resolver) resolveFile(specifier, fromFile string) (string, error) {
	for prefix, replacement := range r.Aliases {
		if strings.HasPrefix(specifier, prefix) {
			specifier = replacement + strings.TrimPrefix(specifier, prefix)
			break
		}
	}

	path := specifier
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.startDir(fromFile), path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("modules: resolve %q: %w", specifier, err)
	}

	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		return abs, nil
	}
	for _, ext := range r.extensions() {
		candidate := abs + ext
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	for _, ext := range r.extensions() {
		candidate := filepath.Join(abs, "index"+ext)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("modules: cannot resolve %q from %s", specifier, r.startDir(fromFile))
}

func (r *Resolver) extensions() []string {
	if len(r.Extensions) == 0 {
		return []string{".rl"}
	}
	return r.Extensions
}
