package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitFetcher clones git dependencies into a package cache directory laid out
// as <cacheDir>/rocket_modules/<name>.
type GitFetcher struct {
	cacheDir string
}

// NewGitFetcher returns nil when no cache directory is configured; a nil
// fetcher refuses all fetches.
func NewGitFetcher(cacheDir string) *GitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &GitFetcher{cacheDir: cacheDir}
}

// Ensure makes the dependency available locally and returns the checkout
// directory. Existing checkouts are reused.
func (g *GitFetcher) Ensure(name string, dep Dependency) (string, error) {
	if g == nil {
		return "", fmt.Errorf("modules: git fetcher unavailable")
	}
	url := strings.TrimSpace(dep.Git)
	if url == "" {
		return "", fmt.Errorf("modules: dependency %q: git URL required", name)
	}
	revision, err := gitRevision(dep)
	if err != nil {
		return "", fmt.Errorf("modules: dependency %q: %w", name, err)
	}

	targetDir := filepath.Join(g.cacheDir, packageDirName, sanitizeSegment(name))
	if _, statErr := os.Stat(targetDir); statErr == nil {
		return targetDir, nil
	}

	if err := os.MkdirAll(filepath.Dir(targetDir), 0o755); err != nil {
		return "", err
	}
	tmpDir, err := os.MkdirTemp(filepath.Dir(targetDir), "git-fetch-*")
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("modules: git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("modules: resolve revision %s: %w", revision, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("modules: git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	return targetDir, nil
}

func gitRevision(dep Dependency) (plumbing.Revision, error) {
	if rev := strings.TrimSpace(dep.Rev); rev != "" {
		return plumbing.Revision(rev), nil
	}
	if tag := strings.TrimSpace(dep.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), nil
	}
	if branch := strings.TrimSpace(dep.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), nil
	}
	return "", fmt.Errorf("git dependencies require rev, tag, or branch")
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	var b strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "pkg"
	}
	return b.String()
}
