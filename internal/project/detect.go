// Package project resolves a filesystem location to a stable project
// identity: a handle (canonical remote URL or absolute path), a sanitized
// human name, and optionally a persisted UUID.
package project

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// StateDirName is the per-project private state directory, versioned
// alongside source.
const StateDirName = ".trace"

// LogFileName is the line-oriented log that is the portable source of truth.
const LogFileName = "issues.jsonl"

// ErrNotInRepo signals that no VCS root was found above the given location.
// It is a non-fatal condition: sync treats it as a no-op.
var ErrNotInRepo = errors.New("not inside a git repository")

// Info identifies a project resolved from a filesystem location.
type Info struct {
	// Handle is the canonical project identifier: a normalized remote URL
	// (host/path) when the repo has one, otherwise the absolute repo path.
	Handle string
	// Name is the sanitized project name used as the issue ID prefix.
	Name string
	// Path is the absolute, symlink-resolved repository root.
	Path string
}

// StateDir returns the project's private state directory.
func (i *Info) StateDir() string {
	return filepath.Join(i.Path, StateDirName)
}

// LogPath returns the project's log file location.
func (i *Info) LogPath() string {
	return filepath.Join(i.StateDir(), LogFileName)
}

// Detect walks upward from dir until a .git directory (or worktree file) is
// found and derives the project identity from it. Nested repositories
// resolve to the nearest root, not an ancestor.
//
// Returns ErrNotInRepo when the walk reaches the filesystem root without
// finding VCS metadata.
func Detect(dir string) (*Info, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	current := abs
	for {
		gitPath := filepath.Join(current, ".git")
		if fi, err := os.Stat(gitPath); err == nil {
			gitDir := gitPath
			if fi.Mode().IsRegular() {
				// Worktree: .git is a file pointing at the real git dir.
				gitDir = resolveWorktreeGitDir(gitPath)
			}

			info := &Info{Path: current}
			if url, ok := remoteURL(gitDir); ok {
				if handle, ok := CanonicalizeRemoteURL(url); ok {
					info.Handle = handle
				}
				if name, ok := remoteName(url); ok {
					info.Name = SanitizeName(name)
				}
			}
			if info.Handle == "" {
				info.Handle = current
			}
			if info.Name == "" {
				info.Name = SanitizeName(filepath.Base(current))
			}
			return info, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, ErrNotInRepo
		}
		current = parent
	}
}

// resolveWorktreeGitDir reads a "gitdir: ..." pointer file and strips any
// /worktrees/<name> suffix so the main repo's config is consulted.
func resolveWorktreeGitDir(gitFile string) string {
	data, err := os.ReadFile(gitFile) // #nosec G304 - path derived from walk
	if err != nil {
		return gitFile
	}
	line := strings.TrimSpace(string(data))
	gitDir, ok := strings.CutPrefix(line, "gitdir: ")
	if !ok {
		return gitFile
	}
	if idx := strings.Index(gitDir, string(filepath.Separator)+"worktrees"+string(filepath.Separator)); idx > 0 {
		gitDir = gitDir[:idx]
	}
	return gitDir
}

// remoteURL scans the git config for the origin remote's url, falling back
// to the first remote found.
func remoteURL(gitDir string) (string, bool) {
	f, err := os.Open(filepath.Join(gitDir, "config")) // #nosec G304 - path derived from walk
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	var inOrigin, inRemote bool
	var first string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inRemote = strings.HasPrefix(line, `[remote `)
			inOrigin = line == `[remote "origin"]`
			continue
		}
		if !inRemote {
			continue
		}
		if value, ok := strings.CutPrefix(line, "url"); ok {
			value = strings.TrimSpace(value)
			if value, ok = strings.CutPrefix(value, "="); ok {
				url := strings.TrimSpace(value)
				if inOrigin {
					return url, url != ""
				}
				if first == "" {
					first = url
				}
			}
		}
	}
	return first, first != ""
}

// CanonicalizeRemoteURL normalizes a git remote URL into the portable
// host/path handle form. Scheme URLs (https://, http://, ssh://) and
// scp-style user@host:path URLs all map onto the same shape; the .git
// suffix and any credentials are stripped.
func CanonicalizeRemoteURL(url string) (string, bool) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	url = strings.TrimSuffix(url, ".git")
	if url == "" {
		return "", false
	}

	if idx := strings.Index(url, "://"); idx >= 0 {
		rest := url[idx+3:]
		if at := strings.Index(rest, "@"); at >= 0 {
			rest = rest[at+1:]
		}
		return rest, rest != ""
	}

	// scp-style: user@host:path
	if at := strings.Index(url, "@"); at >= 0 {
		rest := url[at+1:]
		if colon := strings.Index(rest, ":"); colon >= 0 {
			handle := rest[:colon] + "/" + rest[colon+1:]
			return handle, true
		}
	}

	return "", false
}

// remoteName extracts the repository name (last path segment) from a remote
// URL in any supported form.
func remoteName(url string) (string, bool) {
	handle, ok := CanonicalizeRemoteURL(url)
	if !ok {
		return "", false
	}
	name := handle[strings.LastIndex(handle, "/")+1:]
	return name, name != ""
}

// NameFromHandle derives the sanitized project name from a handle: the last
// segment of a host/path URL, or the basename of an absolute path.
func NameFromHandle(handle string) string {
	var name string
	if strings.Contains(handle, "/") && !strings.HasPrefix(handle, "/") {
		name = handle[strings.LastIndex(handle, "/")+1:]
	} else {
		name = filepath.Base(handle)
	}
	return SanitizeName(name)
}

// IsInitialized reports whether the project at path carries a log file.
func IsInitialized(path string) bool {
	_, err := os.Stat(filepath.Join(path, StateDirName, LogFileName))
	return err == nil
}
