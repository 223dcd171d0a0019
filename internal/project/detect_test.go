package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeGitConfig creates a .git directory with the given config content.
func writeGitConfig(t *testing.T, repo, config string) {
	t.Helper()
	gitDir := filepath.Join(repo, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if config != "" {
		if err := os.WriteFile(filepath.Join(gitDir, "config"), []byte(config), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

const originConfig = `[core]
	repositoryformatversion = 0
[remote "origin"]
	url = https://github.com/acme/widget-factory.git
	fetch = +refs/heads/*:refs/remotes/origin/*
`

func TestDetectWithRemote(t *testing.T) {
	repo := t.TempDir()
	writeGitConfig(t, repo, originConfig)

	info, err := Detect(repo)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.Handle != "github.com/acme/widget-factory" {
		t.Errorf("Handle = %q", info.Handle)
	}
	if info.Name != "widget-factory" {
		t.Errorf("Name = %q", info.Name)
	}
}

func TestDetectWithoutRemote(t *testing.T) {
	parent := t.TempDir()
	repo := filepath.Join(parent, "My Repo")
	if err := os.MkdirAll(repo, 0o755); err != nil {
		t.Fatal(err)
	}
	writeGitConfig(t, repo, "")

	info, err := Detect(repo)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(repo)
	if info.Handle != resolved {
		t.Errorf("Handle = %q, want repo path %q", info.Handle, resolved)
	}
	if info.Name != "my-repo" {
		t.Errorf("Name = %q, want sanitized basename", info.Name)
	}
}

func TestDetectFromSubdirectory(t *testing.T) {
	repo := t.TempDir()
	writeGitConfig(t, repo, originConfig)
	sub := filepath.Join(repo, "src", "deep", "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	info, err := Detect(sub)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(repo)
	if info.Path != resolved {
		t.Errorf("Path = %q, want repo root %q", info.Path, resolved)
	}
}

func TestDetectNestedRepoResolvesNearest(t *testing.T) {
	outer := t.TempDir()
	writeGitConfig(t, outer, originConfig)
	inner := filepath.Join(outer, "vendor", "lib")
	if err := os.MkdirAll(inner, 0o755); err != nil {
		t.Fatal(err)
	}
	writeGitConfig(t, inner, "")

	info, err := Detect(inner)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(inner)
	if info.Path != resolved {
		t.Errorf("Path = %q, want nearest root %q", info.Path, resolved)
	}
	if info.Name != "lib" {
		t.Errorf("Name = %q, want inner basename", info.Name)
	}
}

func TestDetectNotARepo(t *testing.T) {
	_, err := Detect(t.TempDir())
	if !errors.Is(err, ErrNotInRepo) {
		t.Fatalf("error = %v, want ErrNotInRepo", err)
	}
}

func TestCanonicalizeRemoteURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://github.com/user/repo.git", "github.com/user/repo", true},
		{"https://github.com/user/repo", "github.com/user/repo", true},
		{"http://github.com/user/repo.git", "github.com/user/repo", true},
		{"git@github.com:user/repo.git", "github.com/user/repo", true},
		{"git@gitlab.com:group/subgroup/project.git", "gitlab.com/group/subgroup/project", true},
		{"ssh://git@github.com/user/repo.git", "github.com/user/repo", true},
		{"https://gitlab.com/group/sub/project/", "gitlab.com/group/sub/project", true},
		{"/some/local/path", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := CanonicalizeRemoteURL(tt.url)
			if got != tt.want || ok != tt.ok {
				t.Errorf("CanonicalizeRemoteURL(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNameFromHandle(t *testing.T) {
	tests := []struct {
		handle string
		want   string
	}{
		{"github.com/user/myrepo", "myrepo"},
		{"/Users/me/Repos/myrepo", "myrepo"},
		{"/path/to/my_project", "my-project"},
		{"gitlab.com/group/sub/Widget Factory", "widget-factory"},
	}

	for _, tt := range tests {
		if got := NameFromHandle(tt.handle); got != tt.want {
			t.Errorf("NameFromHandle(%q) = %q, want %q", tt.handle, got, tt.want)
		}
	}
}

func TestIsInitialized(t *testing.T) {
	repo := t.TempDir()
	if IsInitialized(repo) {
		t.Error("IsInitialized = true for empty repo")
	}
	if err := os.MkdirAll(filepath.Join(repo, StateDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repo, StateDirName, LogFileName), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsInitialized(repo) {
		t.Error("IsInitialized = false after log file created")
	}
}
