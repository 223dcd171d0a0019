package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectFileName is the optional per-project settings file inside .trace/.
const ProjectFileName = "config.toml"

// ProjectConfig holds per-project overrides, committed alongside the log so
// the whole team shares them.
type ProjectConfig struct {
	// DefaultPriority overrides the user-level default for new issues.
	DefaultPriority *int `toml:"default_priority"`

	// CommentSource tags comments created without --source.
	CommentSource string `toml:"comment_source"`
}

// LoadProject reads .trace/config.toml from a project state directory.
// A missing file yields an empty config, not an error.
func LoadProject(stateDir string) (*ProjectConfig, error) {
	path := filepath.Join(stateDir, ProjectFileName)
	var cfg ProjectConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if cfg.DefaultPriority != nil {
		if p := *cfg.DefaultPriority; p < 0 || p > 4 {
			return nil, fmt.Errorf("%s: default_priority %d out of range", path, p)
		}
	}
	return &cfg, nil
}
