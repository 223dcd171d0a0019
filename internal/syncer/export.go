package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/natefinch/atomic"

	"github.com/tracehq/trace/internal/contamination"
	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
)

// Export writes a project's issues to its JSONL log: one JSON object per
// line, sorted by id, dependencies and comments inline. The project handle
// is never serialized; identity comes from git context on the importing
// side, which is what lets a clone under a different remote adopt the log.
//
// Issues whose id prefix does not match the project name are silently left
// out. The log is the replication channel, so contaminated rows must not
// travel even if the cache still holds them.
//
// The file is replaced atomically so a reader never sees a half-written log.
func Export(ctx context.Context, store *sqlite.Store, handle, path string) error {
	name, err := projectName(ctx, store, handle)
	if err != nil {
		return err
	}

	issues, err := store.ListIssues(ctx, types.IssueFilter{Project: handle})
	if err != nil {
		return err
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].ID < issues[j].ID })

	var buf bytes.Buffer
	for _, issue := range issues {
		if !contamination.Validate(issue.ID, name) {
			continue
		}
		issue.Dependencies, err = store.GetDependencies(ctx, issue.ID)
		if err != nil {
			return err
		}
		issue.Comments, err = store.GetComments(ctx, issue.ID)
		if err != nil {
			return err
		}

		line, err := json.Marshal(issue)
		if err != nil {
			return fmt.Errorf("failed to encode issue %s: %w", issue.ID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}

// projectName resolves the sanitized name used for id validation: the
// registry entry when the handle is registered, otherwise derived from the
// handle itself.
func projectName(ctx context.Context, store *sqlite.Store, handle string) (string, error) {
	p, err := store.GetProject(ctx, handle)
	if err == nil {
		return project.SanitizeName(p.Name), nil
	}
	if errors.Is(err, sqlite.ErrNotFound) {
		return project.NameFromHandle(handle), nil
	}
	return "", err
}
