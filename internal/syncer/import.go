package syncer

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/tracehq/trace/internal/contamination"
	"github.com/tracehq/trace/internal/debug"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
)

// ImportStats counts the outcome of one log import.
type ImportStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// maxLineSize bounds a single log line. Descriptions and comments travel
// inline, so lines can get big; 4 MiB is far beyond anything legitimate.
const maxLineSize = 4 << 20

// Import folds a JSONL log into the cache under the given project handle.
// Admission is per line: malformed lines count as errors, issues whose id
// prefix does not match the project count as skipped, and both leave the
// rest of the file unaffected. The handle recorded in the cache always comes
// from the caller, never from the file.
//
// Dependencies and comments are replaced wholesale for every admitted issue;
// the log is the source of truth for them, not the cache.
func Import(ctx context.Context, store *sqlite.Store, path, handle string) (*ImportStats, error) {
	stats := &ImportStats{}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name, err := projectName(ctx, store, handle)
	if err != nil {
		return nil, err
	}

	var admitted []*types.Issue
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var issue types.Issue
		if err := json.Unmarshal(line, &issue); err != nil {
			debug.Logf("import %s line %d: %v", path, lineNum, err)
			stats.Errors++
			continue
		}
		if !contamination.Validate(issue.ID, name) {
			stats.Skipped++
			continue
		}

		issue.Project = handle
		created, err := store.ImportIssue(ctx, &issue)
		if err != nil {
			debug.Logf("import %s line %d (%s): %v", path, lineNum, issue.ID, err)
			stats.Errors++
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
		admitted = append(admitted, &issue)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Second pass, once every admitted issue exists: edges may point forward
	// in the file.
	for _, issue := range admitted {
		if err := store.ReplaceDependencies(ctx, issue.ID, issue.Dependencies); err != nil {
			debug.Logf("import %s: dependencies for %s: %v", path, issue.ID, err)
		}
		if err := store.ReplaceComments(ctx, issue.ID, issue.Comments); err != nil {
			debug.Logf("import %s: comments for %s: %v", path, issue.ID, err)
		}
	}

	return stats, nil
}
