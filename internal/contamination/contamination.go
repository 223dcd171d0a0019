// Package contamination detects and repairs issues assigned to the wrong
// project. An issue id carries its project's sanitized name as a prefix; when
// that prefix stops matching the owning project the issue is contaminated and
// would leak into another project's log on the next export.
package contamination

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
)

// suffixLength is the hash portion of an issue id.
const suffixLength = 6

// Validate reports whether issueID has the exact form
// "{projectName}-{6 alphanumeric chars}". Checking the suffix length keeps
// hyphenated names honest: "change-capture-abc123" belongs to
// "change-capture", never to "change".
func Validate(issueID, projectName string) bool {
	if issueID == "" || projectName == "" {
		return false
	}
	suffix, ok := strings.CutPrefix(issueID, projectName+"-")
	if !ok {
		return false
	}
	return validSuffix(suffix)
}

// ExpectedProject extracts the project-name prefix from an issue id, or ""
// when the id is malformed.
func ExpectedProject(issueID string) string {
	i := strings.LastIndex(issueID, "-")
	if i <= 0 {
		return ""
	}
	if !validSuffix(issueID[i+1:]) {
		return ""
	}
	return issueID[:i]
}

func validSuffix(s string) bool {
	if len(s) != suffixLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

// RepairResult summarizes a repair pass.
type RepairResult struct {
	Examined         int      `json:"examined"`
	Contaminated     int      `json:"contaminated"`
	Repaired         int      `json:"repaired"`
	Orphaned         int      `json:"orphaned"`
	AffectedProjects []string `json:"affected_projects"`
}

// Repair scans issues (all of them, or only those owned by the scope handle)
// and reassigns each contaminated issue to the registered project whose name
// matches the id prefix. Issues whose prefix matches no registered project
// are counted as orphaned and left alone. With dryRun the result reports
// what a real pass would do without writing anything.
//
// Repair never fails on contamination itself; it returns an error only when
// the store does.
func Repair(ctx context.Context, store *sqlite.Store, scope string, dryRun bool) (*RepairResult, error) {
	result := &RepairResult{}
	affected := map[string]struct{}{}

	issues, err := store.ListIssues(ctx, types.IssueFilter{Project: scope})
	if err != nil {
		return nil, err
	}

	for _, issue := range issues {
		result.Examined++

		expected := ExpectedProject(issue.ID)
		if expected == "" {
			continue // malformed id, nothing to match against
		}

		ownerName, err := ownerProjectName(ctx, store, issue.Project)
		if err != nil {
			return nil, err
		}
		if Validate(issue.ID, ownerName) {
			continue
		}

		result.Contaminated++
		affected[issue.Project] = struct{}{}

		correct, err := store.GetProjectByName(ctx, expected)
		if errors.Is(err, sqlite.ErrNotFound) {
			result.Orphaned++
			continue
		}
		if err != nil {
			return nil, err
		}

		if !dryRun {
			if err := store.SetIssueProject(ctx, issue.ID, correct.Handle); err != nil {
				return nil, err
			}
		}
		result.Repaired++
		affected[correct.Handle] = struct{}{}
	}

	for handle := range affected {
		result.AffectedProjects = append(result.AffectedProjects, handle)
	}
	sort.Strings(result.AffectedProjects)
	return result, nil
}

// ownerProjectName resolves the human name for the handle owning an issue:
// registry entry when present (covers UUID-keyed handles), otherwise derived
// from the handle itself.
func ownerProjectName(ctx context.Context, store *sqlite.Store, handle string) (string, error) {
	p, err := store.GetProject(ctx, handle)
	if err == nil {
		return project.SanitizeName(p.Name), nil
	}
	if errors.Is(err, sqlite.ErrNotFound) {
		return project.NameFromHandle(handle), nil
	}
	return "", err
}

