// Package types defines core data structures for the trc issue tracker.
package types

import (
	"fmt"
	"time"
)

// Issue represents a trackable work item.
//
// Project is the handle of the owning project and is deliberately excluded
// from JSON: log files must stay portable across machines, so project
// identity is supplied from context at import time.
type Issue struct {
	ID          string     `json:"id"`
	Project     string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    int        `json:"priority"` // No omitempty: 0 is valid (critical)
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at"`

	// Populated only for export/import
	Dependencies []*Dependency `json:"dependencies,omitempty"`
	Comments     []*Comment    `json:"comments,omitempty"`
}

// Validate checks if the issue has valid field values.
func (i *Issue) Validate() error {
	if len(i.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	return ValidatePriority(i.Priority)
}

// SetDefaults fills in zero-value fields with sensible defaults.
func (i *Issue) SetDefaults() {
	if i.Status == "" {
		i.Status = StatusOpen
	}
}

// Status represents the workflow state of an issue
type Status string

// Status constants
const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
	StatusBlocked    Status = "blocked"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed, StatusBlocked:
		return true
	}
	return false
}

// ParseStatuses splits a comma-separated status list and validates each entry.
func ParseStatuses(s string) ([]Status, error) {
	if s == "" {
		return nil, nil
	}
	var out []Status
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			st := Status(s[start:i])
			if !st.IsValid() {
				return nil, fmt.Errorf("invalid status: %s", st)
			}
			out = append(out, st)
			start = i + 1
		}
	}
	return out, nil
}

// Priority bounds (inclusive). 0 is most urgent, 4 is backlog.
const (
	PriorityMin     = 0
	PriorityMax     = 4
	PriorityDefault = 2
)

// ValidatePriority checks that a priority is within [PriorityMin, PriorityMax].
func ValidatePriority(p int) error {
	if p < PriorityMin || p > PriorityMax {
		return fmt.Errorf("priority must be between %d and %d (got %d)", PriorityMin, PriorityMax, p)
	}
	return nil
}

// Dependency represents a typed edge between two issues.
// IssueID and CreatedAt are cache-side bookkeeping; only the edge target and
// type travel in the log.
type Dependency struct {
	IssueID     string         `json:"-"`
	DependsOnID string         `json:"depends_on_id"`
	Type        DependencyType `json:"type"`
	CreatedAt   time.Time      `json:"-"`
}

// DependencyType categorizes the edge between two issues
type DependencyType string

// Dependency type constants
const (
	DepParent  DependencyType = "parent"
	DepBlocks  DependencyType = "blocks"
	DepRelated DependencyType = "related"
)

// IsValid checks if the dependency type value is valid
func (d DependencyType) IsValid() bool {
	switch d {
	case DepParent, DepBlocks, DepRelated:
		return true
	}
	return false
}

// Comment is an append-only annotation on an issue. There are no edit or
// delete operations; import replaces the full set rather than merging.
type Comment struct {
	ID        int64     `json:"-"`
	IssueID   string    `json:"-"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultCommentSource tags comments created without an explicit origin.
const DefaultCommentSource = "user"

// Project is a registry entry mapping a stable handle to the project's
// human name and current filesystem location.
//
// Handle is a canonicalized remote URL (host/path) or, for remote-less
// repositories, an absolute path. UUID is the most durable identity signal:
// it survives both remote changes and relocation.
type Project struct {
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	CurrentPath string `json:"current_path"`
	UUID        string `json:"uuid,omitempty"`
}

// IssueFilter controls ListIssues queries.
type IssueFilter struct {
	Project      string   // Filter by project handle ("" = all projects)
	Statuses     []Status // Filter by one or more statuses (nil = all)
	Priority     *int     // Filter by exact priority
	UpdatedSince *time.Time
}
