package types

import "testing"

func TestStatusIsValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusOpen, true},
		{StatusInProgress, true},
		{StatusClosed, true},
		{StatusBlocked, true},
		{Status("done"), false},
		{Status(""), false},
		{Status("OPEN"), false},
	}

	for _, tt := range tests {
		if got := tt.status.IsValid(); got != tt.want {
			t.Errorf("Status(%q).IsValid() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestDependencyTypeIsValid(t *testing.T) {
	tests := []struct {
		dep  DependencyType
		want bool
	}{
		{DepParent, true},
		{DepBlocks, true},
		{DepRelated, true},
		{DependencyType("child"), false},
		{DependencyType(""), false},
	}

	for _, tt := range tests {
		if got := tt.dep.IsValid(); got != tt.want {
			t.Errorf("DependencyType(%q).IsValid() = %v, want %v", tt.dep, got, tt.want)
		}
	}
}

func TestValidatePriority(t *testing.T) {
	for p := PriorityMin; p <= PriorityMax; p++ {
		if err := ValidatePriority(p); err != nil {
			t.Errorf("ValidatePriority(%d) = %v, want nil", p, err)
		}
	}
	for _, p := range []int{-1, 5, 100} {
		if err := ValidatePriority(p); err == nil {
			t.Errorf("ValidatePriority(%d) = nil, want error", p)
		}
	}
}

func TestIssueValidate(t *testing.T) {
	tests := []struct {
		name    string
		issue   Issue
		wantErr bool
	}{
		{
			name:  "valid issue",
			issue: Issue{Title: "fix the thing", Status: StatusOpen, Priority: 2},
		},
		{
			name:    "missing title",
			issue:   Issue{Status: StatusOpen, Priority: 2},
			wantErr: true,
		},
		{
			name:    "bad status",
			issue:   Issue{Title: "x", Status: "nope", Priority: 2},
			wantErr: true,
		},
		{
			name:    "priority out of range",
			issue:   Issue{Title: "x", Status: StatusOpen, Priority: 9},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.issue.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseStatuses(t *testing.T) {
	got, err := ParseStatuses("open,in_progress")
	if err != nil {
		t.Fatalf("ParseStatuses: %v", err)
	}
	if len(got) != 2 || got[0] != StatusOpen || got[1] != StatusInProgress {
		t.Errorf("ParseStatuses = %v", got)
	}

	if _, err := ParseStatuses("open,bogus"); err == nil {
		t.Error("expected error for invalid status in list")
	}

	got, err = ParseStatuses("")
	if err != nil || got != nil {
		t.Errorf("ParseStatuses(\"\") = %v, %v", got, err)
	}
}
