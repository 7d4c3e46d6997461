// Package entities contains core business entities.
package entities

// ProjectStats aggregates bug and fix counters of one project.
type ProjectStats struct {
	ProjectID  string         `json:"project_id"`
	ByStatus   []StatusStat   `json:"by_status"`
	BySeverity []SeverityStat `json:"by_severity"`
	Workload   []AssigneeStat `json:"workload"`
	Fixes      []FixStat      `json:"fixes"`
}

// StatusStat describes bug counts grouped by status.
type StatusStat struct {
	Status   BugStatus `json:"status"`
	BugCount int64     `json:"bug_count"`
}

// SeverityStat describes bug counts grouped by severity.
type SeverityStat struct {
	Severity Severity `json:"severity"`
	BugCount int64    `json:"bug_count"`
}

// AssigneeStat counts bugs currently held by one developer.
type AssigneeStat struct {
	UserID   string `json:"user_id"`
	Assigned int64  `json:"assigned"`
	Awaiting int64  `json:"awaiting_verification"`
}

// FixStat describes fix counts grouped by status.
type FixStat struct {
	Status   FixStatus `json:"status"`
	FixCount int64     `json:"fix_count"`
}

// RemovalResult reports what a member removal cascade changed.
type RemovalResult struct {
	Project           *Project `json:"-"`
	ReopenedBugs      int      `json:"reopened_bugs"`
	RejectedBugs      int      `json:"rejected_bugs"`
	CancelledRequests int      `json:"cancelled_requests"`
	RejectedFixes     int      `json:"rejected_fixes"`
}
