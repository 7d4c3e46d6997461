// Package dto holds the JSON shapes of the HTTP API.
package dto

import "time"

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the failure envelope. Errors carries machine-readable codes.
type ErrorResponse struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

// Error codes reported in ErrorResponse.Errors.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInvalidState    = "INVALID_STATE"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL"
)

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type JoinProjectRequest struct {
	InviteCode string `json:"invite_code"`
	Role       string `json:"role"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type CreateBugRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BugType     string `json:"bug_type"`
	Environment string `json:"environment"`
	StackTrace  string `json:"stack_trace"`
	ModuleName  string `json:"module_name"`
}

type ApproveBugRequest struct {
	Severity string `json:"severity"`
}

type AssignBugRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// ReasonRequest is the body of reject and reopen commands.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

type SubmitFixRequest struct {
	CommitURL string `json:"commit_url"`
	Summary   string `json:"summary"`
	Proof     string `json:"proof"`
}

type SuggestSeverityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Environment string `json:"environment"`
}

type User struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Member struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type Project struct {
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LeadID      string    `json:"lead_id"`
	Members     []Member  `json:"members"`
	InviteCode  string    `json:"invite_code,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type HistoryEntry struct {
	Action  string    `json:"action"`
	From    *string   `json:"from"`
	To      *string   `json:"to"`
	ActorID string    `json:"actor_id"`
	At      time.Time `json:"at"`
	Meta    string    `json:"meta,omitempty"`
}

type ReviewRequest struct {
	RequestedBy string    `json:"requested_by"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Bug struct {
	BugID             string          `json:"bug_id"`
	ProjectID         string          `json:"project_id"`
	CreatedBy         string          `json:"created_by"`
	AssignedTo        *string         `json:"assigned_to"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	BugType           string          `json:"bug_type"`
	Environment       string          `json:"environment"`
	Severity          string          `json:"severity"`
	SuggestedSeverity string          `json:"suggested_severity"`
	Status            string          `json:"status"`
	StackTrace        string          `json:"stack_trace,omitempty"`
	ModuleName        string          `json:"module_name,omitempty"`
	Fixes             []string        `json:"fixes"`
	ReviewRequests    []ReviewRequest `json:"review_requests"`
	History           []HistoryEntry  `json:"history"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type BugFix struct {
	FixID           string    `json:"fix_id"`
	BugID           string    `json:"bug_id"`
	SubmittedBy     string    `json:"submitted_by"`
	CommitURL       string    `json:"commit_url"`
	Summary         string    `json:"summary"`
	Proof           string    `json:"proof,omitempty"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FixReview is returned by fix commands: the fix and the bug it moved.
type FixReview struct {
	Bug Bug    `json:"bug"`
	Fix BugFix `json:"fix"`
}

type MemberRemoval struct {
	Project           Project `json:"project"`
	ReopenedBugs      int     `json:"reopened_bugs"`
	RejectedBugs      int     `json:"rejected_bugs"`
	CancelledRequests int     `json:"cancelled_requests"`
	RejectedFixes     int     `json:"rejected_fixes"`
}

type SeveritySuggestion struct {
	Severity     string   `json:"severity"`
	MatchedRules []string `json:"matched_rules"`
}
