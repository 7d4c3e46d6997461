// Package mapper converts between domain models and transport DTOs.
package mapper

import (
	"strings"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/lifecycle"
	"bug-lifecycle-tracker/internal/severity"
	"bug-lifecycle-tracker/internal/transport/http/dto"
)

// FromCreateBug builds a lifecycle report from the request body. Enum values
// are upper-cased; validation is left to the lifecycle.
func FromCreateBug(src dto.CreateBugRequest) lifecycle.ReportInput {
	return lifecycle.ReportInput{
		Title:       src.Title,
		Description: src.Description,
		BugType:     entities.BugType(upper(src.BugType)),
		Environment: entities.Environment(upper(src.Environment)),
		StackTrace:  src.StackTrace,
		ModuleName:  src.ModuleName,
	}
}

// FromSubmitFix builds a fix submission from the request body.
func FromSubmitFix(src dto.SubmitFixRequest) lifecycle.FixInput {
	return lifecycle.FixInput{
		CommitURL: strings.TrimSpace(src.CommitURL),
		Summary:   src.Summary,
		Proof:     src.Proof,
	}
}

// FromSuggestSeverity builds the severity engine input.
func FromSuggestSeverity(src dto.SuggestSeverityRequest) severity.Input {
	return severity.Input{
		Title:       src.Title,
		Description: src.Description,
		Environment: entities.Environment(upper(src.Environment)),
	}
}

// ToUser maps entities.User to transport model.
func ToUser(u entities.User) dto.User {
	return dto.User{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// ToProject maps entities.Project to transport model.
func ToProject(p entities.Project) dto.Project {
	members := make([]dto.Member, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, dto.Member{
			UserID:   m.UserID,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}

	return dto.Project{
		ProjectID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		LeadID:      p.LeadID,
		Members:     members,
		InviteCode:  p.InviteCode,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProjectList maps a slice of projects to transport slice.
func ToProjectList(list []entities.Project) []dto.Project {
	res := make([]dto.Project, 0, len(list))
	for _, p := range list {
		res = append(res, ToProject(p))
	}
	return res
}

// ToBug maps entities.Bug to transport model, history in append order.
func ToBug(b entities.Bug) dto.Bug {
	entries := b.History.Entries()
	history := make([]dto.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		history = append(history, dto.HistoryEntry{
			Action:  string(e.Action),
			From:    optional(string(e.From)),
			To:      optional(string(e.To)),
			ActorID: e.ActorID,
			At:      e.At,
			Meta:    e.Meta,
		})
	}

	requests := make([]dto.ReviewRequest, 0, len(b.ReviewRequests))
	for _, rr := range b.ReviewRequests {
		requests = append(requests, dto.ReviewRequest{
			RequestedBy: rr.RequestedBy,
			Reason:      rr.Reason,
			Status:      string(rr.Status),
			CreatedAt:   rr.CreatedAt,
		})
	}

	fixes := append([]string{}, b.Fixes...)

	return dto.Bug{
		BugID:             b.ID,
		ProjectID:         b.ProjectID,
		CreatedBy:         b.CreatedBy,
		AssignedTo:        optional(b.AssignedTo),
		Title:             b.Title,
		Description:       b.Description,
		BugType:           string(b.BugType),
		Environment:       string(b.Environment),
		Severity:          string(b.Severity),
		SuggestedSeverity: string(b.SuggestedSeverity),
		Status:            string(b.Status),
		StackTrace:        b.StackTrace,
		ModuleName:        b.ModuleName,
		Fixes:             fixes,
		ReviewRequests:    requests,
		History:           history,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// ToBugList maps a slice of bugs to transport slice.
func ToBugList(list []entities.Bug) []dto.Bug {
	res := make([]dto.Bug, 0, len(list))
	for _, b := range list {
		res = append(res, ToBug(b))
	}
	return res
}

// ToFix maps entities.BugFix to transport model.
func ToFix(f entities.BugFix) dto.BugFix {
	return dto.BugFix{
		FixID:           f.ID,
		BugID:           f.BugID,
		SubmittedBy:     f.SubmittedBy,
		CommitURL:       f.CommitURL,
		Summary:         f.Summary,
		Proof:           f.Proof,
		Status:          string(f.Status),
		RejectionReason: f.RejectionReason,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// ToFixList maps a slice of fixes to transport slice.
func ToFixList(list []entities.BugFix) []dto.BugFix {
	res := make([]dto.BugFix, 0, len(list))
	for _, f := range list {
		res = append(res, ToFix(f))
	}
	return res
}

// ToFixReview pairs a fix with the bug it moved.
func ToFixReview(b entities.Bug, f entities.BugFix) dto.FixReview {
	return dto.FixReview{Bug: ToBug(b), Fix: ToFix(f)}
}

// ToMemberRemoval maps the removal cascade summary.
func ToMemberRemoval(r entities.RemovalResult) dto.MemberRemoval {
	res := dto.MemberRemoval{
		ReopenedBugs:      r.ReopenedBugs,
		RejectedBugs:      r.RejectedBugs,
		CancelledRequests: r.CancelledRequests,
		RejectedFixes:     r.RejectedFixes,
	}
	if r.Project != nil {
		res.Project = ToProject(*r.Project)
	}
	return res
}

// ToSeveritySuggestion maps the severity engine verdict.
func ToSeveritySuggestion(s severity.Suggestion) dto.SeveritySuggestion {
	rules := append([]string{}, s.MatchedRules...)
	return dto.SeveritySuggestion{Severity: string(s.Severity), MatchedRules: rules}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
