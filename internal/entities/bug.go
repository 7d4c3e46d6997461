// Package entities contains core business entities.
package entities

import "time"

// BugStatus enumerates bug lifecycle states.
type BugStatus string

const (
	StatusPendingReview        BugStatus = "PENDING_REVIEW"
	StatusOpen                 BugStatus = "OPEN"
	StatusAssigned             BugStatus = "ASSIGNED"
	StatusReviewRequested      BugStatus = "REVIEW_REQUESTED" // reserved, no transition produces it
	StatusAwaitingVerification BugStatus = "AWAITING_VERIFICATION"
	StatusResolved             BugStatus = "RESOLVED"
	StatusReopened             BugStatus = "REOPENED"
	StatusRejected             BugStatus = "REJECTED"
)

// IsValid reports whether s is a known status.
func (s BugStatus) IsValid() bool {
	switch s {
	case StatusPendingReview, StatusOpen, StatusAssigned, StatusReviewRequested,
		StatusAwaitingVerification, StatusResolved, StatusReopened, StatusRejected:
		return true
	}
	return false
}

// Severity grades bug impact.
type Severity string

const (
	SeverityUnconfirmed Severity = "UNCONFIRMED"
	SeverityLow         Severity = "LOW"
	SeverityMedium      Severity = "MEDIUM"
	SeverityHigh        Severity = "HIGH"
	SeverityCritical    Severity = "CRITICAL"
)

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityUnconfirmed, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// BugType classifies the affected area.
type BugType string

const (
	BugTypeUI         BugType = "UI"
	BugTypeFunctional BugType = "FUNCTIONAL"
	BugTypeBackend    BugType = "BACKEND"
	BugTypeDatabase   BugType = "DATABASE"
	BugTypeAPI        BugType = "API"
	BugTypeSecurity   BugType = "SECURITY"
	BugTypeInfra      BugType = "INFRA"
	BugTypeOther      BugType = "OTHER"
)

// IsValid reports whether t is a known bug type.
func (t BugType) IsValid() bool {
	switch t {
	case BugTypeUI, BugTypeFunctional, BugTypeBackend, BugTypeDatabase,
		BugTypeAPI, BugTypeSecurity, BugTypeInfra, BugTypeOther:
		return true
	}
	return false
}

// Environment is where the bug was observed.
type Environment string

const (
	EnvProduction  Environment = "PRODUCTION"
	EnvStaging     Environment = "STAGING"
	EnvDevelopment Environment = "DEVELOPMENT"
)

// IsValid reports whether e is a known environment.
func (e Environment) IsValid() bool {
	switch e {
	case EnvProduction, EnvStaging, EnvDevelopment:
		return true
	}
	return false
}

// ReviewRequestStatus enumerates review request states.
type ReviewRequestStatus string

const (
	ReviewPending   ReviewRequestStatus = "PENDING"
	ReviewApproved  ReviewRequestStatus = "APPROVED"
	ReviewRejected  ReviewRequestStatus = "REJECTED"
	ReviewCancelled ReviewRequestStatus = "CANCELLED"
)

// ReviewRequest is a member's appeal attached to a bug.
type ReviewRequest struct {
	RequestedBy string
	Reason      string
	Status      ReviewRequestStatus
	CreatedAt   time.Time
}

// Bug is a reported defect.
type Bug struct {
	ID                string
	ProjectID         string
	CreatedBy         string
	AssignedTo        string
	Title             string
	Description       string
	BugType           BugType
	Environment       Environment
	Severity          Severity
	SuggestedSeverity Severity
	Status            BugStatus
	IsActive          bool
	History           History
	Fixes             []string
	ReviewRequests    []ReviewRequest
	StackTrace        string
	ModuleName        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Clone returns a copy that shares no mutable state with b.
func (b Bug) Clone() Bug {
	b.Fixes = append([]string(nil), b.Fixes...)
	b.ReviewRequests = append([]ReviewRequest(nil), b.ReviewRequests...)
	return b
}

// BugFilter narrows bug listings.
type BugFilter struct {
	Status     *BugStatus
	AssignedTo string
}
