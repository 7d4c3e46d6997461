// Package entities contains core business entities.
package entities

import "time"

// FixStatus enumerates fix review states.
type FixStatus string

const (
	FixPending  FixStatus = "PENDING"
	FixAccepted FixStatus = "ACCEPTED"
	FixRejected FixStatus = "REJECTED"
)

// BugFix is a proposed remediation. It moves once, from PENDING to ACCEPTED or REJECTED.
type BugFix struct {
	ID              string
	BugID           string
	ProjectID       string
	SubmittedBy     string
	CommitURL       string
	Summary         string
	Proof           string
	Status          FixStatus
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
