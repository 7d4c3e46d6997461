// Package entities contains core business entities.
package entities

import "time"

// Action tags a history entry.
type Action string

// History actions.
const (
	ActionBugCreated             Action = "BUG_CREATED"
	ActionBugApproved            Action = "BUG_APPROVED"
	ActionBugRejected            Action = "BUG_REJECTED"
	ActionSeverityUpdated        Action = "SEVERITY_UPDATED"
	ActionBugAssigned            Action = "BUG_ASSIGNED"
	ActionBugReassigned          Action = "BUG_REASSIGNED"
	ActionFixSubmitted           Action = "FIX_SUBMITTED"
	ActionFixRejected            Action = "FIX_REJECTED"
	ActionBugResolved            Action = "BUG_RESOLVED"
	ActionReopenRequested        Action = "REOPEN_REQUESTED"
	ActionReopenApproved         Action = "REOPEN_APPROVED"
	ActionReopenRejected         Action = "REOPEN_REJECTED"
	ActionStatusUpdated          Action = "STATUS_UPDATED"
	ActionReviewRequestCancelled Action = "REVIEW_REQUEST_CANCELLED"
)

// HistoryEntry is one immutable audit record. From and To are empty for events
// that do not change the status.
type HistoryEntry struct {
	Action  Action
	From    BugStatus
	To      BugStatus
	ActorID string
	At      time.Time
	Meta    string
}

// IsStatusChange reports whether the entry records a status transition.
func (e HistoryEntry) IsStatusChange() bool {
	return e.From != "" || e.To != ""
}

// History is the append-only, order-preserving log of a bug.
// The zero value is an empty log.
type History struct {
	entries []HistoryEntry
}

// NewHistory restores a log from stored entries in append order.
func NewHistory(entries ...HistoryEntry) History {
	return History{entries: append([]HistoryEntry(nil), entries...)}
}

// Append adds e at the end of the log. The backing array is never shared with
// earlier copies of the log, so snapshots taken before Append stay unchanged.
func (h *History) Append(e HistoryEntry) {
	next := make([]HistoryEntry, len(h.entries), len(h.entries)+1)
	copy(next, h.entries)
	h.entries = append(next, e)
}

// Len returns number of entries.
func (h History) Len() int { return len(h.entries) }

// Last returns the most recent entry.
func (h History) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Entries returns a copy of all entries in append order.
func (h History) Entries() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

// Since returns the entries appended after the first n.
func (h History) Since(n int) []HistoryEntry {
	if n >= len(h.entries) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	return append([]HistoryEntry(nil), h.entries[n:]...)
}

// Actions lists entry actions in append order.
func (h History) Actions() []Action {
	res := make([]Action, 0, len(h.entries))
	for _, e := range h.entries {
		res = append(res, e.Action)
	}
	return res
}
