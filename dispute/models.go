package dispute

import "time"

// Status represents the lifecycle of a dispute record.
type Status string

const (
	StatusUnderReview Status = "under_review"
	StatusResolved    Status = "resolved"
)

// Outcome names where the escrow transaction goes when a dispute resolves:
// back to closing, or cancelled outright.
type Outcome string

const (
	OutcomeResume Outcome = "resume"
	OutcomeCancel Outcome = "cancel"
)

// Record mirrors the disputes table.
type Record struct {
	ID            string
	TransactionID string
	OpenedBy      string
	Reason        string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ResolvedAt    *time.Time
}
