// Package escrow governs the legal states a marketplace transaction may
// occupy and which transitions between them are permitted.
//
// Valid status graph:
//
//	escrow_funded ──► under_review ──► closing ──► completed
//	                       │              │
//	                       ├──► disputed ◄┤
//	                       │       │
//	                       └──► cancelled ◄── (disputed, closing)
//
// completed and cancelled are terminal: a transaction that reaches either
// must never move again.
package escrow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status values mirror the transaction_status enum in PostgreSQL.
type Status string

const (
	StatusEscrowFunded Status = "escrow_funded"
	StatusUnderReview  Status = "under_review"
	StatusClosing      Status = "closing"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
	StatusDisputed     Status = "disputed"
)

// validTransitions lists every allowed (from → to) pair. Anything not
// listed is illegal, which keeps the full graph auditable at a glance.
var validTransitions = map[Status][]Status{
	StatusEscrowFunded: {StatusUnderReview},
	StatusUnderReview:  {StatusClosing, StatusCancelled, StatusDisputed},
	StatusClosing:      {StatusCompleted, StatusCancelled, StatusDisputed},
	StatusDisputed:     {StatusClosing, StatusCancelled},
	// completed and cancelled are terminal — no outgoing transitions
}

// ErrInvalidTransition signals a transition not present in the status graph.
var ErrInvalidTransition = errors.New("escrow: invalid transition")

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusEscrowFunded, StatusUnderReview, StatusClosing, StatusCompleted, StatusCancelled, StatusDisputed:
		return st, nil
	}
	return "", fmt.Errorf("escrow: unknown transaction status %q", s)
}

// CanTransition returns true when moving from → to is permitted by the
// status graph. Membership test only, no hidden state.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AvailableTransitions returns the outgoing edges for the current status.
// Terminal statuses return an empty slice.
func AvailableTransitions(from Status) []Status {
	out := make([]Status, len(validTransitions[from]))
	copy(out, validTransitions[from])
	return out
}

// IsTerminal returns true when the status has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(validTransitions[s]) == 0
}

// Transition returns a copy of the transaction advanced to next, stamping
// UpdatedAt with at and CompletedAt only when next is completed. The input
// is never mutated; appending the status history entry is the persistence
// layer's job.
func Transition(txn Transaction, next Status, at time.Time) (Transaction, error) {
	if !CanTransition(txn.Status, next) {
		return Transaction{}, fmt.Errorf("%w: cannot move from %s to %s (available: %s)",
			ErrInvalidTransition, txn.Status, next, formatStatuses(AvailableTransitions(txn.Status)))
	}

	txn.Status = next
	txn.UpdatedAt = at
	if next == StatusCompleted {
		completed := at
		txn.CompletedAt = &completed
	}
	return txn, nil
}

func formatStatuses(statuses []Status) string {
	if len(statuses) == 0 {
		return "none"
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
