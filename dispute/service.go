package dispute

import (
	"context"
	"fmt"
	"strings"

	"dealflow/escrow"
)

// EscrowTransitioner routes every escrow status change through the state
// machine; disputes never mutate transaction status directly.
type EscrowTransitioner interface {
	Transition(ctx context.Context, params escrow.TransitionParams) (escrow.Transaction, error)
}

// Service couples dispute records to the escrow lifecycle: opening a
// dispute moves the transaction to disputed, and resolution routes it back
// to closing or into cancellation.
type Service struct {
	repo   *Repository
	escrow EscrowTransitioner
}

func NewService(repo *Repository, transitioner EscrowTransitioner) *Service {
	return &Service{repo: repo, escrow: transitioner}
}

// List returns the user's disputes, optionally narrowed to one transaction.
func (s *Service) List(ctx context.Context, userID, transactionID string) ([]Record, error) {
	return s.repo.List(ctx, userID, transactionID)
}

// Open transitions the transaction to disputed and records the dispute.
// The transition is attempted first, so a transaction that cannot be
// disputed (wrong state, terminal) never produces an orphan record.
func (s *Service) Open(ctx context.Context, userID, transactionID, reason string) (Record, error) {
	if strings.TrimSpace(reason) == "" {
		return Record{}, fmt.Errorf("dispute: reason required")
	}

	if _, err := s.escrow.Transition(ctx, escrow.TransitionParams{
		TransactionID: transactionID,
		ActorID:       userID,
		Next:          escrow.StatusDisputed,
		Payload:       map[string]any{"reason": reason},
	}); err != nil {
		return Record{}, err
	}

	return s.repo.Create(ctx, userID, transactionID, reason)
}

// Resolve closes the dispute and moves the transaction according to the
// outcome: back to closing, or cancelled.
func (s *Service) Resolve(ctx context.Context, userID, disputeID string, outcome Outcome) (Record, error) {
	rec, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return Record{}, err
	}
	if rec.Status == StatusResolved {
		return Record{}, ErrBadStatus
	}

	var next escrow.Status
	switch outcome {
	case OutcomeResume:
		next = escrow.StatusClosing
	case OutcomeCancel:
		next = escrow.StatusCancelled
	default:
		return Record{}, fmt.Errorf("dispute: unknown outcome %q", outcome)
	}

	if _, err := s.escrow.Transition(ctx, escrow.TransitionParams{
		TransactionID: rec.TransactionID,
		ActorID:       userID,
		Next:          next,
		Payload:       map[string]any{"dispute_id": disputeID, "outcome": string(outcome)},
	}); err != nil {
		return Record{}, err
	}

	return s.repo.Resolve(ctx, disputeID)
}
