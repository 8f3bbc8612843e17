package reputation

import (
	"context"
	"errors"
	"fmt"

	"dealflow/escrow"
)

var (
	// ErrTransactionNotCompleted signals a rating submitted before the deal closed.
	ErrTransactionNotCompleted = errors.New("reputation: transaction not completed")
	// ErrRaterNotParty signals the rater was not part of the transaction.
	ErrRaterNotParty = errors.New("reputation: rater is not a party to the transaction")
	// ErrScoreOutOfRange signals a score outside the 1–5 scale.
	ErrScoreOutOfRange = errors.New("reputation: score must be between 1 and 5")
)

// TransactionReader supplies the transaction a rating refers to.
type TransactionReader interface {
	Get(ctx context.Context, transactionID string) (escrow.Transaction, error)
}

// Service gates rating submission on the transaction lifecycle and keeps the
// rated user's stored reputation in sync with their full rating history.
type Service struct {
	repo         Repository
	transactions TransactionReader
}

func NewService(repo Repository, transactions TransactionReader) *Service {
	return &Service{repo: repo, transactions: transactions}
}

// AddRatingParams enumerates the caller-supplied rating fields.
type AddRatingParams struct {
	TransactionID string
	RaterID       string
	Score         float64
	Categories    Categories
	Comment       *string
}

// AddRating stores a rating for the counterparty of a completed transaction
// and recomputes their reputation from the whole history. Scores are
// validated here rather than in the engine, which has defined fallbacks for
// whatever it is given.
func (s *Service) AddRating(ctx context.Context, params AddRatingParams) (Rating, float64, error) {
	if params.TransactionID == "" {
		return Rating{}, 0, fmt.Errorf("reputation: missing transaction id")
	}
	if params.RaterID == "" {
		return Rating{}, 0, fmt.Errorf("reputation: missing rater id")
	}
	if err := validateScore(params.Score); err != nil {
		return Rating{}, 0, err
	}
	for _, sub := range []*float64{
		params.Categories.Communication,
		params.Categories.DealQuality,
		params.Categories.Professionalism,
		params.Categories.Timeliness,
	} {
		if sub == nil {
			continue
		}
		if err := validateScore(*sub); err != nil {
			return Rating{}, 0, err
		}
	}

	txn, err := s.transactions.Get(ctx, params.TransactionID)
	if err != nil {
		return Rating{}, 0, err
	}
	if txn.Status != escrow.StatusCompleted {
		return Rating{}, 0, ErrTransactionNotCompleted
	}

	var ratedUserID string
	switch params.RaterID {
	case txn.WholesalerID:
		ratedUserID = txn.InvestorID
	case txn.InvestorID:
		ratedUserID = txn.WholesalerID
	default:
		return Rating{}, 0, ErrRaterNotParty
	}

	rating, err := s.repo.Insert(ctx, Rating{
		TransactionID: params.TransactionID,
		RaterID:       params.RaterID,
		RatedUserID:   ratedUserID,
		Score:         params.Score,
		Categories:    params.Categories,
		Comment:       params.Comment,
	})
	if err != nil {
		return Rating{}, 0, err
	}

	// Reputation is recomputed from scratch on every new rating; there is
	// no incremental update path.
	history, err := s.repo.ListForUser(ctx, ratedUserID)
	if err != nil {
		return Rating{}, 0, err
	}
	score := Calculate(history)
	if err := s.repo.UpdateUserReputation(ctx, ratedUserID, score); err != nil {
		return Rating{}, 0, err
	}

	return rating, score, nil
}

// ScoreFor recomputes a user's reputation from their stored rating history.
func (s *Service) ScoreFor(ctx context.Context, userID string) (float64, error) {
	history, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return Calculate(history), nil
}

// BreakdownFor returns the per-category transparency view for a user.
func (s *Service) BreakdownFor(ctx context.Context, userID string) (BreakdownResult, error) {
	history, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return BreakdownResult{}, err
	}
	return Breakdown(history), nil
}

func validateScore(score float64) error {
	if score < 1 || score > 5 {
		return ErrScoreOutOfRange
	}
	return nil
}
