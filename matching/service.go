package matching

import (
	"context"
	"fmt"

	"dealflow/deal"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// DealSource supplies deal snapshots with wholesaler reputation already
// attached. The matching engine itself never performs lookups.
type DealSource interface {
	GetByID(ctx context.Context, dealID string) (deal.Deal, error)
	ListActive(ctx context.Context) ([]deal.Deal, error)
}

// Service wires the pure scoring engine to its collaborators. Scoring fans
// out across a bounded worker group; every ScoreMatch call is independent,
// so no locking is needed.
type Service struct {
	deals   DealSource
	prefs   PreferencesRepository
	workers int
}

func NewService(deals DealSource, prefs PreferencesRepository) *Service {
	return &Service{
		deals:   deals,
		prefs:   prefs,
		workers: defaultWorkers,
	}
}

func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// MatchesForInvestor ranks all active deals against the investor's stored
// preferences. An investor without stored preferences gets an empty result,
// not an error.
func (s *Service) MatchesForInvestor(ctx context.Context, investorID string) ([]DealMatch, error) {
	if investorID == "" {
		return nil, fmt.Errorf("matching: missing investor id")
	}

	prefs, err := s.prefs.GetForInvestor(ctx, investorID)
	if err != nil {
		return nil, err
	}
	if prefs.IsEmpty() {
		return []DealMatch{}, nil
	}

	deals, err := s.deals.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(deals))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range deals {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = ScoreMatch(deals[i], prefs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("matching: score deals: %w", err)
	}

	matches := make([]DealMatch, 0, len(deals))
	for i, result := range results {
		if result.Percentage <= MinMatchPercent {
			continue
		}
		matches = append(matches, DealMatch{Deal: deals[i], Result: result})
	}
	sortDealMatches(matches)
	return matches, nil
}

// InvestorsForDeal ranks every investor with stated preferences against one
// deal, for the wholesaler's buyer-search view.
func (s *Service) InvestorsForDeal(ctx context.Context, dealID string) ([]InvestorMatch, error) {
	if dealID == "" {
		return nil, fmt.Errorf("matching: missing deal id")
	}

	d, err := s.deals.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}

	investors, err := s.prefs.ListInvestors(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(investors))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range investors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if investors[i].Preferences.IsEmpty() {
				return nil
			}
			results[i] = ScoreMatch(d, investors[i].Preferences)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("matching: score investors: %w", err)
	}

	matches := make([]InvestorMatch, 0, len(investors))
	for i, result := range results {
		if investors[i].Preferences.IsEmpty() || result.Percentage <= MinMatchPercent {
			continue
		}
		matches = append(matches, InvestorMatch{Investor: investors[i], Result: result})
	}
	sortInvestorMatches(matches)
	return matches, nil
}
