package deal

import (
	"context"
	"fmt"
	"strings"
)

// Service exposes business-level listing operations.
type Service struct {
	repo Repository
}

// NewService builds a Service using the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new listing.
func (s *Service) Create(ctx context.Context, params CreateParams) (Deal, error) {
	if params.WholesalerID == "" {
		return Deal{}, fmt.Errorf("deal: missing wholesaler id")
	}
	if strings.TrimSpace(params.Title) == "" {
		return Deal{}, fmt.Errorf("deal: title required")
	}
	if params.State == "" || params.City == "" {
		return Deal{}, fmt.Errorf("deal: state and city required")
	}
	if _, err := ParsePropertyType(string(params.PropertyType)); err != nil {
		return Deal{}, err
	}
	if params.AskingPrice < 0 {
		return Deal{}, fmt.Errorf("deal: asking price must be non-negative")
	}
	return s.repo.Create(ctx, params)
}

// GetByID returns the deal snapshot for the given identifier.
func (s *Service) GetByID(ctx context.Context, dealID string) (Deal, error) {
	return s.repo.GetByID(ctx, dealID)
}

// ListActive returns all listings currently open to offers.
func (s *Service) ListActive(ctx context.Context) ([]Deal, error) {
	return s.repo.ListActive(ctx)
}

// Withdraw takes a listing off the market.
func (s *Service) Withdraw(ctx context.Context, dealID string) (Deal, error) {
	return s.repo.UpdateStatus(ctx, dealID, StatusWithdrawn)
}
