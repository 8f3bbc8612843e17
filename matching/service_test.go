package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealflow/deal"
)

func seedDeals() []deal.Deal {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []deal.Deal{
		{
			ID: "deal-tx", State: "TX", City: "Houston", PropertyType: deal.PropertySFH,
			AskingPrice: 150_000, WholesalerReputation: 4.5, CreatedAt: base.AddDate(0, 0, 2),
		},
		{
			ID: "deal-fl", State: "FL", City: "Tampa", PropertyType: deal.PropertyLand,
			AskingPrice: 80_000, WholesalerReputation: 2, CreatedAt: base.AddDate(0, 0, 1),
		},
		{
			ID: "deal-tx2", State: "TX", City: "Austin", PropertyType: deal.PropertyMultiFamily,
			AskingPrice: 400_000, WholesalerReputation: 5, CreatedAt: base,
		},
	}
}

func TestMatchesForInvestor_RanksStoredPreferences(t *testing.T) {
	deals := &fakeDealSource{deals: seedDeals()}
	prefs := &fakePrefsRepo{prefs: map[string]Preferences{
		"inv-1": {
			States:        []string{"TX"},
			Cities:        []string{"Houston"},
			PropertyTypes: []deal.PropertyType{deal.PropertySFH, deal.PropertyMultiFamily},
			MinPrice:      100_000,
			MaxPrice:      500_000,
			MinReputation: 4,
		},
	}}
	svc := NewService(deals, prefs).WithWorkers(2)

	got, err := svc.MatchesForInvestor(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("MatchesForInvestor: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(got), got)
	}
	// Both Texas deals score 100; the newer listing ranks first.
	if got[0].Deal.ID != "deal-tx" {
		t.Errorf("top match = %s, want deal-tx (newer)", got[0].Deal.ID)
	}
	if got[1].Deal.ID != "deal-tx2" {
		t.Errorf("second match = %s, want deal-tx2", got[1].Deal.ID)
	}
}

func TestMatchesForInvestor_NoStoredPreferences(t *testing.T) {
	svc := NewService(&fakeDealSource{deals: seedDeals()}, &fakePrefsRepo{})

	got, err := svc.MatchesForInvestor(context.Background(), "inv-unknown")
	if err != nil {
		t.Fatalf("expected empty result rather than error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d matches, want 0 for an investor without preferences", len(got))
	}
}

func TestMatchesForInvestor_PropagatesSourceError(t *testing.T) {
	wantErr := errors.New("boom")
	deals := &fakeDealSource{listErr: wantErr}
	prefs := &fakePrefsRepo{prefs: map[string]Preferences{"inv-1": {States: []string{"TX"}}}}
	svc := NewService(deals, prefs)

	if _, err := svc.MatchesForInvestor(context.Background(), "inv-1"); !errors.Is(err, wantErr) {
		t.Fatalf("expected source error to propagate, got %v", err)
	}
}

func TestInvestorsForDeal(t *testing.T) {
	deals := &fakeDealSource{deals: seedDeals()}
	prefs := &fakePrefsRepo{investors: []Investor{
		{ID: "inv-a", Preferences: Preferences{States: []string{"TX"}}},
		{ID: "inv-b"}, // no preferences
		{ID: "inv-c", Preferences: Preferences{States: []string{"TX"}}},
	}}
	svc := NewService(deals, prefs)

	got, err := svc.InvestorsForDeal(context.Background(), "deal-tx")
	if err != nil {
		t.Fatalf("InvestorsForDeal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	// Equal percentages: tie broken by investor id.
	if got[0].Investor.ID != "inv-a" || got[1].Investor.ID != "inv-c" {
		t.Errorf("order = %s, %s; want inv-a, inv-c", got[0].Investor.ID, got[1].Investor.ID)
	}
}

func TestInvestorsForDeal_UnknownDeal(t *testing.T) {
	svc := NewService(&fakeDealSource{deals: seedDeals()}, &fakePrefsRepo{})

	if _, err := svc.InvestorsForDeal(context.Background(), "deal-missing"); !errors.Is(err, deal.ErrNotFound) {
		t.Fatalf("expected deal.ErrNotFound, got %v", err)
	}
}

type fakeDealSource struct {
	deals   []deal.Deal
	listErr error
}

func (f *fakeDealSource) GetByID(_ context.Context, dealID string) (deal.Deal, error) {
	for _, d := range f.deals {
		if d.ID == dealID {
			return d, nil
		}
	}
	return deal.Deal{}, deal.ErrNotFound
}

func (f *fakeDealSource) ListActive(_ context.Context) ([]deal.Deal, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.deals, nil
}

type fakePrefsRepo struct {
	prefs     map[string]Preferences
	investors []Investor
}

func (f *fakePrefsRepo) GetForInvestor(_ context.Context, investorID string) (Preferences, error) {
	return f.prefs[investorID], nil
}

func (f *fakePrefsRepo) Upsert(_ context.Context, investorID string, prefs Preferences) error {
	if f.prefs == nil {
		f.prefs = make(map[string]Preferences)
	}
	f.prefs[investorID] = prefs
	return nil
}

func (f *fakePrefsRepo) ListInvestors(_ context.Context) ([]Investor, error) {
	return f.investors, nil
}
