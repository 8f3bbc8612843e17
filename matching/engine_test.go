package matching

import (
	"testing"
	"time"

	"dealflow/deal"
)

func texasDeal() deal.Deal {
	return deal.Deal{
		ID:                   "deal-1",
		WholesalerID:         "user-wholesaler",
		Title:                "Distressed SFH near downtown",
		State:                "TX",
		City:                 "Houston",
		PropertyType:         deal.PropertySFH,
		AskingPrice:          180_000,
		Status:               deal.StatusActive,
		WholesalerReputation: 5,
		CreatedAt:            time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func openBudget() Preferences {
	return Preferences{
		States:   []string{"TX"},
		Cities:   []string{"Houston"},
		MaxPrice: 999_999_999,
	}
}

func TestScoreMatch_FullMatchClampsTo100(t *testing.T) {
	got := ScoreMatch(texasDeal(), openBudget())

	// 0.35 + 0.05 + 0.20 + 0.30 + 0.15 = 1.05, clamped to 1.0.
	if got.Score != 1.0 {
		t.Errorf("Score = %v, want clamped 1.0", got.Score)
	}
	if got.Percentage != 100 {
		t.Errorf("Percentage = %d, want 100", got.Percentage)
	}

	wantReasons := []string{ReasonLocation, ReasonCity, ReasonPropertyType, ReasonBudget, ReasonReputation}
	if len(got.Reasons) != len(wantReasons) {
		t.Fatalf("Reasons = %v, want %v", got.Reasons, wantReasons)
	}
	for i, want := range wantReasons {
		if got.Reasons[i] != want {
			t.Errorf("Reasons[%d] = %q, want %q", i, got.Reasons[i], want)
		}
	}
}

func TestScoreMatch_EmptyPreferencesMatchNothing(t *testing.T) {
	got := ScoreMatch(texasDeal(), Preferences{})
	if got.Score != 0 || got.Percentage != 0 {
		t.Errorf("ScoreMatch with empty preferences = %+v, want zero result", got)
	}
	if len(got.Reasons) != 0 {
		t.Errorf("Reasons = %v, want empty", got.Reasons)
	}
}

func TestScoreMatch_NoCityBonusWithoutStateMatch(t *testing.T) {
	prefs := Preferences{
		States: []string{"FL"},
		Cities: []string{"Houston"}, // city of a state not in the buy box
	}
	got := ScoreMatch(texasDeal(), prefs)
	for _, reason := range got.Reasons {
		if reason == ReasonCity || reason == ReasonLocation {
			t.Errorf("unexpected location reason %q for non-matching state", reason)
		}
	}
}

func TestScoreMatch_PropertyTypeWildcard(t *testing.T) {
	prefs := Preferences{States: []string{"TX"}}
	got := ScoreMatch(texasDeal(), prefs)

	// 0.35 location + 0.20 wildcard type + 0.30 open budget + 0.15 reputation.
	if got.Percentage != 100 {
		t.Errorf("Percentage = %d, want 100", got.Percentage)
	}

	prefs.PropertyTypes = []deal.PropertyType{deal.PropertyLand}
	got = ScoreMatch(texasDeal(), prefs)
	if got.Percentage != 80 {
		t.Errorf("Percentage = %d, want 80 when property type mismatches", got.Percentage)
	}
}

func TestScoreMatch_BudgetBoundsInclusive(t *testing.T) {
	d := texasDeal()
	prefs := Preferences{MinPrice: 180_000, MaxPrice: 180_000}
	got := ScoreMatch(d, prefs)
	if !contains(got.Reasons, ReasonBudget) {
		t.Errorf("asking price on the boundary should satisfy budget, reasons = %v", got.Reasons)
	}

	prefs = Preferences{MinPrice: 180_001}
	if got := ScoreMatch(d, prefs); contains(got.Reasons, ReasonBudget) {
		t.Error("asking price below MinPrice should not satisfy budget")
	}

	prefs = Preferences{MaxPrice: 179_999}
	if got := ScoreMatch(d, prefs); contains(got.Reasons, ReasonBudget) {
		t.Error("asking price above MaxPrice should not satisfy budget")
	}
}

func TestScoreMatch_ZeroMaxPriceMeansUnbounded(t *testing.T) {
	d := texasDeal()
	d.AskingPrice = 5_000_000
	prefs := Preferences{MinPrice: 1} // engages budget without capping it
	if got := ScoreMatch(d, prefs); !contains(got.Reasons, ReasonBudget) {
		t.Errorf("zero MaxPrice should be open-ended, reasons = %v", got.Reasons)
	}
}

func TestScoreMatch_ReputationThreshold(t *testing.T) {
	d := texasDeal()
	d.WholesalerReputation = 3.5

	prefs := Preferences{MinReputation: 3.5}
	if got := ScoreMatch(d, prefs); !contains(got.Reasons, ReasonReputation) {
		t.Error("reputation equal to the threshold should satisfy it")
	}

	prefs = Preferences{MinReputation: 4}
	if got := ScoreMatch(d, prefs); contains(got.Reasons, ReasonReputation) {
		t.Error("reputation below the threshold should not satisfy it")
	}
}

func TestScoreMatch_Monotonic(t *testing.T) {
	d := texasDeal()

	// Start with a single satisfied criterion, then add one at a time.
	steps := []Preferences{
		{MinReputation: 1},
		{MinReputation: 1, MinPrice: 1, MaxPrice: 200_000},
		{MinReputation: 1, MinPrice: 1, MaxPrice: 200_000, PropertyTypes: []deal.PropertyType{deal.PropertySFH}},
		{MinReputation: 1, MinPrice: 1, MaxPrice: 200_000, PropertyTypes: []deal.PropertyType{deal.PropertySFH}, States: []string{"TX"}},
		{MinReputation: 1, MinPrice: 1, MaxPrice: 200_000, PropertyTypes: []deal.PropertyType{deal.PropertySFH}, States: []string{"TX"}, Cities: []string{"Houston"}},
	}
	prev := -1.0
	for i, prefs := range steps {
		got := ScoreMatch(d, prefs)
		if got.Score < prev {
			t.Errorf("step %d: score %v dropped below %v after adding a satisfied criterion", i, got.Score, prev)
		}
		prev = got.Score
	}
}

func TestFindMatchesForInvestor_FiltersAndSorts(t *testing.T) {
	base := texasDeal()

	// Satisfies only the property type criterion: exactly 20%, which sits on
	// the filter boundary and must be excluded.
	florida := base
	florida.ID = "deal-2"
	florida.State = "FL"
	florida.City = "Miami"
	florida.AskingPrice = 300_000
	florida.WholesalerReputation = 0

	overBudget := base
	overBudget.ID = "deal-3"
	overBudget.AskingPrice = 900_000

	prefs := Preferences{
		States:        []string{"TX"},
		Cities:        []string{"Houston"},
		PropertyTypes: []deal.PropertyType{deal.PropertySFH},
		MaxPrice:      250_000,
		MinReputation: 4,
	}

	got := FindMatchesForInvestor([]deal.Deal{florida, overBudget, base}, prefs)

	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2 (the 20%% deal is filtered)", len(got))
	}
	if got[0].Deal.ID != "deal-1" || got[0].Percentage != 100 {
		t.Errorf("first match = %s at %d%%, want deal-1 at 100%%", got[0].Deal.ID, got[0].Percentage)
	}
	if got[1].Deal.ID != "deal-3" || got[1].Percentage != 75 {
		t.Errorf("second match = %s at %d%%, want deal-3 at 75%%", got[1].Deal.ID, got[1].Percentage)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Percentage > got[i-1].Percentage {
			t.Errorf("output not sorted non-increasing at index %d", i)
		}
	}
	for _, m := range got {
		if m.Percentage <= MinMatchPercent {
			t.Errorf("match %s with %d%% should have been filtered", m.Deal.ID, m.Percentage)
		}
	}
}

func TestFindMatchesForInvestor_TieBreaksNewestFirst(t *testing.T) {
	older := texasDeal()
	older.ID = "deal-old"
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	newer := texasDeal()
	newer.ID = "deal-new"
	newer.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	got := FindMatchesForInvestor([]deal.Deal{older, newer}, openBudget())
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Deal.ID != "deal-new" {
		t.Errorf("equal percentages should rank the newer deal first, got %s", got[0].Deal.ID)
	}
}

func TestFindMatchingInvestorsForDeal(t *testing.T) {
	investors := []Investor{
		{ID: "inv-none"}, // no stated preferences, must be skipped
		{ID: "inv-tx", Preferences: openBudget()},
		{ID: "inv-fl", Preferences: Preferences{States: []string{"FL"}, MinReputation: 5, MinPrice: 500_000}},
	}

	got := FindMatchingInvestorsForDeal(texasDeal(), investors)

	if len(got) != 1 {
		t.Fatalf("got %d matches, want only the TX investor: %+v", len(got), got)
	}
	if got[0].Investor.ID != "inv-tx" {
		t.Errorf("match = %s, want inv-tx", got[0].Investor.ID)
	}
}

func contains(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}
