package reputation

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestCalculate_Empty(t *testing.T) {
	if got := Calculate(nil); got != 0 {
		t.Errorf("Calculate(nil) = %v, want 0", got)
	}
	if got := Calculate([]Rating{}); got != 0 {
		t.Errorf("Calculate([]) = %v, want 0", got)
	}
}

func TestCalculate_NoCategoriesFallsBackToOverall(t *testing.T) {
	// With no category breakdown every category uses the overall score, so
	// the weighted mean collapses to the simple mean of 5 and 3.
	ratings := []Rating{
		{Score: 5},
		{Score: 3},
	}
	if got := Calculate(ratings); got != 4.0 {
		t.Errorf("Calculate = %v, want 4.0", got)
	}
}

func TestCalculate_WeightsCategories(t *testing.T) {
	// 5*0.25 + 4*0.35 + 3*0.25 + 2*0.15 = 3.7 exactly.
	ratings := []Rating{{
		Score: 1, // must be ignored when every category is present
		Categories: Categories{
			Communication:   ptr(5),
			DealQuality:     ptr(4),
			Professionalism: ptr(3),
			Timeliness:      ptr(2),
		},
	}}
	if got := Calculate(ratings); got != 3.7 {
		t.Errorf("Calculate = %v, want 3.7", got)
	}
}

func TestCalculate_PartialCategories(t *testing.T) {
	// dealQuality 5 at weight 0.35, the rest fall back to the overall 3:
	// 3*0.25 + 5*0.35 + 3*0.25 + 3*0.15 = 3.7.
	ratings := []Rating{{
		Score:      3,
		Categories: Categories{DealQuality: ptr(5)},
	}}
	if got := Calculate(ratings); got != 3.7 {
		t.Errorf("Calculate = %v, want 3.7", got)
	}
}

func TestCalculate_QuantizedToFiveHundredths(t *testing.T) {
	// Mean of 5, 4, 4 is 4.333..., which quantizes to 4.35.
	ratings := []Rating{{Score: 5}, {Score: 4}, {Score: 4}}
	if got := Calculate(ratings); got != 4.35 {
		t.Errorf("Calculate = %v, want 4.35", got)
	}
}

func TestCalculate_AlwaysMultipleOfFiveHundredths(t *testing.T) {
	histories := [][]Rating{
		{{Score: 1}},
		{{Score: 5}, {Score: 1}, {Score: 2}},
		{{Score: 4.5, Categories: Categories{Timeliness: ptr(1.5)}}},
		{{Score: 2}, {Score: 2}, {Score: 3}, {Score: 5}, {Score: 4}},
	}
	for i, ratings := range histories {
		got := Calculate(ratings)
		if got < 0 || got > 5 {
			t.Errorf("history %d: Calculate = %v, out of [0,5]", i, got)
		}
		steps := got * 20
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			t.Errorf("history %d: Calculate = %v, not a multiple of 0.05", i, got)
		}
	}
}

func TestBreakdown_Empty(t *testing.T) {
	got := Breakdown(nil)
	if got.Overall != 0 || got.TotalReviews != 0 {
		t.Errorf("Breakdown(nil) = %+v, want zero values", got)
	}
}

func TestBreakdown(t *testing.T) {
	ratings := []Rating{
		{Score: 4, Categories: Categories{Communication: ptr(5), DealQuality: ptr(3)}},
		{Score: 2},
	}
	got := Breakdown(ratings)

	if got.TotalReviews != 2 {
		t.Errorf("TotalReviews = %d, want 2", got.TotalReviews)
	}
	// communication: (5+2)/2 = 3.5; dealQuality: (3+2)/2 = 2.5;
	// professionalism and timeliness fall back: (4+2)/2 = 3.0.
	if got.Communication != 3.5 {
		t.Errorf("Communication = %v, want 3.5", got.Communication)
	}
	if got.DealQuality != 2.5 {
		t.Errorf("DealQuality = %v, want 2.5", got.DealQuality)
	}
	if got.Professionalism != 3.0 {
		t.Errorf("Professionalism = %v, want 3.0", got.Professionalism)
	}
	if got.Timeliness != 3.0 {
		t.Errorf("Timeliness = %v, want 3.0", got.Timeliness)
	}
	if got.Overall != Calculate(ratings) {
		t.Errorf("Overall = %v, want same as Calculate = %v", got.Overall, Calculate(ratings))
	}
}
