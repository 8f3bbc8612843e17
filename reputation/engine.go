// Package reputation aggregates multi-category ratings into a single
// weighted reputation score on the 0–5 scale consumed by matching.
package reputation

import "math"

// Category weights sum to 1.0 by construction.
const (
	weightCommunication   = 0.25
	weightDealQuality     = 0.35
	weightProfessionalism = 0.25
	weightTimeliness      = 0.15
)

// Calculate converts a user's full rating history into a single score.
// Each rating contributes a weighted sum over the four categories, with a
// missing category falling back to the rating's overall score; the final
// value is the mean across ratings quantized to the nearest 0.05. An empty
// history yields 0.
func Calculate(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}

	var sum float64
	for _, r := range ratings {
		sum += weightedScore(r)
	}
	mean := sum / float64(len(ratings))

	return math.Round(mean*20) / 20
}

// BreakdownResult exposes the per-category view used by transparency
// displays. Category means are unweighted; Overall is the same value
// Calculate produces.
type BreakdownResult struct {
	Overall         float64
	Communication   float64
	DealQuality     float64
	Professionalism float64
	Timeliness      float64
	TotalReviews    int
}

// Breakdown computes the simple per-category means across ratings, rounded
// to one decimal, alongside the weighted overall score.
func Breakdown(ratings []Rating) BreakdownResult {
	result := BreakdownResult{
		Overall:      Calculate(ratings),
		TotalReviews: len(ratings),
	}
	if len(ratings) == 0 {
		return result
	}

	var comm, quality, prof, timely float64
	for _, r := range ratings {
		comm += categoryOrOverall(r.Categories.Communication, r.Score)
		quality += categoryOrOverall(r.Categories.DealQuality, r.Score)
		prof += categoryOrOverall(r.Categories.Professionalism, r.Score)
		timely += categoryOrOverall(r.Categories.Timeliness, r.Score)
	}

	n := float64(len(ratings))
	result.Communication = round1(comm / n)
	result.DealQuality = round1(quality / n)
	result.Professionalism = round1(prof / n)
	result.Timeliness = round1(timely / n)
	return result
}

func weightedScore(r Rating) float64 {
	return categoryOrOverall(r.Categories.Communication, r.Score)*weightCommunication +
		categoryOrOverall(r.Categories.DealQuality, r.Score)*weightDealQuality +
		categoryOrOverall(r.Categories.Professionalism, r.Score)*weightProfessionalism +
		categoryOrOverall(r.Categories.Timeliness, r.Score)*weightTimeliness
}

func categoryOrOverall(category *float64, overall float64) float64 {
	if category != nil {
		return *category
	}
	return overall
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
