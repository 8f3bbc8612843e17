package reputation

import "time"

// Categories holds the optional per-category sub-scores of a rating, each
// 1–5 when present. A nil category falls back to the rating's overall score.
type Categories struct {
	Communication   *float64
	DealQuality     *float64
	Professionalism *float64
	Timeliness      *float64
}

// Rating mirrors the ratings table. One party rates the other after a
// transaction completes.
type Rating struct {
	ID            string
	TransactionID string
	RaterID       string
	RatedUserID   string
	Score         float64
	Categories    Categories
	Comment       *string
	CreatedAt     time.Time
}
