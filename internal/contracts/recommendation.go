package contracts

import "time"

// Recommendation is one row of the final list
type Recommendation struct {
	Rank          int       `json:"rank"` // 1-based
	CNPJ          string    `json:"cnpj"`
	Ticker        string    `json:"ticker"`
	ReferenceDate time.Time `json:"reference_date"`
	Segment       string    `json:"segment"`
	Score         float64   `json:"score"`
	Price         float64   `json:"price"`
}

// RunStats counts rows surviving each stage
type RunStats struct {
	Loaded       int `json:"loaded"`
	Listed       int `json:"listed"`
	Deduplicated int `json:"deduplicated"`
	AfterRecency int `json:"after_recency"`
	AfterSegment int `json:"after_segment"`
	Candidates   int `json:"candidates"`
	Quoted       int `json:"quoted"`
	Returned     int `json:"returned"`
}

// Result is the outcome of one recommendation run (never persisted)
// ⭐ SSOT: 추천 결과
type Result struct {
	RunID           string           `json:"run_id"`
	Request         Request          `json:"request"`
	Recommendations []Recommendation `json:"recommendations"`
	// Warning is set when quotes were unavailable; an empty list with a
	// warning is not the same as "no funds match"
	Warning     string        `json:"warning,omitempty"`
	Stats       RunStats      `json:"stats"`
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`
}

// Empty reports whether no fund survived
func (r *Result) Empty() bool {
	return len(r.Recommendations) == 0
}

// Degraded reports whether the run completed without live quotes
func (r *Result) Degraded() bool {
	return r.Warning != ""
}
