package insights

import "time"

// FundAmount is one fund's aggregate for a year
type FundAmount struct {
	CNPJ   string  `json:"cnpj"`
	Ticker string  `json:"ticker,omitempty"`
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

// SegmentCount is the number of distinct funds reporting a segment
type SegmentCount struct {
	Segment string `json:"segment"`
	Year    int    `json:"year"`
	Funds   int    `json:"funds"`
}

// DividendLeader summarizes a fund's yearly dividend-yield sums (percent points)
type DividendLeader struct {
	CNPJ   string  `json:"cnpj"`
	Ticker string  `json:"ticker,omitempty"`
	Total  float64 `json:"total"` // sum of yearly sums
	Mean   float64 `json:"mean"`  // mean of yearly sums
	Years  int     `json:"years"`
}

// Report is the yearly overview served by /api/insights/{year}
type Report struct {
	Year            int              `json:"year"`
	TopAssets       []FundAmount     `json:"top_assets"`
	TopLiabilities  []FundAmount     `json:"top_liabilities"`
	Segments        []SegmentCount   `json:"segments"`
	DividendLeaders []DividendLeader `json:"dividend_leaders"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// MonthlyPoint is one month of a fund's history
type MonthlyPoint struct {
	ReferenceDate time.Time `json:"reference_date"`
	DividendYield float64   `json:"dividend_yield"` // percent points
	NetEquity     float64   `json:"net_equity"`
	Holders       float64   `json:"holders"`
}

// FundProfile is the latest snapshot of one listed fund
type FundProfile struct {
	Ticker            string         `json:"ticker"`
	CNPJ              string         `json:"cnpj"`
	Segment           string         `json:"segment"`
	ReferenceDate     time.Time      `json:"reference_date"`
	DividendYield     float64        `json:"dividend_yield"` // percent points
	NetEquity         float64        `json:"net_equity"`
	QuotasIssued      float64        `json:"quotas_issued"`
	BookValuePerQuota float64        `json:"book_value_per_quota"`
	Holders           float64        `json:"holders"`
	Price             float64        `json:"price,omitempty"` // 0 when quotes are unavailable
	History           []MonthlyPoint `json:"history"`
}
