package contracts

import "context"

// DatasetProvider exposes the CVM monthly tables
// ⭐ SSOT: 데이터셋 로딩 인터페이스 (파일 / Postgres / Redis 캐시)
type DatasetProvider interface {
	// Load returns rows of kind for years, concatenated in year order
	Load(ctx context.Context, kind DatasetKind, years []int) ([]Row, error)
}

// QuoteService resolves latest closes for many symbols in one call
type QuoteService interface {
	BatchQuote(ctx context.Context, symbols []string) (map[string]float64, error)
}

// ListedFundRegistry maps a fund CNPJ to its current exchange ticker
type ListedFundRegistry interface {
	// TickerFor expects a digits-only CNPJ
	TickerFor(cnpj string) (string, bool)
}

// Recommender runs the recommendation pipeline
type Recommender interface {
	Recommend(ctx context.Context, req Request) (*Result, error)
}
