package contracts

import "time"

// DatasetKind identifies one of the three CVM monthly report files
type DatasetKind string

const (
	KindAssetLiability DatasetKind = "ativo_passivo"
	KindComplement     DatasetKind = "complemento"
	KindGeneral        DatasetKind = "geral"
)

// AllKinds lists every dataset kind in file order
var AllKinds = []DatasetKind{KindAssetLiability, KindComplement, KindGeneral}

// Valid reports whether k is a known dataset kind
func (k DatasetKind) Valid() bool {
	switch k {
	case KindAssetLiability, KindComplement, KindGeneral:
		return true
	}
	return false
}

// CVM monthly report columns used by the pipeline
const (
	ColCNPJ            = "CNPJ_Fundo"
	ColReferenceDate   = "Data_Referencia"
	ColVersion         = "Versao"
	ColSegment         = "Segmento_Atuacao"
	ColDividendYield   = "Percentual_Dividend_Yield_Mes"
	ColEffectiveReturn = "Percentual_Rentabilidade_Efetiva_Mes"
	ColEquityReturn    = "Percentual_Rentabilidade_Patrimonial_Mes"
	ColNetEquity       = "Patrimonio_Liquido"
	ColQuotasIssued    = "Cotas_Emitidas"
	ColHolders         = "Total_Numero_Cotistas"

	ColLiquidityNeeds   = "Total_Necessidades_Liquidez"
	ColTotalInvested    = "Total_Investido"
	ColRealEstateRights = "Direitos_Bens_Imoveis"
	ColReceivables      = "Valores_Receber"
	ColTotalLiabilities = "Total_Passivo"
)

// DefaultSegment is assigned when a fund reports no segment ("Outros")
const DefaultSegment = "Outros"

// Row is one raw CSV line keyed by header name
// 값은 CVM 원본 그대로 (pt-BR 숫자 포맷, ISO-8859-1 → UTF-8 변환 완료)
type Row map[string]string

// Get returns the column value or "" when missing
func (r Row) Get(col string) string {
	return r[col]
}

// FundRecord is one fund × reporting month after the registry join
// ⭐ SSOT: 파이프라인 전 구간에서 사용하는 펀드 레코드
type FundRecord struct {
	CNPJ          string            `json:"cnpj"`
	Ticker        string            `json:"ticker"`
	ReferenceDate time.Time         `json:"reference_date"`
	Segment       string            `json:"segment"`
	Raw           RawMetrics        `json:"raw"`
	Metrics       NormalizedMetrics `json:"metrics"`
}

// RawMetrics are parsed fundamentals; percentages are already ×100
type RawMetrics struct {
	DividendYield   float64 `json:"dividend_yield"`
	EffectiveReturn float64 `json:"effective_return"`
	EquityReturn    float64 `json:"equity_return"`
	NetEquity       float64 `json:"net_equity"`
	QuotasIssued    float64 `json:"quotas_issued"`
	Holders         float64 `json:"holders"`
}

// NormalizedMetrics holds DY/ER/PR rescaled into [0,100] over one batch
type NormalizedMetrics struct {
	DividendYield   float64 `json:"dividend_yield"`
	EffectiveReturn float64 `json:"effective_return"`
	EquityReturn    float64 `json:"equity_return"`
}

// ProfileScore carries the three weighted scores of a record
type ProfileScore struct {
	Conservative float64 `json:"conservative"`
	Moderate     float64 `json:"moderate"`
	Aggressive   float64 `json:"aggressive"`
}

// For returns the score matching profile
func (s ProfileScore) For(p Profile) float64 {
	switch p {
	case ProfileConservative:
		return s.Conservative
	case ProfileModerate:
		return s.Moderate
	case ProfileAggressive:
		return s.Aggressive
	}
	return 0
}

// ScoredFund is a FundRecord with the selected profile score
type ScoredFund struct {
	FundRecord
	Scores ProfileScore `json:"scores"`
	Score  float64      `json:"score"`
}

// Year returns the reporting year
func (f ScoredFund) Year() int {
	return f.ReferenceDate.Year()
}

// Month returns the reporting month
func (f ScoredFund) Month() time.Month {
	return f.ReferenceDate.Month()
}

// PricedFund is a ScoredFund joined with its latest close
type PricedFund struct {
	ScoredFund
	Price float64 `json:"price"`
}
