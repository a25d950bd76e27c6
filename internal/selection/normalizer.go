package selection

import (
	"gonum.org/v1/gonum/floats"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
)

// scaleMax is the upper bound of the rescaled range [0, scaleMax]
const scaleMax = 100.0

// DegenerateValue is assigned to every element when max == min
const DegenerateValue = 0.0

// MinMax rescales values into [0,100] relative to this batch.
// All-equal input maps every element to DegenerateValue.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo := floats.Min(values)
	hi := floats.Max(values)
	span := hi - lo

	if span == 0 {
		for i := range out {
			out[i] = DegenerateValue
		}
		return out
	}

	for i, v := range values {
		out[i] = (v - lo) / span * scaleMax
	}
	return out
}

// NormalizeMetrics rescales DY, ER and PR independently over records and
// writes the result into each record's Metrics.
// ⚠️ 배치 기준 스케일링: recency/segment 필터 이전, 상장 펀드 전체에 적용해야 함
func NormalizeMetrics(records []contracts.FundRecord) {
	n := len(records)
	dy := make([]float64, n)
	er := make([]float64, n)
	pr := make([]float64, n)

	for i, r := range records {
		dy[i] = r.Raw.DividendYield
		er[i] = r.Raw.EffectiveReturn
		pr[i] = r.Raw.EquityReturn
	}

	dy, er, pr = MinMax(dy), MinMax(er), MinMax(pr)

	for i := range records {
		records[i].Metrics = contracts.NormalizedMetrics{
			DividendYield:   dy[i],
			EffectiveReturn: er[i],
			EquityReturn:    pr[i],
		}
	}
}
