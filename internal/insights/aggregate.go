package insights

import (
	"sort"
	"strings"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/locale"
)

// Asset columns summed into a fund's total assets
var assetColumns = []string{
	contracts.ColLiquidityNeeds,
	contracts.ColTotalInvested,
	contracts.ColRealEstateRights,
	contracts.ColReceivables,
}

// rowYear returns the reference year of row, or 0 when the date is invalid
func rowYear(row contracts.Row) int {
	t, err := locale.ParseDate(row.Get(contracts.ColReferenceDate))
	if err != nil {
		return 0
	}
	return t.Year()
}

type fundYear struct {
	cnpj string
	year int
}

// sumByFundYear sums value(row) per (CNPJ, year), keeping first-seen order
func sumByFundYear(rows []contracts.Row, year int, value func(contracts.Row) float64) []FundAmount {
	idx := make(map[fundYear]int)
	var out []FundAmount
	for _, row := range rows {
		y := rowYear(row)
		if y == 0 || (year > 0 && y != year) {
			continue
		}
		cnpj := locale.NormalizeCNPJ(row.Get(contracts.ColCNPJ))
		if cnpj == "" {
			continue
		}
		key := fundYear{cnpj, y}
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, FundAmount{CNPJ: cnpj, Year: y})
		}
		out[i].Amount += value(row)
	}
	return out
}

func topN(amounts []FundAmount, n int) []FundAmount {
	sort.SliceStable(amounts, func(i, j int) bool {
		return amounts[i].Amount > amounts[j].Amount
	})
	if n > 0 && len(amounts) > n {
		amounts = amounts[:n]
	}
	return amounts
}

// TopAssetsLiabilities ranks funds of year by summed total assets and by
// summed Total_Passivo over the asset/liability rows
func TopAssetsLiabilities(rows []contracts.Row, year, n int) (assets, liabilities []FundAmount) {
	assets = sumByFundYear(rows, year, func(r contracts.Row) float64 {
		var total float64
		for _, col := range assetColumns {
			total += locale.MustFloat(r.Get(col))
		}
		return total
	})
	liabilities = sumByFundYear(rows, year, func(r contracts.Row) float64 {
		return locale.MustFloat(r.Get(contracts.ColTotalLiabilities))
	})
	return topN(assets, n), topN(liabilities, n)
}

// SegmentCounts counts distinct funds per segment in year, largest first.
// Blank segments are reported as defaultLabel.
func SegmentCounts(rows []contracts.Row, year int, defaultLabel string) []SegmentCount {
	funds := make(map[string]map[string]struct{})
	for _, row := range rows {
		if rowYear(row) != year {
			continue
		}
		segment := strings.TrimSpace(row.Get(contracts.ColSegment))
		if segment == "" {
			segment = defaultLabel
		}
		if funds[segment] == nil {
			funds[segment] = make(map[string]struct{})
		}
		funds[segment][locale.NormalizeCNPJ(row.Get(contracts.ColCNPJ))] = struct{}{}
	}

	out := make([]SegmentCount, 0, len(funds))
	for segment, set := range funds {
		out = append(out, SegmentCount{Segment: segment, Year: year, Funds: len(set)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Funds != out[j].Funds {
			return out[i].Funds > out[j].Funds
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}

// DividendLeaders sums monthly DY per (fund, year), then ranks funds by the
// total of their yearly sums. Mean is the average yearly sum.
func DividendLeaders(rows []contracts.Row, n int) []DividendLeader {
	yearly := sumByFundYear(rows, 0, func(r contracts.Row) float64 {
		return locale.MustFloat(r.Get(contracts.ColDividendYield)) * 100
	})

	idx := make(map[string]int)
	var leaders []DividendLeader
	for _, fy := range yearly {
		i, ok := idx[fy.CNPJ]
		if !ok {
			i = len(leaders)
			idx[fy.CNPJ] = i
			leaders = append(leaders, DividendLeader{CNPJ: fy.CNPJ})
		}
		leaders[i].Total += fy.Amount
		leaders[i].Years++
	}
	for i := range leaders {
		leaders[i].Mean = leaders[i].Total / float64(leaders[i].Years)
	}

	sort.SliceStable(leaders, func(i, j int) bool {
		return leaders[i].Total > leaders[j].Total
	})
	if n > 0 && len(leaders) > n {
		leaders = leaders[:n]
	}
	return leaders
}

// SegmentList returns the distinct segments of the general rows, sorted.
// Blank segments are reported as defaultLabel.
func SegmentList(rows []contracts.Row, defaultLabel string) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		segment := strings.TrimSpace(row.Get(contracts.ColSegment))
		if segment == "" {
			segment = defaultLabel
		}
		seen[segment] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
