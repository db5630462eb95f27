// Package filter applies FundFilters predicates and sort keys to fund records.
package filter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fundwallet/fundwallet-backend/internal/model"
	"github.com/fundwallet/fundwallet-backend/internal/records"
)

// Apply returns the funds that pass every populated predicate in f, sorted by f.Sort.
// The input slice is never modified.
func Apply(funds []model.FundData, f model.FundFilters) []model.FundData {
	searchTerms := strings.Fields(strings.ToLower(f.Search))
	excludes := normalizeExcludes(f.ExcludeStrings)

	out := make([]model.FundData, 0, len(funds))
	for i := range funds {
		if Match(&funds[i], f, searchTerms, excludes) {
			out = append(out, funds[i])
		}
	}
	Sort(out, f.Sort)
	return out
}

// Match reports whether fund passes every populated predicate.
// searchTerms and excludes must already be lowercased.
func Match(fund *model.FundData, f model.FundFilters, searchTerms, excludes []string) bool {
	if len(f.AMC) > 0 && !slices.Contains(f.AMC, fund.AMC) && (fund.RealAmcName == "" || !slices.Contains(f.AMC, fund.RealAmcName)) {
		return false
	}
	if !member(f.Scheme, fund.Scheme) ||
		!member(f.Plan, fund.Plan) ||
		!member(f.DividendInterval, fund.DividendInterval) ||
		!member(f.Risk, fund.Risk) ||
		!member(f.MinPurchaseAmt, fund.MinPurchaseAmt) ||
		!member(f.ExpenseRatio, fund.ExpenseRatio) ||
		!member(f.Manager, fund.Manager) ||
		!member(f.SettlementType, fund.SettlementType) ||
		!member(f.PurchaseAllowed, fund.PurchaseAllowed) ||
		!member(f.RedemptionAllowed, fund.RedemptionAllowed) ||
		!member(f.AmcSipFlag, fund.AmcSipFlag) ||
		!member(f.SubScheme, fund.SubScheme) ||
		!member(f.LockIn, fund.LockIn) {
		return false
	}

	if !within(f.OneYearReturn, fund.OneYearPercent) ||
		!within(f.ExpenseRatioRange, fund.ExpenseRatio) ||
		!within(f.AUMRange, fund.AUM) ||
		!within(f.MinInvestmentRange, fund.MinPurchaseAmt) ||
		!within(f.NAVRange, fund.LastPrice) {
		return false
	}
	if f.ExitLoadRange != nil && !f.ExitLoadRange.Contains(records.ExitLoadPercent(fund.ExitLoad)) {
		return false
	}
	if f.LaunchYearRange != nil {
		year, ok := records.LaunchYear(fund.LaunchDate)
		if !ok || !f.LaunchYearRange.Contains(float64(year)) {
			return false
		}
	}

	if len(searchTerms) > 0 {
		text := SearchText(fund)
		for _, term := range searchTerms {
			if !strings.Contains(text, term) {
				return false
			}
		}
	}
	for _, ex := range excludes {
		if strings.Contains(fund.FundLowerCase, ex) {
			return false
		}
	}
	return true
}

// SearchText is the lowercase composite text that free-text search runs against.
func SearchText(fund *model.FundData) string {
	return strings.ToLower(strings.Join([]string{fund.FundPrimaryDetail, fund.AMC, fund.RealAmcName, fund.Manager}, " "))
}

// Sort orders funds in place by key. Unknown or empty keys keep the current order.
func Sort(funds []model.FundData, key string) {
	field, desc, ok := sortField(key)
	if !ok {
		return
	}
	slices.SortStableFunc(funds, func(a, b model.FundData) int {
		c := cmp.Compare(field(&a), field(&b))
		if desc {
			return -c
		}
		return c
	})
}

// ValidSort reports whether key is empty or a known sort key.
func ValidSort(key string) bool {
	if key == "" {
		return true
	}
	_, _, ok := sortField(key)
	return ok
}

// Page returns funds[offset:offset+limit] clamped to the slice bounds.
// A non-positive limit returns everything after offset.
func Page(funds []model.FundData, offset, limit int) []model.FundData {
	offset = max(0, min(offset, len(funds)))
	end := len(funds)
	if limit > 0 {
		end = min(offset+limit, len(funds))
	}
	return funds[offset:end]
}

func sortField(key string) (func(*model.FundData) float64, bool, bool) {
	name, dir, found := strings.Cut(key, "-")
	if !found || (dir != "asc" && dir != "desc") {
		return nil, false, false
	}
	var field func(*model.FundData) float64
	switch name {
	case "cagr1y":
		field = func(f *model.FundData) float64 { return f.OneYearPercent }
	case "minInvestment":
		field = func(f *model.FundData) float64 { return f.MinPurchaseAmt }
	case "exitLoad":
		field = func(f *model.FundData) float64 { return records.ExitLoadPercent(f.ExitLoad) }
	case "expenseRatio":
		field = func(f *model.FundData) float64 { return f.ExpenseRatio }
	case "aum":
		field = func(f *model.FundData) float64 { return f.AUM }
	case "nav":
		field = func(f *model.FundData) float64 { return f.LastPrice }
	default:
		return nil, false, false
	}
	return field, dir == "desc", true
}

func member[T comparable](set []T, v T) bool {
	return len(set) == 0 || slices.Contains(set, v)
}

func within(r *model.Range, v float64) bool {
	return r == nil || r.Contains(v)
}

func normalizeExcludes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
