package request

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fundwallet/fundwallet-backend/internal/model"
)

// Default page size for GET /api/fund when no limit is given.
const DefaultPageLimit = 50

// ParseFundFilters extracts fund filters from query parameters.
//
// Text membership parameters (amc, scheme, plan, manager and the rest) take one
// exact value per parameter and are repeated for several values, since values
// such as manager names may contain commas. Numeric and boolean memberships
// also accept comma-separated lists:
//
//	?amc=PPFAS_MF&amc=DSP_MF&manager=Rajeev+Thakkar,+Raunak+Onkar&risk=3,4&purchaseAllowed=true
//
// Range parameters take "min,max" (both bounds inclusive):
//
//	?oneYearReturn=5,20&aumRange=0,1e10
//
// search is free text; excludeStrings is comma-separated; sort is one of the
// "{field}-{asc|desc}" keys. Sort values and range ordering are checked by
// validation.ValidateFundFilters; this function only rejects values that do not parse.
func ParseFundFilters(q url.Values) (model.FundFilters, error) {
	var (
		f   model.FundFilters
		err error
	)

	f.AMC = stringList(q, "amc")
	f.Scheme = stringList(q, "scheme")
	f.Plan = stringList(q, "plan")
	f.DividendInterval = stringList(q, "dividendInterval")
	f.Manager = stringList(q, "manager")
	f.SettlementType = stringList(q, "settlementType")
	f.SubScheme = stringList(q, "subScheme")

	if f.Risk, err = floatList(q, "risk"); err != nil {
		return f, err
	}
	if f.MinPurchaseAmt, err = floatList(q, "minPurchaseAmt"); err != nil {
		return f, err
	}
	if f.ExpenseRatio, err = floatList(q, "expenseRatio"); err != nil {
		return f, err
	}
	if f.LockIn, err = floatList(q, "lockIn"); err != nil {
		return f, err
	}

	if f.PurchaseAllowed, err = boolList(q, "purchaseAllowed"); err != nil {
		return f, err
	}
	if f.RedemptionAllowed, err = boolList(q, "redemptionAllowed"); err != nil {
		return f, err
	}
	if f.AmcSipFlag, err = boolList(q, "amcSipFlag"); err != nil {
		return f, err
	}

	ranges := []struct {
		name string
		dst  **model.Range
	}{
		{"oneYearReturn", &f.OneYearReturn},
		{"expenseRatioRange", &f.ExpenseRatioRange},
		{"exitLoadRange", &f.ExitLoadRange},
		{"aumRange", &f.AUMRange},
		{"minInvestmentRange", &f.MinInvestmentRange},
		{"navRange", &f.NAVRange},
		{"launchYearRange", &f.LaunchYearRange},
	}
	for _, r := range ranges {
		if *r.dst, err = parseRange(q, r.name); err != nil {
			return f, err
		}
	}

	f.Search = strings.TrimSpace(q.Get("search"))
	f.ExcludeStrings = commaList(q, "excludeStrings")
	f.Sort = strings.TrimSpace(q.Get("sort"))

	return f, nil
}

// ParsePage extracts offset and limit. Missing values default to 0 and DefaultPageLimit.
func ParsePage(q url.Values) (offset, limit int, err error) {
	limit = DefaultPageLimit
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("invalid offset: must be a number")
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("invalid limit: must be a number")
		}
	}
	return offset, limit, nil
}

// ParseLimit reads an optional integer limit, returning def when absent.
func ParseLimit(q url.Values, def int) (int, error) {
	v := q.Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: must be a number")
	}
	return n, nil
}

// stringList returns every value of key as given, trimmed. Blank values are dropped.
func stringList(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// commaList splits every value of key on commas, trimming blanks.
func commaList(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatList(q url.Values, key string) ([]float64, error) {
	var out []float64
	for _, s := range commaList(q, key) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not a number", key, s)
		}
		out = append(out, v)
	}
	return out, nil
}

func boolList(q url.Values, key string) ([]bool, error) {
	var out []bool
	for _, s := range commaList(q, key) {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not a boolean", key, s)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseRange(q url.Values, key string) (*model.Range, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	lo, hi, ok := strings.Cut(raw, ",")
	if !ok {
		return nil, fmt.Errorf("invalid %s: must be \"min,max\"", key)
	}
	minV, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: min is not a number", key)
	}
	maxV, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: max is not a number", key)
	}
	return &model.Range{Min: minV, Max: maxV}, nil
}
