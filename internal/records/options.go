package records

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/model"
)

// FilterOptions collects the distinct values of every filterable dimension, sorted.
// Blank manager, settlement type and sub-scheme values are left out, as are
// non-positive lock-in periods and unparseable launch dates.
func FilterOptions(funds []model.FundData) (model.FilterOptions, error) {
	if funds == nil {
		return model.FilterOptions{}, apperrors.ErrNilRecordSet
	}

	var (
		amc, scheme, plan, interval      = newSet[string](), newSet[string](), newSet[string](), newSet[string]()
		manager, settlement, subScheme   = newSet[string](), newSet[string](), newSet[string]()
		risk, minPurchase, expense, lock = newSet[float64](), newSet[float64](), newSet[float64](), newSet[float64]()
		launch                           = newSet[int]()
		purchase, redemption, sip        = newSet[bool](), newSet[bool](), newSet[bool]()
	)

	for i := range funds {
		f := &funds[i]
		amc.add(f.DisplayAMC())
		scheme.add(f.Scheme)
		plan.add(f.Plan)
		interval.add(f.DividendInterval)
		risk.add(f.Risk)
		minPurchase.add(f.MinPurchaseAmt)
		expense.add(f.ExpenseRatio)
		if y, ok := LaunchYear(f.LaunchDate); ok {
			launch.add(y)
		}
		if strings.TrimSpace(f.Manager) != "" {
			manager.add(f.Manager)
		}
		if strings.TrimSpace(f.SettlementType) != "" {
			settlement.add(f.SettlementType)
		}
		if strings.TrimSpace(f.SubScheme) != "" {
			subScheme.add(f.SubScheme)
		}
		if f.LockIn > 0 {
			lock.add(f.LockIn)
		}
		purchase.add(f.PurchaseAllowed)
		redemption.add(f.RedemptionAllowed)
		sip.add(f.AmcSipFlag)
	}

	return model.FilterOptions{
		AMC:               sorted(amc),
		Scheme:            sorted(scheme),
		Plan:              sorted(plan),
		DividendInterval:  sorted(interval),
		Risk:              sorted(risk),
		MinPurchaseAmt:    sorted(minPurchase),
		ExpenseRatio:      sorted(expense),
		LaunchYear:        sorted(launch),
		Manager:           sorted(manager),
		SettlementType:    sorted(settlement),
		PurchaseAllowed:   sortedBools(purchase),
		RedemptionAllowed: sortedBools(redemption),
		AmcSipFlag:        sortedBools(sip),
		SubScheme:         sorted(subScheme),
		LockIn:            sorted(lock),
	}, nil
}

// RangeValues computes min/max per numeric dimension. An empty record set yields zero ranges.
func RangeValues(funds []model.FundData) (model.RangeValues, error) {
	if funds == nil {
		return model.RangeValues{}, apperrors.ErrNilRecordSet
	}

	var (
		rv    model.RangeValues
		years rangeAcc
		acc   [6]rangeAcc
	)
	for i := range funds {
		f := &funds[i]
		acc[0].add(f.OneYearPercent)
		acc[1].add(f.ExpenseRatio)
		acc[2].add(ExitLoadPercent(f.ExitLoad))
		acc[3].add(f.AUM)
		acc[4].add(f.MinPurchaseAmt)
		acc[5].add(f.LastPrice)
		if y, ok := LaunchYear(f.LaunchDate); ok {
			years.add(float64(y))
		}
	}

	rv.OneYearReturn = acc[0].r
	rv.ExpenseRatio = acc[1].r
	rv.ExitLoad = acc[2].r
	rv.AUM = acc[3].r
	rv.MinInvestment = acc[4].r
	rv.NAV = acc[5].r
	rv.LaunchYear = years.r
	return rv, nil
}

type rangeAcc struct {
	r    model.Range
	seen bool
}

func (a *rangeAcc) add(v float64) {
	if !a.seen {
		a.r = model.Range{Min: v, Max: v}
		a.seen = true
		return
	}
	a.r.Min = min(a.r.Min, v)
	a.r.Max = max(a.r.Max, v)
}

type set[T comparable] map[T]struct{}

func newSet[T comparable]() set[T] { return make(set[T]) }

func (s set[T]) add(v T) { s[v] = struct{}{} }

func sorted[T cmp.Ordered](s set[T]) []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// sortedBools orders false before true.
func sortedBools(s set[bool]) []bool {
	out := make([]bool, 0, 2)
	for _, v := range []bool{false, true} {
		if _, ok := s[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
