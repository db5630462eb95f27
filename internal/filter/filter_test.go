package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundwallet/fundwallet-backend/internal/filter"
	"github.com/fundwallet/fundwallet-backend/internal/model"
)

func sampleFunds() []model.FundData {
	return []model.FundData{
		{
			TradingSymbol: "A1", AMC: "AXISMUTUALFUND_MF", RealAmcName: "Axis Mutual Fund",
			Fund: "Axis Bluechip Fund", FundLowerCase: "axis bluechip fund",
			FundPrimaryDetail: "a1 axis bluechip fund equity large cap growth",
			Scheme: "Equity", SubScheme: "Large Cap", Plan: "Direct", DividendInterval: "Growth",
			Risk: 4, MinPurchaseAmt: 500, ExpenseRatio: 0.5, Manager: "Shreyash Devalkar",
			SettlementType: "T+3", PurchaseAllowed: true, RedemptionAllowed: true, AmcSipFlag: true,
			OneYearPercent: 12, AUM: 3e10, LastPrice: 50, ExitLoad: "1%", LaunchDate: "2013-01-01",
		},
		{
			TradingSymbol: "B1", AMC: "HDFCMutualFund_MF",
			Fund: "HDFC Liquid Fund", FundLowerCase: "hdfc liquid fund",
			FundPrimaryDetail: "b1 hdfc liquid fund debt liquid growth",
			Scheme: "Debt", SubScheme: "Liquid", Plan: "Regular", DividendInterval: "Growth",
			Risk: 1, MinPurchaseAmt: 100, ExpenseRatio: 0.2, Manager: "Anupam Joshi",
			SettlementType: "T+1", PurchaseAllowed: true, RedemptionAllowed: true,
			OneYearPercent: 7, AUM: 5e11, LastPrice: 4500, ExitLoad: "Nil", LaunchDate: "2000-10-17",
		},
		{
			TradingSymbol: "C1", AMC: "PPFAS_MF", RealAmcName: "PPFAS Mutual Fund",
			Fund: "Parag Parikh Flexi Cap Fund", FundLowerCase: "parag parikh flexi cap fund",
			FundPrimaryDetail: "c1 parag parikh flexi cap fund equity flexi cap idcw",
			Scheme: "Equity", SubScheme: "Flexi Cap", Plan: "Direct", DividendInterval: "IDCW",
			Risk: 4, MinPurchaseAmt: 1000, ExpenseRatio: 0.6, Manager: "Rajeev Thakkar",
			SettlementType: "T+3", PurchaseAllowed: false, RedemptionAllowed: true, AmcSipFlag: true,
			OneYearPercent: 20, AUM: 6e11, LastPrice: 70, ExitLoad: "2% within 365 days", LaunchDate: "2013-05-24",
			LockIn: 0,
		},
		{
			TradingSymbol: "D1", AMC: "SBIMutualFund_MF",
			Fund: "SBI Long Term Equity Fund", FundLowerCase: "sbi long term equity fund",
			FundPrimaryDetail: "d1 sbi long term equity fund equity elss growth",
			Scheme: "Equity", SubScheme: "ELSS", Plan: "Direct", DividendInterval: "Growth",
			Risk: 5, MinPurchaseAmt: 500, ExpenseRatio: 0.9, Manager: "Dinesh Balachandran",
			SettlementType: "T+3", RedemptionAllowed: false, AmcSipFlag: false,
			OneYearPercent: -3, AUM: 2e11, LastPrice: 300, ExitLoad: "0", LaunchDate: "bad date",
			LockIn: 1095,
		},
	}
}

func symbols(funds []model.FundData) []string {
	out := make([]string, len(funds))
	for i, f := range funds {
		out[i] = f.TradingSymbol
	}
	return out
}

func rng(lo, hi float64) *model.Range {
	return &model.Range{Min: lo, Max: hi}
}

func TestApply(t *testing.T) {
	funds := sampleFunds()

	tests := []struct {
		name    string
		filters model.FundFilters
		want    []string
	}{
		{"no filters keeps all in order", model.FundFilters{}, []string{"A1", "B1", "C1", "D1"}},
		{"amc code", model.FundFilters{AMC: []string{"HDFCMutualFund_MF"}}, []string{"B1"}},
		{"amc real name", model.FundFilters{AMC: []string{"PPFAS Mutual Fund"}}, []string{"C1"}},
		{"scheme", model.FundFilters{Scheme: []string{"Equity"}}, []string{"A1", "C1", "D1"}},
		{"plan", model.FundFilters{Plan: []string{"Regular"}}, []string{"B1"}},
		{"dividend interval", model.FundFilters{DividendInterval: []string{"IDCW"}}, []string{"C1"}},
		{"risk", model.FundFilters{Risk: []float64{4}}, []string{"A1", "C1"}},
		{"min purchase", model.FundFilters{MinPurchaseAmt: []float64{500}}, []string{"A1", "D1"}},
		{"expense ratio", model.FundFilters{ExpenseRatio: []float64{0.2, 0.9}}, []string{"B1", "D1"}},
		{"manager", model.FundFilters{Manager: []string{"Rajeev Thakkar"}}, []string{"C1"}},
		{"settlement", model.FundFilters{SettlementType: []string{"T+1"}}, []string{"B1"}},
		{"purchase allowed", model.FundFilters{PurchaseAllowed: []bool{false}}, []string{"C1", "D1"}},
		{"redemption allowed", model.FundFilters{RedemptionAllowed: []bool{true}}, []string{"A1", "B1", "C1"}},
		{"sip flag both values", model.FundFilters{AmcSipFlag: []bool{true, false}}, []string{"A1", "B1", "C1", "D1"}},
		{"sub scheme", model.FundFilters{SubScheme: []string{"ELSS", "Liquid"}}, []string{"B1", "D1"}},
		{"lock in", model.FundFilters{LockIn: []float64{1095}}, []string{"D1"}},
		{"one year inclusive", model.FundFilters{OneYearReturn: rng(7, 12)}, []string{"A1", "B1"}},
		{"expense ratio range", model.FundFilters{ExpenseRatioRange: rng(0.5, 0.6)}, []string{"A1", "C1"}},
		{"exit load range", model.FundFilters{ExitLoadRange: rng(1, 2)}, []string{"A1", "C1"}},
		{"exit load zero", model.FundFilters{ExitLoadRange: rng(0, 0)}, []string{"B1", "D1"}},
		{"aum range", model.FundFilters{AUMRange: rng(1e11, 5e11)}, []string{"B1", "D1"}},
		{"min investment range", model.FundFilters{MinInvestmentRange: rng(100, 500)}, []string{"A1", "B1", "D1"}},
		{"nav range", model.FundFilters{NAVRange: rng(60, 4500)}, []string{"B1", "C1", "D1"}},
		{"launch year range drops unparseable", model.FundFilters{LaunchYearRange: rng(2000, 2013)}, []string{"A1", "B1", "C1"}},
		{"search single term", model.FundFilters{Search: "flexi"}, []string{"C1"}},
		{"search all terms must match", model.FundFilters{Search: "equity  Growth"}, []string{"A1", "D1"}},
		{"search matches manager", model.FundFilters{Search: "joshi"}, []string{"B1"}},
		{"search matches real amc", model.FundFilters{Search: "ppfas mutual"}, []string{"C1"}},
		{"search no match", model.FundFilters{Search: "gold"}, []string{}},
		{"exclude any term", model.FundFilters{ExcludeStrings: []string{"Liquid", " sbi "}}, []string{"A1", "C1"}},
		{"exclude blank ignored", model.FundFilters{ExcludeStrings: []string{"", "  "}}, []string{"A1", "B1", "C1", "D1"}},
		{
			"predicates combine with and",
			model.FundFilters{Scheme: []string{"Equity"}, Plan: []string{"Direct"}, OneYearReturn: rng(0, 15)},
			[]string{"A1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbols(filter.Apply(funds, tt.filters)))
		})
	}
}

func TestApply_Sort(t *testing.T) {
	funds := sampleFunds()

	tests := []struct {
		sort string
		want []string
	}{
		{"", []string{"A1", "B1", "C1", "D1"}},
		{"cagr1y-desc", []string{"C1", "A1", "B1", "D1"}},
		{"cagr1y-asc", []string{"D1", "B1", "A1", "C1"}},
		{"minInvestment-asc", []string{"B1", "A1", "D1", "C1"}},
		{"minInvestment-desc", []string{"C1", "A1", "D1", "B1"}},
		{"exitLoad-desc", []string{"C1", "A1", "B1", "D1"}},
		{"exitLoad-asc", []string{"B1", "D1", "A1", "C1"}},
		{"expenseRatio-asc", []string{"B1", "A1", "C1", "D1"}},
		{"aum-desc", []string{"C1", "B1", "D1", "A1"}},
		{"nav-asc", []string{"A1", "C1", "D1", "B1"}},
		{"unknown-asc", []string{"A1", "B1", "C1", "D1"}},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			assert.Equal(t, tt.want, symbols(filter.Apply(funds, model.FundFilters{Sort: tt.sort})))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	funds := sampleFunds()
	before := symbols(funds)

	out := filter.Apply(funds, model.FundFilters{Sort: "nav-desc"})
	require.Len(t, out, 4)
	out[0].Fund = "changed"

	assert.Equal(t, before, symbols(funds))
	assert.NotEqual(t, "changed", funds[0].Fund)
	assert.NotEqual(t, "changed", funds[1].Fund)
}

func TestValidSort(t *testing.T) {
	assert.True(t, filter.ValidSort(""))
	assert.True(t, filter.ValidSort("aum-asc"))
	assert.False(t, filter.ValidSort("aum"))
	assert.False(t, filter.ValidSort("aum-up"))
	assert.False(t, filter.ValidSort("name-asc"))
}

func TestPage(t *testing.T) {
	funds := sampleFunds()

	assert.Equal(t, []string{"B1", "C1"}, symbols(filter.Page(funds, 1, 2)))
	assert.Equal(t, []string{"C1", "D1"}, symbols(filter.Page(funds, 2, 10)))
	assert.Equal(t, []string{"A1", "B1", "C1", "D1"}, symbols(filter.Page(funds, 0, 0)))
	assert.Empty(t, filter.Page(funds, 10, 5))
	assert.Equal(t, []string{"A1"}, symbols(filter.Page(funds, -3, 1)))
}
