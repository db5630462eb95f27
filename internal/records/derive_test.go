package records_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fundwallet/fundwallet-backend/internal/records"
)

func TestStripPlanName(t *testing.T) {
	tests := map[string]string{
		"Fund One - Direct Plan":      "Fund One",
		"Fund One - Regular Plan":     "Fund One",
		"Fund  Two - Direct Plan":     "Fund Two",
		"Plain Fund":                  "Plain Fund",
		"Fund - Direct Plan - Growth": "Fund - Growth",
	}
	for in, want := range tests {
		assert.Equal(t, want, records.StripPlanName(in), in)
	}
}

func TestDividendInterval(t *testing.T) {
	tests := []struct {
		divType, raw, want string
	}{
		{"G", "", "Growth"},
		{"P", "", "Dividend payout"},
		{"R", "", "dividend reinvest"},
		{"X", "", "x"},
		{"", "", ""},
		{"P", "Monthly", "Monthly"},
		{"G", "Quarterly IDCW", "Quarterly IDCW"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, records.DividendInterval(tt.divType, tt.raw), "%q/%q", tt.divType, tt.raw)
	}
}

func TestPlanName(t *testing.T) {
	assert.Equal(t, "Regular", records.PlanName(0))
	assert.Equal(t, "Direct", records.PlanName(1))
	assert.Equal(t, "Direct", records.PlanName(2))
}

func TestFileNamePath(t *testing.T) {
	assert.Equal(t, "mf-amc-1.svg", records.FileNamePath("AXISMUTUALFUND_MF", "Equity"))
	assert.Equal(t, "mf-amc-84.svg", records.FileNamePath("HDFCMutualFund_MF", "index funds")) // 7*11 + 7
	assert.Equal(t, "mf-amc-282.svg", records.FileNamePath("UNKNOWN", "unknown"))            // 7*40 + 2
	assert.Equal(t, "mf-amc-292.svg", records.FileNamePath("ZERODHAMUTUALFUND_MF", "DEBT"))  // 7*41 + 5
	assert.Equal(t, "mf-amc-137.svg", records.FileNamePath("ITI MUTUAL FUND_MF", "Hybrid"))  // 7*19 + 4

	t.Run("deterministic per pair", func(t *testing.T) {
		assert.Equal(t, records.FileNamePath("DSP_MF", "Debt"), records.FileNamePath("DSP_MF", "debt"))
		assert.NotEqual(t, records.FileNamePath("DSP_MF", "Debt"), records.FileNamePath("DSP_MF", "Hybrid"))
		assert.NotEqual(t, records.FileNamePath("DSP_MF", "Debt"), records.FileNamePath("PPFAS_MF", "Debt"))
	})
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "fund-one-direct-growth", records.FundSlug("Fund One", "Direct", "Growth"))
	assert.Equal(t, "abc-def-", records.Slug("ABC & Def!!"))
	assert.Equal(t, "-x-", records.Slug("  x  "))
}

func TestPrimaryDetail(t *testing.T) {
	assert.Equal(t, "inf1 axis fund equity large cap growth",
		records.PrimaryDetail("INF1", "Axis Fund", "Equity", "Large Cap", "Growth"))
}

func TestExitLoadPercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"0", 0},
		{"Nil", 0},
		{"NIL", 0},
		{" nil ", 0},
		{"1%", 1},
		{"2.50%", 2.5},
		{"0.5% for 1 year", 0.5},
		{"1% if redeemed within 365 days", 1},
		{"Exit load of 1 within 12 months", 1},
		{"365 days lock", 0},
		{"100", 100},
		{"no load", 0},
		{"redeem after 30 days 0.25%", 0.25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, records.ExitLoadPercent(tt.in), tt.in)
	}
}

func TestLaunchYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2020-05-01", 2020, true},
		{"2019-03-04T00:00:00Z", 2019, true},
		{"15-Aug-2012", 2012, true},
		{"2001-02-03 10:11:12", 2001, true},
		{"Jan 2, 2006", 2006, true},
		{"31/12/1999", 1999, true},
		{"", 0, false},
		{"someday", 0, false},
	}
	for _, tt := range tests {
		got, ok := records.LaunchYear(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
