package testutil

import (
	"encoding/json"
	"testing"

	"github.com/fundwallet/fundwallet-backend/internal/model"
)

// Rows from the end-to-end scenario: one daily and one meta row for symbol F1.
var (
	EndToEndDailyRow = json.RawMessage(`["F1",1,1,"",0,10.5,"2024-01-01",0.1,5.0,6.0,7.0,8.0,9.0,1.2]`)
	EndToEndMetaRow  = json.RawMessage(`["F1","AMC_X","Fund One - Direct Plan",1000,100,500,1,1,"G",null,"equity","large cap",1,"T+1","2020-05-01","1% for 1 year",365,1.5,1,"Jane Doe",0,3]`)
)

// FundRowBuilder provides a fluent interface for creating matching daily and meta rows.
//
// Example usage:
//
//	// Simple creation with defaults
//	fund := testutil.NewFundRow()
//
//	// Customized fund
//	fund := testutil.NewFundRow().
//	    WithName("Axis Bluechip Fund - Direct Plan").
//	    WithAMC("AXISMUTUALFUND_MF").
//	    WithExitLoad("Nil")
type FundRowBuilder struct {
	Symbol            string
	PurchaseAllowed   bool
	RedemptionAllowed bool
	NAV               float64
	OneYearPercent    float64
	RawAUM            float64
	AMC               string
	Name              string
	MinPurchaseAmt    float64
	DividendType      string
	DividendInterval  *string
	Scheme            string
	SubScheme         string
	PlanFlag          int
	SettlementType    string
	LaunchDate        string
	ExitLoad          string
	ExpenseRatio      float64
	SipFlag           bool
	Manager           string
	LockIn            float64
	Risk              float64
}

// NewFundRow creates a FundRowBuilder with sensible defaults.
func NewFundRow() *FundRowBuilder {
	return &FundRowBuilder{
		Symbol:            MakeSymbol("INF"),
		PurchaseAllowed:   true,
		RedemptionAllowed: true,
		NAV:               100,
		OneYearPercent:    10,
		RawAUM:            1,
		AMC:               "HDFCMutualFund_MF",
		Name:              MakeFundName("Test Fund") + " - Direct Plan",
		MinPurchaseAmt:    500,
		DividendType:      "G",
		Scheme:            "Equity",
		SubScheme:         "Large Cap",
		PlanFlag:          1,
		SettlementType:    "T+1",
		LaunchDate:        "2013-01-01",
		ExitLoad:          "1%",
		ExpenseRatio:      0.5,
		SipFlag:           true,
		Manager:           "Test Manager",
		Risk:              3,
	}
}

// WithSymbol sets a custom symbol.
func (b *FundRowBuilder) WithSymbol(symbol string) *FundRowBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets the display name, including any plan suffix.
func (b *FundRowBuilder) WithName(name string) *FundRowBuilder {
	b.Name = name
	return b
}

// WithAMC sets the AMC code.
func (b *FundRowBuilder) WithAMC(amc string) *FundRowBuilder {
	b.AMC = amc
	return b
}

// WithScheme sets the scheme and sub-scheme.
func (b *FundRowBuilder) WithScheme(scheme, subScheme string) *FundRowBuilder {
	b.Scheme = scheme
	b.SubScheme = subScheme
	return b
}

// WithNAV sets the last price.
func (b *FundRowBuilder) WithNAV(nav float64) *FundRowBuilder {
	b.NAV = nav
	return b
}

// WithOneYearPercent sets the 1Y return.
func (b *FundRowBuilder) WithOneYearPercent(p float64) *FundRowBuilder {
	b.OneYearPercent = p
	return b
}

// WithRawAUM sets AUM in units of 10 million.
func (b *FundRowBuilder) WithRawAUM(aum float64) *FundRowBuilder {
	b.RawAUM = aum
	return b
}

// WithExitLoad sets the free-text exit load.
func (b *FundRowBuilder) WithExitLoad(exitLoad string) *FundRowBuilder {
	b.ExitLoad = exitLoad
	return b
}

// WithExpenseRatio sets the expense ratio.
func (b *FundRowBuilder) WithExpenseRatio(r float64) *FundRowBuilder {
	b.ExpenseRatio = r
	return b
}

// WithDividend sets the dividend type code and raw interval (nil writes null).
func (b *FundRowBuilder) WithDividend(divType string, interval *string) *FundRowBuilder {
	b.DividendType = divType
	b.DividendInterval = interval
	return b
}

// Regular switches the plan flag to Regular.
func (b *FundRowBuilder) Regular() *FundRowBuilder {
	b.PlanFlag = 0
	return b
}

// WithManager sets the fund manager.
func (b *FundRowBuilder) WithManager(manager string) *FundRowBuilder {
	b.Manager = manager
	return b
}

// WithLaunchDate sets the launch date.
func (b *FundRowBuilder) WithLaunchDate(date string) *FundRowBuilder {
	b.LaunchDate = date
	return b
}

// WithLockIn sets the lock-in days.
func (b *FundRowBuilder) WithLockIn(days float64) *FundRowBuilder {
	b.LockIn = days
	return b
}

// WithMinPurchase sets the minimum purchase amount.
func (b *FundRowBuilder) WithMinPurchase(amt float64) *FundRowBuilder {
	b.MinPurchaseAmt = amt
	return b
}

// DailyRow encodes the positional daily row.
func (b *FundRowBuilder) DailyRow() json.RawMessage {
	return mustRow([]any{
		b.Symbol, flag(b.PurchaseAllowed), flag(b.RedemptionAllowed), "", 0,
		b.NAV, "2024-01-01", 0.1, b.OneYearPercent, 0, 0, 0, 0, b.RawAUM,
	})
}

// MetaRow encodes the positional meta row.
func (b *FundRowBuilder) MetaRow() json.RawMessage {
	var interval any
	if b.DividendInterval != nil {
		interval = *b.DividendInterval
	}
	return mustRow([]any{
		b.Symbol, b.AMC, b.Name, b.MinPurchaseAmt, 1, 1000, 0.001, 0.001,
		b.DividendType, interval, b.Scheme, b.SubScheme, b.PlanFlag, b.SettlementType,
		b.LaunchDate, b.ExitLoad, 365, b.ExpenseRatio, flag(b.SipFlag), b.Manager, b.LockIn, b.Risk,
	})
}

// PayloadBuilder assembles a model.Payload from fund rows.
type PayloadBuilder struct {
	payload model.Payload
}

// NewPayload creates an empty PayloadBuilder.
func NewPayload() *PayloadBuilder {
	return &PayloadBuilder{payload: model.Payload{
		Daily: model.DailySection{Rows: []json.RawMessage{}},
		Meta:  model.MetaSection{Rows: []json.RawMessage{}},
	}}
}

// WithFunds adds a daily and a meta row for each fund.
func (b *PayloadBuilder) WithFunds(funds ...*FundRowBuilder) *PayloadBuilder {
	for _, f := range funds {
		b.payload.Daily.Rows = append(b.payload.Daily.Rows, f.DailyRow())
		b.payload.Meta.Rows = append(b.payload.Meta.Rows, f.MetaRow())
	}
	return b
}

// WithDailyRows appends raw daily rows.
func (b *PayloadBuilder) WithDailyRows(rows ...json.RawMessage) *PayloadBuilder {
	b.payload.Daily.Rows = append(b.payload.Daily.Rows, rows...)
	return b
}

// WithMetaRows appends raw meta rows.
func (b *PayloadBuilder) WithMetaRows(rows ...json.RawMessage) *PayloadBuilder {
	b.payload.Meta.Rows = append(b.payload.Meta.Rows, rows...)
	return b
}

// WithFactsheet adds a factsheet entry for amc.
func (b *PayloadBuilder) WithFactsheet(amc, link, name string) *PayloadBuilder {
	b.payload.Daily.Factsheet = append(b.payload.Daily.Factsheet, mustRow([]any{amc, link, name}))
	return b
}

// Build returns the payload.
func (b *PayloadBuilder) Build() *model.Payload {
	p := b.payload
	return &p
}

// JSON encodes the payload the way the artifact carries it.
func (b *PayloadBuilder) JSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(b.payload)
	if err != nil {
		t.Fatalf("Failed to encode payload: %v", err)
	}
	return data
}

// EndToEndPayload returns a payload holding only the end-to-end rows.
func EndToEndPayload() *PayloadBuilder {
	return NewPayload().WithDailyRows(EndToEndDailyRow).WithMetaRows(EndToEndMetaRow)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mustRow(fields []any) json.RawMessage {
	data, err := json.Marshal(fields)
	if err != nil {
		panic(err)
	}
	return data
}
