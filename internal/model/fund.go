package model

// InstrumentDaily is one decoded daily snapshot row.
type InstrumentDaily struct {
	Symbol              string
	PurchaseAllowed     bool
	RedemptionAllowed   bool
	LastDividendDate    string
	LastDividendPercent float64
	LastPrice           float64
	LastPriceDate       string
	ChangePercent       float64
	OneYearPercent      float64
	TwoYearPercent      float64
	ThreeYearPercent    float64
	FourYearPercent     float64
	FiveYearPercent     float64
	// AUM in units of 10 million; scaled when the fund record is built.
	RawAUM float64
}

// InstrumentMeta is one decoded fund metadata row.
type InstrumentMeta struct {
	Symbol                   string
	AMC                      string
	Name                     string
	MinPurchaseAmt           float64
	PurchaseAmtMulti         float64
	MinAdditionalPurchaseAmt float64
	MinRedemptionQty         float64
	RedemptionQtyMulti       float64
	DividendType             string
	DividendIntervalRaw      string
	Scheme                   string
	SubScheme                string
	PlanFlag                 int
	SettlementType           string
	LaunchDate               string
	ExitLoad                 string
	ExitLoadSlab             float64
	ExpenseRatio             float64
	SipFlag                  bool
	Manager                  string
	LockIn                   float64
	Risk                     float64
}

// FactsheetEntry links an AMC code to its display name and factsheet.
type FactsheetEntry struct {
	AMC  string
	Link string
	Name string
}

// FundData is the denormalized fund record served to clients.
type FundData struct {
	TradingSymbol            string  `json:"tradingSymbol"`
	PurchaseAllowed          bool    `json:"purchaseAllowed"`
	RedemptionAllowed        bool    `json:"redemptionAllowed"`
	LastDividendDate         string  `json:"lastDividendDate"`
	LastDividendPercent      float64 `json:"lastDividendPercent"`
	LastPrice                float64 `json:"lastPrice"`
	LastPriceDate            string  `json:"lastPriceDate"`
	ChangePercent            float64 `json:"changePercent"`
	OneYearPercent           float64 `json:"oneYearPercent"`
	TwoYearPercent           float64 `json:"twoYearPercent"`
	ThreeYearPercent         float64 `json:"threeYearPercent"`
	FourYearPercent          float64 `json:"fourYearPercent"`
	FiveYearPercent          float64 `json:"fiveYearPercent"`
	AUM                      float64 `json:"aum"`
	AMC                      string  `json:"amc"`
	Fund                     string  `json:"fund"`
	FundLowerCase            string  `json:"fundLowerCase"`
	MinPurchaseAmt           float64 `json:"minPurchaseAmt"`
	PurchaseAmtMulti         float64 `json:"purchaseAmtMulti"`
	MinAdditionalPurchaseAmt float64 `json:"minAdditionalPurchaseAmt"`
	MinRedemptionQty         float64 `json:"minRedemptionQty"`
	RedemptionQtyMulti       float64 `json:"redemptionQtyMulti"`
	DividendType             string  `json:"dividendType"`
	DividendInterval         string  `json:"dividendInterval"`
	Scheme                   string  `json:"scheme"`
	SubScheme                string  `json:"subScheme"`
	Plan                     string  `json:"plan"`
	SettlementType           string  `json:"settlementType"`
	LaunchDate               string  `json:"launchDate"`
	ExitLoad                 string  `json:"exitLoad"`
	ExitLoadSlab             float64 `json:"exitLoadSlab"`
	ExpenseRatio             float64 `json:"expenseRatio"`
	AmcSipFlag               bool    `json:"amcSipFlag"`
	Manager                  string  `json:"manager"`
	LockIn                   float64 `json:"lockIn"`
	Risk                     float64 `json:"risk"`
	FileNamePath             string  `json:"fileNamePath"`
	FundPrimaryDetail        string  `json:"fundPrimaryDetail"`
	FundSlug                 string  `json:"fundSlug"`
	RealAmcName              string  `json:"realAmcName,omitempty"`
	FactsheetLink            string  `json:"factsheetLink,omitempty"`
}

// DisplayAMC returns the factsheet AMC name when known, else the AMC code.
func (f *FundData) DisplayAMC() string {
	if f.RealAmcName != "" {
		return f.RealAmcName
	}
	return f.AMC
}
