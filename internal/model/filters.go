package model

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within r, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterOptions lists the distinct values per filterable dimension.
type FilterOptions struct {
	AMC               []string  `json:"amc"`
	Scheme            []string  `json:"scheme"`
	Plan              []string  `json:"plan"`
	DividendInterval  []string  `json:"dividendInterval"`
	Risk              []float64 `json:"risk"`
	MinPurchaseAmt    []float64 `json:"minPurchaseAmt"`
	ExpenseRatio      []float64 `json:"expenseRatio"`
	LaunchYear        []int     `json:"launchYear"`
	Manager           []string  `json:"manager"`
	SettlementType    []string  `json:"settlementType"`
	PurchaseAllowed   []bool    `json:"purchaseAllowed"`
	RedemptionAllowed []bool    `json:"redemptionAllowed"`
	AmcSipFlag        []bool    `json:"amcSipFlag"`
	SubScheme         []string  `json:"subScheme"`
	LockIn            []float64 `json:"lockIn"`
}

// RangeValues holds the observed bounds per numeric dimension.
type RangeValues struct {
	OneYearReturn Range `json:"oneYearReturn"`
	ExpenseRatio  Range `json:"expenseRatio"`
	ExitLoad      Range `json:"exitLoad"`
	AUM           Range `json:"aum"`
	MinInvestment Range `json:"minInvestment"`
	NAV           Range `json:"nav"`
	LaunchYear    Range `json:"launchYear"`
}

// Sort keys accepted by FundFilters.Sort.
const (
	SortCAGR1YAsc         = "cagr1y-asc"
	SortCAGR1YDesc        = "cagr1y-desc"
	SortMinInvestmentAsc  = "minInvestment-asc"
	SortMinInvestmentDesc = "minInvestment-desc"
	SortExitLoadAsc       = "exitLoad-asc"
	SortExitLoadDesc      = "exitLoad-desc"
	SortExpenseRatioAsc   = "expenseRatio-asc"
	SortExpenseRatioDesc  = "expenseRatio-desc"
	SortAUMAsc            = "aum-asc"
	SortAUMDesc           = "aum-desc"
	SortNAVAsc            = "nav-asc"
	SortNAVDesc           = "nav-desc"
)

// FundFilters is a set of optional predicates. Empty fields do not filter.
type FundFilters struct {
	AMC               []string  `json:"amc,omitempty"`
	Scheme            []string  `json:"scheme,omitempty"`
	Plan              []string  `json:"plan,omitempty"`
	DividendInterval  []string  `json:"dividendInterval,omitempty"`
	Risk              []float64 `json:"risk,omitempty"`
	MinPurchaseAmt    []float64 `json:"minPurchaseAmt,omitempty"`
	ExpenseRatio      []float64 `json:"expenseRatio,omitempty"`
	Manager           []string  `json:"manager,omitempty"`
	SettlementType    []string  `json:"settlementType,omitempty"`
	PurchaseAllowed   []bool    `json:"purchaseAllowed,omitempty"`
	RedemptionAllowed []bool    `json:"redemptionAllowed,omitempty"`
	AmcSipFlag        []bool    `json:"amcSipFlag,omitempty"`
	SubScheme         []string  `json:"subScheme,omitempty"`
	LockIn            []float64 `json:"lockIn,omitempty"`

	OneYearReturn      *Range `json:"oneYearReturn,omitempty"`
	ExpenseRatioRange  *Range `json:"expenseRatioRange,omitempty"`
	ExitLoadRange      *Range `json:"exitLoadRange,omitempty"`
	AUMRange           *Range `json:"aumRange,omitempty"`
	MinInvestmentRange *Range `json:"minInvestmentRange,omitempty"`
	NAVRange           *Range `json:"navRange,omitempty"`
	LaunchYearRange    *Range `json:"launchYearRange,omitempty"`

	Search         string   `json:"search,omitempty"`
	ExcludeStrings []string `json:"excludeStrings,omitempty"`
	Sort           string   `json:"sort,omitempty" validate:"omitempty,oneof=cagr1y-asc cagr1y-desc minInvestment-asc minInvestment-desc exitLoad-asc exitLoad-desc expenseRatio-asc expenseRatio-desc aum-asc aum-desc nav-asc nav-desc"`
}

// FundPage is one page of a filtered, sorted result.
type FundPage struct {
	Total  int        `json:"total"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
	Funds  []FundData `json:"funds"`
}
