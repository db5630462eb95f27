package records

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Icon index tables. Keys absent from a table fall back to its "-" entry.
var amcIconIndex = map[string]int{
	"AXISMUTUALFUND_MF":            0,
	"BARODAMUTUALFUND_MF":          1,
	"BHARTIAXAMUTUALFUND_MF":       2,
	"BirlaSunLifeMutualFund_MF":    3,
	"BNPPARIBAS_MF":                4,
	"SUNDARAMMUTUALFUND_MF":        5,
	"CANARAROBECOMUTUALFUND_MF":    6,
	"DSP_MF":                       7,
	"EDELWEISSMUTUALFUND_MF":       8,
	"ESSELMUTUALFUND_MF":           9,
	"FRANKLINTEMPLETON":            10,
	"HDFCMutualFund_MF":            11,
	"HSBCMUTUALFUND_MF":            12,
	"ICICIPrudentialMutualFund_MF": 13,
	"IDBIMUTUALFUND_MF":            14,
	"IDFCMUTUALFUND_MF":            15,
	"IIFLMUTUALFUND_MF":            16,
	"INDIABULLSMUTUALFUND_MF":      17,
	"INVESCOMUTUALFUND_MF":         18,
	"ITI MUTUAL FUND_MF":           19,
	"JM FINANCIAL MUTUAL FUND_MF":  20,
	"KOTAKMAHINDRAMF":              21,
	"L&TMUTUALFUND_MF":             22,
	"LICMUTUALFUND_MF":             23,
	"MAHINDRA MUTUAL FUND_MF":      24,
	"MIRAEASSET":                   25,
	"MOTILALOSWAL_MF":              26,
	"NipponIndiaMutualFund_MF":     27,
	"PGIMINDIAMUTUALFUND_MF":       28,
	"PPFAS_MF":                     29,
	"PRINCIPALMUTUALFUND_MF":       30,
	"QUANTMUTUALFUND_MF":           31,
	"QUANTUMMUTUALFUND_MF":         32,
	"SBIMutualFund_MF":             33,
	"SHRIRAMMUTUALFUND_MF":         34,
	"TATAMutualFund_MF":            35,
	"TAURUSMUTUALFUND_MF":          36,
	"UNIONMUTUALFUND_MF":           37,
	"UTIMUTUALFUND_MF":             38,
	"YESMUTUALFUND_MF":             39,
	"-":                            40,
	"ZERODHAMUTUALFUND_MF":         41,
}

var schemeIconIndex = map[string]int{
	"equity":            1,
	"index funds":       7,
	"fund of funds":     3,
	"hybrid":            4,
	"debt":              5,
	"solution oriented": 6,
	"-":                 2,
}

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9]+`)
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// launchDateLayouts are tried in order by LaunchYear.
var launchDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02-Jan-2006",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"02/01/2006",
}

// StripPlanName removes the plan suffix from a fund display name.
func StripPlanName(name string) string {
	name = strings.Replace(name, "  ", " ", 1)
	name = strings.Replace(name, " - Direct Plan", "", 1)
	return strings.Replace(name, " - Regular Plan", "", 1)
}

// DividendInterval returns raw when set, otherwise a label derived from the dividend type code.
func DividendInterval(divType, raw string) string {
	if raw != "" {
		return raw
	}
	switch divType {
	case "G":
		return "Growth"
	case "P":
		return "Dividend payout"
	case "R":
		return "dividend reinvest"
	default:
		return strings.ToLower(divType)
	}
}

// PlanName decodes the plan flag.
func PlanName(flag int) string {
	if flag == 0 {
		return "Regular"
	}
	return "Direct"
}

// FileNamePath returns the icon file name for an (amc, scheme) pair.
// Unknown pairs share the default bucket.
func FileNamePath(amc, scheme string) string {
	amcIdx, ok := amcIconIndex[amc]
	if !ok {
		amcIdx = amcIconIndex["-"]
	}
	schemeIdx, ok := schemeIconIndex[strings.ToLower(scheme)]
	if !ok {
		schemeIdx = schemeIconIndex["-"]
	}
	return fmt.Sprintf("mf-amc-%d.svg", 7*amcIdx+schemeIdx)
}

// PrimaryDetail builds the lowercase search corpus for a fund.
func PrimaryDetail(symbol, fund, scheme, subScheme, interval string) string {
	return strings.ToLower(strings.Join([]string{symbol, fund, scheme, subScheme, interval}, " "))
}

// Slug lowercases s and collapses every run of characters outside [a-z0-9] into one hyphen.
func Slug(s string) string {
	return nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
}

// FundSlug is the slug of "fund plan interval".
func FundSlug(fund, plan, interval string) string {
	return Slug(fund + " " + plan + " " + interval)
}

// ExitLoadPercent extracts the numeric exit load from free text.
//
// Empty, "0" and "nil" (any case) are 0. Otherwise the first number followed by
// "%" wins; failing that, the first bare number is used if it lies in [0, 100].
func ExitLoadPercent(exitLoad string) float64 {
	s := strings.TrimSpace(exitLoad)
	if s == "" || s == "0" || strings.EqualFold(s, "nil") {
		return 0
	}
	if m := percentPattern.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return v
		}
	}
	if m := numberPattern.FindString(s); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err == nil && v >= 0 && v <= 100 {
			return v
		}
	}
	return 0
}

// LaunchYear extracts the year from a launch date. ok is false when no layout matches.
func LaunchYear(launchDate string) (year int, ok bool) {
	s := strings.TrimSpace(launchDate)
	if s == "" {
		return 0, false
	}
	for _, layout := range launchDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}
