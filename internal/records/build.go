// Package records turns decoded payload rows into fund records and derives
// the filter options and value ranges used by clients.
package records

import (
	"context"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/model"
	"github.com/fundwallet/fundwallet-backend/internal/progress"
)

// progressEvery is the row interval between progress events.
const progressEvery = 100

var aumScale = decimal.NewFromInt(10_000_000)

// Build joins daily rows with metadata rows on symbol and derives a FundData per match.
//
// Meta rows are indexed first-match-wins. Daily rows without a meta match are dropped
// and counted as unmatched. Malformed rows are skipped and counted; they never fail
// the build. Progress is published to pub (which may be nil) every 100 daily rows.
//
// Returns:
//   - []model.FundData: Records in daily row order
//   - model.BuildReport: Row accounting for diagnostics
//   - error: apperrors.ErrNilRecordSet when payload is nil, or ctx.Err() on cancellation
func Build(ctx context.Context, payload *model.Payload, pub progress.Publisher) ([]model.FundData, model.BuildReport, error) {
	var report model.BuildReport
	if payload == nil {
		return nil, report, apperrors.ErrNilRecordSet
	}
	publish(pub, progress.PhaseProcess, 30)

	metaBySymbol := make(map[string]model.InstrumentMeta, len(payload.Meta.Rows))
	for _, raw := range payload.Meta.Rows {
		m, err := ParseMeta(raw)
		if err != nil {
			report.SkippedMeta++
			continue
		}
		if _, dup := metaBySymbol[m.Symbol]; !dup {
			metaBySymbol[m.Symbol] = m
		}
	}

	factsheets := make(map[string]model.FactsheetEntry, len(payload.Daily.Factsheet))
	for _, raw := range payload.Daily.Factsheet {
		e, err := ParseFactsheet(raw)
		if err != nil {
			report.SkippedFactsheet++
			continue
		}
		factsheets[e.AMC] = e
	}

	total := len(payload.Daily.Rows)
	funds := make([]model.FundData, 0, total)
	for idx, raw := range payload.Daily.Rows {
		if idx%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
			publish(pub, progress.PhaseProcess, 30+int(math.Round(float64(idx)/float64(total)*70)))
		}

		d, err := ParseDaily(raw)
		if err != nil {
			report.SkippedDaily++
			continue
		}
		m, ok := metaBySymbol[d.Symbol]
		if !ok {
			report.Unmatched++
			continue
		}

		var fs *model.FactsheetEntry
		if e, ok := factsheets[m.AMC]; ok {
			fs = &e
		}
		funds = append(funds, NewFundData(d, m, fs))
	}

	report.Records = len(funds)
	publish(pub, progress.PhaseProcessed, 100)
	return funds, report, nil
}

// NewFundData derives a fund record from a matched daily/meta pair.
// fs may be nil when the AMC has no factsheet entry.
func NewFundData(d model.InstrumentDaily, m model.InstrumentMeta, fs *model.FactsheetEntry) model.FundData {
	f := model.FundData{
		TradingSymbol:            d.Symbol,
		PurchaseAllowed:          d.PurchaseAllowed,
		RedemptionAllowed:        d.RedemptionAllowed,
		LastDividendDate:         d.LastDividendDate,
		LastDividendPercent:      d.LastDividendPercent,
		LastPrice:                d.LastPrice,
		LastPriceDate:            d.LastPriceDate,
		ChangePercent:            d.ChangePercent,
		OneYearPercent:           d.OneYearPercent,
		TwoYearPercent:           d.TwoYearPercent,
		ThreeYearPercent:         d.ThreeYearPercent,
		FourYearPercent:          d.FourYearPercent,
		FiveYearPercent:          d.FiveYearPercent,
		AUM:                      ScaleAUM(d.RawAUM),
		AMC:                      m.AMC,
		MinPurchaseAmt:           m.MinPurchaseAmt,
		PurchaseAmtMulti:         m.PurchaseAmtMulti,
		MinAdditionalPurchaseAmt: m.MinAdditionalPurchaseAmt,
		MinRedemptionQty:         m.MinRedemptionQty,
		RedemptionQtyMulti:       m.RedemptionQtyMulti,
		DividendType:             m.DividendType,
		Scheme:                   m.Scheme,
		SubScheme:                m.SubScheme,
		Plan:                     PlanName(m.PlanFlag),
		SettlementType:           m.SettlementType,
		LaunchDate:               m.LaunchDate,
		ExitLoad:                 m.ExitLoad,
		ExitLoadSlab:             m.ExitLoadSlab,
		ExpenseRatio:             m.ExpenseRatio,
		AmcSipFlag:               m.SipFlag,
		Manager:                  m.Manager,
		LockIn:                   m.LockIn,
		Risk:                     m.Risk,
	}
	if fs != nil {
		f.RealAmcName = fs.Name
		f.FactsheetLink = fs.Link
	}

	// Each derived field depends only on fields computed above it.
	f.Fund = StripPlanName(m.Name)
	f.FundLowerCase = strings.ToLower(f.Fund)
	f.DividendInterval = DividendInterval(m.DividendType, m.DividendIntervalRaw)
	f.FileNamePath = FileNamePath(f.AMC, f.Scheme)
	f.FundPrimaryDetail = PrimaryDetail(m.Symbol, f.Fund, f.Scheme, f.SubScheme, f.DividendInterval)
	f.FundSlug = FundSlug(f.Fund, f.Plan, f.DividendInterval)
	return f
}

// ScaleAUM converts AUM from units of 10 million to currency units.
func ScaleAUM(raw float64) float64 {
	return decimal.NewFromFloat(raw).Mul(aumScale).InexactFloat64()
}

func publish(pub progress.Publisher, phase string, percent int) {
	if pub != nil {
		pub.Publish(phase, percent, "")
	}
}
