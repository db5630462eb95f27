// Package export renders fund lists as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/fundwallet/fundwallet-backend/internal/model"
	"github.com/fundwallet/fundwallet-backend/internal/records"
)

// SheetName is the worksheet holding the funds.
const SheetName = "Funds"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type column struct {
	header string
	width  float64
	value  func(*model.FundData) any
}

var columns = []column{
	{"Symbol", 16, func(f *model.FundData) any { return f.TradingSymbol }},
	{"Fund", 48, func(f *model.FundData) any { return f.Fund }},
	{"Plan", 10, func(f *model.FundData) any { return f.Plan }},
	{"AMC", 28, func(f *model.FundData) any { return f.DisplayAMC() }},
	{"Scheme", 14, func(f *model.FundData) any { return f.Scheme }},
	{"Sub-scheme", 20, func(f *model.FundData) any { return f.SubScheme }},
	{"Dividend Interval", 20, func(f *model.FundData) any { return f.DividendInterval }},
	{"NAV", 12, func(f *model.FundData) any { return f.LastPrice }},
	{"NAV Date", 12, func(f *model.FundData) any { return f.LastPriceDate }},
	{"1Y %", 8, func(f *model.FundData) any { return f.OneYearPercent }},
	{"3Y %", 8, func(f *model.FundData) any { return f.ThreeYearPercent }},
	{"5Y %", 8, func(f *model.FundData) any { return f.FiveYearPercent }},
	{"AUM", 18, func(f *model.FundData) any { return f.AUM }},
	{"Expense Ratio", 14, func(f *model.FundData) any { return f.ExpenseRatio }},
	{"Exit Load", 24, func(f *model.FundData) any { return f.ExitLoad }},
	{"Exit Load %", 12, func(f *model.FundData) any { return records.ExitLoadPercent(f.ExitLoad) }},
	{"Min Purchase", 14, func(f *model.FundData) any { return f.MinPurchaseAmt }},
	{"SIP", 6, func(f *model.FundData) any { return f.AmcSipFlag }},
	{"Risk", 6, func(f *model.FundData) any { return f.Risk }},
	{"Manager", 28, func(f *model.FundData) any { return f.Manager }},
	{"Launch Date", 12, func(f *model.FundData) any { return f.LaunchDate }},
	{"Lock-in Days", 12, func(f *model.FundData) any { return f.LockIn }},
	{"Factsheet", 40, func(f *model.FundData) any { return f.FactsheetLink }},
}

// Headers returns the column headers in order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// WriteXLSX writes funds as a single-sheet workbook with a bold, frozen header row.
func WriteXLSX(w io.Writer, funds []model.FundData) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	for i, c := range columns {
		if err := sw.SetColWidth(i+1, i+1, c.width); err != nil {
			return fmt.Errorf("failed to size column %d: %w", i+1, err)
		}
	}
	if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c.header}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]any, len(columns))
	for i := range funds {
		for j, c := range columns {
			row[j] = c.value(&funds[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
