package export_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fundwallet/fundwallet-backend/internal/export"
	"github.com/fundwallet/fundwallet-backend/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	funds := []model.FundData{
		{TradingSymbol: "F1", Fund: "Fund One", Plan: "Direct", AMC: "AMC_X", RealAmcName: "AMC X Mutual Fund", LastPrice: 10.5, AUM: 12_000_000, ExitLoad: "1% for 1 year"},
		{TradingSymbol: "F2", Fund: "Fund Two", Plan: "Regular", AMC: "AMC_Y", ExitLoad: "Nil"},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, funds))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SheetName}, f.GetSheetList())

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, export.Headers(), rows[0])

	idx := func(header string) int {
		for i, h := range export.Headers() {
			if h == header {
				return i
			}
		}
		t.Fatalf("unknown header %q", header)
		return -1
	}
	assert.Equal(t, "F1", rows[1][idx("Symbol")])
	assert.Equal(t, "AMC X Mutual Fund", rows[1][idx("AMC")])
	assert.Equal(t, "10.5", rows[1][idx("NAV")])
	assert.Equal(t, "1", rows[1][idx("Exit Load %")])
	assert.Equal(t, "AMC_Y", rows[2][idx("AMC")])
	assert.Equal(t, "0", rows[2][idx("Exit Load %")])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
