package records

import (
	"encoding/json"
	"fmt"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/model"
)

// Positional row widths.
const (
	dailyFields     = 14
	metaFields      = 22
	factsheetFields = 3
)

// rowReader decodes positional fields and remembers the first failure.
type rowReader struct {
	fields []json.RawMessage
	err    error
}

func newRowReader(raw json.RawMessage, want int) (*rowReader, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: not an array: %v", apperrors.ErrMalformedRow, err)
	}
	if len(fields) < want {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", apperrors.ErrMalformedRow, want, len(fields))
	}
	return &rowReader{fields: fields}, nil
}

// str reads a string field. null reads as "".
func (r *rowReader) str(i int) string {
	var s string
	if err := json.Unmarshal(r.fields[i], &s); err != nil && r.err == nil {
		r.err = fmt.Errorf("%w: field %d is not a string", apperrors.ErrMalformedRow, i)
	}
	return s
}

// num reads a numeric field. null reads as 0.
func (r *rowReader) num(i int) float64 {
	var f float64
	if err := json.Unmarshal(r.fields[i], &f); err != nil && r.err == nil {
		r.err = fmt.Errorf("%w: field %d is not a number", apperrors.ErrMalformedRow, i)
	}
	return f
}

func (r *rowReader) flag(i int) bool {
	return r.num(i) == 1
}

func (r *rowReader) symbol() string {
	s := r.str(0)
	if s == "" && r.err == nil {
		r.err = fmt.Errorf("%w: empty symbol", apperrors.ErrMalformedRow)
	}
	return s
}

// ParseDaily decodes a 14-field daily snapshot row.
func ParseDaily(raw json.RawMessage) (model.InstrumentDaily, error) {
	r, err := newRowReader(raw, dailyFields)
	if err != nil {
		return model.InstrumentDaily{}, err
	}

	d := model.InstrumentDaily{
		Symbol:              r.symbol(),
		PurchaseAllowed:     r.flag(1),
		RedemptionAllowed:   r.flag(2),
		LastDividendDate:    r.str(3),
		LastDividendPercent: r.num(4),
		LastPrice:           r.num(5),
		LastPriceDate:       r.str(6),
		ChangePercent:       r.num(7),
		OneYearPercent:      r.num(8),
		TwoYearPercent:      r.num(9),
		ThreeYearPercent:    r.num(10),
		FourYearPercent:     r.num(11),
		FiveYearPercent:     r.num(12),
		RawAUM:              r.num(13),
	}
	if r.err != nil {
		return model.InstrumentDaily{}, r.err
	}
	return d, nil
}

// ParseMeta decodes a 22-field fund metadata row.
func ParseMeta(raw json.RawMessage) (model.InstrumentMeta, error) {
	r, err := newRowReader(raw, metaFields)
	if err != nil {
		return model.InstrumentMeta{}, err
	}

	m := model.InstrumentMeta{
		Symbol:                   r.symbol(),
		AMC:                      r.str(1),
		Name:                     r.str(2),
		MinPurchaseAmt:           r.num(3),
		PurchaseAmtMulti:         r.num(4),
		MinAdditionalPurchaseAmt: r.num(5),
		MinRedemptionQty:         r.num(6),
		RedemptionQtyMulti:       r.num(7),
		DividendType:             r.str(8),
		DividendIntervalRaw:      r.str(9),
		Scheme:                   r.str(10),
		SubScheme:                r.str(11),
		PlanFlag:                 int(r.num(12)),
		SettlementType:           r.str(13),
		LaunchDate:               r.str(14),
		ExitLoad:                 r.str(15),
		ExitLoadSlab:             r.num(16),
		ExpenseRatio:             r.num(17),
		SipFlag:                  r.flag(18),
		Manager:                  r.str(19),
		LockIn:                   r.num(20),
		Risk:                     r.num(21),
	}
	if r.err != nil {
		return model.InstrumentMeta{}, r.err
	}
	return m, nil
}

// ParseFactsheet decodes an [amc, link, name] factsheet row.
func ParseFactsheet(raw json.RawMessage) (model.FactsheetEntry, error) {
	r, err := newRowReader(raw, factsheetFields)
	if err != nil {
		return model.FactsheetEntry{}, err
	}

	e := model.FactsheetEntry{
		AMC:  r.symbol(),
		Link: r.str(1),
		Name: r.str(2),
	}
	if r.err != nil {
		return model.FactsheetEntry{}, r.err
	}
	return e, nil
}
