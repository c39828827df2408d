package schedule

import (
	"errors"
	"fmt"
	"github.com/PedroLeon917/cybdates/common/xtime"
	"github.com/go-playground/validator/v10"
	"math"
	"strconv"
	"strings"
)

// HeaderSentinel is the first cell of the header row. Data rows follow the last header row.
const HeaderSentinel = "Flight No."

// zero-based cell positions of a schedule row
const (
	colFlight        = 0
	colEffectiveFrom = 1
	colEffectiveTo   = 2
	colFrequency     = 3
	colDeparture     = 7
	colArrival       = 9
)

// MaxPeriodDays is the longest effective period a row may span.
const MaxPeriodDays = 3653

var ErrHeaderNotFound = errors.New("header row not found")

var rowValidator = validator.New(validator.WithRequiredStructEnabled())

type Row struct {
	FlightId  string               `validate:"required"`
	Period    xtime.LocalDateRange `validate:"-"`
	Frequency Frequency            `validate:"required"`
	Departure string               `validate:"required"`
	Arrival   string               `validate:"required"`
}

func (r Row) Key() RouteKey {
	return NewRouteKey(r.Departure, r.Arrival)
}

// Table is the decoded body of a schedule document.
type Table struct {
	Rows     []Row
	DataRows int
	Skipped  int
}

// DecodeTable skips everything up to and including the header row and decodes the remaining rows.
// Rows which cannot be decoded are counted as skipped.
func DecodeTable(rows [][]any) (Table, error) {
	headerIdx := -1
	for i, cells := range rows {
		if len(cells) > colFlight {
			if v, ok := cells[colFlight].(string); ok && strings.TrimSpace(v) == HeaderSentinel {
				headerIdx = i
			}
		}
	}

	if headerIdx == -1 {
		return Table{}, ErrHeaderNotFound
	}

	body := rows[headerIdx+1:]
	t := Table{
		Rows:     make([]Row, 0, len(body)),
		DataRows: len(body),
	}

	for _, cells := range body {
		if row, ok := DecodeRow(cells); ok {
			t.Rows = append(t.Rows, row)
		} else {
			t.Skipped++
		}
	}

	return t, nil
}

// DecodeRow extracts and validates the schedule fields of a single row.
func DecodeRow(cells []any) (Row, bool) {
	cell := func(i int) any {
		if i < len(cells) {
			return cells[i]
		}

		return nil
	}

	from, ok := CoerceDate(cell(colEffectiveFrom))
	if !ok {
		return Row{}, false
	}

	to, ok := CoerceDate(cell(colEffectiveTo))
	if !ok {
		return Row{}, false
	}

	flightId, _ := cellText(cell(colFlight))
	frequency, _ := cellText(cell(colFrequency))
	departure, _ := cellText(cell(colDeparture))
	arrival, _ := cellText(cell(colArrival))

	row := Row{
		FlightId:  strings.TrimSpace(flightId),
		Period:    xtime.LocalDateRange{from, to},
		Frequency: Frequency(frequency),
		Departure: normalizeCode(departure),
		Arrival:   normalizeCode(arrival),
	}

	if !row.Period.Valid() || row.Period.Days() > MaxPeriodDays {
		return Row{}, false
	}

	if err := rowValidator.Struct(row); err != nil {
		return Row{}, false
	}

	return row, true
}

// cellText renders a cell as text. Zero numbers and non-scalar values are treated as empty.
func cellText(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, v != ""

	case float64:
		return formatNumber(v)

	case float32:
		return formatNumber(float64(v))

	case int:
		return formatNumber(float64(v))

	case int64:
		return formatNumber(float64(v))

	case int32:
		return formatNumber(float64(v))

	case uint:
		return formatNumber(float64(v))

	case uint64:
		return formatNumber(float64(v))

	case uint32:
		return formatNumber(float64(v))

	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	}

	return "", false
}

func formatNumber(v float64) (string, bool) {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}

	return strconv.FormatFloat(v, 'f', -1, 64), true
}

func normalizeCode(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}
