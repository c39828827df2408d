package schedule

import (
	"github.com/PedroLeon917/cybdates/common/xtime"
	"math"
	"strings"
	"time"
)

const (
	msPerDay = 86_400_000
	// serials resolving outside of 0001-01-01..9999-12-31 are rejected
	minSerialDay = -693_593
	maxSerialDay = 2_958_465
)

// serialEpoch is day 0 of the spreadsheet day-serial convention.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var textLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	"02Jan06",
	"02Jan2006",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// CoerceDate converts a spreadsheet cell into a calendar date. Dates are kept as they are, numbers are
// read as day serials counted from 1899-12-30 UTC and text is parsed with a set of common layouts.
// Empty, zero and unparseable values report false.
func CoerceDate(v any) (xtime.LocalDate, bool) {
	switch v := v.(type) {
	case nil:
		return xtime.LocalDate{}, false

	case xtime.LocalDate:
		return v, !v.IsZero()

	case time.Time:
		return xtime.NewLocalDate(v), !v.IsZero()

	case *time.Time:
		if v == nil {
			return xtime.LocalDate{}, false
		}

		return CoerceDate(*v)

	case string:
		return parseDateText(v)

	case float64:
		return serialDate(v)

	case float32:
		return serialDate(float64(v))

	case int:
		return serialDate(float64(v))

	case int8:
		return serialDate(float64(v))

	case int16:
		return serialDate(float64(v))

	case int32:
		return serialDate(float64(v))

	case int64:
		return serialDate(float64(v))

	case uint:
		return serialDate(float64(v))

	case uint8:
		return serialDate(float64(v))

	case uint16:
		return serialDate(float64(v))

	case uint32:
		return serialDate(float64(v))

	case uint64:
		return serialDate(float64(v))
	}

	return xtime.LocalDate{}, false
}

func serialDate(days float64) (xtime.LocalDate, bool) {
	if days == 0 || math.IsNaN(days) || math.IsInf(days, 0) {
		return xtime.LocalDate{}, false
	}

	if days < minSerialDay || days >= maxSerialDay+1 {
		return xtime.LocalDate{}, false
	}

	ms := float64(serialEpoch.UnixMilli()) + math.Trunc(days*msPerDay)

	return xtime.NewLocalDate(time.UnixMilli(int64(ms)).UTC()), true
}

func parseDateText(v string) (xtime.LocalDate, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return xtime.LocalDate{}, false
	}

	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return xtime.NewLocalDate(t.UTC()), true
		}
	}

	return xtime.LocalDate{}, false
}
