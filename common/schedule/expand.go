package schedule

import (
	"github.com/PedroLeon917/cybdates/common/xiter"
	"github.com/PedroLeon917/cybdates/common/xtime"
	"iter"
	"time"
)

// SkipMarker marks a weekday on which the flight does not operate.
const SkipMarker = '_'

// Frequency is a weekly pattern with one symbol per weekday, starting on Monday.
// Any symbol other than SkipMarker means the flight operates; missing trailing symbols mean it does not.
type Frequency string

func (f Frequency) Days() [7]bool {
	var days [7]bool
	for i, r := range []rune(string(f)) {
		if i >= len(days) {
			break
		}

		days[i] = r != SkipMarker
	}

	return days
}

// WeekdayIndex maps a weekday onto a Monday-first index (Monday = 0, Sunday = 6).
func WeekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// Dates yields every date of the closed effective period on which the row operates, in ascending order.
func (r Row) Dates() iter.Seq[xtime.LocalDate] {
	days := r.Frequency.Days()
	return xiter.Filter(r.Period.Iter(), func(d xtime.LocalDate) bool {
		return days[WeekdayIndex(d.Weekday())]
	})
}

// Expand returns the set of operating dates of a single row.
func Expand(r Row) xtime.LocalDateBitSet {
	return xtime.NewLocalDateBitSet(r.Dates())
}
