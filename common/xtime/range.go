package xtime

import "iter"

type LocalDateRange [2]LocalDate

func (ldr LocalDateRange) Iter() iter.Seq[LocalDate] {
	return ldr[0].Until(ldr[1])
}

// Days returns the number of days covered by the closed range, 0 if the range is inverted.
func (ldr LocalDateRange) Days() int {
	return max(ldr[0].DaysUntil(ldr[1])+1, 0)
}

func (ldr LocalDateRange) Valid() bool {
	return ldr[0].Compare(ldr[1]) <= 0
}
