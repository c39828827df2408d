package xtime

import (
	"github.com/stretchr/testify/assert"
	"slices"
	"testing"
)

func dates(values ...string) []LocalDate {
	result := make([]LocalDate, 0, len(values))
	for _, v := range values {
		result = append(result, MustParseLocalDate(v))
	}

	return result
}

func TestNewLocalDateBitSet(t *testing.T) {
	bs := NewLocalDateBitSet(slices.Values(dates("2024-01-03", "2024-01-01", "2024-01-03", "2024-01-10")))

	assert.Equal(t, dates("2024-01-01", "2024-01-03", "2024-01-10"), slices.Collect(bs.Iter))
	assert.True(t, NewLocalDateBitSet(slices.Values([]LocalDate(nil))).Empty())
}

func TestNewLocalDateBitSet_EarlierDateShiftsOffset(t *testing.T) {
	bs := NewLocalDateBitSet(slices.Values(dates("2024-06-01", "2024-01-01", "2024-06-01")))

	assert.Equal(t, dates("2024-01-01", "2024-06-01"), slices.Collect(bs.Iter))
}

func TestLocalDateBitSet_Or(t *testing.T) {
	bs1 := NewLocalDateBitSet(slices.Values(dates("2024-06-01", "2024-06-03")))
	bs2 := NewLocalDateBitSet(slices.Values(dates("2024-01-01", "2024-06-03")))

	expected := dates("2024-01-01", "2024-06-01", "2024-06-03")

	assert.Equal(t, expected, slices.Collect(bs1.Or(bs2).Iter))
	assert.Equal(t, expected, slices.Collect(bs2.Or(bs1).Iter))
	assert.Equal(t, 2, bs1.Count())
	assert.Equal(t, 2, bs2.Count())

	var empty LocalDateBitSet
	assert.Equal(t, slices.Collect(bs1.Iter), slices.Collect(empty.Or(bs1).Iter))
	assert.Equal(t, slices.Collect(bs1.Iter), slices.Collect(bs1.Or(empty).Iter))
}

func TestLocalDateBitSet_Count(t *testing.T) {
	var bs LocalDateBitSet
	assert.Equal(t, 0, bs.Count())

	bs = NewLocalDateBitSet(slices.Values(dates("2024-01-01")))
	assert.Equal(t, 1, bs.Count())

	bs = NewLocalDateBitSet(slices.Values(dates("2023-12-31", "2024-01-01", "2024-12-31")))
	assert.Equal(t, 3, bs.Count())
}

func TestLocalDateBitSet_Empty(t *testing.T) {
	var bs LocalDateBitSet
	assert.True(t, bs.Empty())

	bs = NewLocalDateBitSet(slices.Values(dates("2024-01-01")))
	assert.False(t, bs.Empty())
}
