package xtime

import (
	"iter"
	"math/big"
)

// LocalDateBitSet is an immutable set of dates stored as bits relative to an offset date.
// Or returns a new set.
type LocalDateBitSet struct {
	offset LocalDate
	bitset big.Int
}

func (bs LocalDateBitSet) Iter(yield func(LocalDate) bool) {
	var zero big.Int

	currD := bs.offset
	currBs := new(big.Int).Set(&bs.bitset)

	for currBs.Cmp(&zero) != 0 {
		gap := currBs.TrailingZeroBits()
		currD = currD.AddDays(int(gap))

		if !yield(currD) {
			return
		}

		currBs.Rsh(currBs, gap+1)
		currD = currD.Next()
	}
}

// NewLocalDateBitSet collects dates into a set without copying the underlying bits per date.
func NewLocalDateBitSet(dates iter.Seq[LocalDate]) LocalDateBitSet {
	var bs LocalDateBitSet
	for d := range dates {
		bs.add(d)
	}

	return bs
}

func (bs *LocalDateBitSet) add(d LocalDate) {
	if bs.Empty() {
		bs.offset = d
		bs.bitset.SetInt64(1)
		return
	}

	index := bs.offset.DaysUntil(d)
	if index >= 0 {
		bs.bitset.SetBit(&bs.bitset, index, 1)
	} else {
		bs.offset = d
		bs.bitset.Lsh(&bs.bitset, uint(-index))
		bs.bitset.SetBit(&bs.bitset, 0, 1)
	}
}

func (bs LocalDateBitSet) Or(other LocalDateBitSet) LocalDateBitSet {
	if other.Empty() {
		return bs
	} else if bs.Empty() {
		return other
	}

	gap := bs.offset.DaysUntil(other.offset)
	if gap < 0 {
		gap = -gap
		bs, other = other, bs
	}

	aligned := new(big.Int).Set(&other.bitset)
	aligned.Lsh(aligned, uint(gap))

	bs.bitset = *new(big.Int).Set(&bs.bitset)
	bs.bitset.Or(&bs.bitset, aligned)

	return bs
}

func (bs LocalDateBitSet) Count() int {
	cnt := 0
	for i := 0; i < bs.bitset.BitLen(); i++ {
		if bs.bitset.Bit(i) > 0 {
			cnt++
		}
	}

	return cnt
}

func (bs LocalDateBitSet) Empty() bool {
	return bs.bitset.BitLen() < 1
}
