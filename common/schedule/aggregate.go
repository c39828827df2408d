package schedule

import (
	"context"
	"github.com/PedroLeon917/cybdates/common/concurrent"
	"github.com/PedroLeon917/cybdates/common/xiter"
	"github.com/PedroLeon917/cybdates/common/xtime"
	"iter"
	"maps"
	"slices"
)

type routeDates map[RouteKey]xtime.LocalDateBitSet

func (rd routeDates) add(r Row) {
	dates := Expand(r)
	if dates.Empty() {
		return
	}

	key := r.Key()
	rd[key] = rd[key].Or(dates)
}

func (rd routeDates) merge(other routeDates) {
	for key, dates := range other {
		rd[key] = rd[key].Or(dates)
	}
}

func (rd routeDates) index() *Index {
	keys := slices.SortedFunc(maps.Keys(rd), RouteKey.Compare)
	records := make([]RouteRecord, 0, len(keys))

	for _, key := range keys {
		bs := rd[key]
		records = append(records, RouteRecord{
			Departure: key.Departure,
			Arrival:   key.Arrival,
			Dates:     slices.AppendSeq(make([]string, 0, bs.Count()), xiter.Map(bs.Iter, xtime.LocalDate.String)),
		})
	}

	return NewIndex(records)
}

// Aggregate expands every row and merges the operating dates per route.
// Routes without a single operating date are omitted.
func Aggregate(rows iter.Seq[Row]) *Index {
	rd := make(routeDates)
	for r := range rows {
		rd.add(r)
	}

	return rd.index()
}

// AggregateParallel produces the same index as Aggregate, expanding rows on multiple workers.
// Each worker aggregates into its own partial result; partial results are merged afterwards.
func AggregateParallel(ctx context.Context, rows iter.Seq[Row], parallelism uint) (*Index, error) {
	wg := concurrent.WorkGroup[Row, routeDates, *Index]{
		Parallelism: parallelism,
		Worker: func(ctx context.Context, r Row, acc routeDates) (routeDates, error) {
			if acc == nil {
				acc = make(routeDates)
			}

			acc.add(r)
			return acc, nil
		},
		Combiner: func(ctx context.Context, a, b routeDates) (routeDates, error) {
			if a == nil {
				return b, nil
			} else if b != nil {
				a.merge(b)
			}

			return a, nil
		},
		Finisher: func(ctx context.Context, acc routeDates) (*Index, error) {
			return acc.index(), nil
		},
	}

	return wg.RunSeq(ctx, rows)
}

// Ingest decodes a raw table and aggregates its rows.
func Ingest(ctx context.Context, table [][]any, parallelism uint) (*Index, Table, error) {
	t, err := DecodeTable(table)
	if err != nil {
		return nil, t, err
	}

	idx, err := AggregateParallel(ctx, slices.Values(t.Rows), parallelism)
	if err != nil {
		return nil, t, err
	}

	return idx, t, nil
}
