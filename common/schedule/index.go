package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gofrs/uuid/v5"
	"slices"
	"strings"
	"time"
)

var ErrRouteNotFound = errors.New("route not found")

type RouteNotFoundError struct {
	Departure string
	Arrival   string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no flights found for route %s → %s", e.Departure, e.Arrival)
}

func (e *RouteNotFoundError) Is(target error) bool {
	return target == ErrRouteNotFound
}

type RouteKey struct {
	Departure string
	Arrival   string
}

func NewRouteKey(departure, arrival string) RouteKey {
	return RouteKey{
		Departure: normalizeCode(departure),
		Arrival:   normalizeCode(arrival),
	}
}

func (k RouteKey) String() string {
	return k.Departure + "|" + k.Arrival
}

func (k RouteKey) Compare(other RouteKey) int {
	if c := strings.Compare(k.Departure, other.Departure); c != 0 {
		return c
	}

	return strings.Compare(k.Arrival, other.Arrival)
}

type RouteRecord struct {
	Departure string   `json:"departure"`
	Arrival   string   `json:"arrival"`
	Dates     []string `json:"dates"`
}

// UnmarshalJSON also accepts documents which name the arrival code "arriving".
func (rr *RouteRecord) UnmarshalJSON(b []byte) error {
	var temp struct {
		Departure string   `json:"departure"`
		Arrival   string   `json:"arrival"`
		Arriving  string   `json:"arriving"`
		Dates     []string `json:"dates"`
	}

	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}

	*rr = RouteRecord{
		Departure: temp.Departure,
		Arrival:   temp.Arrival,
		Dates:     temp.Dates,
	}

	if rr.Arrival == "" {
		rr.Arrival = temp.Arriving
	}

	if rr.Dates == nil {
		rr.Dates = make([]string, 0)
	}

	return nil
}

type Route struct {
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}

type RouteResult struct {
	Departure string   `json:"departure"`
	Arrival   string   `json:"arrival"`
	Dates     []string `json:"dates"`
	Count     int      `json:"count"`
}

type Metadata struct {
	Id          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Source      string    `json:"source,omitempty"`
	Rows        int       `json:"rows"`
	SkippedRows int       `json:"skippedRows"`
}

// Document is the serializable form of an index.
type Document struct {
	Flights  []RouteRecord `json:"flights"`
	Metadata *Metadata     `json:"metadata,omitempty"`
}

func (d Document) Index() *Index {
	return NewIndex(d.Flights)
}

// Index is a read-only snapshot of route records.
type Index struct {
	records []RouteRecord
	lookup  map[RouteKey]int
}

// NewIndex builds an index from records in the given order. If multiple records share the same
// normalized route key, lookups resolve to the first one.
func NewIndex(records []RouteRecord) *Index {
	idx := &Index{
		records: make([]RouteRecord, 0, len(records)),
		lookup:  make(map[RouteKey]int, len(records)),
	}

	for _, rr := range records {
		rr.Dates = slices.Clone(rr.Dates)
		if rr.Dates == nil {
			rr.Dates = make([]string, 0)
		}

		key := NewRouteKey(rr.Departure, rr.Arrival)
		if _, ok := idx.lookup[key]; !ok {
			idx.lookup[key] = len(idx.records)
		}

		idx.records = append(idx.records, rr)
	}

	return idx
}

func (idx *Index) Len() int {
	return len(idx.records)
}

func (idx *Index) Records() []RouteRecord {
	result := make([]RouteRecord, 0, len(idx.records))
	for _, rr := range idx.records {
		rr.Dates = slices.Clone(rr.Dates)
		result = append(result, rr)
	}

	return result
}

func (idx *Index) Document() Document {
	return Document{Flights: idx.Records()}
}

// FindRoute looks up a route ignoring case and surrounding whitespace of both the query and the stored codes.
func (idx *Index) FindRoute(departure, arrival string) (RouteResult, error) {
	key := NewRouteKey(departure, arrival)
	i, ok := idx.lookup[key]
	if !ok {
		return RouteResult{}, &RouteNotFoundError{
			Departure: key.Departure,
			Arrival:   key.Arrival,
		}
	}

	rr := idx.records[i]
	return RouteResult{
		Departure: rr.Departure,
		Arrival:   rr.Arrival,
		Dates:     slices.Clone(rr.Dates),
		Count:     len(rr.Dates),
	}, nil
}

// ListRoutes returns every distinct normalized route in index order.
func (idx *Index) ListRoutes() []Route {
	seen := make(map[RouteKey]struct{}, len(idx.records))
	routes := make([]Route, 0, len(idx.records))

	for _, rr := range idx.records {
		key := NewRouteKey(rr.Departure, rr.Arrival)
		if key.Departure == "" || key.Arrival == "" {
			continue
		}

		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			routes = append(routes, Route{Departure: key.Departure, Arrival: key.Arrival})
		}
	}

	return routes
}
