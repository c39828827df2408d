package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"github.com/PedroLeon917/cybdates/common/schedule"
	"github.com/PedroLeon917/cybdates/common/xsql"
	"github.com/duckdb/duckdb-go/v2"
	"github.com/gofrs/uuid/v5"
	"time"
)

var duckdbSchema = []string{
	`CREATE TABLE IF NOT EXISTS flights_document (
		stored_at TIMESTAMPTZ NOT NULL,
		id VARCHAR,
		created_at TIMESTAMPTZ,
		source VARCHAR,
		row_count INTEGER,
		skipped_row_count INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS route_dates (
		seq INTEGER NOT NULL,
		departure VARCHAR NOT NULL,
		arrival VARCHAR NOT NULL,
		date DATE
	)`,
}

// DuckDBStore keeps one row per route and operating date. Routes without dates are kept as a single row with a NULL date.
type DuckDBStore struct {
	connector *duckdb.Connector
	database  *sql.DB
}

// NewDuckDBStore opens the database file at path, an empty path opens an in-memory database.
func NewDuckDBStore(ctx context.Context, path string) (*DuckDBStore, error) {
	connector, err := duckdb.NewConnector(path, connInit(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to duckdb: %w", err)
	}

	database := sql.OpenDB(connector)
	for _, query := range duckdbSchema {
		if _, err = database.ExecContext(ctx, query); err != nil {
			return nil, errors.Join(
				fmt.Errorf("failed to create schema: %w", err),
				database.Close(),
				connector.Close(),
			)
		}
	}

	return &DuckDBStore{
		connector: connector,
		database:  database,
	}, nil
}

func connInit(ctx context.Context) func(execer driver.ExecerContext) error {
	return func(execer driver.ExecerContext) error {
		_, err := execer.ExecContext(ctx, `SET TimeZone = 'UTC'`, nil)
		return err
	}
}

func (s *DuckDBStore) Get(ctx context.Context) (schedule.Document, error) {
	conn, err := s.database.Conn(ctx)
	if err != nil {
		return schedule.Document{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	metadata, err := s.readMetadata(ctx, conn)
	if err != nil {
		return schedule.Document{}, err
	}

	flights, err := s.readFlights(ctx, conn)
	if err != nil {
		return schedule.Document{}, err
	}

	return schedule.Document{
		Flights:  flights,
		Metadata: metadata,
	}, nil
}

func (s *DuckDBStore) readMetadata(ctx context.Context, conn *sql.Conn) (*schedule.Metadata, error) {
	var id, source sql.NullString
	var createdAt sql.NullTime
	var rows, skippedRows sql.NullInt64

	err := conn.QueryRowContext(
		ctx,
		`SELECT id, created_at, source, row_count, skipped_row_count FROM flights_document LIMIT 1`,
	).Scan(&id, &createdAt, &source, &rows, &skippedRows)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	if !id.Valid {
		return nil, nil
	}

	parsedId, err := uuid.FromString(id.String)
	if err != nil {
		return nil, fmt.Errorf("invalid document id %q: %w", id.String, err)
	}

	return &schedule.Metadata{
		Id:          parsedId,
		CreatedAt:   createdAt.Time,
		Source:      source.String,
		Rows:        int(rows.Int64),
		SkippedRows: int(skippedRows.Int64),
	}, nil
}

func (s *DuckDBStore) readFlights(ctx context.Context, conn *sql.Conn) ([]schedule.RouteRecord, error) {
	rows, err := conn.QueryContext(
		ctx,
		`
SELECT
	departure,
	arrival,
	LIST(STRFTIME(date, '%Y-%m-%d') ORDER BY date) FILTER (WHERE date IS NOT NULL)
FROM route_dates
GROUP BY seq, departure, arrival
ORDER BY seq ASC
`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query route dates: %w", err)
	}
	defer rows.Close()

	flights := make([]schedule.RouteRecord, 0)
	for rows.Next() {
		var departure, arrival xsql.String
		var dates xsql.List[xsql.String, *xsql.String]
		if err = rows.Scan(&departure, &arrival, &dates); err != nil {
			return nil, fmt.Errorf("failed to scan route dates: %w", err)
		}

		rr := schedule.RouteRecord{
			Departure: string(departure),
			Arrival:   string(arrival),
			Dates:     make([]string, 0, len(dates)),
		}

		for _, d := range dates {
			rr.Dates = append(rr.Dates, string(d))
		}

		flights = append(flights, rr)
	}

	return flights, rows.Err()
}

func (s *DuckDBStore) Put(ctx context.Context, doc schedule.Document) error {
	tx, err := s.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{`DELETE FROM route_dates`, `DELETE FROM flights_document`} {
		if _, err = tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to clear stored document: %w", err)
		}
	}

	if err = insertMetadata(ctx, tx, doc.Metadata); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO route_dates (seq, departure, arrival, date) VALUES (?, ?, ?, CAST(? AS DATE))`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for seq, rr := range doc.Flights {
		if len(rr.Dates) < 1 {
			if _, err = stmt.ExecContext(ctx, seq, rr.Departure, rr.Arrival, nil); err != nil {
				return fmt.Errorf("failed to insert route %s → %s: %w", rr.Departure, rr.Arrival, err)
			}

			continue
		}

		for _, d := range rr.Dates {
			if _, err = stmt.ExecContext(ctx, seq, rr.Departure, rr.Arrival, d); err != nil {
				return fmt.Errorf("failed to insert route %s → %s: %w", rr.Departure, rr.Arrival, err)
			}
		}
	}

	return tx.Commit()
}

func insertMetadata(ctx context.Context, tx *sql.Tx, md *schedule.Metadata) error {
	var err error
	if md == nil {
		_, err = tx.ExecContext(ctx, `INSERT INTO flights_document (stored_at) VALUES (?)`, time.Now())
	} else {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO flights_document (stored_at, id, created_at, source, row_count, skipped_row_count) VALUES (?, ?, ?, ?, ?, ?)`,
			time.Now(),
			md.Id.String(),
			md.CreatedAt,
			md.Source,
			md.Rows,
			md.SkippedRows,
		)
	}

	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

func (s *DuckDBStore) Close() error {
	return errors.Join(s.database.Close(), s.connector.Close())
}
