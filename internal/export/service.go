// Package export reads the seeded dataset back out of Postgres and writes a
// bronze layer: one file per reference table plus day-partitioned output for
// the time-series tables, to local parquet or BigQuery.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/spasumarthi/food-delivery-datagen/pkg/db"
	"github.com/spasumarthi/food-delivery-datagen/pkg/logger"
	"go.uber.org/multierr"
)

// partitionDayFormat is the day value embedded in partition paths and day
// columns.
const partitionDayFormat = "2006-01-02"

// Sink receives one table's rows. Partitioned tables get one call per day
// with day set; flat tables get a single call with day empty.
type Sink interface {
	WriteTable(ctx context.Context, table Table, day string, rows [][]any) error
}

// Exporter streams every export table through a sink.
type Exporter struct {
	client *db.Client
	schema string
	sink   Sink
	logg   *logger.Logger
}

// New validates its dependencies and returns a ready exporter.
func New(client *db.Client, schema string, sink Sink, logg *logger.Logger) (*Exporter, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if schema == "" {
		return nil, fmt.Errorf("schema is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Exporter{client: client, schema: schema, sink: sink, logg: logg}, nil
}

// Run exports every table in order. A failing table does not stop the run;
// all failures are combined into the returned error.
func (e *Exporter) Run(ctx context.Context) error {
	var errs []error
	for _, t := range Tables(e.schema) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		stepCtx := e.logg.WithStep(ctx, t.Name)
		started := time.Now()

		n, err := e.exportTable(stepCtx, t)
		if err != nil {
			e.logg.Error(stepCtx, "table export failed", err)
			errs = append(errs, fmt.Errorf("exporting %s: %w", t.Name, err))
			continue
		}

		e.logg.Info(e.logg.WithFields(stepCtx, map[string]any{
			"rows": n,
			"took": time.Since(started).String(),
		}), "table exported")
	}
	return multierr.Combine(errs...)
}

func (e *Exporter) exportTable(ctx context.Context, t Table) (int, error) {
	rows, days, err := e.readRows(ctx, t)
	if err != nil {
		return 0, err
	}

	if !t.Partitioned() {
		return len(rows), e.sink.WriteTable(ctx, t, "", rows)
	}

	byDay := make(map[string][][]any)
	for i, row := range rows {
		byDay[days[i]] = append(byDay[days[i]], row)
	}

	ordered := make([]string, 0, len(byDay))
	for day := range byDay {
		ordered = append(ordered, day)
	}
	sort.Strings(ordered)

	for _, day := range ordered {
		if err := e.sink.WriteTable(ctx, t, day, byDay[day]); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// readRows scans the table query into native values (nil for SQL NULL). For
// partitioned tables the trailing part_ts column is consumed into the
// returned day slice instead of the row.
func (e *Exporter) readRows(ctx context.Context, t Table) ([][]any, []string, error) {
	sqlRows, err := e.client.Raw(ctx, t.Query).Rows()
	if err != nil {
		return nil, nil, fmt.Errorf("querying: %w", err)
	}
	defer sqlRows.Close()

	var (
		rows [][]any
		days []string
	)

	for sqlRows.Next() {
		dests := make([]any, 0, len(t.Columns)+1)
		for _, c := range t.Columns {
			dests = append(dests, scanDest(c.Kind))
		}

		var partTs sql.NullTime
		if t.Partitioned() {
			dests = append(dests, &partTs)
		}

		if err := sqlRows.Scan(dests...); err != nil {
			return nil, nil, fmt.Errorf("scanning: %w", err)
		}

		row := make([]any, len(t.Columns))
		for i := range t.Columns {
			row[i] = nativeValue(dests[i])
		}
		rows = append(rows, row)

		if t.Partitioned() {
			if !partTs.Valid {
				return nil, nil, fmt.Errorf("null partition timestamp in %s", t.Name)
			}
			days = append(days, partTs.Time.UTC().Format(partitionDayFormat))
		}
	}
	if err := sqlRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating: %w", err)
	}

	return rows, days, nil
}

func scanDest(k Kind) any {
	switch k {
	case KindInt64:
		return &sql.NullInt64{}
	case KindFloat64:
		return &sql.NullFloat64{}
	case KindBool:
		return &sql.NullBool{}
	case KindTime:
		return &sql.NullTime{}
	default:
		return &sql.NullString{}
	}
}

func nativeValue(dest any) any {
	switch v := dest.(type) {
	case *sql.NullInt64:
		if v.Valid {
			return v.Int64
		}
	case *sql.NullFloat64:
		if v.Valid {
			return v.Float64
		}
	case *sql.NullBool:
		if v.Valid {
			return v.Bool
		}
	case *sql.NullTime:
		if v.Valid {
			return v.Time.UTC()
		}
	case *sql.NullString:
		if v.Valid {
			return v.String
		}
	}
	return nil
}
