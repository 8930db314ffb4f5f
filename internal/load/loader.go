// Package load streams generated row sets into Postgres with COPY, in
// parent-before-child order, and keeps serial sequences aligned with the
// explicit identifiers the generator assigns.
package load

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/spasumarthi/food-delivery-datagen/internal/gen"
	"github.com/spasumarthi/food-delivery-datagen/pkg/logger"
)

// Store is the storage surface the loader needs: COPY streaming plus plain
// statement execution.
type Store interface {
	CopyFrom(ctx context.Context, schema, table string, columns []string, rows [][]any) (int64, error)
	Exec(ctx context.Context, query string, args ...any) error
}

// Sequence names a serial column whose backing sequence is realigned after
// direct-ID inserts.
type Sequence struct {
	Table  string
	Column string
}

// orderSequences lists every table the orders pass inserts into with
// generator-assigned or serial identifiers.
var orderSequences = []Sequence{
	{Table: "orders", Column: "order_id"},
	{Table: "order_items", Column: "order_item_id"},
	{Table: "order_status_events", Column: "event_id"},
	{Table: "refunds", Column: "refund_id"},
	{Table: "ratings", Column: "rating_id"},
}

// resetTables is the reverse dependency order for TRUNCATE ... CASCADE.
var resetTables = []string{
	"ratings", "refunds", "delivery_assignments", "order_status_events",
	"order_items", "orders_staging", "orders", "menu_items",
	"restaurant_outlets", "restaurant_brands", "customer_addresses",
	"customers", "couriers", "fx_rates", "currencies",
}

const stagingTable = "orders_staging"

// Loader buffers order batches and bulk-loads row sets over a Store.
type Loader struct {
	store     Store
	schema    string
	batchSize int
	logg      *logger.Logger

	orders      [][]any
	items       [][]any
	events      [][]any
	assignments [][]any
	refunds     [][]any
	ratings     [][]any
}

// New builds a loader targeting the given schema.
func New(store Store, schema string, batchSize int, logg *logger.Logger) (*Loader, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if schema == "" {
		return nil, fmt.Errorf("schema is required")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	return &Loader{
		store:     store,
		schema:    schema,
		batchSize: batchSize,
		logg:      logg,
	}, nil
}

// Load streams one complete row set into its table.
func (l *Loader) Load(ctx context.Context, rs gen.RowSet) error {
	n, err := l.store.CopyFrom(ctx, l.schema, rs.Table, rs.Columns, rs.Rows)
	if err != nil {
		return fmt.Errorf("loading %s: %w", rs.Table, err)
	}
	if l.logg != nil {
		l.logg.Info(l.logg.WithFields(ctx, map[string]any{"table": rs.Table, "rows": n}), "rows copied")
	}
	return nil
}

// Reset truncates every dataset table and restarts identities.
func (l *Loader) Reset(ctx context.Context) error {
	qualified := make([]string, len(resetTables))
	for i, t := range resetTables {
		qualified[i] = l.qualify(t)
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(qualified, ", "))
	if err := l.store.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("resetting tables: %w", err)
	}
	return nil
}

// AddOrder buffers one built order with its dependent rows, flushing the
// whole batch once the order buffer reaches the configured size.
func (l *Loader) AddOrder(ctx context.Context, o gen.BuiltOrder) error {
	l.orders = append(l.orders, o.Order)
	l.items = append(l.items, o.Items...)
	l.events = append(l.events, o.Events...)
	if o.Assignment != nil {
		l.assignments = append(l.assignments, o.Assignment)
	}
	if o.Refund != nil {
		l.refunds = append(l.refunds, o.Refund)
	}
	if o.Rating != nil {
		l.ratings = append(l.ratings, o.Rating)
	}

	if len(l.orders) >= l.batchSize {
		return l.FlushOrders(ctx)
	}
	return nil
}

// FlushOrders loads the buffered batch: orders go through the staging table
// so explicit order ids can be merged conflict-ignored, children follow their
// parent, and sequences are realigned afterwards.
func (l *Loader) FlushOrders(ctx context.Context) error {
	if len(l.orders) == 0 {
		return nil
	}

	if err := l.store.Exec(ctx, fmt.Sprintf("TRUNCATE %s", l.qualify(stagingTable))); err != nil {
		return fmt.Errorf("clearing staging: %w", err)
	}

	if _, err := l.store.CopyFrom(ctx, l.schema, stagingTable, gen.OrderColumns, l.orders); err != nil {
		return fmt.Errorf("staging orders: %w", err)
	}

	if err := l.store.Exec(ctx, l.mergeOrdersSQL()); err != nil {
		return fmt.Errorf("merging orders: %w", err)
	}

	if err := l.store.Exec(ctx, fmt.Sprintf("TRUNCATE %s", l.qualify(stagingTable))); err != nil {
		return fmt.Errorf("clearing staging: %w", err)
	}

	children := []gen.RowSet{
		{Table: "order_items", Columns: gen.OrderItemColumns, Rows: l.items},
		{Table: "order_status_events", Columns: gen.EventColumns, Rows: l.events},
		{Table: "delivery_assignments", Columns: gen.AssignmentColumns, Rows: l.assignments},
		{Table: "refunds", Columns: gen.RefundColumns, Rows: l.refunds},
		{Table: "ratings", Columns: gen.RatingColumns, Rows: l.ratings},
	}
	for _, rs := range children {
		if len(rs.Rows) == 0 {
			continue
		}
		if err := l.Load(ctx, rs); err != nil {
			return err
		}
	}

	if err := l.RealignSequences(ctx, orderSequences); err != nil {
		return err
	}

	l.orders = l.orders[:0]
	l.items = l.items[:0]
	l.events = l.events[:0]
	l.assignments = l.assignments[:0]
	l.refunds = l.refunds[:0]
	l.ratings = l.ratings[:0]

	return nil
}

// RealignSequences moves each serial sequence to the current max identifier
// so later inserts without explicit ids cannot collide.
func (l *Loader) RealignSequences(ctx context.Context, seqs []Sequence) error {
	for _, s := range seqs {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s.%s','%s'), (SELECT COALESCE(MAX(%s), 1) FROM %s))",
			l.schema, s.Table, s.Column,
			pq.QuoteIdentifier(s.Column), l.qualify(s.Table),
		)
		if err := l.store.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("realigning sequence for %s.%s: %w", s.Table, s.Column, err)
		}
	}
	return nil
}

func (l *Loader) mergeOrdersSQL() string {
	cols := make([]string, len(gen.OrderColumns))
	for i, c := range gen.OrderColumns {
		cols[i] = pq.QuoteIdentifier(c)
	}
	colList := strings.Join(cols, ", ")

	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (order_id) DO NOTHING",
		l.qualify("orders"), colList, colList, l.qualify(stagingTable),
	)
}

func (l *Loader) qualify(table string) string {
	return pq.QuoteIdentifier(l.schema) + "." + pq.QuoteIdentifier(table)
}
