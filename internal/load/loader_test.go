package load

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spasumarthi/food-delivery-datagen/internal/gen"
)

type copyCall struct {
	schema  string
	table   string
	columns []string
	rows    [][]any
}

type fakeStore struct {
	copies []copyCall
	execs  []string
}

func (f *fakeStore) CopyFrom(_ context.Context, schema, table string, columns []string, rows [][]any) (int64, error) {
	f.copies = append(f.copies, copyCall{schema: schema, table: table, columns: columns, rows: rows})
	return int64(len(rows)), nil
}

func (f *fakeStore) Exec(_ context.Context, query string, _ ...any) error {
	f.execs = append(f.execs, query)
	return nil
}

func (f *fakeStore) copiesTo(table string) []copyCall {
	var out []copyCall
	for _, c := range f.copies {
		if c.table == table {
			out = append(out, c)
		}
	}
	return out
}

func builtOrder(orderID int64, delivered bool) gen.BuiltOrder {
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	o := gen.BuiltOrder{
		Order: []any{
			orderID, int64(1), int64(11), int64(2), ts, nil,
			20.0, 2.0, 3.0, 0.0, 25.0, "CARD", "PAID", int64(1),
		},
		Items:     [][]any{{orderID, int64(5), 2, 10.0, 20.0}},
		Events:    [][]any{{orderID, ts, "PLACED", "CUSTOMER", nil}},
		Delivered: delivered,
	}
	if delivered {
		o.Assignment = []any{orderID, int64(3), ts, ts.Add(time.Minute), ts.Add(2 * time.Minute)}
	}
	return o
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, "oltp", 10, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := New(&fakeStore{}, "", 10, nil); err == nil {
		t.Fatal("expected error for empty schema")
	}
	if _, err := New(&fakeStore{}, "oltp", 0, nil); err == nil {
		t.Fatal("expected error for zero batch size")
	}
}

func TestLoadStreamsRowSet(t *testing.T) {
	store := &fakeStore{}
	loader, err := New(store, "oltp", 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rs := gen.RowSet{Table: "customers", Columns: []string{"full_name"}, Rows: [][]any{{"A"}, {"B"}}}
	if err := loader.Load(context.Background(), rs); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if len(store.copies) != 1 {
		t.Fatalf("expected one copy, got %d", len(store.copies))
	}
	if store.copies[0].schema != "oltp" || store.copies[0].table != "customers" {
		t.Fatalf("unexpected copy target %s.%s", store.copies[0].schema, store.copies[0].table)
	}
}

func TestAddOrderFlushesAtBatchSize(t *testing.T) {
	store := &fakeStore{}
	loader, err := New(store, "oltp", 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := loader.AddOrder(ctx, builtOrder(1, true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.copies) != 0 {
		t.Fatal("flush must not happen below batch size")
	}

	if err := loader.AddOrder(ctx, builtOrder(2, false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	staged := store.copiesTo("orders_staging")
	if len(staged) != 1 {
		t.Fatalf("expected one staging copy, got %d", len(staged))
	}
	if len(staged[0].rows) != 2 {
		t.Fatalf("expected 2 staged orders, got %d", len(staged[0].rows))
	}

	// only order 1 was delivered, so a single assignment row goes through
	assignments := store.copiesTo("delivery_assignments")
	if len(assignments) != 1 || len(assignments[0].rows) != 1 {
		t.Fatalf("unexpected assignment copies: %+v", assignments)
	}
}

func TestFlushOrdersMergesThroughStaging(t *testing.T) {
	store := &fakeStore{}
	loader, err := New(store, "oltp", 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := loader.AddOrder(ctx, builtOrder(1, true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := loader.FlushOrders(ctx); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}

	var merge string
	truncates := 0
	setvals := 0
	for _, q := range store.execs {
		switch {
		case strings.Contains(q, "ON CONFLICT"):
			merge = q
		case strings.HasPrefix(q, "TRUNCATE"):
			truncates++
		case strings.Contains(q, "setval"):
			setvals++
		}
	}

	if merge == "" {
		t.Fatal("expected a staged merge statement")
	}
	if !strings.Contains(merge, `ON CONFLICT (order_id) DO NOTHING`) {
		t.Fatalf("merge must ignore id conflicts: %s", merge)
	}
	if !strings.Contains(merge, `"oltp"."orders_staging"`) || !strings.Contains(merge, `"oltp"."orders"`) {
		t.Fatalf("merge must read staging into orders: %s", merge)
	}
	if truncates != 2 {
		t.Fatalf("staging must be truncated before and after, got %d truncates", truncates)
	}
	if setvals != len(orderSequences) {
		t.Fatalf("expected %d sequence realignments, got %d", len(orderSequences), setvals)
	}

	// a second flush with an empty buffer is a no-op
	execsBefore := len(store.execs)
	if err := loader.FlushOrders(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.execs) != execsBefore {
		t.Fatal("empty flush must not touch the store")
	}
}

func TestResetTruncatesEverything(t *testing.T) {
	store := &fakeStore{}
	loader, err := New(store, "oltp", 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := loader.Reset(context.Background()); err != nil {
		t.Fatalf("unexpected reset error: %v", err)
	}

	if len(store.execs) != 1 {
		t.Fatalf("expected one statement, got %d", len(store.execs))
	}
	stmt := store.execs[0]
	if !strings.Contains(stmt, "RESTART IDENTITY CASCADE") {
		t.Fatalf("reset must restart identities: %s", stmt)
	}
	for _, table := range resetTables {
		if !strings.Contains(stmt, `"`+table+`"`) {
			t.Fatalf("reset misses %s: %s", table, stmt)
		}
	}
}
