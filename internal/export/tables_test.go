package export

import (
	"strings"
	"testing"
)

func tableByName(t *testing.T, name string) Table {
	t.Helper()
	for _, tbl := range Tables("oltp") {
		if tbl.Name == name {
			return tbl
		}
	}
	t.Fatalf("table %s not defined", name)
	return Table{}
}

func TestTablesCoverage(t *testing.T) {
	tables := Tables("oltp")
	if len(tables) != 14 {
		t.Fatalf("expected 14 export tables, got %d", len(tables))
	}

	partitioned := map[string]string{
		"orders":              "order_day",
		"order_items":         "order_day",
		"order_status_events": "event_day",
		"refunds":             "refund_day",
		"fx_rates":            "rate_day",
	}

	for _, tbl := range tables {
		day, want := partitioned[tbl.Name]
		if want != tbl.Partitioned() {
			t.Fatalf("%s: partitioned=%v", tbl.Name, tbl.Partitioned())
		}
		if want && tbl.PartitionColumn != day {
			t.Fatalf("%s: partition column %s", tbl.Name, tbl.PartitionColumn)
		}
	}
}

func TestTableQueries(t *testing.T) {
	for _, tbl := range Tables("oltp") {
		if !strings.Contains(tbl.Query, `"oltp"`) {
			t.Fatalf("%s: query not schema qualified: %s", tbl.Name, tbl.Query)
		}
		if tbl.Partitioned() != strings.Contains(tbl.Query, "AS part_ts") {
			t.Fatalf("%s: partition timestamp selection mismatch: %s", tbl.Name, tbl.Query)
		}
	}

	// line items derive their day from the parent order
	items := tableByName(t, "order_items")
	if !strings.Contains(items.Query, "JOIN") || !strings.Contains(items.Query, "o.order_placed_at AS part_ts") {
		t.Fatalf("order_items must join orders for the partition day: %s", items.Query)
	}

	for _, c := range items.Columns {
		if c.Name == "order_day" {
			t.Fatal("partition column must not appear in the column list")
		}
	}
}
