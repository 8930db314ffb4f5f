package export

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Kind is the scan type of an exported column.
type Kind int

const (
	KindInt64 Kind = iota
	KindFloat64
	KindString
	KindBool
	KindTime
)

// Column describes one exported column.
type Column struct {
	Name     string
	Kind     Kind
	Nullable bool
}

// Table describes one export target. Partitioned tables carry the name of the
// derived day column and a query whose final selected expression, aliased
// part_ts, is the timestamp the day derives from.
type Table struct {
	Name            string
	Columns         []Column
	PartitionColumn string
	Query           string
}

// Partitioned reports whether rows are split into per-day partitions.
func (t Table) Partitioned() bool { return t.PartitionColumn != "" }

// Tables returns every export target against the given schema, flat tables
// first, matching the bronze layout downstream models read.
func Tables(schema string) []Table {
	s := pq.QuoteIdentifier(schema)

	flat := func(name string, cols []Column) Table {
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = pq.QuoteIdentifier(c.Name)
		}
		return Table{
			Name:    name,
			Columns: cols,
			Query:   fmt.Sprintf("SELECT %s FROM %s.%s", strings.Join(names, ", "), s, pq.QuoteIdentifier(name)),
		}
	}

	partitioned := func(name, partCol, sourceCol string, cols []Column) Table {
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = pq.QuoteIdentifier(c.Name)
		}
		return Table{
			Name:            name,
			Columns:         cols,
			PartitionColumn: partCol,
			Query: fmt.Sprintf("SELECT %s, %s AS part_ts FROM %s.%s",
				strings.Join(names, ", "), pq.QuoteIdentifier(sourceCol), s, pq.QuoteIdentifier(name)),
		}
	}

	tables := []Table{
		flat("customers", []Column{
			{Name: "customer_id", Kind: KindInt64},
			{Name: "full_name", Kind: KindString},
			{Name: "email", Kind: KindString},
			{Name: "phone", Kind: KindString, Nullable: true},
			{Name: "created_at", Kind: KindTime},
		}),
		flat("customer_addresses", []Column{
			{Name: "address_id", Kind: KindInt64},
			{Name: "customer_id", Kind: KindInt64},
			{Name: "label", Kind: KindString},
			{Name: "line_1", Kind: KindString},
			{Name: "line_2", Kind: KindString, Nullable: true},
			{Name: "city", Kind: KindString},
			{Name: "state", Kind: KindString},
			{Name: "country", Kind: KindString},
			{Name: "postal_code", Kind: KindString},
			{Name: "latitude", Kind: KindFloat64, Nullable: true},
			{Name: "longitude", Kind: KindFloat64, Nullable: true},
			{Name: "is_default", Kind: KindBool},
			{Name: "created_at", Kind: KindTime},
		}),
		flat("restaurant_brands", []Column{
			{Name: "brand_id", Kind: KindInt64},
			{Name: "brand_name", Kind: KindString},
			{Name: "is_active", Kind: KindBool},
			{Name: "created_at", Kind: KindTime},
		}),
		flat("restaurant_outlets", []Column{
			{Name: "restaurant_id", Kind: KindInt64},
			{Name: "brand_id", Kind: KindInt64},
			{Name: "outlet_name", Kind: KindString},
			{Name: "city", Kind: KindString},
			{Name: "delivery_zone", Kind: KindString},
			{Name: "address_line1", Kind: KindString},
			{Name: "postal_code", Kind: KindString},
			{Name: "is_active", Kind: KindBool},
			{Name: "created_at", Kind: KindTime},
		}),
		flat("menu_items", []Column{
			{Name: "menu_item_id", Kind: KindInt64},
			{Name: "restaurant_id", Kind: KindInt64},
			{Name: "item_name", Kind: KindString},
			{Name: "category", Kind: KindString},
			{Name: "price", Kind: KindFloat64},
			{Name: "is_available", Kind: KindBool},
			{Name: "created_at", Kind: KindTime},
		}),
		flat("couriers", []Column{
			{Name: "courier_id", Kind: KindInt64},
			{Name: "city", Kind: KindString},
			{Name: "vehicle", Kind: KindString},
			{Name: "is_active", Kind: KindBool},
			{Name: "created_at", Kind: KindTime},
		}),
		flat("delivery_assignments", []Column{
			{Name: "assignment_id", Kind: KindInt64},
			{Name: "order_id", Kind: KindInt64},
			{Name: "courier_id", Kind: KindInt64},
			{Name: "assigned_at", Kind: KindTime},
			{Name: "pickup_eta", Kind: KindTime},
			{Name: "dropoff_eta", Kind: KindTime},
		}),
		flat("ratings", []Column{
			{Name: "rating_id", Kind: KindInt64},
			{Name: "order_id", Kind: KindInt64},
			{Name: "customer_id", Kind: KindInt64},
			{Name: "restaurant_rating", Kind: KindInt64},
			{Name: "courier_rating", Kind: KindInt64, Nullable: true},
			{Name: "comment", Kind: KindString, Nullable: true},
			{Name: "created_at", Kind: KindTime},
		}),
		flat("currencies", []Column{
			{Name: "currency_id", Kind: KindInt64},
			{Name: "currency_code", Kind: KindString},
			{Name: "currency_name", Kind: KindString},
			{Name: "is_active", Kind: KindBool},
		}),
		partitioned("orders", "order_day", "order_placed_at", []Column{
			{Name: "order_id", Kind: KindInt64},
			{Name: "customer_id", Kind: KindInt64},
			{Name: "delivery_address_id", Kind: KindInt64},
			{Name: "restaurant_id", Kind: KindInt64},
			{Name: "order_placed_at", Kind: KindTime},
			{Name: "scheduled_delivery", Kind: KindTime, Nullable: true},
			{Name: "subtotal", Kind: KindFloat64},
			{Name: "tax", Kind: KindFloat64},
			{Name: "delivery_fee", Kind: KindFloat64},
			{Name: "discount", Kind: KindFloat64},
			{Name: "total_amount", Kind: KindFloat64},
			{Name: "payment_method", Kind: KindString},
			{Name: "payment_status", Kind: KindString},
			{Name: "currency_id", Kind: KindInt64},
		}),
		orderItemsTable(s),
		partitioned("order_status_events", "event_day", "event_ts", []Column{
			{Name: "event_id", Kind: KindInt64},
			{Name: "order_id", Kind: KindInt64},
			{Name: "event_ts", Kind: KindTime},
			{Name: "status", Kind: KindString},
			{Name: "actor", Kind: KindString},
			{Name: "notes", Kind: KindString, Nullable: true},
		}),
		partitioned("refunds", "refund_day", "refund_ts", []Column{
			{Name: "refund_id", Kind: KindInt64},
			{Name: "order_id", Kind: KindInt64},
			{Name: "refund_ts", Kind: KindTime},
			{Name: "refund_reason", Kind: KindString},
			{Name: "refund_amount", Kind: KindFloat64},
			{Name: "currency_id", Kind: KindInt64},
		}),
		partitioned("fx_rates", "rate_day", "rate_ts", []Column{
			{Name: "fx_rate_id", Kind: KindInt64},
			{Name: "base_currency_id", Kind: KindInt64},
			{Name: "quote_currency_id", Kind: KindInt64},
			{Name: "rate_ts", Kind: KindTime},
			{Name: "rate", Kind: KindFloat64},
			{Name: "source", Kind: KindString},
		}),
	}

	return tables
}

// orderItemsTable partitions line items by the day of the parent order, so the
// partition timestamp comes from a join rather than the table itself.
func orderItemsTable(quotedSchema string) Table {
	return Table{
		Name:            "order_items",
		PartitionColumn: "order_day",
		Columns: []Column{
			{Name: "order_item_id", Kind: KindInt64},
			{Name: "order_id", Kind: KindInt64},
			{Name: "menu_item_id", Kind: KindInt64},
			{Name: "quantity", Kind: KindInt64},
			{Name: "unit_price", Kind: KindFloat64},
			{Name: "line_total", Kind: KindFloat64},
		},
		Query: fmt.Sprintf(
			"SELECT oi.order_item_id, oi.order_id, oi.menu_item_id, oi.quantity, oi.unit_price, oi.line_total,"+
				" o.order_placed_at AS part_ts"+
				" FROM %s.order_items oi JOIN %s.orders o ON o.order_id = oi.order_id",
			quotedSchema, quotedSchema),
	}
}
