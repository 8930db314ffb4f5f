package seed

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/spasumarthi/food-delivery-datagen/internal/gen"
	"github.com/spasumarthi/food-delivery-datagen/pkg/db"
)

// idRange reads the inclusive identifier range of a loaded table; generators
// draw foreign keys from these ranges.
func idRange(ctx context.Context, client *db.Client, schema, table, column string) (gen.IDRange, error) {
	var row struct {
		Lo int64
		Hi int64
	}

	q := fmt.Sprintf(
		"SELECT COALESCE(MIN(%s), 0) AS lo, COALESCE(MAX(%s), 0) AS hi FROM %s.%s",
		pq.QuoteIdentifier(column), pq.QuoteIdentifier(column),
		pq.QuoteIdentifier(schema), pq.QuoteIdentifier(table),
	)
	if err := client.Raw(ctx, q).Scan(&row).Error; err != nil {
		return gen.IDRange{}, fmt.Errorf("reading id range for %s.%s: %w", schema, table, err)
	}
	return gen.IDRange{Lo: row.Lo, Hi: row.Hi}, nil
}

// addressLookup maps customer_id to that customer's addresses with their
// countries, so each order can pick a valid delivery address and derive its
// currency consistently.
func addressLookup(ctx context.Context, client *db.Client, schema string) (map[int64][]gen.AddressRef, error) {
	var rows []struct {
		AddressID  int64
		CustomerID int64
		Country    string
	}

	q := fmt.Sprintf(
		"SELECT address_id, customer_id, country FROM %s.customer_addresses ORDER BY customer_id, address_id",
		pq.QuoteIdentifier(schema),
	)
	if err := client.Raw(ctx, q).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("building address lookup: %w", err)
	}

	m := make(map[int64][]gen.AddressRef)
	for _, r := range rows {
		m[r.CustomerID] = append(m[r.CustomerID], gen.AddressRef{ID: r.AddressID, Country: r.Country})
	}
	return m, nil
}

// ensureCurrencies makes sure the AUD and INR reference rows exist, inserting
// them when absent, and returns their identifiers.
func ensureCurrencies(ctx context.Context, client *db.Client, schema string) (audID, inrID int64, err error) {
	var rows []struct {
		CurrencyID   int64
		CurrencyCode string
	}

	q := fmt.Sprintf(
		"SELECT currency_id, currency_code FROM %s.currencies WHERE currency_code IN (?, ?)",
		pq.QuoteIdentifier(schema),
	)
	if err := client.Raw(ctx, q, "AUD", "INR").Scan(&rows).Error; err != nil {
		return 0, 0, fmt.Errorf("reading currencies: %w", err)
	}

	existing := make(map[string]int64, len(rows))
	for _, r := range rows {
		existing[r.CurrencyCode] = r.CurrencyID
	}

	insert := func(code, name string) (int64, error) {
		var id int64
		stmt := fmt.Sprintf(
			"INSERT INTO %s.currencies (currency_code, currency_name, is_active) VALUES (?, ?, TRUE) RETURNING currency_id",
			pq.QuoteIdentifier(schema),
		)
		if err := client.Raw(ctx, stmt, code, name).Scan(&id).Error; err != nil {
			return 0, fmt.Errorf("inserting currency %s: %w", code, err)
		}
		return id, nil
	}

	audID, ok := existing["AUD"]
	if !ok {
		if audID, err = insert("AUD", "Australian Dollar"); err != nil {
			return 0, 0, err
		}
	}
	inrID, ok = existing["INR"]
	if !ok {
		if inrID, err = insert("INR", "Indian Rupee"); err != nil {
			return 0, 0, err
		}
	}
	return audID, inrID, nil
}

// maxOrderID returns the current highest order identifier (zero on an empty
// table); generated order ids continue from there.
func maxOrderID(ctx context.Context, client *db.Client, schema string) (int64, error) {
	var max int64
	q := fmt.Sprintf("SELECT COALESCE(MAX(order_id), 0) FROM %s.orders", pq.QuoteIdentifier(schema))
	if err := client.Raw(ctx, q).Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("reading max order id: %w", err)
	}
	return max, nil
}
