package gen

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testInputs(now time.Time) OrderInputs {
	addresses := map[int64][]AddressRef{
		1: {{ID: 11, Country: "Australia"}},
		2: {{ID: 21, Country: "India"}, {ID: 22, Country: "India"}},
		3: {{ID: 31, Country: "Australia"}},
		4: {{ID: 41, Country: "India"}},
		5: {{ID: 51, Country: "Australia"}, {ID: 52, Country: "Australia"}},
	}
	return OrderInputs{
		Customers:   IDRange{Lo: 1, Hi: 5},
		Outlets:     IDRange{Lo: 1, Hi: 4},
		MenuItems:   IDRange{Lo: 1, Hi: 40},
		Couriers:    IDRange{Lo: 1, Hi: 10},
		Addresses:   addresses,
		AudID:       1,
		InrID:       2,
		Now:         now,
		WindowStart: now.Add(-72 * time.Hour),
		WindowEnd:   now.Add(-8 * time.Hour),
	}
}

func TestNewOrderBuilderValidation(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(*OrderInputs)
	}{
		{"inverted window", func(in *OrderInputs) { in.WindowEnd = in.WindowStart.Add(-time.Hour) }},
		{"empty customer range", func(in *OrderInputs) { in.Customers = IDRange{} }},
		{"empty outlet range", func(in *OrderInputs) { in.Outlets = IDRange{Lo: 5, Hi: 4} }},
		{"missing addresses", func(in *OrderInputs) { in.Addresses = nil }},
		{"missing currencies", func(in *OrderInputs) { in.AudID = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := testInputs(now)
			tc.mutate(&in)
			if _, err := NewOrderBuilder(1, in); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if _, err := NewOrderBuilder(1, testInputs(now)); err != nil {
		t.Fatalf("unexpected error for valid inputs: %v", err)
	}
}

func TestBuildFinancialConsistency(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	builder, err := NewOrderBuilder(7, testInputs(now))
	if err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}

	for i := int64(1); i <= 300; i++ {
		o := builder.Build(i)

		subtotal := decimal.NewFromFloat(o.Order[6].(float64))
		tax := decimal.NewFromFloat(o.Order[7].(float64))
		fee := decimal.NewFromFloat(o.Order[8].(float64))
		discount := decimal.NewFromFloat(o.Order[9].(float64))
		total := decimal.NewFromFloat(o.Order[10].(float64))

		want := subtotal.Add(tax).Add(fee).Sub(discount).Round(2)
		if !total.Equal(want) {
			t.Fatalf("order %d: total %s != %s", i, total, want)
		}
		if total.IsNegative() || discount.IsNegative() {
			t.Fatalf("order %d: negative amount", i)
		}

		itemSum := decimal.Zero
		for _, item := range o.Items {
			qty := decimal.NewFromInt(int64(item[2].(int)))
			unit := decimal.NewFromFloat(item[3].(float64))
			line := decimal.NewFromFloat(item[4].(float64))
			if !line.Equal(unit.Mul(qty).Round(2)) {
				t.Fatalf("order %d: line total %s != %s * %s", i, line, unit, qty)
			}
			itemSum = itemSum.Add(line)
		}
		if !itemSum.Equal(subtotal) {
			t.Fatalf("order %d: items sum %s != subtotal %s", i, itemSum, subtotal)
		}
	}
}

func TestBuildDeliveredTimeline(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	builder, err := NewOrderBuilder(11, testInputs(now))
	if err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}

	limit := now.Add(-time.Minute)
	sawDelivered := false

	for i := int64(1); i <= 200; i++ {
		o := builder.Build(i)
		if !o.Delivered {
			continue
		}
		sawDelivered = true

		if len(o.Events) != 6 {
			t.Fatalf("order %d: expected 6 events, got %d", i, len(o.Events))
		}
		if o.Events[0][2].(string) != "PLACED" {
			t.Fatalf("order %d: first event %v", i, o.Events[0][2])
		}
		if o.Events[len(o.Events)-1][2].(string) != "DELIVERED" {
			t.Fatalf("order %d: last event %v", i, o.Events[len(o.Events)-1][2])
		}

		placedAt := o.Order[4].(time.Time)
		if !o.Events[0][1].(time.Time).Equal(placedAt) {
			t.Fatalf("order %d: first event not at placement time", i)
		}

		prev := time.Time{}
		for _, ev := range o.Events {
			ts := ev[1].(time.Time)
			if !ts.After(prev) {
				t.Fatalf("order %d: events not strictly increasing", i)
			}
			if ts.After(limit) {
				t.Fatalf("order %d: event %s after limit", i, ts)
			}
			prev = ts
		}

		if o.Assignment == nil {
			t.Fatalf("order %d: delivered order missing assignment", i)
		}
		assignedAt := o.Assignment[2].(time.Time)
		pickupETA := o.Assignment[3].(time.Time)
		dropoffETA := o.Assignment[4].(time.Time)
		if !assignedAt.Before(pickupETA) || !pickupETA.Before(dropoffETA) {
			t.Fatalf("order %d: assignment chain out of order", i)
		}
	}

	if !sawDelivered {
		t.Fatal("no delivered orders in sample")
	}
}

func TestBuildCanceledShape(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	builder, err := NewOrderBuilder(3, testInputs(now))
	if err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}

	sawCanceled := false
	for i := int64(1); i <= 300; i++ {
		o := builder.Build(i)
		if o.Delivered {
			continue
		}
		sawCanceled = true

		if len(o.Events) != 2 {
			t.Fatalf("order %d: expected 2 events, got %d", i, len(o.Events))
		}
		if o.Events[1][2].(string) != "CANCELED" {
			t.Fatalf("order %d: expected CANCELED, got %v", i, o.Events[1][2])
		}
		if o.Assignment != nil || o.Refund != nil || o.Rating != nil {
			t.Fatalf("order %d: canceled order has delivery side effects", i)
		}

		status := o.Order[12].(string)
		if status != "FAILED" && status != "PENDING" {
			t.Fatalf("order %d: unexpected payment status %s", i, status)
		}
	}

	if !sawCanceled {
		t.Fatal("no canceled orders in sample")
	}
}

func TestBuildRefundBounds(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	builder, err := NewOrderBuilder(29, testInputs(now))
	if err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}

	sawRefund := false
	for i := int64(1); i <= 2000; i++ {
		o := builder.Build(i)
		if o.Refund == nil {
			continue
		}
		sawRefund = true

		total := decimal.NewFromFloat(o.Order[10].(float64))
		amount := decimal.NewFromFloat(o.Refund[3].(float64))
		if amount.GreaterThan(total) {
			t.Fatalf("order %d: refund %s exceeds total %s", i, amount, total)
		}

		deliveredAt := o.Events[len(o.Events)-1][1].(time.Time)
		if !o.Refund[1].(time.Time).After(deliveredAt) {
			t.Fatalf("order %d: refund before delivery", i)
		}
	}

	if !sawRefund {
		t.Fatal("no refunds in sample")
	}
}

func TestBuildCurrencyFollowsAddressCountry(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	in := testInputs(now)
	builder, err := NewOrderBuilder(5, in)
	if err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}

	countryByAddr := map[int64]string{}
	for _, refs := range in.Addresses {
		for _, ref := range refs {
			countryByAddr[ref.ID] = ref.Country
		}
	}

	for i := int64(1); i <= 100; i++ {
		o := builder.Build(i)
		addrID := o.Order[2].(int64)
		currencyID := o.Order[13].(int64)

		want := in.InrID
		if countryByAddr[addrID] == "Australia" {
			want = in.AudID
		}
		if currencyID != want {
			t.Fatalf("order %d: currency %d for %s address", i, currencyID, countryByAddr[addrID])
		}
	}
}

func TestBuildDeterminism(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	a, err := NewOrderBuilder(42, testInputs(now))
	if err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}
	b, err := NewOrderBuilder(42, testInputs(now))
	if err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}

	for i := int64(1); i <= 50; i++ {
		if !reflect.DeepEqual(a.Build(i), b.Build(i)) {
			t.Fatalf("order %d diverged between identically seeded builders", i)
		}
	}
}
