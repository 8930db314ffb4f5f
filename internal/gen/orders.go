package gen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// Loader column orders for the order-centric tables.
var (
	OrderColumns = []string{
		"order_id", "customer_id", "delivery_address_id", "restaurant_id",
		"order_placed_at", "scheduled_delivery", "subtotal", "tax",
		"delivery_fee", "discount", "total_amount", "payment_method",
		"payment_status", "currency_id",
	}
	OrderItemColumns  = []string{"order_id", "menu_item_id", "quantity", "unit_price", "line_total"}
	EventColumns      = []string{"order_id", "event_ts", "status", "actor", "notes"}
	AssignmentColumns = []string{"order_id", "courier_id", "assigned_at", "pickup_eta", "dropoff_eta"}
	RefundColumns     = []string{"order_id", "refund_ts", "refund_reason", "refund_amount", "currency_id"}
	RatingColumns     = []string{"order_id", "customer_id", "restaurant_rating", "courier_rating", "comment", "created_at"}
)

// Lifecycle step names; the non-status steps carry the delivery assignment
// chain through the same clamp-then-repair pass as the events.
const (
	stepPlaced     = "PLACED"
	stepAccepted   = "ACCEPTED"
	stepPrepStart  = "PREP_START"
	stepReady      = "READY_FOR_PICKUP"
	stepAssigned   = "ASSIGNED"
	stepPickupETA  = "PICKUP_ETA"
	stepPickedUp   = "PICKED_UP"
	stepDropoffETA = "DROPOFF_ETA"
	stepDelivered  = "DELIVERED"
	stepCanceled   = "CANCELED"
)

const (
	actorCustomer   = "CUSTOMER"
	actorRestaurant = "RESTAURANT"
	actorCourier    = "COURIER"
	actorSystem     = "SYSTEM"
)

// IDRange is an inclusive identifier range read back from a loaded table.
type IDRange struct {
	Lo int64
	Hi int64
}

func (r IDRange) valid() bool { return r.Lo > 0 && r.Hi >= r.Lo }

// AddressRef ties a delivery address to the country that fixes the order
// currency.
type AddressRef struct {
	ID      int64
	Country string
}

// OrderInputs carries everything the builder needs from previously loaded
// reference data.
type OrderInputs struct {
	Customers IDRange
	Outlets   IDRange
	MenuItems IDRange
	Couriers  IDRange

	// Addresses maps customer_id to that customer's addresses; every id in
	// the Customers range must have at least one entry.
	Addresses map[int64][]AddressRef

	AudID int64
	InrID int64

	Now         time.Time
	WindowStart time.Time
	WindowEnd   time.Time
}

// BuiltOrder is one order row plus its dependent rows, in loader column
// order.
type BuiltOrder struct {
	Order      []any
	Items      [][]any
	Events     [][]any
	Assignment []any // nil unless delivered
	Refund     []any // nil unless refunded
	Rating     []any // nil unless rated
	Delivered  bool
}

// OrderBuilder produces internally consistent synthetic orders: monotonic
// lifecycle timelines, exact financial totals, and foreign keys drawn from
// the loaded reference ranges.
type OrderBuilder struct {
	r  *rand.Rand
	in OrderInputs
}

// NewOrderBuilder validates the reference inputs and the placement window
// before any order is generated.
func NewOrderBuilder(seed int64, in OrderInputs) (*OrderBuilder, error) {
	if !in.WindowEnd.After(in.WindowStart) {
		return nil, fmt.Errorf("invalid orders window: end %s must be after start %s", in.WindowEnd, in.WindowStart)
	}
	if !in.Customers.valid() || !in.Outlets.valid() || !in.MenuItems.valid() || !in.Couriers.valid() {
		return nil, fmt.Errorf("reference id ranges are incomplete; load reference entities first")
	}
	if len(in.Addresses) == 0 {
		return nil, fmt.Errorf("address lookup is empty")
	}
	if in.AudID == 0 || in.InrID == 0 {
		return nil, fmt.Errorf("currency ids are required")
	}
	return &OrderBuilder{r: newRand(seed), in: in}, nil
}

// Build generates the order with the given explicit identifier. Successive
// calls advance the builder's random stream; the same seed and inputs yield
// the same sequence.
func (b *OrderBuilder) Build(orderID int64) BuiltOrder {
	r := b.r

	customerID := randInt64(r, b.in.Customers.Lo, b.in.Customers.Hi)
	addr := choice(r, b.in.Addresses[customerID])
	restaurantID := randInt64(r, b.in.Outlets.Lo, b.in.Outlets.Hi)

	windowSeconds := int64(b.in.WindowEnd.Sub(b.in.WindowStart) / time.Second)
	placedAt := b.in.WindowStart.Add(time.Duration(randInt64(r, 0, windowSeconds)) * time.Second)

	// Items drive subtotal, which drives the totals check constraint.
	nItems := randInt(r, 1, 5)
	items := make([][]any, 0, nItems)
	subtotal := decimal.Zero
	for i := 0; i < nItems; i++ {
		menuItemID := randInt64(r, b.in.MenuItems.Lo, b.in.MenuItems.Hi)
		qty := randInt(r, 1, 3)

		// unit_price is the paid price, not necessarily the current menu price
		unitPrice := money2(uniform(r, 5.0, 35.0))
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(qty)))

		subtotal = subtotal.Add(lineTotal)
		items = append(items, []any{orderID, menuItemID, qty, dec2f(unitPrice), dec2f(lineTotal)})
	}

	tax := subtotal.Mul(decimal.NewFromFloat(uniform(r, 0.05, 0.12))).Round(2)
	deliveryFee := money2(uniform(r, 1.0, 8.0))

	// Cap the discount so the total can never go negative.
	subF, _ := subtotal.Float64()
	discount := money2(uniform(r, 0, subF*0.20))
	if ceiling := subtotal.Add(tax).Add(deliveryFee); discount.GreaterThan(ceiling) {
		discount = ceiling
	}

	// Must satisfy orders_total_consistency exactly after rounding.
	total := subtotal.Add(tax).Add(deliveryFee).Sub(discount)

	paymentMethod := choice(r, paymentMethods)
	currencyID := b.currencyFor(addr.Country)

	out := BuiltOrder{
		Items:     items,
		Delivered: r.Float64() < 0.92,
	}

	var paymentStatus string
	if out.Delivered {
		paymentStatus = "PAID"
		tl := b.deliveredTimeline(placedAt)

		courierID := randInt64(r, b.in.Couriers.Lo, b.in.Couriers.Hi)
		out.Assignment = []any{
			orderID, courierID,
			tl.At(stepAssigned), tl.At(stepPickupETA), tl.At(stepDropoffETA),
		}

		for _, name := range []string{stepPlaced, stepAccepted, stepPrepStart, stepReady, stepPickedUp, stepDelivered} {
			out.Events = append(out.Events, []any{orderID, tl.At(name), name, actorFor(name), nil})
		}

		deliveredAt := tl.At(stepDelivered)

		if r.Float64() < 0.035 {
			refundTs := deliveredAt.Add(minutes(randInt(r, 5, 180)))
			refundAmount := total.Mul(decimal.NewFromFloat(uniform(r, 0.05, 0.80))).Round(2)
			out.Refund = []any{orderID, refundTs, choice(r, refundReasons), dec2f(refundAmount), currencyID}
			if r.Float64() < 0.75 {
				paymentStatus = "REFUNDED"
			}
		}

		if r.Float64() < 0.55 {
			ratingTs := deliveredAt.Add(minutes(randInt(r, 2, 240)))
			restaurantRating := randInt(r, 1, 5)
			var courierRating any
			if r.Float64() < 0.85 {
				courierRating = randInt(r, 1, 5)
			}
			var comment any
			if r.Float64() >= 0.75 {
				comment = "Tasty and fast delivery."
			}
			out.Rating = []any{orderID, customerID, restaurantRating, courierRating, comment, ratingTs}
		}
	} else {
		paymentStatus = choice(r, []string{"FAILED", "PENDING"})
		tl := b.canceledTimeline(placedAt)
		for _, name := range []string{stepPlaced, stepCanceled} {
			out.Events = append(out.Events, []any{orderID, tl.At(name), name, actorFor(name), nil})
		}
	}

	out.Order = []any{
		orderID, customerID, addr.ID, restaurantID,
		placedAt, nil,
		dec2f(subtotal), dec2f(tax), dec2f(deliveryFee), dec2f(discount), dec2f(total),
		paymentMethod, paymentStatus, currencyID,
	}

	return out
}

func (b *OrderBuilder) currencyFor(country string) int64 {
	// AU addresses map to AUD, everything else to INR for this dataset.
	if country == "Australia" {
		return b.in.AudID
	}
	return b.in.InrID
}

// deliveredTimeline draws the full delivered lifecycle including the courier
// assignment chain, then clamps and repairs it against now minus one minute.
func (b *OrderBuilder) deliveredTimeline(placedAt time.Time) Timeline {
	r := b.r

	accepted := placedAt.Add(minutes(randInt(r, 1, 6)))
	prepStart := accepted.Add(minutes(randInt(r, 2, 10)))
	ready := prepStart.Add(minutes(randInt(r, 5, 20)))

	assigned := ready.Add(minutes(randInt(r, 1, 8)))
	pickupETA := assigned.Add(minutes(randInt(r, 10, 25)))
	pickedUp := pickupETA.Add(minutes(randInt(r, -3, 3)))

	dropoffETA := pickupETA.Add(minutes(randInt(r, 10, 35)))
	delivered := dropoffETA.Add(minutes(randInt(r, -3, 3)))

	tl := Timeline{
		{Name: stepPlaced, At: placedAt},
		{Name: stepAccepted, At: accepted},
		{Name: stepPrepStart, At: prepStart},
		{Name: stepReady, At: ready},
		{Name: stepAssigned, At: assigned},
		{Name: stepPickupETA, At: pickupETA},
		{Name: stepPickedUp, At: pickedUp},
		{Name: stepDropoffETA, At: dropoffETA},
		{Name: stepDelivered, At: delivered},
	}

	return tl.ClampRepair(b.latestAllowed())
}

// canceledTimeline is the minimal PLACED -> CANCELED lifecycle.
func (b *OrderBuilder) canceledTimeline(placedAt time.Time) Timeline {
	canceled := placedAt.Add(minutes(randInt(b.r, 2, 30)))

	tl := Timeline{
		{Name: stepPlaced, At: placedAt},
		{Name: stepCanceled, At: canceled},
	}

	return tl.ClampRepair(b.latestAllowed())
}

func (b *OrderBuilder) latestAllowed() time.Time {
	return b.in.Now.Add(-time.Minute)
}

func actorFor(status string) string {
	switch status {
	case stepPlaced:
		return actorCustomer
	case stepAccepted, stepPrepStart, stepReady:
		return actorRestaurant
	case stepPickedUp:
		return actorCourier
	default:
		return actorSystem
	}
}
