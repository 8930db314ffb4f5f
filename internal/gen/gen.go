// Package gen produces the synthetic food-delivery dataset. Every generator
// is a pure function of its seed (plus previously loaded ID ranges), so a run
// against a fresh schema is reproducible row for row.
package gen

import (
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// RowSet is a batch of generated rows for one table, in the exact column
// order the loader streams them.
type RowSet struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// Len returns the number of buffered rows.
func (rs RowSet) Len() int { return len(rs.Rows) }

type cityState struct {
	City  string
	State string
}

var (
	auCities = []cityState{
		{"Sydney", "NSW"},
		{"Melbourne", "VIC"},
		{"Brisbane", "QLD"},
		{"Perth", "WA"},
		{"Adelaide", "SA"},
	}
	inCities = []cityState{
		{"Hyderabad", "TS"},
		{"Bengaluru", "KA"},
		{"Mumbai", "MH"},
		{"Delhi", "DL"},
		{"Chennai", "TN"},
	}

	paymentMethods = []string{"CARD", "DIGITAL_WALLET", "CONTACTLESS_NFC", "CASH", "PAYPAL", "BANK_TRANSFER"}
	vehicles       = []string{"BIKE", "SCOOTER", "CAR"}
	refundReasons  = []string{"LATE_DELIVERY", "MISSING_ITEM", "WRONG_ITEM", "QUALITY_ISSUE", "OTHER"}
	categories     = []string{"Burgers", "Pizza", "Indian", "Chinese", "Desserts", "Beverages", "Salads", "Snacks"}
	addressLabels  = []string{"HOME", "WORK", "OTHER"}
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// randInt returns a uniform int in [lo, hi].
func randInt(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

// randInt64 returns a uniform int64 in [lo, hi].
func randInt64(r *rand.Rand, lo, hi int64) int64 {
	return lo + r.Int63n(hi-lo+1)
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func choice[T any](r *rand.Rand, pool []T) T {
	return pool[r.Intn(len(pool))]
}

// money2 snaps a float draw onto an exact two-decimal amount. All money
// arithmetic downstream stays in decimal so the totals identity the schema
// checks holds exactly.
func money2(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(2)
}

// dec2f converts an already-rounded decimal to the float64 handed to the
// loader; the shortest float representation of a 2dp amount round-trips
// exactly through numeric columns.
func dec2f(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// roundN rounds a float to nd decimals with a tiny positive epsilon, keeping
// binary representation artifacts out of coordinate-style columns.
func roundN(x float64, nd int) float64 {
	shift := math.Pow10(nd)
	return math.Round((x+1e-12)*shift) / shift
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// randMinutesBack picks a timestamp uniformly inside the trailing window of
// the given number of days, anchored at now.
func randMinutesBack(r *rand.Rand, now time.Time, days int) time.Time {
	base := now.Add(-time.Duration(days) * 24 * time.Hour)
	return base.Add(minutes(randInt(r, 0, days*24*60)))
}
