package gen

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRateColumns is the loader column order for oltp.fx_rates.
var FxRateColumns = []string{"base_currency_id", "quote_currency_id", "rate_ts", "rate", "source"}

const fxSource = "SIMULATED"

// FxRates generates `days` daily AUD<->INR ticks at midnight UTC, both
// directions per day, as a small random walk around a plausible baseline.
// Midnight ticks keep the downstream day-partitioning predictable.
func FxRates(seed int64, days int, audID, inrID int64, now time.Time) RowSet {
	r := newRand(seed)

	end := now.UTC().Truncate(24 * time.Hour)
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	rows := make([][]any, 0, 2*days)
	rate := 55.0
	for d := 0; d < days; d++ {
		ts := start.Add(time.Duration(d) * 24 * time.Hour)

		// small daily drift keeps rates within a reasonable band
		rate *= 1.0 + uniform(r, -0.002, 0.002)
		audToInr := decimal.NewFromFloat(rate).Round(6)
		inrToAud := decimal.NewFromFloat(1.0 / rate).Round(8)

		rows = append(rows, []any{audID, inrID, ts, audToInr.InexactFloat64(), fxSource})
		rows = append(rows, []any{inrID, audID, ts, inrToAud.InexactFloat64(), fxSource})
	}

	return RowSet{Table: "fx_rates", Columns: FxRateColumns, Rows: rows}
}
