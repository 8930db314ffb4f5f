package gen

import (
	"fmt"
	"time"
)

// AddressColumns is the loader column order for oltp.customer_addresses.
var AddressColumns = []string{
	"customer_id", "label", "line_1", "line_2", "city", "state", "country",
	"postal_code", "latitude", "longitude", "is_default", "created_at",
}

var (
	auCityCodes  = codePool("AU_CITY_%03d", 50)
	auStateCodes = codePool("AU_STATE_%02d", 10)
	inCityCodes  = codePool("IN_CITY_%03d", 50)
	inStateCodes = codePool("IN_STATE_%02d", 10)
)

func codePool(format string, n int) []string {
	pool := make([]string, n)
	for i := range pool {
		pool[i] = fmt.Sprintf(format, i+1)
	}
	return pool
}

// Addresses generates 1-3 addresses per customer in [custLo, custHi], skewed
// toward one, with exactly one address flagged default per customer. The
// country is fixed once per customer so the order currency derivation stays
// coherent.
func Addresses(seed int64, custLo, custHi int64, now time.Time) RowSet {
	r := newRand(seed)
	rows := make([][]any, 0, custHi-custLo+1)

	for customerID := custLo; customerID <= custHi; customerID++ {
		var nAddr int
		switch p := r.Float64(); {
		case p < 0.70:
			nAddr = 1
		case p < 0.95:
			nAddr = 2
		default:
			nAddr = 3
		}

		isAU := r.Float64() < 0.55
		country := "India"
		cityPool, statePool := inCityCodes, inStateCodes
		if isAU {
			country = "Australia"
			cityPool, statePool = auCityCodes, auStateCodes
		}

		defaultIdx := r.Intn(nAddr)

		for j := 0; j < nAddr; j++ {
			city := choice(r, cityPool)
			state := choice(r, statePool)
			label := choice(r, addressLabels)

			line1 := fmt.Sprintf("ADDR_%05d_%02d", customerID, j+1)
			var line2 any
			if r.Float64() < 0.25 {
				line2 = fmt.Sprintf("UNIT_%03d", randInt(r, 1, 999))
			}

			postalCode := fmt.Sprintf("%d", randInt(r, 100000, 999999))
			if isAU {
				postalCode = fmt.Sprintf("%d", randInt(r, 1000, 9999))
			}

			lat := roundN(uniform(r, -10.0, 10.0), 6)
			lon := roundN(uniform(r, -10.0, 10.0), 6)

			createdAt := randMinutesBack(r, now, 2*365)

			rows = append(rows, []any{
				customerID, label, line1, line2, city, state, country,
				postalCode, lat, lon, j == defaultIdx, createdAt,
			})
		}
	}

	return RowSet{Table: "customer_addresses", Columns: AddressColumns, Rows: rows}
}
