package gen

import "time"

// CourierColumns is the loader column order for oltp.couriers.
var CourierColumns = []string{"city", "vehicle", "is_active", "created_at"}

// Couriers generates n courier rows across both country city pools.
func Couriers(seed int64, n int, now time.Time) RowSet {
	r := newRand(seed)

	cities := make([]string, 0, len(auCities)+len(inCities))
	for _, c := range auCities {
		cities = append(cities, c.City)
	}
	for _, c := range inCities {
		cities = append(cities, c.City)
	}

	rows := make([][]any, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, []any{
			choice(r, cities),
			choice(r, vehicles),
			r.Float64() < 0.97,
			randMinutesBack(r, now, 2*365),
		})
	}

	return RowSet{Table: "couriers", Columns: CourierColumns, Rows: rows}
}
