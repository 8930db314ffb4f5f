package gen

import (
	"fmt"
	"time"
)

// OutletColumns is the loader column order for oltp.restaurant_outlets.
var OutletColumns = []string{
	"brand_id", "outlet_name", "city", "delivery_zone",
	"address_line1", "postal_code", "is_active", "created_at",
}

// maxNameAttempts bounds the regenerate-on-collision loop for the
// (brand, name, city, zone) uniqueness key; past it a deterministic suffix
// disambiguates instead.
const maxNameAttempts = 8

type outletKey struct {
	brandID int64
	name    string
	city    string
	zone    string
}

// Outlets generates n outlet rows, guaranteeing uniqueness on the
// (brand_id, outlet_name, city, delivery_zone) tuple the schema enforces.
func Outlets(seed int64, n int, brandLo, brandHi int64, now time.Time) RowSet {
	r := newRand(seed)
	base := now.Add(-3 * 365 * 24 * time.Hour)

	used := make(map[outletKey]struct{}, n)
	rows := make([][]any, 0, n)

	for i := 0; i < n; i++ {
		brandID := randInt64(r, brandLo, brandHi)
		isAU := r.Float64() < 0.55
		pool := inCities
		if isAU {
			pool = auCities
		}
		city := choice(r, pool).City
		zone := fmt.Sprintf("Z%d", randInt(r, 1, 25))

		name := fmt.Sprintf("Outlet %d", randInt(r, 1, 50000))
		key := outletKey{brandID, name, city, zone}
		for attempt := 1; ; attempt++ {
			if _, taken := used[key]; !taken {
				break
			}
			if attempt < maxNameAttempts {
				name = fmt.Sprintf("Outlet %d", randInt(r, 1, 50000))
			} else {
				name = fmt.Sprintf("%s #%d", name, attempt)
			}
			key = outletKey{brandID, name, city, zone}
		}
		used[key] = struct{}{}

		addressLine1 := fmt.Sprintf("%d Main Rd", randInt(r, 1, 999))
		postalCode := fmt.Sprintf("%d", randInt(r, 100000, 999999))
		if isAU {
			postalCode = fmt.Sprintf("%d", randInt(r, 2000, 7999))
		}

		createdAt := base.Add(time.Duration(randInt(r, 0, 3*365)) * 24 * time.Hour)

		rows = append(rows, []any{
			brandID, name, city, zone, addressLine1, postalCode,
			r.Float64() < 0.98, createdAt,
		})
	}

	return RowSet{Table: "restaurant_outlets", Columns: OutletColumns, Rows: rows}
}
