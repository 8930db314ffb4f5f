package gen

import (
	"fmt"
	"time"
)

// BrandColumns is the loader column order for oltp.restaurant_brands.
var BrandColumns = []string{"brand_name", "is_active", "created_at"}

// Brands generates n restaurant brand rows spread over the trailing 3 years.
func Brands(seed int64, n int, now time.Time) RowSet {
	r := newRand(seed)
	base := now.Add(-3 * 365 * 24 * time.Hour)
	rows := make([][]any, 0, n)

	for i := 0; i < n; i++ {
		createdAt := base.Add(time.Duration(randInt(r, 0, 3*365)) * 24 * time.Hour)
		rows = append(rows, []any{
			fmt.Sprintf("Brand %d", i+1),
			r.Float64() < 0.97,
			createdAt,
		})
	}

	return RowSet{Table: "restaurant_brands", Columns: BrandColumns, Rows: rows}
}
