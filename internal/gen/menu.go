package gen

import (
	"fmt"
	"time"
)

// MenuItemColumns is the loader column order for oltp.menu_items.
var MenuItemColumns = []string{
	"restaurant_id", "item_name", "category", "price", "is_available", "created_at",
}

// MenuItems generates perOutlet items for every outlet in [outletLo, outletHi].
func MenuItems(seed int64, outletLo, outletHi int64, perOutlet int, now time.Time) RowSet {
	r := newRand(seed)
	rows := make([][]any, 0, int(outletHi-outletLo+1)*perOutlet)

	for restaurantID := outletLo; restaurantID <= outletHi; restaurantID++ {
		for j := 0; j < perOutlet; j++ {
			rows = append(rows, []any{
				restaurantID,
				fmt.Sprintf("Item %d-%d", restaurantID, j+1),
				choice(r, categories),
				dec2f(money2(uniform(r, 3.5, 32.0))),
				r.Float64() < 0.95,
				randMinutesBack(r, now, 2*365),
			})
		}
	}

	return RowSet{Table: "menu_items", Columns: MenuItemColumns, Rows: rows}
}
