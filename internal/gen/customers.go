package gen

import (
	"fmt"
	"strings"
	"time"
)

// CustomerColumns is the loader column order for oltp.customers.
var CustomerColumns = []string{"full_name", "email", "phone", "created_at"}

// Customers generates n customer rows. Phone numbers are dummy
// ("DUMMY-" + 10 digits) and NULL for ~35% of customers.
func Customers(seed int64, n int, now time.Time) RowSet {
	r := newRand(seed)
	rows := make([][]any, 0, n)

	for i := 0; i < n; i++ {
		createdAt := randMinutesBack(r, now, 2*365)
		fullName := fmt.Sprintf("Customer %d", i+1)
		email := fmt.Sprintf("customer%d@example.com", i+1)

		var phone any
		if r.Float64() < 0.65 {
			var sb strings.Builder
			sb.WriteString("DUMMY-")
			for j := 0; j < 10; j++ {
				sb.WriteByte(byte('0' + randInt(r, 0, 9)))
			}
			phone = sb.String()
		}

		rows = append(rows, []any{fullName, email, phone, createdAt})
	}

	return RowSet{Table: "customers", Columns: CustomerColumns, Rows: rows}
}
