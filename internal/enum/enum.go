package enum

// ── Order types (CHECK constrained in DB) ──

const (
	OrderTypeDineIn = "DINE_IN"
	OrderTypeZomato = "ZOMATO"
)

// ── Payment methods (DINE_IN orders only, CHECK constrained in DB) ──

const (
	PaymentMethodCash = "CASH"
	PaymentMethodUPI  = "UPI"
)

// ── Counter columns on products ──
// The only fields the adjust endpoint may touch; the database layer
// whitelists against this set before interpolating a column name.

const (
	CounterStock  = "stock"
	CounterAdmin  = "admin"
	CounterChef   = "chef"
	CounterSales  = "sales"
	CounterZomato = "zomato"
)

// CounterFields lists every adjustable counter column.
var CounterFields = []string{CounterStock, CounterAdmin, CounterChef, CounterSales, CounterZomato}

// IsCounterField reports whether name is an adjustable counter column.
func IsCounterField(name string) bool {
	for _, f := range CounterFields {
		if f == name {
			return true
		}
	}
	return false
}
