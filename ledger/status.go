package ledger

import "github.com/shopspring/decimal"

// DeriveStatus computes a sale's status from its paid and total amounts.
// It is pure and is the single source of truth for status: no code path
// may set a sale's status without calling it first.
//
//	paid <= 0            -> pending
//	0 < paid < total     -> partial
//	paid >= total        -> paid
func DeriveStatus(paid, total decimal.Decimal) Status {
	if paid.LessThanOrEqual(decimal.Zero) {
		return StatusPending
	}
	if paid.GreaterThanOrEqual(total) {
		return StatusPaid
	}
	return StatusPartial
}

// Outstanding returns the unpaid remainder of the sale (total - paid).
func (s *Sale) Outstanding() decimal.Decimal {
	return s.Total.Sub(s.Paid)
}
