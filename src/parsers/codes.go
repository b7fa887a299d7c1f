// src/parsers/codes.go
package parsers

// Broker transaction codes. These are the primary classification key for both
// the statement sign inference and the downstream cashflow rules.
const (
	CodeBuy          = "BI" // buy trade
	CodeSell         = "SI" // sell trade
	CodeCoupon       = "CM" // cash movement: dividends and coupon payments
	CodeOtherReceipt = "OR" // other receipts, incl. genuine cash deposits
	CodeDebitMemo    = "DM"
	CodeInterest     = "IN"
)
