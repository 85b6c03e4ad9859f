// Package pricing centralizes the discount→price and price×quantity
// derivations used by inventory batches, offers, and invoice lines.
// Every monetary result is rounded to 2 decimals immediately so that
// aggregate sums stay auditable (the same figure is produced no matter
// which code path computed it).
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountedUnitPrice derives a unit price from a public list price and a
// discount percentage: round(listPrice × (1 − discount/100), 2).
func DiscountedUnitPrice(listPrice, discountPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(hundred))
	return listPrice.Mul(factor).Round(2)
}

// SubTotal computes round(unitPrice × quantity, 2).
func SubTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// SellingData derives the selling discount and selling price for a seller
// with the given profit percentage: the seller keeps profitPct points of
// the purchase discount and passes the rest on to the buyer.
// Returns ok=false when the purchase discount is below the profit
// percentage (the listing would sell at a loss).
func SellingData(listPrice, purchaseDiscountPct, profitPct decimal.Decimal) (sellingDiscountPct, sellingPrice decimal.Decimal, ok bool) {
	if purchaseDiscountPct.LessThan(profitPct) {
		return decimal.Decimal{}, decimal.Decimal{}, false
	}
	sellingDiscountPct = purchaseDiscountPct.Sub(profitPct).Round(2)
	sellingPrice = DiscountedUnitPrice(listPrice, sellingDiscountPct)
	return sellingDiscountPct, sellingPrice, true
}
