package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrMainWarehouseMissing is returned by GetOrCreateMainWarehouse when
// raiseIfMissing is set and no MAIN warehouse exists.
var ErrMainWarehouseMissing = errors.New("main warehouse not found")

// InsufficientStockError is the caller-fixable failure of the allocation
// engine: the requested quantity exceeds what the warehouse holds for the
// product. No mutation has taken place when it is returned.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough quantity available for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Shortfall is the amount the request exceeded availability by.
func (e *InsufficientStockError) Shortfall() int { return e.Requested - e.Available }

// ErrNonPositiveQuantity is returned by the allocation engine when asked to
// deduct a zero or negative quantity; a negative request would otherwise walk
// the partial-split branch and add stock.
var ErrNonPositiveQuantity = errors.New("deduction quantity must be positive")

// InvalidRemainingError is returned by UpdateItem when an explicit remaining
// quantity falls outside the batch's 0..quantity range.
type InvalidRemainingError struct {
	ItemID    uuid.UUID
	Remaining int
	Quantity  int
}

func (e *InvalidRemainingError) Error() string {
	return fmt.Sprintf("remaining quantity %d for batch %s must be between 0 and %d",
		e.Remaining, e.ItemID, e.Quantity)
}

// NegativeRemainingError is returned by UpdateItem when reducing a batch's
// total quantity would drive the remaining quantity below zero, i.e. more
// has already been consumed than the reduced quantity allows.
type NegativeRemainingError struct {
	ItemID   uuid.UUID
	Quantity int
	Deficit  int
}

func (e *NegativeRemainingError) Error() string {
	return fmt.Sprintf("cannot update quantity of batch %s to %d: consumed quantity exceeds it by %d",
		e.ItemID, e.Quantity, e.Deficit)
}

// ErrDiscountBelowProfit is returned when an offer's purchase discount does
// not cover the seller's profit margin, which would make the derived selling
// discount negative.
var ErrDiscountBelowProfit = errors.New("purchase discount must be greater than or equal to the profit percentage")

// InsufficientOfferError is returned when consuming an offer would drive its
// remaining amount below zero.
type InsufficientOfferError struct {
	OfferID uuid.UUID
	Deficit int
}

func (e *InsufficientOfferError) Error() string {
	return fmt.Sprintf("insufficient offer amount on offer %s: short by %d", e.OfferID, e.Deficit)
}

// IntegrityError marks a should-never-happen inconsistency, such as a
// zero-quantity batch surviving in an allocation candidate set. It is
// surfaced, never swallowed.
type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string { return "inventory integrity violation: " + e.Msg }
