// Package pricing computes booking amounts. All arithmetic runs on exact
// decimals; float seat prices never flow through repeated additions.
package pricing

import (
	"github.com/pbs/booking-service/model"
	"github.com/shopspring/decimal"
)

// Details holds the computed amounts for one seat set.
type Details struct {
	BaseAmount     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
}

// Engine prices a seat set with an optional offer code.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Quote computes base, discount and final amounts for the given seats. Seat
// prices are the current inventory prices, fetched fresh by the caller.
// Unknown or blank offer codes mean zero discount, not an error. The final
// amount never goes below zero regardless of the offer rule.
func (e *Engine) Quote(seats []model.SeatInventory, offerCode string) Details {
	base := decimal.Zero
	for _, seat := range seats {
		base = base.Add(seat.Price)
	}

	discount := applyOffer(offerCode, seats)
	if discount.GreaterThan(base) {
		discount = base
	}

	return Details{
		BaseAmount:     base,
		DiscountAmount: discount,
		FinalAmount:    base.Sub(discount),
	}
}
