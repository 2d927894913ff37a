package pricing

import (
	"sort"

	"github.com/pbs/booking-service/model"
	"github.com/shopspring/decimal"
)

// OfferThirdSeat50 gives 50% off the third-cheapest seat when booking three
// or more seats.
const OfferThirdSeat50 = "THIRD_SEAT_50"

const minSeatsForThirdSeatOffer = 3

var thirdSeatDiscountRate = decimal.NewFromFloat(0.5)

func applyOffer(offerCode string, seats []model.SeatInventory) decimal.Decimal {
	switch offerCode {
	case OfferThirdSeat50:
		return thirdSeatDiscount(seats)
	default:
		// Blank and unrecognized codes give no discount.
		return decimal.Zero
	}
}

func thirdSeatDiscount(seats []model.SeatInventory) decimal.Decimal {
	if len(seats) < minSeatsForThirdSeatOffer {
		return decimal.Zero
	}

	prices := make([]decimal.Decimal, len(seats))
	for i, seat := range seats {
		prices[i] = seat.Price
	}
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].LessThan(prices[j])
	})

	return prices[2].Mul(thirdSeatDiscountRate)
}
