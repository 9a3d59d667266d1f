package booking

import (
	"fmt"
	"time"
)

// Quote is the result of pricing a rental period.
type Quote struct {
	DurationDays int
	TotalCents   int64
	DepositCents int64
}

// PricingStrategy defines the interface for pricing a rental.
type PricingStrategy interface {
	// Quote prices a rental of the given daily rate over [startAt, endAt).
	Quote(dailyRateCents int64, startAt, endAt time.Time) (Quote, error)
}

// StandardPricingStrategy implements the default marketplace pricing:
// total = daily rate x whole days (partial days round up), plus a refundable
// deposit proportional to the daily rate.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Deposit is three days of rate, capped so long rentals of cheap vehicles
// do not produce outsized holds.
const (
	depositDaysOfRate = 3
	depositCapCents   = 150000
	maxRentalDays     = 90
)

// Long rentals earn a discount on the total. Tiers are checked from the
// longest down; the first match applies.
var discountTiers = []struct {
	minDays    int
	percentOff int64
}{
	{30, 15},
	{7, 5},
}

// Quote computes the rental total and deposit in minor currency units.
func (s *StandardPricingStrategy) Quote(dailyRateCents int64, startAt, endAt time.Time) (Quote, error) {
	if dailyRateCents <= 0 {
		return Quote{}, fmt.Errorf("daily rate must be positive")
	}
	if startAt.IsZero() || endAt.IsZero() || !startAt.Before(endAt) {
		return Quote{}, fmt.Errorf("start must be before end")
	}

	hours := endAt.Sub(startAt).Hours()
	days := int(hours / 24)
	if hours > float64(days)*24 {
		days++
	}
	if days > maxRentalDays {
		return Quote{}, fmt.Errorf("rental duration exceeds %d days", maxRentalDays)
	}

	total := dailyRateCents * int64(days)
	for _, tier := range discountTiers {
		if days >= tier.minDays {
			total -= total * tier.percentOff / 100
			break
		}
	}

	deposit := dailyRateCents * depositDaysOfRate
	if deposit > depositCapCents {
		deposit = depositCapCents
	}

	return Quote{
		DurationDays: days,
		TotalCents:   total,
		DepositCents: deposit,
	}, nil
}
