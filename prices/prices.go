// Package prices holds the domain of hourly electricity prices: the price
// point and price window types, the optimal-window selection, and the
// availability gate that makes sure today's prices are in the store before
// a query runs.
package prices

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoPrices means the requested range contains no price points at all.
	ErrNoPrices = errors.New("no prices in the requested range")

	// ErrDuplicatePrice means a price for the same provider and moment is
	// already stored. The store rejects these instead of overwriting.
	ErrDuplicatePrice = errors.New("price already stored for provider and moment")

	// ErrUnknownProvider means the provider name has no row in the store.
	ErrUnknownProvider = errors.New("unknown price provider")
)

// PricePoint is one hour's electricity price. Moment is the UTC-aligned
// start of the hour. Points are immutable once persisted.
type PricePoint struct {
	Moment time.Time `json:"moment"`
	Amount float64   `json:"amount"`
}

// PriceWindow is the cheapest contiguous run of hours found for one
// requested duration. EndsAt is the last second of the final included hour,
// not an open bound. AveragePrice is formatted with exactly three fractional
// digits.
type PriceWindow struct {
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	AveragePrice string    `json:"average_price"`
}

// In projects the window into loc for display. The underlying instants are
// unchanged, so converting the result back to UTC recovers the original
// window. The average is zone-independent and passes through.
func (w PriceWindow) In(loc *time.Location) PriceWindow {
	return PriceWindow{
		StartsAt:     w.StartsAt.In(loc),
		EndsAt:       w.EndsAt.In(loc),
		AveragePrice: w.AveragePrice,
	}
}

// Provider is an external source of one day's hourly prices.
type Provider interface {
	Name() string
	FetchPrices(ctx context.Context) ([]PricePoint, error)
}

// Repository is the durable price-series store.
type Repository interface {
	// HasPricesForDate reports whether at least one price point exists on
	// the given UTC calendar date.
	HasPricesForDate(ctx context.Context, date time.Time) (bool, error)

	// SavePrices persists a batch of points tagged with the named provider.
	// The batch is atomic. Returns ErrUnknownProvider if the name is not
	// registered and ErrDuplicatePrice on a (provider, moment) collision.
	SavePrices(ctx context.Context, points []PricePoint, providerName string) error

	// CheapestWindows returns, for each duration, the cheapest contiguous
	// window of price points between start and end (both inclusive).
	// Returns ErrNoPrices when the range holds no points.
	CheapestWindows(ctx context.Context, start, end time.Time, durations []int) ([]PriceWindow, error)
}
