package prices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/electrack-go/hours"
	"golang.org/x/sync/singleflight"
)

// Gate makes sure the store holds prices for a day before that day is
// queried. It is the cache-aside guard in front of the repository: on a
// miss it fetches from the external provider and writes the batch back.
//
// Fills for the same day are serialized through a singleflight group, so
// concurrent first-requests of the day trigger a single external fetch.
// Should a fill still lose a race (e.g. against the scheduled refresh
// task), the store's duplicate rejection is treated as "already filled"
// rather than a failure.
type Gate struct {
	logger   *slog.Logger
	repo     Repository
	provider Provider
	fills    singleflight.Group
	timeout  time.Duration
}

func NewGate(logger *slog.Logger, repo Repository, provider Provider, timeout time.Duration) *Gate {
	return &Gate{
		logger:   logger,
		repo:     repo,
		provider: provider,
		timeout:  timeout,
	}
}

// EnsureToday guarantees prices for the current UTC day are available.
func (g *Gate) EnsureToday(ctx context.Context) error {
	return g.EnsureDate(ctx, time.Now())
}

// EnsureDate guarantees prices for the UTC day of date are available.
// When the store already has the day this never calls the provider.
func (g *Gate) EnsureDate(ctx context.Context, date time.Time) error {
	available, err := g.repo.HasPricesForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("price availability check: %w", err)
	}
	if available {
		return nil
	}

	day := hours.DayKey(date)
	_, err, _ = g.fills.Do(day, func() (any, error) {
		return nil, g.fill(ctx, date, day)
	})
	return err
}

func (g *Gate) fill(ctx context.Context, date time.Time, day string) error {
	// A caller disconnect must not abort a fetch that is about to commit,
	// otherwise the day's series could stay incomplete until the next
	// request. The fill gets its own deadline instead.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()

	// Re-check under the singleflight: a concurrent request may have
	// filled the day while this one was waiting.
	available, err := g.repo.HasPricesForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("price availability check: %w", err)
	}
	if available {
		return nil
	}

	g.logger.Info("prices not yet fetched", slog.String("day", day), slog.String("provider", g.provider.Name()))

	points, err := g.provider.FetchPrices(ctx)
	if err != nil {
		return fmt.Errorf("fetching prices from %s: %w", g.provider.Name(), err)
	}

	g.logger.Info("fetched prices", slog.Int("count", len(points)), slog.String("provider", g.provider.Name()))

	if err := g.repo.SavePrices(ctx, points, g.provider.Name()); err != nil {
		if errors.Is(err, ErrDuplicatePrice) {
			g.logger.Warn("prices already stored by a concurrent fill", slog.String("day", day))
			return nil
		}
		return fmt.Errorf("persisting prices from %s: %w", g.provider.Name(), err)
	}

	return nil
}
