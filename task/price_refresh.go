package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/angas/electrack-go/config"
	"github.com/angas/electrack-go/prices"
)

// NewPriceRefreshTask prefetches today's prices on a schedule so that most
// requests find the store already filled. The availability gate stays the
// correctness backstop for requests arriving before the schedule fires.
// Providers are tried in order until one delivers.
func NewPriceRefreshTask(logger *slog.Logger, repo prices.Repository, providers []prices.Provider, cnfg config.AppConfigEnergyPrice) func() {
	if len(providers) == 0 {
		panic("no energy price providers")
	}

	return func() { runPriceRefresh(logger, repo, providers, cnfg.GetFetchTimeout()) }
}

func runPriceRefresh(logger *slog.Logger, repo prices.Repository, providers []prices.Provider, timeout time.Duration) {
	logger.Debug("running price refresh task...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	available, err := repo.HasPricesForDate(ctx, time.Now())
	if err != nil {
		logger.Error("price refresh task error, availability check", slog.Any("error", err))
		return
	}
	if available {
		logger.Debug("prices for today already stored")
		return
	}

	for _, provider := range providers {
		points, err := provider.FetchPrices(ctx)
		if err != nil {
			logger.Error("price refresh task error, fetching prices",
				slog.String("provider", provider.Name()),
				slog.Any("error", err))
			continue
		}
		if len(points) == 0 {
			logger.Warn("provider returned no prices", slog.String("provider", provider.Name()))
			continue
		}

		if err := repo.SavePrices(ctx, points, provider.Name()); err != nil {
			if errors.Is(err, prices.ErrDuplicatePrice) {
				// A request-driven fill got there first.
				logger.Debug("prices already stored", slog.String("provider", provider.Name()))
				return
			}
			logger.Error("price refresh task error, persisting prices", slog.Any("error", err))
			return
		}

		logger.Info("price refresh task done",
			slog.String("provider", provider.Name()),
			slog.Int("noOfHoursUpdated", len(points)))
		return
	}

	logger.Error("price refresh task error, no prices fetched from any provider")
}
