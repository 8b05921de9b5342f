// Package task holds the cron-scheduled background jobs: the daily price
// prefetch and database maintenance.
package task

import (
	"context"
	"log/slog"

	"github.com/angas/electrack-go/config"
	"github.com/angas/electrack-go/database"
	"github.com/angas/electrack-go/prices"
	"github.com/robfig/cron/v3"
)

type Tasks struct {
	cron             *cron.Cron
	cnfg             *config.AppConfig
	PriceRefreshTask func()
	MaintenanceTask  func()
}

func NewTasks(db *database.Database, providers []prices.Provider, cnfg *config.AppConfig) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:             cron.New(),
		cnfg:             cnfg,
		PriceRefreshTask: NewPriceRefreshTask(logger.With(slog.String("task", "price_refresh")), db, providers, cnfg.EnergyPrice),
		MaintenanceTask:  NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.EnergyPrice.GetRefreshAt(), t.PriceRefreshTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("30 2 * * *", t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
