package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/electrack-go/hours"
	"github.com/angas/electrack-go/prices"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Moments are stored as RFC3339 UTC, so lexicographic order is
// chronological order and a day is a simple closed interval.
const momentLayout = time.RFC3339

var _ prices.Repository = (*Database)(nil)

// HasPricesForDate reports whether any provider's prices exist on the UTC
// calendar date of the given instant.
func (d *Database) HasPricesForDate(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := d.read.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM price_point WHERE moment >= ? AND moment <= ?`,
		hours.StartOfDay(date).Format(momentLayout),
		hours.EndOfDay(date).Format(momentLayout)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting prices for date: %w", err)
	}
	return count > 0, nil
}

// SavePrices persists a batch of price points tagged with the named
// provider. The whole batch commits or none of it does, so a day can never
// be half-filled. A (provider, moment) collision rolls the batch back and
// returns prices.ErrDuplicatePrice.
func (d *Database) SavePrices(ctx context.Context, points []prices.PricePoint, providerName string) error {
	var providerId int64
	err := d.read.QueryRowContext(ctx,
		`SELECT id FROM provider WHERE name = ? LIMIT 1`, providerName).Scan(&providerId)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("provider %q: %w", providerName, prices.ErrUnknownProvider)
	}
	if err != nil {
		return fmt.Errorf("resolving provider %q: %w", providerName, err)
	}

	d.logger.Info("persisting prices",
		slog.Int("count", len(points)),
		slog.String("provider", providerName))

	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting price insert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO price_point (provider_id, moment, amount) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing price insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		moment := hours.Start(p.Moment)
		if _, err := stmt.ExecContext(ctx, providerId, moment.Format(momentLayout), p.Amount); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("price for %s at %s: %w",
					providerName, moment.Format(momentLayout), prices.ErrDuplicatePrice)
			}
			return fmt.Errorf("inserting price at %s: %w", moment.Format(momentLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing price batch: %w", err)
	}
	return nil
}

// PricesInRange returns all points with start <= moment <= end, ordered by
// moment ascending. Points from different providers at the same moment are
// all returned.
func (d *Database) PricesInRange(ctx context.Context, start, end time.Time) ([]prices.PricePoint, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT moment, amount FROM price_point
		WHERE moment >= ? AND moment <= ?
		ORDER BY moment ASC`,
		start.UTC().Format(momentLayout),
		end.UTC().Format(momentLayout))
	if err != nil {
		return nil, fmt.Errorf("fetching prices in range: %w", err)
	}
	defer rows.Close()

	var points []prices.PricePoint
	for rows.Next() {
		var moment string
		var p prices.PricePoint
		if err := rows.Scan(&moment, &p.Amount); err != nil {
			return nil, fmt.Errorf("scanning price row: %w", err)
		}
		p.Moment, err = time.Parse(momentLayout, moment)
		if err != nil {
			return nil, fmt.Errorf("parsing price moment %q: %w", moment, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading price rows: %w", err)
	}

	return points, nil
}

// CheapestWindows reads the range once and runs the window selection for
// every requested duration.
func (d *Database) CheapestWindows(ctx context.Context, start, end time.Time, durations []int) ([]prices.PriceWindow, error) {
	points, err := d.PricesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return prices.CheapestWindows(points, durations)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) &&
		(se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}
