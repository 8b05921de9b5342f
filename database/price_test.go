package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/angas/electrack-go/prices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "electrack-test.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func dayOfPoints(amounts ...float64) []prices.PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]prices.PricePoint, len(amounts))
	for i, a := range amounts {
		points[i] = prices.PricePoint{Moment: start.Add(time.Duration(i) * time.Hour), Amount: a}
	}
	return points
}

func TestSavePricesAndExistence(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	has, err := db.HasPricesForDate(ctx, day)
	require.NoError(t, err)
	assert.False(t, has, "fresh store must be empty")

	require.NoError(t, db.SavePrices(ctx, dayOfPoints(0.30, 0.10, 0.50), "tibber"))

	has, err = db.HasPricesForDate(ctx, day)
	require.NoError(t, err)
	assert.True(t, has)

	// The neighbouring date stays unaffected.
	has, err = db.HasPricesForDate(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSavePricesUnknownProvider(t *testing.T) {
	db := newTestDatabase(t)

	err := db.SavePrices(context.Background(), dayOfPoints(0.30), "acme")
	require.ErrorIs(t, err, prices.ErrUnknownProvider)
}

func TestSavePricesRejectsDuplicates(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	points := dayOfPoints(0.30, 0.10)

	require.NoError(t, db.SavePrices(ctx, points, "tibber"))

	err := db.SavePrices(ctx, points, "tibber")
	require.ErrorIs(t, err, prices.ErrDuplicatePrice)
}

func TestSavePricesBatchIsAtomic(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.SavePrices(ctx, dayOfPoints(0.30, 0.10, 0.50), "tibber"))

	// A batch that collides on its last point must leave nothing behind,
	// including the fresh points before the collision.
	later := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	batch := []prices.PricePoint{
		{Moment: later, Amount: 0.70},
		{Moment: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 0.70}, // duplicate
	}
	require.ErrorIs(t, db.SavePrices(ctx, batch, "tibber"), prices.ErrDuplicatePrice)

	got, err := db.PricesInRange(ctx, later, later)
	require.NoError(t, err)
	assert.Empty(t, got, "rolled-back batch must not leave partial rows")
}

func TestSavePricesPerProviderUniqueness(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	points := dayOfPoints(0.30)

	// Uniqueness is per provider, not global: two providers may both hold
	// a point at the same moment.
	require.NoError(t, db.SavePrices(ctx, points, "tibber"))
	require.NoError(t, db.SavePrices(ctx, points, "nordpool"))

	got, err := db.PricesInRange(ctx, points[0].Moment, points[0].Moment)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPricesInRangeBoundsAndOrder(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.SavePrices(ctx, dayOfPoints(0.30, 0.10, 0.50, 0.20), "tibber"))

	start := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)
	got, err := db.PricesInRange(ctx, start, end)
	require.NoError(t, err)

	require.Len(t, got, 2, "bounds are inclusive")
	assert.True(t, got[0].Moment.Equal(start))
	assert.True(t, got[1].Moment.Equal(end))
	assert.Equal(t, 0.10, got[0].Amount)
	assert.Equal(t, 0.50, got[1].Amount)
}

func TestCheapestWindowsFromStore(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.SavePrices(ctx, dayOfPoints(0.30, 0.10, 0.50), "tibber"))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)

	windows, err := db.CheapestWindows(ctx, start, end, []int{2})
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.True(t, windows[0].StartsAt.Equal(start))
	assert.True(t, windows[0].EndsAt.Equal(time.Date(2024, 1, 1, 1, 59, 59, 0, time.UTC)))
	assert.Equal(t, "0.200", windows[0].AveragePrice)
}

func TestCheapestWindowsEmptyRange(t *testing.T) {
	db := newTestDatabase(t)

	_, err := db.CheapestWindows(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC),
		[]int{1, 4})
	require.ErrorIs(t, err, prices.ErrNoPrices)
}
