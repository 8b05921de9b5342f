// Package nordpool fetches day-ahead prices from the Nordpool data portal.
// It serves as the fallback when the primary provider is unavailable.
package nordpool

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/angas/electrack-go/hours"
	"github.com/angas/electrack-go/prices"
)

const apiUrl = "https://dataportal-api.nordpoolgroup.com"

type Nordpool struct {
	area   string
	url    string
	client *http.Client
}

func New(area string) *Nordpool {
	return &Nordpool{
		area:   area,
		url:    apiUrl,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Nordpool) Name() string { return "nordpool" }

// FetchPrices returns today's hourly prices for the configured delivery
// area, normalized from SEK/MWh to SEK/kWh.
func (n *Nordpool) FetchPrices(ctx context.Context) ([]prices.PricePoint, error) {
	url := fmt.Sprintf("%s/api/DayAheadPrices?date=%s&market=DayAhead&deliveryArea=%s&currency=SEK",
		n.url,
		time.Now().UTC().Format("2006-01-02"),
		n.area)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// The portal answers 404 before the day's auction results exist.
		return []prices.PricePoint{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data dayAheadResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	points := make([]prices.PricePoint, 0, len(data.MultiAreaEntries))
	for _, entry := range data.MultiAreaEntries {
		moment := hours.Start(entry.DeliveryStart)
		if slices.ContainsFunc(points, func(p prices.PricePoint) bool { return p.Moment.Equal(moment) }) {
			continue
		}
		price, ok := entry.EntryPerArea[n.area]
		if ok {
			points = append(points, prices.PricePoint{
				Moment: moment,
				Amount: normalizePrice(price),
			})
		}
	}

	return points, nil
}

// normalizePrice converts from per-MWh to per-kWh and rounds to 4 decimals.
func normalizePrice(price float64) float64 {
	precision := math.Pow(10, float64(4))
	return math.Round(price*precision/1e3) / precision
}

type dayAheadResponse struct {
	MultiAreaEntries []struct {
		DeliveryStart time.Time          `json:"deliveryStart"`
		EntryPerArea  map[string]float64 `json:"entryPerArea"`
	} `json:"multiAreaEntries"`
}
