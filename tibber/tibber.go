// Package tibber fetches today's hourly electricity prices from the Tibber
// GraphQL API.
package tibber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angas/electrack-go/hours"
	"github.com/angas/electrack-go/prices"
)

const apiUrl = "https://api.tibber.com/v1-beta/gql"

const pricesQuery = `{ viewer { homes { currentSubscription { priceInfo { today { total startsAt } }}}}}`

type Tibber struct {
	apiToken string
	url      string
	client   *http.Client
}

func New(apiToken string) *Tibber {
	return &Tibber{
		apiToken: apiToken,
		url:      apiUrl,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Tibber) Name() string { return "tibber" }

// FetchPrices returns today's hourly prices as seen by Tibber. Moments are
// normalized to UTC hour starts.
func (t *Tibber) FetchPrices(ctx context.Context) ([]prices.PricePoint, error) {
	reqBody, err := json.Marshal(queryRequest{Query: pricesQuery})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.url, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.apiToken))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	res, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got status %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	return parsePrices(body)
}

func parsePrices(body []byte) ([]prices.PricePoint, error) {
	var res queryResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(res.Errors) > 0 {
		messages := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			messages[i] = e.Message
		}
		return nil, fmt.Errorf("graphql error: %s", strings.Join(messages, "; "))
	}

	if len(res.Data.Viewer.Homes) == 0 {
		return nil, fmt.Errorf("no home in tibber response")
	}

	today := res.Data.Viewer.Homes[0].CurrentSubscription.PriceInfo.Today
	points := make([]prices.PricePoint, 0, len(today))
	for _, p := range today {
		startsAt, err := time.Parse(time.RFC3339, p.StartsAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price moment %q: %w", p.StartsAt, err)
		}
		points = append(points, prices.PricePoint{
			Moment: hours.Start(startsAt),
			Amount: p.Total,
		})
	}

	return points, nil
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Data struct {
		Viewer struct {
			Homes []struct {
				CurrentSubscription struct {
					PriceInfo struct {
						Today []pricePoint `json:"today"`
					} `json:"priceInfo"`
				} `json:"currentSubscription"`
			} `json:"homes"`
		} `json:"viewer"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

type pricePoint struct {
	Total    float64 `json:"total"`
	StartsAt string  `json:"startsAt"`
}
