package nordpool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPrices(t *testing.T) {
	body := `{"multiAreaEntries":[
		{"deliveryStart":"2024-06-15T00:00:00Z","entryPerArea":{"SE3":282.1,"SE4":300.0}},
		{"deliveryStart":"2024-06-15T01:00:00Z","entryPerArea":{"SE3":278.7}},
		{"deliveryStart":"2024-06-15T01:00:00Z","entryPerArea":{"SE3":999.9}},
		{"deliveryStart":"2024-06-15T02:00:00Z","entryPerArea":{"SE4":123.4}}
	]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer server.Close()

	np := New("SE3")
	np.url = server.URL

	points, err := np.FetchPrices(context.Background())
	if err != nil {
		t.Fatalf("FetchPrices() unexpected error: %v", err)
	}

	// The duplicate 01:00 entry is skipped and the SE4-only hour has no
	// price for our area.
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if !points[0].Moment.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first moment got %v", points[0].Moment)
	}
	if points[0].Amount != 0.2821 {
		t.Errorf("expected per-kWh price 0.2821, got %v", points[0].Amount)
	}
	if points[1].Amount != 0.2787 {
		t.Errorf("expected per-kWh price 0.2787, got %v", points[1].Amount)
	}
}

func TestFetchPricesNotYetPublished(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	np := New("SE3")
	np.url = server.URL

	points, err := np.FetchPrices(context.Background())
	if err != nil {
		t.Fatalf("FetchPrices() unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points before publication, got %d", len(points))
	}
}
