package www

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/angas/electrack-go/prices"
)

// Availability is the gate in front of the store, ensuring today's prices
// are present before a query runs.
type Availability interface {
	EnsureToday(ctx context.Context) error
}

// NewTimeSlotsHandler answers GET /time-slots: for every requested duration
// the cheapest contiguous window between moment_start and moment_end,
// reported in the timezone of moment_start. Any gate or store failure
// short-circuits the whole request; no partial results.
func NewTimeSlotsHandler(logger *slog.Logger, gate Availability, repo prices.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := gate.EnsureToday(r.Context()); err != nil {
			logger.Error("handling time-slots request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		durations := parseDurations(r.URL, "durations")
		start, end := parseRange(r.URL)

		windows, err := repo.CheapestWindows(r.Context(), start.UTC(), end.UTC(), durations)
		if err != nil {
			logger.Error("handling time-slots request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Times are reported in the caller's zone, taken from moment_start.
		projected := make([]prices.PriceWindow, len(windows))
		for i, window := range windows {
			projected[i] = window.In(start.Location())
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(projected); err != nil {
			logger.Error("encoding time-slots response", slog.Any("error", err))
		}
	}
}
