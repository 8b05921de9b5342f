package www

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angas/electrack-go/hours"
)

// parseDurations reads a comma-separated list of whole hours. Entries that
// do not parse are skipped.
func parseDurations(u *url.URL, key string) []int {
	var durations []int
	for _, s := range strings.Split(u.Query().Get(key), ",") {
		if d, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			durations = append(durations, d)
		}
	}
	return durations
}

// parseRange reads moment_start and moment_end as RFC3339. A missing or
// malformed bound falls back to today's full UTC day. The returned start
// keeps its original zone offset for result projection.
func parseRange(u *url.URL) (time.Time, time.Time) {
	now := time.Now()

	start := hours.StartOfDay(now)
	if t, err := time.Parse(time.RFC3339, u.Query().Get("moment_start")); err == nil {
		start = t
	}

	end := hours.EndOfDay(now)
	if t, err := time.Parse(time.RFC3339, u.Query().Get("moment_end")); err == nil {
		end = t
	}

	return start, end
}
