package prices

import (
	"slices"

	"github.com/angas/electrack-go/hours"
	"github.com/shopspring/decimal"
)

// maxFollowingHours caps the lookahead at a full provider day.
const maxFollowingHours = 23

// CheapestWindow selects the contiguous run of hours with the lowest mean
// price. Durations count inclusively, so a 1-hour window uses no following
// points; anything beyond a day is clamped.
//
// Candidate windows are built per UTC calendar day and never reach into the
// next day's points. A candidate near the end of a day that has fewer hours
// left than requested still ranks with the hours it has. Averages are
// rounded to three decimals before ranking and ties go to the earliest
// start.
func CheapestWindow(points []PricePoint, durationHours int) (PriceWindow, error) {
	if len(points) == 0 {
		return PriceWindow{}, ErrNoPrices
	}

	following := durationHours - 1
	if following < 0 {
		following = 0
	}
	if following > maxFollowingHours {
		following = maxFollowingHours
	}

	ordered := slices.Clone(points)
	slices.SortStableFunc(ordered, func(a, b PricePoint) int {
		return a.Moment.Compare(b.Moment)
	})

	var best PriceWindow
	var bestAvg decimal.Decimal
	found := false

	for i, p := range ordered {
		last := i
		for j := i + 1; j <= i+following && j < len(ordered); j++ {
			if !hours.SameDay(ordered[j].Moment, p.Moment) {
				break
			}
			last = j
		}

		sum := decimal.Zero
		for k := i; k <= last; k++ {
			sum = sum.Add(decimal.NewFromFloat(ordered[k].Amount))
		}
		avg := sum.Div(decimal.NewFromInt(int64(last - i + 1))).Round(3)

		if !found || avg.LessThan(bestAvg) {
			found = true
			bestAvg = avg
			best = PriceWindow{
				StartsAt:     p.Moment,
				EndsAt:       hours.End(ordered[last].Moment),
				AveragePrice: avg.StringFixed(3),
			}
		}
	}

	return best, nil
}

// CheapestWindows evaluates every duration independently against the same
// point set. The first duration that finds no data fails the whole call.
func CheapestWindows(points []PricePoint, durations []int) ([]PriceWindow, error) {
	windows := make([]PriceWindow, 0, len(durations))
	for _, d := range durations {
		w, err := CheapestWindow(points, d)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, nil
}
