package render

import (
	"math"
	"time"

	"gonum.org/v1/plot"
)

// MonthTicks marks the first of every month between min and max, with x
// values read as Unix seconds. Every Every-th month, counted from January,
// gets a labelled major tick. The rest are minor.
type MonthTicks struct {
	Every  int
	Format string
}

var _ plot.Ticker = MonthTicks{}

func (m MonthTicks) Ticks(lo, hi float64) []plot.Tick {
	every := max(m.Every, 1)
	format := m.Format
	if format == "" {
		format = "Jan 2006"
	}

	start := time.Unix(int64(math.Floor(lo)), 0).UTC()
	t := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if float64(t.Unix()) < lo {
		t = t.AddDate(0, 1, 0)
	}

	var ticks []plot.Tick
	labelled := false
	for ; float64(t.Unix()) <= hi; t = t.AddDate(0, 1, 0) {
		tick := plot.Tick{Value: float64(t.Unix())}
		if (int(t.Month())-1)%every == 0 {
			tick.Label = t.Format(format)
			labelled = true
		}
		ticks = append(ticks, tick)
	}

	// Short ranges may hold no aligned month; label everything instead.
	if !labelled {
		for i := range ticks {
			ticks[i].Label = time.Unix(int64(ticks[i].Value), 0).UTC().Format(format)
		}
	}

	return ticks
}

// UnixX converts t to the x value used on time axes.
func UnixX(t time.Time) float64 {
	return float64(t.Unix())
}
