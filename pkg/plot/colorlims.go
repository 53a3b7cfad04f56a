package plot

import (
	"github.com/montanaflynn/stats"

	"github.com/matzehuels/skyproj/pkg/metric"
)

// ColorLimits returns the colour scale limits for values.
//
// color_min and color_max win when set. Otherwise percentile_clip p keeps the
// central p percent of the unmasked values, and without it the data range is
// used. With log_scale only positive values take part. Equal limits are
// widened so the scale never collapses.
func ColorLimits(values metric.Values, cfg Resolved) (lo, hi float64) {
	logScale, _ := cfg.Bool(KeyLogScale)
	data := stats.Float64Data(values.Unmasked())
	if logScale {
		positive := data[:0:0]
		for _, v := range data {
			if v > 0 {
				positive = append(positive, v)
			}
		}
		data = positive
	}

	lo, hi = 0, 1
	if len(data) > 0 {
		lo, _ = stats.Min(data)
		hi, _ = stats.Max(data)
	}
	if p, ok := cfg.Float(KeyPercentileClip); ok && p > 0 && p < 100 && len(data) > 0 {
		if v, err := stats.Percentile(data, (100-p)/2); err == nil {
			lo = v
		}
		if v, err := stats.Percentile(data, (100+p)/2); err == nil {
			hi = v
		}
	}
	if v, ok := cfg.Float(KeyColorMin); ok {
		lo = v
	}
	if v, ok := cfg.Float(KeyColorMax); ok {
		hi = v
	}

	if lo == hi {
		if logScale && lo > 0 {
			return lo / 10, hi * 10
		}
		return lo - 1, hi + 1
	}
	return lo, hi
}
