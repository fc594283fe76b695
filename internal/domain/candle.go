package domain

import (
	"fmt"
	"time"
)

// Bar is one OHLCV observation for a fixed interval.
type Bar struct {
	OpenTime  time.Time `json:"open_time"`
	CloseTime time.Time `json:"close_time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// FeatureVector is the learner-facing representation of a bar. The
// environment hands it back untouched.
type FeatureVector []float64

// ValidateBars checks that bars are in chronological order and carry a usable close.
func ValidateBars(bars []Bar) error {
	for i, b := range bars {
		if b.Close <= 0 {
			return fmt.Errorf("%w: bar %d has non-positive close %f", ErrInvalidConfig, i, b.Close)
		}
		if i > 0 && !b.OpenTime.After(bars[i-1].OpenTime) {
			return fmt.Errorf("%w: bar %d open time %s not after %s",
				ErrInvalidConfig, i, b.OpenTime.Format(time.RFC3339), bars[i-1].OpenTime.Format(time.RFC3339))
		}
	}
	return nil
}
