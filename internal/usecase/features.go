package usecase

import "github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"

// FeatureDim is the length of the vectors produced by BuildFeatures.
const FeatureDim = 5

// BuildFeatures derives a learner input for every bar:
// [close return, high/close-1, low/close-1, open/close-1, volume change].
// The first bar has no predecessor, so its return and volume change are 0.
func BuildFeatures(bars []domain.Bar) []domain.FeatureVector {
	features := make([]domain.FeatureVector, len(bars))
	for i, b := range bars {
		v := make(domain.FeatureVector, FeatureDim)
		if i > 0 {
			prev := bars[i-1]
			v[0] = ratio(b.Close, prev.Close)
			v[4] = ratio(b.Volume, prev.Volume)
		}
		v[1] = ratio(b.High, b.Close)
		v[2] = ratio(b.Low, b.Close)
		v[3] = ratio(b.Open, b.Close)
		features[i] = v
	}
	return features
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num/den - 1
}
