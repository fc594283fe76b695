package usecase

import "github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"

// MarketCursor walks forward over aligned bars and feature vectors.
type MarketCursor struct {
	bars     []domain.Bar
	features []domain.FeatureVector
	idx      int
}

func NewMarketCursor(bars []domain.Bar, features []domain.FeatureVector) *MarketCursor {
	return &MarketCursor{
		bars:     bars,
		features: features,
		idx:      -1,
	}
}

// Observe advances to the next bar. It returns false once the bars are
// exhausted, leaving the cursor on the last bar.
func (c *MarketCursor) Observe() (domain.Bar, bool) {
	if c.idx+1 >= len(c.bars) {
		return domain.Bar{}, false
	}
	c.idx++
	return c.bars[c.idx], true
}

// Price is the close of the most recently observed bar, 0 before the first Observe.
func (c *MarketCursor) Price() float64 {
	if c.idx < 0 {
		return 0
	}
	return c.bars[c.idx].Close
}

// Bar returns the most recently observed bar.
func (c *MarketCursor) Bar() (domain.Bar, bool) {
	if c.idx < 0 {
		return domain.Bar{}, false
	}
	return c.bars[c.idx], true
}

func (c *MarketCursor) Features() domain.FeatureVector {
	if c.idx < 0 || c.idx >= len(c.features) {
		return nil
	}
	return c.features[c.idx]
}

func (c *MarketCursor) Index() int { return c.idx }

// Len is the number of bars in the series.
func (c *MarketCursor) Len() int { return len(c.bars) }

// Reset rewinds to before the first bar.
func (c *MarketCursor) Reset() {
	c.idx = -1
}
