package domain

const (
	// DefaultTradingFee is the exchange taker fee (0.05%).
	DefaultTradingFee = 0.0005
	// DefaultSlippage is the assumed slippage per trade (0.05%).
	DefaultSlippage = 0.0005
)

// FeeModel holds the cost rates applied to every traded notional.
type FeeModel struct {
	TradingFee float64 `yaml:"trading_fee"`
	Slippage   float64 `yaml:"slippage"`
}

func DefaultFeeModel() FeeModel {
	return FeeModel{TradingFee: DefaultTradingFee, Slippage: DefaultSlippage}
}

// EffectiveRate is fee plus slippage.
func (f FeeModel) EffectiveRate() float64 {
	return f.TradingFee + f.Slippage
}

// BuyCost is the cash paid to enter notional worth of inventory.
func (f FeeModel) BuyCost(price, qty float64) float64 {
	return price * qty * (1 + f.EffectiveRate())
}

// SellProceeds is the cash received when exiting at price.
func (f FeeModel) SellProceeds(price, qty float64) float64 {
	return price * qty * (1 - f.EffectiveRate())
}
