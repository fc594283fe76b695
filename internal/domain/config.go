package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned when an environment cannot be constructed.
var ErrInvalidConfig = errors.New("invalid environment config")

// DefaultDrawdownLimit ends an episode once the portfolio drops below 20% of
// the initial balance.
const DefaultDrawdownLimit = 0.20

// EnvConfig parameterizes an environment. A zero DrawdownLimit means
// DefaultDrawdownLimit; the drawdown stop cannot be switched off.
type EnvConfig struct {
	InitialBalance   float64  `yaml:"initial_balance"`
	MinTradingBudget float64  `yaml:"min_trading_budget"`
	MaxTradingBudget float64  `yaml:"max_trading_budget"`
	Fee              FeeModel `yaml:",inline"`
	DrawdownLimit    float64  `yaml:"drawdown_limit"`
}

// Validate checks c after WithDefaults has been applied. Errors wrap ErrInvalidConfig.
func (c EnvConfig) Validate() error {
	if !positive(c.InitialBalance) {
		return fmt.Errorf("%w: initial_balance must be positive, got %v", ErrInvalidConfig, c.InitialBalance)
	}
	if !positive(c.MinTradingBudget) {
		return fmt.Errorf("%w: min_trading_budget must be positive, got %v", ErrInvalidConfig, c.MinTradingBudget)
	}
	if !positive(c.MaxTradingBudget) {
		return fmt.Errorf("%w: max_trading_budget must be positive, got %v", ErrInvalidConfig, c.MaxTradingBudget)
	}
	if c.MinTradingBudget > c.MaxTradingBudget {
		return fmt.Errorf("%w: min_trading_budget %v exceeds max_trading_budget %v",
			ErrInvalidConfig, c.MinTradingBudget, c.MaxTradingBudget)
	}
	if c.Fee.TradingFee < 0 || c.Fee.Slippage < 0 || c.Fee.EffectiveRate() >= 1 ||
		math.IsNaN(c.Fee.EffectiveRate()) {
		return fmt.Errorf("%w: fee rates must be in [0,1), got fee=%v slippage=%v",
			ErrInvalidConfig, c.Fee.TradingFee, c.Fee.Slippage)
	}
	if c.DrawdownLimit < 0 || c.DrawdownLimit >= 1 || math.IsNaN(c.DrawdownLimit) {
		return fmt.Errorf("%w: drawdown_limit must be in [0,1), got %v", ErrInvalidConfig, c.DrawdownLimit)
	}
	return nil
}

// WithDefaults replaces a zero drawdown limit with DefaultDrawdownLimit.
func (c EnvConfig) WithDefaults() EnvConfig {
	if c.DrawdownLimit == 0 {
		c.DrawdownLimit = DefaultDrawdownLimit
	}
	return c
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
