package usecase

import (
	"fmt"
	"math"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
	"go.uber.org/zap"
)

// StepResult is what the environment hands back after each step.
type StepResult struct {
	Features domain.FeatureVector
	Summary  domain.BalanceSummary
	Reward   float64
	Done     bool
	Reason   domain.TerminationReason
	TradeQty float64
}

// Environment simulates one trading account against a sequence of bars.
// It is not safe for concurrent use; run independent episodes on separate
// instances.
type Environment struct {
	cfg     domain.EnvConfig
	cursor  *MarketCursor
	balance domain.BalanceState
	logger  *zap.Logger

	// done is set once the episode has ended and cleared by Reset.
	done           domain.TerminationReason
	nanConfidences int
}

// Option configures an Environment.
type Option func(*Environment)

// WithLogger sets the logger used for demotions and drawdown events. nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Environment) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEnvironment builds an environment over aligned bars and features. It
// returns an error wrapping domain.ErrInvalidConfig when the config, the
// series lengths or the bars are invalid.
func NewEnvironment(cfg domain.EnvConfig, bars []domain.Bar, features []domain.FeatureVector, opts ...Option) (*Environment, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(bars) != len(features) {
		return nil, fmt.Errorf("%w: %d bars but %d feature vectors", domain.ErrInvalidConfig, len(bars), len(features))
	}
	if err := domain.ValidateBars(bars); err != nil {
		return nil, err
	}

	e := &Environment{
		cfg:     cfg,
		cursor:  NewMarketCursor(bars, features),
		balance: domain.NewBalanceState(cfg.InitialBalance),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Reset restores the constructor baseline and rewinds the cursor.
func (e *Environment) Reset() {
	e.cursor.Reset()
	e.balance = domain.NewBalanceState(e.cfg.InitialBalance)
	e.done = ""
	e.nanConfidences = 0
}

// Config returns the effective config, defaults applied.
func (e *Environment) Config() domain.EnvConfig { return e.cfg }

// Balance returns a copy of the account state.
func (e *Environment) Balance() domain.BalanceState { return e.balance }

// Cursor exposes the market cursor for read-only inspection.
func (e *Environment) Cursor() *MarketCursor { return e.cursor }

// NaNConfidences counts confidences replaced by the minimum budget since the last Reset.
func (e *Environment) NaNConfidences() int { return e.nanConfidences }

// Done reports why the episode ended, or "" while it is still running.
func (e *Environment) Done() domain.TerminationReason { return e.done }

// Start observes the first (or next) bar without acting.
func (e *Environment) Start() StepResult {
	if e.done != "" {
		return e.terminal()
	}
	if _, ok := e.cursor.Observe(); !ok {
		return e.end(domain.TerminationExhausted)
	}
	e.revalue(e.cursor.Price())
	return StepResult{
		Features: e.cursor.Features(),
		Summary:  e.summary(),
	}
}

// Step advances one bar and executes action sized by policy[action].
// Once the episode has ended every call returns the same terminal result
// without touching the account.
func (e *Environment) Step(action domain.Action, policy domain.Policy) StepResult {
	if e.done != "" {
		return e.terminal()
	}
	if _, ok := e.cursor.Observe(); !ok {
		return e.end(domain.TerminationExhausted)
	}
	e.revalue(e.cursor.Price())

	if !action.Valid() {
		action = domain.ActionHold
	}
	confidence := policy.Confidence(action)
	if !e.ValidateAction(action) {
		e.logger.Debug("Action not affordable, holding",
			zap.Stringer("action", action),
			zap.Float64("cash", e.balance.Cash),
			zap.Float64("portfolio_value", e.balance.PortfolioValue))
		action = domain.ActionHold
	}

	reward, qty := e.Act(action, confidence)

	res := StepResult{
		Features: e.cursor.Features(),
		Summary:  e.summary(),
		Reward:   reward,
		TradeQty: qty,
	}
	if e.balance.PortfolioValue < e.cfg.DrawdownLimit*e.cfg.InitialBalance {
		e.logger.Debug("Drawdown limit breached",
			zap.Int("index", e.cursor.Index()),
			zap.Float64("portfolio_value", e.balance.PortfolioValue))
		e.done = domain.TerminationDrawdown
		res.Done = true
		res.Reason = e.done
	}
	return res
}

func (e *Environment) end(reason domain.TerminationReason) StepResult {
	e.done = reason
	return e.terminal()
}

func (e *Environment) terminal() StepResult {
	return StepResult{Summary: e.summary(), Done: true, Reason: e.done}
}

// ValidateAction reports whether at least the minimum trade for action is
// affordable from the current position. HOLD is always valid.
func (e *Environment) ValidateAction(action domain.Action) bool {
	minCost := e.cfg.MinTradingBudget * (1 + e.cfg.Fee.EffectiveRate())
	switch action {
	case domain.ActionLong:
		if e.balance.Position == domain.PositionShort {
			return e.balance.PortfolioValue >= minCost
		}
		return e.balance.Cash >= minCost
	case domain.ActionShort:
		if e.balance.Position == domain.PositionLong {
			return e.balance.PortfolioValue >= minCost
		}
		return e.balance.Cash >= minCost
	default:
		return true
	}
}

// DecideTradingUnit converts a confidence into a requested quantity at the
// current price, before affordability resizing.
func (e *Environment) DecideTradingUnit(confidence float64) float64 {
	price := e.cursor.Price()
	if price <= 0 {
		return 0
	}
	if math.IsNaN(confidence) {
		e.nanConfidences++
		e.logger.Debug("NaN confidence, using minimum budget", zap.Int("count", e.nanConfidences))
	}
	budget := budgetFor(confidence, e.cfg.MinTradingBudget, e.cfg.MaxTradingBudget)
	return floorQuantity(budget / price)
}

// Act executes action at the current price and re-marks the account. It
// returns the profit/loss ratio and the quantity actually traded.
func (e *Environment) Act(action domain.Action, confidence float64) (float64, float64) {
	price := e.cursor.Price()

	var executed float64
	switch action {
	case domain.ActionLong:
		executed = e.buy(price, e.DecideTradingUnit(confidence))
	case domain.ActionShort:
		executed = e.sell(price, e.DecideTradingUnit(confidence))
	}

	switch {
	case executed <= 0:
		executed = 0
		e.balance.NumHold++
	case action == domain.ActionLong:
		e.balance.NumLong++
	default:
		e.balance.NumShort++
	}

	e.revalue(price)
	return e.balance.ProfitLoss, executed
}

func (e *Environment) buy(price, qty float64) float64 {
	b := &e.balance
	fee := e.cfg.Fee

	if b.Position == domain.PositionShort {
		held := b.AbsInventory()
		if qty > held {
			// Close the whole short, then go long with what is left.
			pool := b.Cash + e.shortProceeds(price, held)
			rest := e.clamp(roundQuantity(qty-held), price, pool)
			b.Cash = pool - fee.BuyCost(price, rest)
			b.Inventory = rest
			b.AvgEntryPrice = price
			return roundQuantity(held + rest)
		}
		b.Cash += e.shortProceeds(price, qty)
		b.Inventory = roundQuantity(b.Inventory + qty)
		return qty
	}

	qty = e.clamp(qty, price, b.Cash)
	if qty <= 0 {
		return 0
	}
	if b.Position == domain.PositionLong {
		b.AvgEntryPrice = (b.AvgEntryPrice*b.Inventory + price*qty) / (b.Inventory + qty)
	} else {
		b.AvgEntryPrice = price
	}
	b.Cash -= fee.BuyCost(price, qty)
	b.Inventory = roundQuantity(b.Inventory + qty)
	return qty
}

func (e *Environment) sell(price, qty float64) float64 {
	b := &e.balance
	fee := e.cfg.Fee

	if b.Position == domain.PositionLong {
		held := b.Inventory
		if qty > held {
			// Liquidate the whole long, then go short with what is left.
			pool := b.Cash + fee.SellProceeds(price, held)
			rest := e.clamp(roundQuantity(qty-held), price, pool)
			b.Cash = pool - fee.BuyCost(price, rest)
			b.Inventory = -rest
			b.AvgEntryPrice = price
			return roundQuantity(held + rest)
		}
		b.Cash += fee.SellProceeds(price, qty)
		b.Inventory = roundQuantity(b.Inventory - qty)
		return qty
	}

	qty = e.clamp(qty, price, b.Cash)
	if qty <= 0 {
		return 0
	}
	if b.Position == domain.PositionShort {
		held := b.AbsInventory()
		b.AvgEntryPrice = (b.AvgEntryPrice*held + price*qty) / (held + qty)
	} else {
		b.AvgEntryPrice = price
	}
	b.Cash -= fee.BuyCost(price, qty)
	b.Inventory = roundQuantity(b.Inventory - qty)
	return qty
}

func (e *Environment) clamp(qty, price, pool float64) float64 {
	return clampQuantity(qty, price, pool, e.cfg.MaxTradingBudget, e.cfg.Fee)
}

// reflectedPrice marks a short: gains move inversely to price. A short can
// lose at most its collateral, so the value never drops below zero.
func (e *Environment) reflectedPrice(price float64) float64 {
	return math.Max(2*e.balance.AvgEntryPrice-price, 0)
}

func (e *Environment) shortProceeds(price, qty float64) float64 {
	return e.reflectedPrice(price) * qty * (1 - e.cfg.Fee.EffectiveRate())
}

// revalue derives position, portfolio value and ratios from cash, inventory and price.
func (e *Environment) revalue(price float64) {
	b := &e.balance
	b.Position = domain.PositionFromInventory(b.Inventory)
	if b.Position == domain.PositionNone {
		b.AvgEntryPrice = 0
	}

	switch b.Position {
	case domain.PositionShort:
		b.PortfolioValue = b.Cash + e.reflectedPrice(price)*b.AbsInventory()
	default:
		b.PortfolioValue = b.Cash + price*b.AbsInventory()
	}

	b.ProfitLoss = b.PortfolioValue/e.cfg.InitialBalance - 1
	if b.PortfolioValue > 0 {
		b.HoldRatio = (b.PortfolioValue - b.Cash) / b.PortfolioValue
	} else {
		b.HoldRatio = 0
	}
}

// avgReturn is the unrealized return of the open position relative to its entry.
func (e *Environment) avgReturn() float64 {
	b := e.balance
	price := e.cursor.Price()
	if b.AvgEntryPrice <= 0 || price <= 0 {
		return 0
	}
	switch b.Position {
	case domain.PositionLong:
		return price/b.AvgEntryPrice - 1
	case domain.PositionShort:
		return 1 - b.AvgEntryPrice/price
	default:
		return 0
	}
}

func (e *Environment) summary() domain.BalanceSummary {
	return domain.BalanceSummary{
		HoldRatio:  e.balance.HoldRatio,
		ProfitLoss: e.balance.ProfitLoss,
		AvgReturn:  e.avgReturn(),
		Position:   e.balance.Position,
	}
}
