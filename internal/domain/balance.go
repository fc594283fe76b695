package domain

// BalanceState is the simulated account. It is owned by a single
// environment and mutated only by its transition.
type BalanceState struct {
	Cash           float64
	Inventory      float64 // signed: >0 long units, <0 short units
	AvgEntryPrice  float64
	PortfolioValue float64
	ProfitLoss     float64
	HoldRatio      float64
	Position       Position

	NumLong  int
	NumShort int
	NumHold  int
}

// NewBalanceState returns a flat account holding initial in cash.
func NewBalanceState(initial float64) BalanceState {
	return BalanceState{
		Cash:           initial,
		PortfolioValue: initial,
		Position:       PositionNone,
	}
}

// AbsInventory is the unsigned size of the open position.
func (b BalanceState) AbsInventory() float64 {
	if b.Inventory < 0 {
		return -b.Inventory
	}
	return b.Inventory
}

// Steps is the number of executed transitions.
func (b BalanceState) Steps() int {
	return b.NumLong + b.NumShort + b.NumHold
}

// BalanceSummary is the account state handed to a learner after each step.
type BalanceSummary struct {
	HoldRatio  float64  `json:"hold_ratio"`
	ProfitLoss float64  `json:"profit_loss"`
	AvgReturn  float64  `json:"avg_return"`
	Position   Position `json:"position"`
}

// BalanceSummaryDim is the length of BalanceSummary.Vector.
const BalanceSummaryDim = 4

// Vector flattens s in field order, with Position as its enum value.
func (s BalanceSummary) Vector() []float64 {
	return []float64{s.HoldRatio, s.ProfitLoss, s.AvgReturn, float64(s.Position)}
}
