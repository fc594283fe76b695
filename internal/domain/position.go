package domain

import "math"

// Position is the side of the currently open inventory.
type Position int

const (
	PositionLong Position = iota
	PositionNone
	PositionShort
)

func (p Position) String() string {
	switch p {
	case PositionLong:
		return "LONG"
	case PositionShort:
		return "SHORT"
	default:
		return "NONE"
	}
}

// PositionFromInventory derives the position from the sign of a signed inventory.
func PositionFromInventory(inventory float64) Position {
	switch {
	case inventory > 0:
		return PositionLong
	case inventory < 0:
		return PositionShort
	default:
		return PositionNone
	}
}

// Action is a requested direction. It is not guaranteed to execute.
type Action int

const (
	ActionLong Action = iota
	ActionHold
	ActionShort
)

// NumActions is the size of the action space.
const NumActions = 3

func (a Action) String() string {
	switch a {
	case ActionLong:
		return "LONG"
	case ActionShort:
		return "SHORT"
	default:
		return "HOLD"
	}
}

func (a Action) Valid() bool {
	return a >= ActionLong && a <= ActionShort
}

// Policy holds one confidence per action, indexed by Action.
type Policy [NumActions]float64

// Confidence returns the confidence for action, or 0 for an unknown action.
func (p Policy) Confidence(a Action) float64 {
	if !a.Valid() {
		return 0
	}
	return p[a]
}

// Best returns the action with the highest confidence, HOLD on ties.
func (p Policy) Best() Action {
	best := ActionHold
	for i, c := range p {
		if c > p[best] || (math.IsNaN(p[best]) && !math.IsNaN(c)) {
			best = Action(i)
		}
	}
	return best
}
