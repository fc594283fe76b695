package domain

import "time"

type TerminationReason string

const (
	TerminationExhausted TerminationReason = "exhausted"
	TerminationDrawdown  TerminationReason = "drawdown"
	TerminationCanceled  TerminationReason = "canceled"
)

// EpisodeResult summarizes one finished episode.
type EpisodeResult struct {
	ID             string
	Symbol         string
	Interval       string
	Agent          string
	Steps          int
	InitialBalance float64
	FinalPortfolio float64
	ProfitLoss     float64
	MaxDrawdown    float64
	NumLong        int
	NumShort       int
	NumHold        int
	Reason         TerminationReason
	StartedAt      time.Time
	FinishedAt     time.Time
}
