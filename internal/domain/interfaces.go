package domain

import "context"

// CandleRepository defines storage operations for historical bars.
type CandleRepository interface {
	SaveCandles(ctx context.Context, symbol, interval string, bars []Bar) error
	LoadCandles(ctx context.Context, symbol, interval string) ([]Bar, error)
	ListSymbols(ctx context.Context, interval string) ([]string, error)
}

// EpisodeRepository defines storage operations for episode results.
type EpisodeRepository interface {
	SaveEpisode(ctx context.Context, result *EpisodeResult) error
	ListEpisodes(ctx context.Context, limit int) ([]*EpisodeResult, error)
}
