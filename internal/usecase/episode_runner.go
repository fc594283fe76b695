package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EpisodeInput is the already-materialized market data for one episode.
type EpisodeInput struct {
	Symbol   string
	Interval string
	Bars     []domain.Bar
	Features []domain.FeatureVector
}

// AgentFactory builds a fresh agent for every episode.
type AgentFactory func(symbol string) Agent

type EpisodeRunner struct {
	cfg      domain.EnvConfig
	episodes domain.EpisodeRepository
	logger   *zap.Logger
}

// NewEpisodeRunner creates a runner. episodes may be nil to skip persisting results.
func NewEpisodeRunner(cfg domain.EnvConfig, episodes domain.EpisodeRepository, logger *zap.Logger) *EpisodeRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EpisodeRunner{
		cfg:      cfg,
		episodes: episodes,
		logger:   logger,
	}
}

// Run plays one episode until the environment reports done or ctx is canceled.
func (r *EpisodeRunner) Run(ctx context.Context, in EpisodeInput, agent Agent) (*domain.EpisodeResult, error) {
	log := r.logger.With(zap.String("symbol", in.Symbol), zap.String("agent", agent.Name()))

	env, err := NewEnvironment(r.cfg, in.Bars, in.Features, WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to build environment for %s: %w", in.Symbol, err)
	}

	result := &domain.EpisodeResult{
		ID:             uuid.NewString(),
		Symbol:         in.Symbol,
		Interval:       in.Interval,
		Agent:          agent.Name(),
		InitialBalance: env.Config().InitialBalance,
		StartedAt:      time.Now().UTC(),
	}
	log.Info("Episode started", zap.String("episode_id", result.ID), zap.Int("bars", env.Cursor().Len()))

	peak := env.Balance().PortfolioValue
	step := env.Start()
	for !step.Done {
		if err := ctx.Err(); err != nil {
			result.Reason = domain.TerminationCanceled
			r.finish(result, env)
			log.Info("Episode canceled", zap.String("episode_id", result.ID), zap.Int("steps", result.Steps))
			return result, err
		}

		action, policy := agent.Decide(step.Features, step.Summary)
		step = env.Step(action, policy)

		pv := env.Balance().PortfolioValue
		if pv > peak {
			peak = pv
		}
		if peak > 0 {
			if dd := (peak - pv) / peak; dd > result.MaxDrawdown {
				result.MaxDrawdown = dd
			}
		}
	}
	result.Reason = step.Reason
	r.finish(result, env)

	fields := []zap.Field{
		zap.String("episode_id", result.ID),
		zap.String("reason", string(result.Reason)),
		zap.Int("steps", result.Steps),
		zap.Float64("profit_loss", result.ProfitLoss),
		zap.Float64("max_drawdown", result.MaxDrawdown),
		zap.Int("nan_confidences", env.NaNConfidences()),
	}
	if bar, ok := env.Cursor().Bar(); ok {
		fields = append(fields, zap.Time("last_bar", bar.CloseTime), zap.Float64("last_close", bar.Close))
	}
	log.Info("Episode finished", fields...)

	if r.episodes != nil {
		if err := r.episodes.SaveEpisode(ctx, result); err != nil {
			return result, fmt.Errorf("failed to save episode %s: %w", result.ID, err)
		}
	}
	return result, nil
}

// RunAll runs one isolated environment per input, at most parallel at a time.
// Agents are built in input order on the calling goroutine. Results keep the
// order of inputs.
func (r *EpisodeRunner) RunAll(ctx context.Context, inputs []EpisodeInput, newAgent AgentFactory, parallel int) ([]*domain.EpisodeResult, error) {
	results := make([]*domain.EpisodeResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, in := range inputs {
		i, in := i, in
		agent := newAgent(in.Symbol)
		g.Go(func() error {
			res, err := r.Run(ctx, in, agent)
			if err != nil {
				r.logger.Error("Episode failed", zap.String("symbol", in.Symbol), zap.Error(err))
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *EpisodeRunner) finish(result *domain.EpisodeResult, env *Environment) {
	b := env.Balance()
	result.Steps = b.Steps()
	result.FinalPortfolio = b.PortfolioValue
	result.ProfitLoss = b.ProfitLoss
	result.NumLong = b.NumLong
	result.NumShort = b.NumShort
	result.NumHold = b.NumHold
	result.FinishedAt = time.Now().UTC()
}
