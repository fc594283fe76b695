package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockEpisodeRepository struct {
	mu      sync.Mutex
	Saved   []*domain.EpisodeResult
	SaveErr error
}

func (m *MockEpisodeRepository) SaveEpisode(ctx context.Context, result *domain.EpisodeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = append(m.Saved, result)
	return nil
}

func (m *MockEpisodeRepository) ListEpisodes(ctx context.Context, limit int) ([]*domain.EpisodeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saved, nil
}

// scriptedAgent replays a fixed list of actions, then holds.
type scriptedAgent struct {
	actions []domain.Action
	calls   int
	cancel  func()
}

func (a *scriptedAgent) Name() string { return "scripted" }

func (a *scriptedAgent) Decide(_ domain.FeatureVector, _ domain.BalanceSummary) (domain.Action, domain.Policy) {
	defer func() { a.calls++ }()
	if a.cancel != nil && a.calls == 1 {
		a.cancel()
	}
	action := domain.ActionHold
	if a.calls < len(a.actions) {
		action = a.actions[a.calls]
	}
	return action, policyFor(action, 1)
}

func episodeInput(symbol string, closes ...float64) usecase.EpisodeInput {
	bars := barsAt(closes...)
	return usecase.EpisodeInput{
		Symbol:   symbol,
		Interval: "1h",
		Bars:     bars,
		Features: usecase.BuildFeatures(bars),
	}
}

func TestEpisodeRunner_RunUntilExhausted(t *testing.T) {
	repo := &MockEpisodeRepository{}
	runner := usecase.NewEpisodeRunner(envConfig(10000, noFee), repo, zap.NewNop())
	agent := &scriptedAgent{actions: []domain.Action{domain.ActionLong, domain.ActionHold, domain.ActionShort}}

	res, err := runner.Run(context.Background(), episodeInput("BTCUSDT", 100, 100, 90, 110), agent)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "BTCUSDT", res.Symbol)
	assert.Equal(t, "scripted", res.Agent)
	assert.Equal(t, domain.TerminationExhausted, res.Reason)
	// One decision per bar after the first, plus the call that hits exhaustion.
	assert.Equal(t, 4, agent.calls)
	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, 1, res.NumLong)
	assert.Equal(t, 1, res.NumShort)
	assert.Equal(t, 1, res.NumHold)
	// 10 long at 100, marked at 90, mostly sold at 110.
	assert.InDelta(t, 10100, res.FinalPortfolio, delta)
	assert.InDelta(t, 0.01, res.ProfitLoss, delta)
	assert.InDelta(t, 100.0/10000, res.MaxDrawdown, delta)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))

	require.Len(t, repo.Saved, 1)
	assert.Equal(t, res, repo.Saved[0])
}

func TestEpisodeRunner_RunLogsEpisodeBounds(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	runner := usecase.NewEpisodeRunner(envConfig(10000, noFee), nil, zap.New(core))

	_, err := runner.Run(context.Background(), episodeInput("BTCUSDT", 100, 101, 102), usecase.NewRandomAgent(3))
	require.NoError(t, err)

	started := logs.FilterMessage("Episode started").All()
	require.Len(t, started, 1)
	assert.Equal(t, int64(3), started[0].ContextMap()["bars"])
	assert.Equal(t, "BTCUSDT", started[0].ContextMap()["symbol"])

	finished := logs.FilterMessage("Episode finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.Equal(t, string(domain.TerminationExhausted), fields["reason"])
	assert.Equal(t, 102.0, fields["last_close"])
	assert.Contains(t, fields, "last_bar")
}

func TestEpisodeRunner_RunStopsOnDrawdown(t *testing.T) {
	runner := usecase.NewEpisodeRunner(envConfig(1000, noFee), nil, nil)
	agent := &scriptedAgent{actions: []domain.Action{domain.ActionLong}}

	res, err := runner.Run(context.Background(), episodeInput("ETHUSDT", 100, 100, 10, 100, 100), agent)
	require.NoError(t, err)
	assert.Equal(t, domain.TerminationDrawdown, res.Reason)
	assert.Equal(t, 2, res.Steps)
	assert.InDelta(t, 0.9, res.MaxDrawdown, delta)
}

func TestEpisodeRunner_RunRejectsBadInput(t *testing.T) {
	runner := usecase.NewEpisodeRunner(envConfig(1000, noFee), nil, nil)
	in := episodeInput("BTCUSDT", 100, 101)
	in.Features = in.Features[:1]

	_, err := runner.Run(context.Background(), in, usecase.NewRandomAgent(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestEpisodeRunner_RunHonorsCancellation(t *testing.T) {
	repo := &MockEpisodeRepository{}
	runner := usecase.NewEpisodeRunner(envConfig(10000, noFee), repo, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	agent := &scriptedAgent{cancel: cancel}

	res, err := runner.Run(ctx, episodeInput("BTCUSDT", 100, 101, 102, 103, 104), agent)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.TerminationCanceled, res.Reason)
	assert.Equal(t, 2, res.Steps)
	assert.Empty(t, repo.Saved)
}

func TestEpisodeRunner_RunReportsSaveError(t *testing.T) {
	repo := &MockEpisodeRepository{SaveErr: errors.New("disk full")}
	runner := usecase.NewEpisodeRunner(envConfig(10000, noFee), repo, nil)

	res, err := runner.Run(context.Background(), episodeInput("BTCUSDT", 100, 101), usecase.NewRandomAgent(1))
	require.Error(t, err)
	assert.NotNil(t, res)
}

func TestEpisodeRunner_RunAllIsolatesEpisodes(t *testing.T) {
	repo := &MockEpisodeRepository{}
	runner := usecase.NewEpisodeRunner(envConfig(10000, noFee), repo, nil)

	inputs := []usecase.EpisodeInput{
		episodeInput("BTCUSDT", 100, 100, 110),
		episodeInput("ETHUSDT", 100, 100, 90),
		episodeInput("XRPUSDT", 100, 100, 100),
	}
	newAgent := func(symbol string) usecase.Agent {
		return &scriptedAgent{actions: []domain.Action{domain.ActionLong}}
	}

	results, err := runner.RunAll(context.Background(), inputs, newAgent, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "BTCUSDT", results[0].Symbol)
	assert.InDelta(t, 0.01, results[0].ProfitLoss, delta)
	assert.Equal(t, "ETHUSDT", results[1].Symbol)
	assert.InDelta(t, -0.01, results[1].ProfitLoss, delta)
	assert.Equal(t, "XRPUSDT", results[2].Symbol)
	assert.InDelta(t, 0, results[2].ProfitLoss, delta)
	assert.Len(t, repo.Saved, 3)
}

func TestEpisodeRunner_RunAllStopsOnError(t *testing.T) {
	runner := usecase.NewEpisodeRunner(envConfig(10000, noFee), nil, nil)
	bad := episodeInput("BAD", 100, 101)
	bad.Features = nil

	_, err := runner.RunAll(context.Background(),
		[]usecase.EpisodeInput{episodeInput("BTCUSDT", 100, 101), bad},
		func(string) usecase.Agent { return usecase.NewRandomAgent(1) }, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}
