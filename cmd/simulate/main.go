package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/infrastructure/csvfeed"
	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/infrastructure/logger"
	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/infrastructure/storage"
	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/usecase"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level      string `yaml:"level"`
		EpisodeLog string `yaml:"episode_log"`
	} `yaml:"logging"`
	Environment domain.EnvConfig `yaml:"environment"`
	Data        struct {
		Source   string   `yaml:"source"` // "csv" or "sqlite"
		CSVDir   string   `yaml:"csv_dir"`
		DBPath   string   `yaml:"db_path"`
		Interval string   `yaml:"interval"`
		Symbols  []string `yaml:"symbols"`
	} `yaml:"data"`
	Agent struct {
		Kind      string  `yaml:"kind"` // "random", "momentum" or "linear"
		Seed      int64   `yaml:"seed"`
		Threshold float64 `yaml:"threshold"`
		Scale     float64 `yaml:"scale"`
		Linear    struct {
			Long  []float64 `yaml:"long"`
			Hold  []float64 `yaml:"hold"`
			Short []float64 `yaml:"short"`
			Bias  []float64 `yaml:"bias"` // long, hold, short
		} `yaml:"linear"`
	} `yaml:"agent"`
	Runner struct {
		Parallel int `yaml:"parallel"`
	} `yaml:"runner"`
	Storage struct {
		ResultsDB string `yaml:"results_db"`
	} `yaml:"storage"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Config{}
	cfg.Environment.Fee = domain.DefaultFeeModel()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. Load Config
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	episodeLog := log
	if cfg.Logging.EpisodeLog != "" {
		episodeLog, err = logger.NewFileLogger(cfg.Logging.EpisodeLog, cfg.Logging.Level)
		if err != nil {
			log.Error("Failed to init episode logger, using default", zap.Error(err))
			episodeLog = log
		}
		defer episodeLog.Sync()
	}

	if err := cfg.Environment.WithDefaults().Validate(); err != nil {
		log.Fatal("Invalid environment config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Load market data before any episode starts
	inputs, err := loadInputs(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to load market data", zap.Error(err))
	}
	if len(inputs) == 0 {
		log.Fatal("No symbols to simulate")
	}

	// 4. Init result storage
	var episodes domain.EpisodeRepository
	if cfg.Storage.ResultsDB != "" {
		store, err := storage.NewSQLiteStore(cfg.Storage.ResultsDB)
		if err != nil {
			log.Fatal("Failed to init sqlite", zap.Error(err))
		}
		defer store.Close()
		episodes = store
	}

	// 5. Run
	runner := usecase.NewEpisodeRunner(cfg.Environment, episodes, episodeLog)
	results, err := runner.RunAll(ctx, inputs, agentFactory(cfg), cfg.Runner.Parallel)
	if err != nil {
		log.Error("Simulation stopped", zap.Error(err))
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		log.Info("Episode result",
			zap.String("symbol", r.Symbol),
			zap.String("agent", r.Agent),
			zap.String("reason", string(r.Reason)),
			zap.Int("steps", r.Steps),
			zap.Float64("final_portfolio", r.FinalPortfolio),
			zap.Float64("profit_loss", r.ProfitLoss),
			zap.Float64("max_drawdown", r.MaxDrawdown))
	}
	if err != nil {
		os.Exit(1)
	}
}

func loadInputs(ctx context.Context, cfg *Config) ([]usecase.EpisodeInput, error) {
	var load func(symbol string) ([]domain.Bar, error)
	symbols := cfg.Data.Symbols

	switch cfg.Data.Source {
	case "sqlite":
		store, err := storage.NewSQLiteStore(cfg.Data.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		if len(symbols) == 0 {
			if symbols, err = store.ListSymbols(ctx, cfg.Data.Interval); err != nil {
				return nil, err
			}
		}
		load = func(symbol string) ([]domain.Bar, error) {
			bars, err := store.LoadCandles(ctx, symbol, cfg.Data.Interval)
			if err != nil {
				return nil, err
			}
			return bars, domain.ValidateBars(bars)
		}
	case "csv", "":
		load = func(symbol string) ([]domain.Bar, error) {
			return csvfeed.LoadFile(filepath.Join(cfg.Data.CSVDir, candleFileName(symbol, cfg.Data.Interval)))
		}
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}

	inputs := make([]usecase.EpisodeInput, 0, len(symbols))
	for _, symbol := range symbols {
		bars, err := load(symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", symbol, err)
		}
		inputs = append(inputs, usecase.EpisodeInput{
			Symbol:   symbol,
			Interval: cfg.Data.Interval,
			Bars:     bars,
			Features: usecase.BuildFeatures(bars),
		})
	}
	return inputs, nil
}

func agentFactory(cfg *Config) usecase.AgentFactory {
	var n int64
	return func(symbol string) usecase.Agent {
		switch cfg.Agent.Kind {
		case "momentum":
			return usecase.NewMomentumAgent(cfg.Agent.Threshold, cfg.Agent.Scale)
		case "linear":
			lin := cfg.Agent.Linear
			var bias [domain.NumActions]float64
			copy(bias[:], lin.Bias)
			return usecase.NewLinearAgent([domain.NumActions][]float64{
				domain.ActionLong:  lin.Long,
				domain.ActionHold:  lin.Hold,
				domain.ActionShort: lin.Short,
			}, bias)
		default:
			// RunAll builds agents sequentially, so n needs no lock.
			n++
			return usecase.NewRandomAgent(cfg.Agent.Seed + n)
		}
	}
}
