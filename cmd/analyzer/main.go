package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/infrastructure/storage"
)

type symbolStats struct {
	Symbol      string
	Episodes    int
	AvgPnL      float64
	BestPnL     float64
	WorstPnL    float64
	Drawdowns   int
	MaxDrawdown float64
}

func main() {
	dbPath := flag.String("db", "results.db", "results database path")
	limit := flag.Int("limit", 500, "number of recent episodes to analyze")
	flag.Parse()

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	episodes, err := store.ListEpisodes(context.Background(), *limit)
	if err != nil {
		fmt.Printf("Failed to list episodes: %v\n", err)
		os.Exit(1)
	}
	if len(episodes) == 0 {
		fmt.Println("No episodes found.")
		return
	}

	results := aggregate(episodes)

	// Sort by average profit/loss
	sort.Slice(results, func(i, j int) bool {
		return results[i].AvgPnL > results[j].AvgPnL
	})

	fmt.Printf("\nEpisode results (total analyzed: %d episodes):\n", len(episodes))
	fmt.Printf("%-12s | %-8s | %-10s | %-10s | %-10s | %-9s | %s\n",
		"Symbol", "Episodes", "Avg P&L %", "Best %", "Worst %", "Stopped", "Max DD %")
	fmt.Println("--------------------------------------------------------------------------------------")
	for _, r := range results {
		fmt.Printf("%-12s | %-8d | %-10.3f | %-10.3f | %-10.3f | %-9d | %.3f\n",
			r.Symbol, r.Episodes, r.AvgPnL*100, r.BestPnL*100, r.WorstPnL*100, r.Drawdowns, r.MaxDrawdown*100)
	}
}

func aggregate(episodes []*domain.EpisodeResult) []symbolStats {
	bySymbol := make(map[string]*symbolStats)
	for _, e := range episodes {
		s, ok := bySymbol[e.Symbol]
		if !ok {
			s = &symbolStats{Symbol: e.Symbol, BestPnL: e.ProfitLoss, WorstPnL: e.ProfitLoss}
			bySymbol[e.Symbol] = s
		}
		s.Episodes++
		s.AvgPnL += e.ProfitLoss
		if e.ProfitLoss > s.BestPnL {
			s.BestPnL = e.ProfitLoss
		}
		if e.ProfitLoss < s.WorstPnL {
			s.WorstPnL = e.ProfitLoss
		}
		if e.Reason == domain.TerminationDrawdown {
			s.Drawdowns++
		}
		if e.MaxDrawdown > s.MaxDrawdown {
			s.MaxDrawdown = e.MaxDrawdown
		}
	}

	results := make([]symbolStats, 0, len(bySymbol))
	for _, s := range bySymbol {
		s.AvgPnL /= float64(s.Episodes)
		results = append(results, *s)
	}
	return results
}
