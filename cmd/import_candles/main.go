package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/infrastructure/csvfeed"
	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/infrastructure/storage"
)

func main() {
	dbPath := flag.String("db", "candles.db", "sqlite database path")
	symbol := flag.String("symbol", "", "symbol, e.g. BTCUSDT")
	interval := flag.String("interval", "1h", "candle interval")
	file := flag.String("file", "", "crawler CSV file")
	flag.Parse()

	if *symbol == "" || *file == "" {
		fmt.Println("Usage: import_candles -symbol BTCUSDT -file data/btc_1h.csv [-interval 1h] [-db candles.db]")
		os.Exit(2)
	}

	bars, err := csvfeed.LoadFile(*file)
	if err != nil {
		fmt.Printf("Failed to read candles: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveCandles(ctx, *symbol, *interval, bars); err != nil {
		fmt.Printf("Failed to save candles: %v\n", err)
		os.Exit(1)
	}

	stored, err := store.LoadCandles(ctx, *symbol, *interval)
	if err != nil {
		fmt.Printf("Failed to reload candles: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d candles for %s %s (%d stored)\n", len(bars), *symbol, *interval, len(stored))
	if len(stored) > 0 {
		fmt.Printf("  from %s to %s\n",
			stored[0].OpenTime.Format("2006-01-02 15:04:05"),
			stored[len(stored)-1].OpenTime.Format("2006-01-02 15:04:05"))
	}
}
