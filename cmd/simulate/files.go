package main

import (
	"strings"
)

// candleFileName follows the crawler's naming, e.g. BTCUSDT + 1h -> btc_1h.csv.
func candleFileName(symbol, interval string) string {
	base := strings.ToLower(strings.TrimSuffix(strings.ToUpper(symbol), "USDT"))
	return base + "_" + interval + ".csv"
}
