// Package csvfeed reads candle files written by the kline crawler:
// "Open time,Open,High,Low,Close,Volume,Close time" with millisecond epochs.
package csvfeed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
)

var columns = []string{"Open time", "Open", "High", "Low", "Close", "Volume", "Close time"}

// ReadBars parses every row of r. Extra columns are ignored.
func ReadBars(r io.Reader) ([]domain.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty candle file")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var bars []domain.Bar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bar, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// LoadFile reads and validates a candle file.
func LoadFile(path string) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bars, err := ReadBars(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := domain.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	return idx, nil
}

func parseRecord(rec []string, idx map[string]int) (domain.Bar, error) {
	field := func(name string) (string, error) {
		i := idx[name]
		if i >= len(rec) {
			return "", fmt.Errorf("missing value for %q", name)
		}
		return strings.TrimSpace(rec[i]), nil
	}
	num := func(name string) (float64, error) {
		s, err := field(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("bad %q: %w", name, err)
		}
		return v, nil
	}
	millis := func(name string) (time.Time, error) {
		s, err := field(name)
		if err != nil {
			return time.Time{}, err
		}
		// pandas may write integer columns as floats
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad %q: %w", name, err)
		}
		return time.UnixMilli(int64(v)).UTC(), nil
	}

	var b domain.Bar
	var err error
	if b.OpenTime, err = millis("Open time"); err != nil {
		return b, err
	}
	if b.CloseTime, err = millis("Close time"); err != nil {
		return b, err
	}
	if b.Open, err = num("Open"); err != nil {
		return b, err
	}
	if b.High, err = num("High"); err != nil {
		return b, err
	}
	if b.Low, err = num("Low"); err != nil {
		return b, err
	}
	if b.Close, err = num("Close"); err != nil {
		return b, err
	}
	if b.Volume, err = num("Volume"); err != nil {
		return b, err
	}
	return b, nil
}
