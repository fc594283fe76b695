package csvfeed_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/infrastructure/csvfeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const crawlerCSV = `Open time,Open,High,Low,Close,Volume,Close time
1514764800000,13715.65,13715.65,13400.01,13529.01,443.356199,1514768399999
1514768400000,13528.99,13595.89,13155.38,13203.06,383.697006,1514771999999
`

func TestReadBars_CrawlerLayout(t *testing.T) {
	bars, err := csvfeed.ReadBars(strings.NewReader(crawlerCSV))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].OpenTime)
	assert.Equal(t, 13529.01, bars[0].Close)
	assert.Equal(t, 13155.38, bars[1].Low)
	assert.InDelta(t, 383.697006, bars[1].Volume, 1e-9)
	assert.True(t, bars[1].CloseTime.After(bars[1].OpenTime))
}

func TestReadBars_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing column", "Open time,Open,High,Low,Volume,Close time\n"},
		{"bad number", "Open time,Open,High,Low,Close,Volume,Close time\n1,a,1,1,1,1,2\n"},
		{"short row", "Open time,Open,High,Low,Close,Volume,Close time\n1,1,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := csvfeed.ReadBars(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_RejectsUnorderedBars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "btc_1h.csv")
	unordered := "Open time,Open,High,Low,Close,Volume,Close time\n" +
		"1514768400000,1,1,1,1,1,1514771999999\n" +
		"1514764800000,1,1,1,1,1,1514768399999\n"
	require.NoError(t, os.WriteFile(path, []byte(unordered), 0o644))

	_, err := csvfeed.LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))

	require.NoError(t, os.WriteFile(path, []byte(crawlerCSV), 0o644))
	bars, err := csvfeed.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}
