package usecase

import (
	"math"
	"testing"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFloorQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.23456789, 1.2345},
		{0.99999, 0.9999},
		{10, 10},
		{0.00009, 0},
		{-3, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floorQuantity(tt.in), "floorQuantity(%v)", tt.in)
	}
}

func TestRoundQuantity_RemovesDrift(t *testing.T) {
	assert.Equal(t, 0.3, roundQuantity(0.1+0.2))
	assert.Equal(t, 0.0, roundQuantity(-8.8889+8.8889))
	assert.Equal(t, -8.8889, roundQuantity(-10+1.1111))
}

func TestClampQuantity(t *testing.T) {
	fee := domain.FeeModel{TradingFee: 0.0005, Slippage: 0.0005}

	t.Run("affordable request is untouched", func(t *testing.T) {
		assert.Equal(t, 10.0, clampQuantity(10, 100, 10000, 1000, fee))
	})
	t.Run("resized to pool", func(t *testing.T) {
		got := clampQuantity(10, 100, 500, 1000, fee)
		assert.Equal(t, 4.995, got)
		assert.LessOrEqual(t, fee.BuyCost(100, got), 500.0)
	})
	t.Run("resized to max budget when pool is larger", func(t *testing.T) {
		// Request costs more than the pool, pool is above the max budget.
		got := clampQuantity(30, 100, 2000, 1000, fee)
		assert.Equal(t, 9.99, got)
	})
	t.Run("empty pool", func(t *testing.T) {
		assert.Zero(t, clampQuantity(1, 100, 0, 1000, fee))
	})
	t.Run("zero request", func(t *testing.T) {
		assert.Zero(t, clampQuantity(0, 100, 1000, 1000, fee))
	})
	t.Run("pool below one step", func(t *testing.T) {
		assert.Zero(t, clampQuantity(1, 100, 0.001, 1000, fee))
	})
}

func TestBudgetFor(t *testing.T) {
	assert.Equal(t, 100.0, budgetFor(math.NaN(), 100, 1000))
	assert.Equal(t, 100.0, budgetFor(-5, 100, 1000))
	assert.Equal(t, 1000.0, budgetFor(5, 100, 1000))
	assert.Equal(t, 325.0, budgetFor(0.25, 100, 1000))
	// Degenerate span with infinite confidence must not produce NaN.
	assert.Equal(t, 500.0, budgetFor(math.Inf(1), 500, 500))
}
