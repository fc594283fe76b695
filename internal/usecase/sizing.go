package usecase

import (
	"math"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
	"github.com/shopspring/decimal"
)

const quantityPrecision = 4

var quantityStep = decimal.New(1, -quantityPrecision)

// floorQuantity truncates q to the quantity precision. Non-finite and
// negative inputs size to zero.
func floorQuantity(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return 0
	}
	f, _ := decimal.NewFromFloat(q).Truncate(quantityPrecision).Float64()
	return f
}

// roundQuantity removes float drift from inventory arithmetic.
func roundQuantity(q float64) float64 {
	f, _ := decimal.NewFromFloat(q).Round(quantityPrecision).Float64()
	return f
}

// clampQuantity returns qty when its entry cost fits in pool. Otherwise it
// resizes to what min(pool, maxBudget) can buy at price including fees.
func clampQuantity(qty, price, pool, maxBudget float64, fee domain.FeeModel) float64 {
	if qty <= 0 || price <= 0 || pool <= 0 {
		return 0
	}
	if pool-fee.BuyCost(price, qty) >= 0 {
		return qty
	}
	qty = floorQuantity(math.Min(pool, maxBudget) / (price * (1 + fee.EffectiveRate())))
	for qty > 0 && fee.BuyCost(price, qty) > pool {
		f, _ := decimal.NewFromFloat(qty).Sub(quantityStep).Float64()
		qty = math.Max(f, 0)
	}
	return qty
}

// budgetFor maps a confidence onto [minBudget, maxBudget]. NaN falls back to minBudget.
func budgetFor(confidence, minBudget, maxBudget float64) float64 {
	span := maxBudget - minBudget
	added := confidence * span
	if math.IsNaN(added) {
		return minBudget
	}
	return minBudget + math.Max(math.Min(added, span), 0)
}
