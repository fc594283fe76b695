package usecase

import (
	"math"
	"math/rand"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
)

// Agent chooses an action and per-action confidences from the latest observation.
type Agent interface {
	Name() string
	Decide(features domain.FeatureVector, summary domain.BalanceSummary) (domain.Action, domain.Policy)
}

// RandomAgent samples a normalized policy and plays its best action.
// Each episode needs its own instance.
type RandomAgent struct {
	rng *rand.Rand
}

func NewRandomAgent(seed int64) *RandomAgent {
	return &RandomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *RandomAgent) Name() string { return "random" }

func (a *RandomAgent) Decide(_ domain.FeatureVector, _ domain.BalanceSummary) (domain.Action, domain.Policy) {
	var policy domain.Policy
	var sum float64
	for i := range policy {
		policy[i] = a.rng.Float64()
		sum += policy[i]
	}
	if sum > 0 {
		for i := range policy {
			policy[i] /= sum
		}
	}
	return policy.Best(), policy
}

// MomentumAgent follows the sign of the last close return once it exceeds
// Threshold. Confidence grows linearly up to Scale.
type MomentumAgent struct {
	Threshold float64
	Scale     float64
}

func NewMomentumAgent(threshold, scale float64) *MomentumAgent {
	if scale <= 0 {
		scale = 0.01
	}
	return &MomentumAgent{Threshold: threshold, Scale: scale}
}

func (a *MomentumAgent) Name() string { return "momentum" }

func (a *MomentumAgent) Decide(features domain.FeatureVector, _ domain.BalanceSummary) (domain.Action, domain.Policy) {
	var policy domain.Policy
	if len(features) == 0 || math.IsNaN(features[0]) {
		policy[domain.ActionHold] = 1
		return domain.ActionHold, policy
	}
	ret := features[0]
	confidence := math.Min(math.Abs(ret)/a.Scale, 1)
	switch {
	case ret > a.Threshold:
		policy[domain.ActionLong] = confidence
		return domain.ActionLong, policy
	case ret < -a.Threshold:
		policy[domain.ActionShort] = confidence
		return domain.ActionShort, policy
	default:
		policy[domain.ActionHold] = 1
		return domain.ActionHold, policy
	}
}

// LinearAgent scores each action as a dot product of its weights with the
// observation (features followed by summary.Vector()) and turns the scores
// into a softmax policy. Missing weights count as zero.
type LinearAgent struct {
	Weights [domain.NumActions][]float64
	Bias    [domain.NumActions]float64
}

func NewLinearAgent(weights [domain.NumActions][]float64, bias [domain.NumActions]float64) *LinearAgent {
	return &LinearAgent{Weights: weights, Bias: bias}
}

func (a *LinearAgent) Name() string { return "linear" }

func (a *LinearAgent) Decide(features domain.FeatureVector, summary domain.BalanceSummary) (domain.Action, domain.Policy) {
	obs := Observation(features, summary)

	var scores [domain.NumActions]float64
	maxScore := math.Inf(-1)
	for i := range scores {
		s := a.Bias[i]
		for j, w := range a.Weights[i] {
			if j >= len(obs) {
				break
			}
			s += w * obs[j]
		}
		if math.IsNaN(s) {
			s = math.Inf(-1)
		}
		scores[i] = s
		if s > maxScore {
			maxScore = s
		}
	}

	var policy domain.Policy
	if math.IsInf(maxScore, 0) {
		policy[domain.ActionHold] = 1
		return domain.ActionHold, policy
	}
	var sum float64
	for i, s := range scores {
		policy[i] = math.Exp(s - maxScore)
		sum += policy[i]
	}
	for i := range policy {
		policy[i] /= sum
	}
	return policy.Best(), policy
}

// Observation is the flat learner input: features then the balance summary.
func Observation(features domain.FeatureVector, summary domain.BalanceSummary) []float64 {
	obs := make([]float64, 0, len(features)+domain.BalanceSummaryDim)
	obs = append(obs, features...)
	return append(obs, summary.Vector()...)
}
