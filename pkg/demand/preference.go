package demand

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/walkgen/walkgen/pkg/util"
)

const normalizationTolerance = 1e-9

// DistributionNormalizationError guards against emitting a preference
// distribution whose probabilities do not sum to 1.
type DistributionNormalizationError struct {
	Sum float64
}

func (e *DistributionNormalizationError) Error() string {
	return fmt.Sprintf("poi distribution sums to %.12f instead of 1", e.Sum)
}

// PreferenceModel produces per-pedestrian visit probabilities over the POI set.
// Two additive bell weightings are layered: a population-wide bias peaked at
// the middle of the POI ordering, shared by everyone, and a sharper personal
// bias whose weights are permuted per pedestrian.
type PreferenceModel struct {
	size     int
	common   []float64
	personal []float64
}

func NewPreferenceModel(size int, commonFavorites bool, favorites bool) *PreferenceModel {
	model := &PreferenceModel{size: size}

	if commonFavorites {
		model.common = bellWeights(size, float64(size)/4)
	}
	if favorites {
		model.personal = bellWeights(size, float64(size)/16)
	}

	return model
}

func bellWeights(size int, sigma float64) []float64 {
	bell := distuv.Normal{Mu: float64(size) / 2, Sigma: sigma}

	weights := make([]float64, size)
	for x := range weights {
		weights[x] = bell.Prob(float64(x))
	}
	return weights
}

// Distribution builds one pedestrian's preference distribution. The personal
// bias keeps the same multiset of weights but assigns them to POIs via a
// uniform shuffle. Normalization leaves any rounding deficit on one randomly
// chosen index so the probabilities sum to exactly 1.
func (m *PreferenceModel) Distribution(rnd *rand.Rand) ([]float64, error) {
	weights := make([]float64, m.size)

	if m.common != nil {
		for i := range weights {
			weights[i] += m.common[i]
		}
	}

	if m.personal != nil {
		shuffled := slices.Clone(m.personal)
		rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for i := range weights {
			weights[i] += shuffled[i]
		}
	}

	total := util.Sum(weights)
	if total <= 0 {
		// both biases disabled, everyone is indifferent
		for i := range weights {
			weights[i] = 1 / float64(m.size)
		}
	} else {
		for i := range weights {
			weights[i] /= total
		}
	}

	if deficit := 1 - util.Sum(weights); deficit > 0 {
		weights[rnd.Intn(m.size)] += deficit
	}

	if sum := util.Sum(weights); math.Abs(sum-1) > normalizationTolerance {
		return nil, &DistributionNormalizationError{Sum: sum}
	}

	return weights, nil
}
