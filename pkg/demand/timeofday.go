package demand

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/walkgen/walkgen/pkg/util"
)

const (
	MinutesPerDay = 24 * 60
	SecondsPerDay = 24 * 60 * 60
)

// departureDistribution is the per-minute probability mass of trip start
// times: Gaussian kernels around the morning commute, lunch and the evening,
// normalized to sum to 1. Flat when day/night cycling is disabled.
func departureDistribution(dayNightCycle bool) []float64 {
	weights := make([]float64, MinutesPerDay)

	if !dayNightCycle {
		for x := range weights {
			weights[x] = 1.0 / MinutesPerDay
		}
		return weights
	}

	kernels := []distuv.Normal{
		{Mu: 9 * 60, Sigma: 24 * 9},
		{Mu: 13 * 60, Sigma: 24 * 12},
		{Mu: 18 * 60, Sigma: 24 * 9},
	}

	for x := range weights {
		for _, kernel := range kernels {
			weights[x] += kernel.Prob(float64(x))
		}
	}

	total := util.Sum(weights)
	for x := range weights {
		weights[x] /= total
	}
	return weights
}

// sampleMinute draws a minute of the day from the given probability masses.
func sampleMinute(rnd *rand.Rand, weights []float64) int {
	r := rnd.Float64()
	for minute, weight := range weights {
		r -= weight
		if r <= 0 {
			return minute
		}
	}
	return len(weights) - 1
}
