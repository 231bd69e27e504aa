package demand

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/walkgen/walkgen/pkg/util"
)

func TestDistributionSumsToOne(t *testing.T) {
	cases := []struct {
		name      string
		common    bool
		favorites bool
	}{
		{"both biases", true, true},
		{"common only", true, false},
		{"favorites only", false, true},
		{"no biases", false, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			model := NewPreferenceModel(50, c.common, c.favorites)
			rnd := rand.New(rand.NewSource(7))

			for draw := 0; draw < 20; draw++ {
				weights, err := model.Distribution(rnd)
				if err != nil {
					t.Fatalf("Distribution failed: %v", err)
				}
				if len(weights) != 50 {
					t.Fatalf("distribution has %d entries, want 50", len(weights))
				}
				if sum := util.Sum(weights); math.Abs(sum-1) > normalizationTolerance {
					t.Errorf("draw %d sums to %.15f", draw, sum)
				}
			}
		})
	}
}

func TestDistributionUniformWithoutBiases(t *testing.T) {
	model := NewPreferenceModel(10, false, false)

	weights, err := model.Distribution(rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Distribution failed: %v", err)
	}

	for i, weight := range weights {
		if math.Abs(weight-0.1) > 1e-9 {
			t.Errorf("weight %d = %.15f, want 0.1", i, weight)
		}
	}
}

func TestDistributionCommonBiasPeaksAtCenter(t *testing.T) {
	model := NewPreferenceModel(100, true, false)

	weights, err := model.Distribution(rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Distribution failed: %v", err)
	}

	if weights[50] <= weights[0] || weights[50] <= weights[99] {
		t.Errorf("center weight %.6f not above edges %.6f / %.6f", weights[50], weights[0], weights[99])
	}
}

func TestDistributionDeterministicUnderSeed(t *testing.T) {
	model := NewPreferenceModel(30, true, true)

	first, err := model.Distribution(rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("first Distribution failed: %v", err)
	}
	second, err := model.Distribution(rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("second Distribution failed: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("weight %d differs between seeded runs", i)
		}
	}
}
