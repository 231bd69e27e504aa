package demand

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/walkgen/walkgen/pkg/config"
	"github.com/walkgen/walkgen/pkg/sumonet"
)

// GeneratePopulation instantiates n pedestrians: home drawn uniformly from the
// POI set, activity level from a clamped and truncated normal distribution,
// and a daily travel budget growing quadratically with the level.
func GeneratePopulation(cfg config.Demand, n int, pois []*sumonet.Edge, model *PreferenceModel, rnd *rand.Rand) ([]*Pedestrian, error) {
	levels := distuv.Normal{
		Mu:    cfg.ActivityMu,
		Sigma: cfg.ActivitySigma,
		Src:   rnd,
	}
	dayFraction := float64(cfg.DayHours) / 24

	pedestrians := make([]*Pedestrian, 0, n)
	for i := 0; i < n; i++ {
		home := pois[rnd.Intn(len(pois))]
		level := int(math.Min(float64(cfg.ActivityLevels), math.Max(0, levels.Rand())))
		dailyTravelTime := dayFraction * SecondsPerDay * (float64(level*level) * 0.01)

		preferences, err := model.Distribution(rnd)
		if err != nil {
			return nil, fmt.Errorf("pedestrian %d: %w", i, err)
		}

		pedestrians = append(pedestrians, NewPedestrian(i, home, pois, preferences, level, dailyTravelTime))

		if (i+1)%500 == 0 {
			log.Debug().Int("generated", i+1).Int("total", n).Msg("Generating pedestrians")
		}
	}

	log.Info().Int("pedestrians", n).Msg("Generated population")
	return pedestrians, nil
}
