package demand

import (
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"github.com/walkgen/walkgen/pkg/sumonet"
	"github.com/walkgen/walkgen/pkg/util"
)

// Pedestrian is one simulated individual. RemainingTime and TripCount are
// mutated only by the scheduler, strictly sequentially.
type Pedestrian struct {
	ID    int
	Home  *sumonet.Edge
	Level int

	// DailyTravelTime is the walking budget in seconds added each day.
	DailyTravelTime float64
	RemainingTime   float64
	TripCount       int

	// POIs excludes the home edge; Preferences is the matching probability
	// distribution, summing to 1.
	POIs        []*sumonet.Edge
	Preferences []float64
}

// NewPedestrian copies the POI set and preference distribution. When the home
// edge is itself a POI it is dropped and its probability mass folds into the
// neighbouring entry, keeping the distribution summing to 1 without a global
// renormalization.
func NewPedestrian(id int, home *sumonet.Edge, pois []*sumonet.Edge, preferences []float64, level int, dailyTravelTime float64) *Pedestrian {
	pois = slices.Clone(pois)
	preferences = slices.Clone(preferences)

	if i := slices.Index(pois, home); i >= 0 {
		mass := preferences[i]
		pois = util.RemoveAt(pois, i)
		preferences = util.RemoveAt(preferences, i)

		if len(preferences) > 0 {
			j := i
			if j >= len(preferences) {
				j = len(preferences) - 1
			}
			preferences[j] += mass
		}
	}

	return &Pedestrian{
		ID:              id,
		Home:            home,
		Level:           level,
		DailyTravelTime: dailyTravelTime,
		POIs:            pois,
		Preferences:     preferences,
	}
}

// PickPOI draws a destination from the preference distribution, skipping
// indices listed in drawn. The mask implements without-replacement draws
// within one trip; should every POI be masked the full set reopens.
func (p *Pedestrian) PickPOI(rnd *rand.Rand, drawn map[int]bool) (*sumonet.Edge, int) {
	var total float64
	for i, weight := range p.Preferences {
		if !drawn[i] {
			total += weight
		}
	}
	if total <= 0 {
		drawn = map[int]bool{}
		total = util.Sum(p.Preferences)
	}

	r := rnd.Float64() * total
	last := -1
	for i, weight := range p.Preferences {
		if drawn[i] {
			continue
		}
		last = i
		r -= weight
		if r <= 0 {
			return p.POIs[i], i
		}
	}

	// floating point slack left r marginally positive
	return p.POIs[last], last
}
