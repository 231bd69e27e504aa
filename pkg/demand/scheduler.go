package demand

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"github.com/walkgen/walkgen/pkg/config"
	"github.com/walkgen/walkgen/pkg/routing"
	"github.com/walkgen/walkgen/pkg/util"
)

// Scheduler turns pedestrian time budgets into ordered trips. All mutation of
// pedestrian state happens here, strictly sequentially per pedestrian.
type Scheduler struct {
	oracle routing.Oracle
	rnd    *rand.Rand

	walkSpeed   float64
	averageStay int
	weekCycle   bool
	departures  []float64
}

func NewScheduler(oracle routing.Oracle, rnd *rand.Rand, cfg config.Demand) *Scheduler {
	return &Scheduler{
		oracle:      oracle,
		rnd:         rnd,
		walkSpeed:   cfg.WalkSpeed,
		averageStay: cfg.AverageStayDuration,
		weekCycle:   cfg.WeekCycle,
		departures:  departureDistribution(cfg.DayNightCycle),
	}
}

// maxLegs caps the outward stops per trip:
// levels 8-10 manage home->1->2->3->home, 5-7 home->1->2->home,
// 0-4 a single out-and-back.
func maxLegs(level int) int {
	return int(math.Round(float64(level) / 3))
}

func (s *Scheduler) walkDuration(from string, to string) (int, error) {
	path, err := s.oracle.ShortestPath(from, to)
	if err != nil {
		return 0, fmt.Errorf("walk %s -> %s: %w", from, to, err)
	}
	return int(path.Length / s.walkSpeed), nil
}

// pathSequence builds the leg chain of a single trip. At least one outward leg
// is always taken, even on an exhausted budget, and the chain always closes
// with a return home. Destinations are drawn without replacement within the
// trip.
func (s *Scheduler) pathSequence(ped *Pedestrian) ([]Leg, []int, error) {
	limit := maxLegs(ped.Level)
	drawn := map[int]bool{}

	var legs []Leg
	var durations []int

	target := ped.Home
	for len(legs) == 0 || (len(legs) < limit && ped.RemainingTime > 0) {
		source := target
		var index int
		target, index = ped.PickPOI(s.rnd, drawn)
		drawn[index] = true

		duration, err := s.walkDuration(source.ID, target.ID)
		if err != nil {
			return nil, nil, err
		}

		legs = append(legs, Leg{From: source.ID, To: target.ID})
		durations = append(durations, duration)
		ped.RemainingTime -= float64(duration)
	}

	duration, err := s.walkDuration(target.ID, ped.Home.ID)
	if err != nil {
		return nil, nil, err
	}
	legs = append(legs, Leg{From: target.ID, To: ped.Home.ID})
	durations = append(durations, duration)
	ped.RemainingTime -= float64(duration)

	return legs, durations, nil
}

// GenerateTrip builds one trip for the given day and charges its duration,
// dwell times included, against the pedestrian's remaining budget. The budget
// may go negative; a started trip is never rejected.
func (s *Scheduler) GenerateTrip(ped *Pedestrian, day int) (*Trip, error) {
	legs, durations, err := s.pathSequence(ped)
	if err != nil {
		return nil, err
	}

	waits := make([]int, len(legs)-1)
	for i := range waits {
		waits[i] = s.rnd.Intn(s.averageStay * 2)
	}
	ped.RemainingTime -= float64(util.Sum(waits))

	times := make([]int, len(legs))
	times[0] = sampleMinute(s.rnd, s.departures) * 60
	for i := 1; i < len(times); i++ {
		times[i] = times[i-1] + durations[i-1] + waits[i-1]
	}

	trip := &Trip{
		ID:           fmt.Sprintf("%d_%d", ped.ID, ped.TripCount),
		PedestrianID: ped.ID,
		StartTime:    day*SecondsPerDay + times[0],
		Legs:         legs,
		Times:        times,
		Durations:    durations,
		WaitTimes:    waits,
	}
	ped.TripCount++

	return trip, nil
}

// halfBudgetDay mirrors the original scheduler's effective weekend condition:
// the day%7==1 arm applies even with the week cycle disabled.
func (s *Scheduler) halfBudgetDay(day int) bool {
	return (s.weekCycle && day%7 == 0) || day%7 == 1
}

// GenerateTrips runs the warm-up day and then the requested days for every
// pedestrian, returning the schedule sorted by start time. Warm-up trips
// consume budget and trip ids but are not emitted. A routing failure abandons
// the affected pedestrian and the run continues.
func (s *Scheduler) GenerateTrips(pedestrians []*Pedestrian, days int) []*Trip {
	var trips []*Trip
	abandoned := map[int]bool{}

	for _, ped := range pedestrians {
		ped.RemainingTime += ped.DailyTravelTime / 2
		for ped.RemainingTime > 0 {
			if _, err := s.GenerateTrip(ped, -1); err != nil {
				log.Error().Err(err).Int("pedestrian", ped.ID).Int("day", -1).Msg("Abandoning pedestrian after routing failure")
				abandoned[ped.ID] = true
				break
			}
		}
	}

	for day := 0; day < days; day++ {
		log.Info().Int("day", day+1).Int("days", days).Msg("Generating trips")

		for _, ped := range pedestrians {
			if abandoned[ped.ID] {
				continue
			}

			if s.halfBudgetDay(day) {
				ped.RemainingTime += ped.DailyTravelTime / 2
			} else {
				ped.RemainingTime += ped.DailyTravelTime
			}

			for ped.RemainingTime > 0 {
				trip, err := s.GenerateTrip(ped, day)
				if err != nil {
					log.Error().Err(err).Int("pedestrian", ped.ID).Int("day", day).Msg("Abandoning pedestrian after routing failure")
					abandoned[ped.ID] = true
					break
				}
				trips = append(trips, trip)
			}
		}
	}

	slices.SortStableFunc(trips, func(a, b *Trip) int {
		return a.StartTime - b.StartTime
	})

	log.Info().Int("trips", len(trips)).Int("seconds", days*SecondsPerDay).Msg("Generated trip schedule")
	return trips
}
