package demand

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

type pedestrianStat struct {
	PedestrianID       int `csv:"pedestrian_id"`
	ActivityLevel      int `csv:"activity_level"`
	DailyTravelSeconds int `csv:"daily_travel_seconds"`
	Trips              int `csv:"trips"`
}

// WriteStats exports a per-pedestrian activity summary as CSV. Trip counts
// cover emitted trips only, warm-up trips are excluded.
func WriteStats(pedestrians []*Pedestrian, trips []*Trip, path string) error {
	counts := map[int]int{}
	for _, trip := range trips {
		counts[trip.PedestrianID]++
	}

	stats := make([]*pedestrianStat, 0, len(pedestrians))
	for _, ped := range pedestrians {
		stats = append(stats, &pedestrianStat{
			PedestrianID:       ped.ID,
			ActivityLevel:      ped.Level,
			DailyTravelSeconds: int(ped.DailyTravelTime),
			Trips:              counts[ped.ID],
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	return gocsv.MarshalFile(&stats, file)
}
