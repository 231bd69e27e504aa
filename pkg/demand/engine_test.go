package demand

import (
	"fmt"
	"math"
	"testing"

	"github.com/walkgen/walkgen/pkg/config"
	"github.com/walkgen/walkgen/pkg/sumonet"
)

func engineNetwork(edges int) *sumonet.Network {
	built := make([]*sumonet.Edge, edges)
	for i := range built {
		id := fmt.Sprintf("E%d", i)
		built[i] = &sumonet.Edge{
			ID:   id,
			From: fmt.Sprintf("J%d", i),
			To:   fmt.Sprintf("J%d", i+1),
			Lanes: []sumonet.Lane{
				{ID: id + "_0", Length: 100, Allow: "pedestrian"},
			},
		}
	}
	return sumonet.NewNetwork(built)
}

func engineConfig() config.Demand {
	cfg := config.Defaults()
	cfg.Network = "net.xml"
	cfg.Seed = 42
	cfg.POIs = 4
	cfg.CorePOIs = 2
	cfg.WalkSpeed = 1.0
	cfg.AverageStayDuration = 30
	return cfg
}

func TestNewEngineSelectsPOIs(t *testing.T) {
	engine, err := NewEngine(engineConfig(), engineNetwork(8), &fixedOracle{length: 300})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if got := len(engine.POIs()); got != 4 {
		t.Fatalf("engine selected %d POIs, want 4", got)
	}
}

func TestEngineDeterministicUnderSeed(t *testing.T) {
	type run struct {
		pois  []string
		peds  []*Pedestrian
		trips []*Trip
	}

	execute := func() run {
		engine, err := NewEngine(engineConfig(), engineNetwork(8), &fixedOracle{length: 300})
		if err != nil {
			t.Fatalf("NewEngine failed: %v", err)
		}

		var pois []string
		for _, edge := range engine.POIs() {
			pois = append(pois, edge.ID)
		}

		peds, err := engine.GeneratePopulation(5)
		if err != nil {
			t.Fatalf("GeneratePopulation failed: %v", err)
		}
		return run{pois: pois, peds: peds, trips: engine.GenerateTrips(peds, 2)}
	}

	first := execute()
	second := execute()

	if len(first.pois) != len(second.pois) {
		t.Fatalf("POI counts differ: %d vs %d", len(first.pois), len(second.pois))
	}
	for i := range first.pois {
		if first.pois[i] != second.pois[i] {
			t.Fatalf("POI %d differs: %s vs %s", i, first.pois[i], second.pois[i])
		}
	}

	for i := range first.peds {
		a, b := first.peds[i], second.peds[i]
		if a.Home.ID != b.Home.ID || a.Level != b.Level || a.DailyTravelTime != b.DailyTravelTime {
			t.Fatalf("pedestrian %d differs between seeded runs", i)
		}
	}

	if len(first.trips) != len(second.trips) {
		t.Fatalf("trip counts differ: %d vs %d", len(first.trips), len(second.trips))
	}
	for i := range first.trips {
		a, b := first.trips[i], second.trips[i]
		if a.ID != b.ID || a.StartTime != b.StartTime || len(a.Legs) != len(b.Legs) {
			t.Fatalf("trip %d differs: %s@%d vs %s@%d", i, a.ID, a.StartTime, b.ID, b.StartTime)
		}
	}
}

func TestNewEngineInsufficientConnectivity(t *testing.T) {
	blocked := map[string]bool{}
	for i := 0; i < 8; i++ {
		blocked[fmt.Sprintf("E%d", i)] = true
	}

	_, err := NewEngine(engineConfig(), engineNetwork(8), &fixedOracle{length: 300, blocked: blocked})
	if err == nil {
		t.Fatalf("expected an error when no core clique exists")
	}
}

func TestGeneratePopulationLevelsWithinRange(t *testing.T) {
	cfg := engineConfig()
	engine, err := NewEngine(cfg, engineNetwork(8), &fixedOracle{length: 300})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	peds, err := engine.GeneratePopulation(200)
	if err != nil {
		t.Fatalf("GeneratePopulation failed: %v", err)
	}
	if len(peds) != 200 {
		t.Fatalf("generated %d pedestrians, want 200", len(peds))
	}

	dayFraction := float64(cfg.DayHours) / 24
	for _, ped := range peds {
		if ped.Level < 0 || ped.Level > cfg.ActivityLevels {
			t.Fatalf("pedestrian %d has level %d outside [0, %d]", ped.ID, ped.Level, cfg.ActivityLevels)
		}
		want := dayFraction * SecondsPerDay * float64(ped.Level*ped.Level) * 0.01
		if math.Abs(ped.DailyTravelTime-want) > 1e-6 {
			t.Errorf("pedestrian %d budget %f, want %f for level %d",
				ped.ID, ped.DailyTravelTime, want, ped.Level)
		}
	}
}
