package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Demand holds every tunable of the demand generation pipeline.
// Defaults fills the baseline, a YAML file overrides it, CLI flags override the file.
type Demand struct {
	Network string `yaml:"network"`

	TimestepLength int  `yaml:"timestep_length"`
	DayNightCycle  bool `yaml:"day_night_cycle"`
	WeekCycle      bool `yaml:"week_cycle"`
	DayHours       int  `yaml:"day_hours"`

	// AverageStayDuration is how many seconds a pedestrian dwells at a
	// destination on average. Actual waits are uniform in [0, 2x).
	AverageStayDuration int `yaml:"average_stay_duration"`

	ActivityLevels int     `yaml:"activity_levels"`
	ActivityMu     float64 `yaml:"activity_mu"`
	ActivitySigma  float64 `yaml:"activity_sigma"`

	// POIs is the size of the generated point of interest set.
	// 0 means every reachable edge in the network becomes a POI.
	POIs     int `yaml:"pois"`
	CorePOIs int `yaml:"core_pois"`

	Favorites       bool `yaml:"favorites"`
	CommonFavorites bool `yaml:"common_favorites"`

	// WalkSpeed in m/s. Below SUMO's 1 m/s default to approximate delays.
	WalkSpeed float64 `yaml:"walk_speed"`

	// Seed for the shared random generator. 0 means derive one from the clock.
	Seed uint64 `yaml:"seed"`
}

func Defaults() Demand {
	return Demand{
		TimestepLength:      60,
		DayNightCycle:       true,
		WeekCycle:           true,
		DayHours:            12,
		AverageStayDuration: 60 * 60,
		ActivityLevels:      10,
		ActivityMu:          5.5,
		ActivitySigma:       2.5,
		POIs:                1000,
		CorePOIs:            10,
		Favorites:           true,
		CommonFavorites:     true,
		WalkSpeed:           0.8,
	}
}

// Load reads a YAML parameter file on top of the defaults.
func Load(path string) (Demand, error) {
	demand := Defaults()

	file, err := os.ReadFile(path)
	if err != nil {
		return demand, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(file, &demand); err != nil {
		return demand, fmt.Errorf("parse config %s: %w", path, err)
	}

	return demand, nil
}

func (d Demand) Validate() error {
	if d.Network == "" {
		return fmt.Errorf("no network file configured")
	}
	if d.CorePOIs < 2 {
		return fmt.Errorf("core_pois must be at least 2, got %d", d.CorePOIs)
	}
	if d.WalkSpeed <= 0 {
		return fmt.Errorf("walk_speed must be positive, got %f", d.WalkSpeed)
	}
	if d.DayHours < 0 || d.DayHours > 24 {
		return fmt.Errorf("day_hours must be within [0, 24], got %d", d.DayHours)
	}
	return nil
}
