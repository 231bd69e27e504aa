// Package demand generates a pedestrian population and its multi-day trip
// schedule over a road network, ready to feed a movement simulator.
package demand

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/walkgen/walkgen/pkg/config"
	"github.com/walkgen/walkgen/pkg/poi"
	"github.com/walkgen/walkgen/pkg/routing"
	"github.com/walkgen/walkgen/pkg/sim"
	"github.com/walkgen/walkgen/pkg/sumonet"
)

const coreSelectionRetries = 3

// Engine owns the POI set, the preference model and the scheduler for the
// lifetime of one generation run. All stochastic components share one seeded
// generator, so identical parameters reproduce identical output.
type Engine struct {
	cfg    config.Demand
	net    *sumonet.Network
	oracle routing.Oracle
	rnd    *rand.Rand

	pois      []*sumonet.Edge
	model     *PreferenceModel
	scheduler *Scheduler
}

// NewEngine selects the POI set and prepares the stochastic components.
// Core POI selection is retried with fresh samples when the sampled candidates
// have no mutually reachable clique.
func NewEngine(cfg config.Demand, net *sumonet.Network, oracle routing.Oracle) (*Engine, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
		log.Info().Uint64("seed", seed).Msg("No seed configured, derived one from the clock")
	}
	rnd := rand.New(rand.NewSource(seed))

	selector := poi.NewSelector(net, oracle, rnd)

	var pois []*sumonet.Edge
	selectPOIs := func() error {
		selected, err := selector.Select(cfg.POIs, cfg.CorePOIs)
		if err != nil {
			var insufficient *poi.InsufficientConnectivityError
			if errors.As(err, &insufficient) {
				log.Warn().Err(err).Msg("Retrying core POI selection with a fresh sample")
				return err
			}
			return backoff.Permanent(err)
		}
		pois = selected
		return nil
	}

	retrier := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), coreSelectionRetries)
	if err := backoff.Retry(selectPOIs, retrier); err != nil {
		return nil, fmt.Errorf("select pois: %w", err)
	}

	return &Engine{
		cfg:       cfg,
		net:       net,
		oracle:    oracle,
		rnd:       rnd,
		pois:      pois,
		model:     NewPreferenceModel(len(pois), cfg.CommonFavorites, cfg.Favorites),
		scheduler: NewScheduler(oracle, rnd, cfg),
	}, nil
}

func (e *Engine) POIs() []*sumonet.Edge {
	return e.pois
}

func (e *Engine) GeneratePopulation(n int) ([]*Pedestrian, error) {
	return GeneratePopulation(e.cfg, n, e.pois, e.model, e.rnd)
}

func (e *Engine) GenerateTrips(pedestrians []*Pedestrian, days int) []*Trip {
	return e.scheduler.GenerateTrips(pedestrians, days)
}

// RunOptions parameterize one full pipeline execution.
type RunOptions struct {
	Pedestrians int
	Days        int
	OutputDir   string
	GeoFormat   bool
	Simulate    bool
	StatsPath   string
}

// Run executes the whole pipeline: population, trip schedule, trips file,
// route repair with departure reconciliation, optional statistics export and
// optionally the movement simulation with home-position splicing.
func (e *Engine) Run(opts RunOptions) error {
	networkFile := filepath.Base(e.cfg.Network)

	prefix := ""
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := ensureNetworkCopy(e.cfg.Network, filepath.Join(opts.OutputDir, networkFile)); err != nil {
			return err
		}
		prefix = opts.OutputDir + string(os.PathSeparator)
	}

	baseName := func(kind string) string {
		return fmt.Sprintf("%d_%d_%s", opts.Pedestrians, opts.Days, kind)
	}
	tripsPath := prefix + baseName("trips.xml")
	routesPath := prefix + baseName("routes.xml")
	outputPath := prefix + baseName("output.xml")

	pedestrians, err := e.GeneratePopulation(opts.Pedestrians)
	if err != nil {
		return err
	}

	trips := e.GenerateTrips(pedestrians, opts.Days)
	if err := StoreTrips(trips, tripsPath); err != nil {
		return err
	}

	repairer, err := routing.NewDuarouter(e.cfg.Network)
	if err != nil {
		return err
	}
	if err := StoreRoutes(repairer, tripsPath, routesPath); err != nil {
		return err
	}

	if opts.StatsPath != "" {
		if err := WriteStats(pedestrians, trips, opts.StatsPath); err != nil {
			return err
		}
	}

	if !opts.Simulate {
		return nil
	}

	simulation := sim.Options{
		NetworkFile: networkFile,
		RoutesFile:  baseName("routes.xml"),
		OutputFile:  baseName("output.xml"),
		ConfigFile:  baseName("config.sumocfg"),
		Directory:   opts.OutputDir,
		GeoFormat:   opts.GeoFormat,
		Timestep:    e.cfg.TimestepLength,
		Seed:        e.cfg.Seed,
	}
	if err := simulation.WriteConfig(); err != nil {
		return err
	}
	if err := simulation.Run(); err != nil {
		return err
	}

	fullPath, err := sim.SpliceHomes(outputPath, homePositions(pedestrians))
	if err != nil {
		return err
	}

	log.Info().Str("trajectories", fullPath).Msg("Generation pipeline finished")
	return nil
}

// homePositions places every pedestrian at the midpoint of their home edge's
// shape for the simulation's zero timestep.
func homePositions(pedestrians []*Pedestrian) []sim.HomePosition {
	homes := make([]sim.HomePosition, 0, len(pedestrians))
	for _, ped := range pedestrians {
		var midpoint sumonet.Point
		if shape := ped.Home.Shape(); len(shape) > 0 {
			midpoint = shape[len(shape)/2]
		}

		homes = append(homes, sim.HomePosition{
			PedestrianID: ped.ID,
			EdgeID:       ped.Home.ID,
			X:            midpoint.X,
			Y:            midpoint.Y,
		})
	}
	return homes
}

func ensureNetworkCopy(source string, target string) error {
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open network %s: %w", source, err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("copy network to %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy network to %s: %w", target, err)
	}
	return nil
}
