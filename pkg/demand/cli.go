package demand

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/walkgen/walkgen/pkg/config"
	"github.com/walkgen/walkgen/pkg/routing"
	"github.com/walkgen/walkgen/pkg/sumonet"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "demand",
		Usage: "Generates pedestrian populations and trip schedules",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "generate a multi-day trip schedule for a network",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "network",
						Usage: "SUMO network file",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "YAML parameter file",
					},
					&cli.IntFlag{
						Name:  "pedestrians",
						Value: 10,
						Usage: "number of pedestrians to generate",
					},
					&cli.IntFlag{
						Name:  "days",
						Value: 10,
						Usage: "number of simulated days",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "directory for generated files",
					},
					&cli.Uint64Flag{
						Name:  "seed",
						Usage: "random generator seed, 0 derives one from the clock",
					},
					&cli.IntFlag{
						Name:  "pois",
						Usage: "number of points of interest, 0 selects every reachable edge",
					},
					&cli.IntFlag{
						Name:  "core-pois",
						Usage: "number of mutually reachable core points of interest",
					},
					&cli.Float64Flag{
						Name:  "walk-speed",
						Usage: "pedestrian walking speed in m/s",
					},
					&cli.BoolFlag{
						Name:  "simulate",
						Usage: "run the movement simulation after generating routes",
					},
					&cli.BoolFlag{
						Name:  "geo",
						Usage: "emit trajectories as lat/lon instead of UTM coordinates",
					},
					&cli.StringFlag{
						Name:  "stats",
						Usage: "write a per-pedestrian statistics CSV to this file",
					},
				},
				Action: func(c *cli.Context) error {
					cfg := config.Defaults()

					if path := c.String("config"); path != "" {
						loaded, err := config.Load(path)
						if err != nil {
							return err
						}
						cfg = loaded
					}

					if c.IsSet("network") {
						cfg.Network = c.String("network")
					}
					if c.IsSet("seed") {
						cfg.Seed = c.Uint64("seed")
					}
					if c.IsSet("pois") {
						cfg.POIs = c.Int("pois")
					}
					if c.IsSet("core-pois") {
						cfg.CorePOIs = c.Int("core-pois")
					}
					if c.IsSet("walk-speed") {
						cfg.WalkSpeed = c.Float64("walk-speed")
					}

					if err := cfg.Validate(); err != nil {
						return fmt.Errorf("invalid configuration: %w", err)
					}
					log.Debug().Msg(pretty.Sprint(cfg))

					net, err := sumonet.Load(cfg.Network)
					if err != nil {
						return err
					}
					log.Info().Str("network", cfg.Network).Int("edges", len(net.Edges())).Msg("Loaded network")

					engine, err := NewEngine(cfg, net, routing.NewNetworkRouter(net))
					if err != nil {
						return err
					}

					return engine.Run(RunOptions{
						Pedestrians: c.Int("pedestrians"),
						Days:        c.Int("days"),
						OutputDir:   c.String("output-dir"),
						GeoFormat:   c.Bool("geo"),
						Simulate:    c.Bool("simulate"),
						StatsPath:   c.String("stats"),
					})
				},
			},
		},
	}
}
