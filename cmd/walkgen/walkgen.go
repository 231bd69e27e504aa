package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/walkgen/walkgen/pkg/demand"
	"github.com/walkgen/walkgen/pkg/sim"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("WALKGEN_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("WALKGEN_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "walkgen",
		Description: "Generates pedestrian populations and walking demand for SUMO networks",

		Commands: []*cli.Command{
			demand.RegisterCLI(),
			sim.RegisterCLI(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}
