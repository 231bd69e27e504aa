package sim

import (
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "sim",
		Usage: "Runs the SUMO movement simulation",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run SUMO against an existing configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Usage:    "simulation configuration file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "directory",
						Usage: "working directory for the simulation",
					},
				},
				Action: func(c *cli.Context) error {
					options := Options{
						ConfigFile: c.String("config"),
						Directory:  c.String("directory"),
					}
					return options.Run()
				},
			},
		},
	}
}
