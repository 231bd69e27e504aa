// Package sim handles the file-based contract with the SUMO movement
// simulator: configuration, execution and trajectory post-processing.
package sim

import (
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/walkgen/walkgen/pkg/routing"
)

const xmlHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"

// Options configure a single simulation run. File names are resolved relative
// to Directory, matching how SUMO resolves paths in its configuration file.
type Options struct {
	NetworkFile string
	RoutesFile  string
	OutputFile  string
	ConfigFile  string
	Directory   string

	// GeoFormat switches trajectory output from UTM x/y to lat/lon.
	GeoFormat bool
	Timestep  int
	Seed      uint64
}

type valueAttr struct {
	Value string `xml:"value,attr"`
}

type configurationDocument struct {
	XMLName        xml.Name `xml:"configuration"`
	Namespace      string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:noNamespaceSchemaLocation,attr"`

	Input struct {
		NetFile    valueAttr `xml:"net-file"`
		RouteFiles valueAttr `xml:"route-files"`
	} `xml:"input"`

	Time struct {
		StepLength valueAttr `xml:"step-length"`
		Begin      valueAttr `xml:"begin"`
	} `xml:"time"`

	Output struct {
		FCDOutput valueAttr  `xml:"fcd-output"`
		Geo       *valueAttr `xml:"fcd-output.geo"`
		Seed      *valueAttr `xml:"seed"`
	} `xml:"output"`

	Processing struct {
		IgnoreRouteErrors valueAttr `xml:"ignore-route-errors"`
		PedestrianModel   valueAttr `xml:"pedestrian.model"`
	} `xml:"processing"`
}

func (o Options) dir() string {
	if o.Directory == "" {
		return "."
	}
	return o.Directory
}

// WriteConfig emits the simulation configuration file. The begin time equals
// the timestep so the simulator skips the zero step the generator splices in
// afterwards.
func (o Options) WriteConfig() error {
	var document configurationDocument
	document.Namespace = "http://www.w3.org/2001/XMLSchema-instance"
	document.SchemaLocation = "http://sumo.dlr.de/xsd/sumo-gui.exeConfiguration.xsd"

	document.Input.NetFile = valueAttr{Value: o.NetworkFile}
	document.Input.RouteFiles = valueAttr{Value: o.RoutesFile}
	document.Time.StepLength = valueAttr{Value: strconv.Itoa(o.Timestep)}
	document.Time.Begin = valueAttr{Value: strconv.Itoa(o.Timestep)}
	document.Output.FCDOutput = valueAttr{Value: o.OutputFile}
	if o.GeoFormat {
		document.Output.Geo = &valueAttr{Value: "true"}
	}
	if o.Seed != 0 {
		document.Output.Seed = &valueAttr{Value: strconv.FormatUint(o.Seed, 10)}
	}
	document.Processing.IgnoreRouteErrors = valueAttr{Value: "true"}
	document.Processing.PedestrianModel = valueAttr{Value: "nonInteracting"}

	out, err := xml.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal simulation config: %w", err)
	}

	path := filepath.Join(o.dir(), o.ConfigFile)
	if err := os.WriteFile(path, append([]byte(xmlHeader), out...), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Run blocks until the simulation finishes. There is no timeout: a hanging
// simulator blocks the pipeline.
func (o Options) Run() error {
	binary, err := routing.SumoBinary("sumo")
	if err != nil {
		return err
	}

	log.Info().Str("config", o.ConfigFile).Str("directory", o.dir()).Msg("Running simulation")

	cmd := exec.Command(binary, o.ConfigFile)
	cmd.Dir = o.dir()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sumo: %w", err)
	}
	return nil
}
