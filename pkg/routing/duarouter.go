package routing

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Duarouter wraps SUMO's duarouter binary, the external route-repair oracle.
// It may rewrite leg sets and departure times; callers reconcile afterwards.
type Duarouter struct {
	Network string
	Binary  string
}

func NewDuarouter(network string) (*Duarouter, error) {
	binary, err := SumoBinary("duarouter")
	if err != nil {
		return nil, err
	}

	return &Duarouter{
		Network: network,
		Binary:  binary,
	}, nil
}

// SumoBinary locates a SUMO tool, preferring $SUMO_HOME/bin over $PATH.
func SumoBinary(name string) (string, error) {
	if home := os.Getenv("SUMO_HOME"); home != "" {
		path := filepath.Join(home, "bin", name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("cannot locate SUMO binary %s, set SUMO_HOME: %w", name, err)
	}
	return path, nil
}

// Repair resolves a trips file into a routes file, repairing broken legs.
func (d *Duarouter) Repair(tripsPath string, routesPath string) error {
	log.Info().Str("trips", tripsPath).Str("routes", routesPath).Msg("Running duarouter route repair")

	var stderr bytes.Buffer
	cmd := exec.Command(d.Binary, "-W", "--repair",
		"-n", d.Network, "-r", tripsPath, "-o", routesPath)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return &OracleError{
			Binary:   "duarouter",
			ExitCode: exitCode,
			Stderr:   stderr.String(),
		}
	}

	return nil
}

// CheckPath reports whether duarouter accepts a single-leg trip between two
// edges. Slower but stricter than the in-process oracle.
func (d *Duarouter) CheckPath(tripsPath string) bool {
	cmd := exec.Command(d.Binary, "-W",
		"-n", d.Network, "-r", tripsPath, "-o", os.DevNull)
	return cmd.Run() == nil
}
