// Package routing provides the two external routing capabilities the demand
// generator consumes: a shortest-path oracle between network edges and the
// duarouter route-repair step.
package routing

import (
	"errors"
	"fmt"
)

// ErrNoPath is returned when no pedestrian path connects two edges.
var ErrNoPath = errors.New("no path between edges")

// Path is a walkable connection between two edges.
type Path struct {
	// Edges in travel order, origin and destination included.
	Edges []string
	// Length is the physical path length in metres.
	Length float64
}

// Oracle answers whether and how two network edges connect for pedestrians.
// Implementations must be safe for concurrent queries.
type Oracle interface {
	ShortestPath(fromEdge string, toEdge string) (*Path, error)
}

// OracleError reports a failed invocation of an external routing binary.
type OracleError struct {
	Binary   string
	ExitCode int
	Stderr   string
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Binary, e.ExitCode, e.Stderr)
}
