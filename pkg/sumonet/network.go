// Package sumonet is a read-only adapter over a SUMO plain network file.
// It exposes the edges, their pedestrian accessibility and their geometry,
// which is everything the demand generator needs from the network provider.
package sumonet

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

type Point struct {
	X float64
	Y float64
}

type Lane struct {
	ID       string  `xml:"id,attr"`
	Index    int     `xml:"index,attr"`
	Speed    float64 `xml:"speed,attr"`
	Length   float64 `xml:"length,attr"`
	Allow    string  `xml:"allow,attr"`
	Disallow string  `xml:"disallow,attr"`
	RawShape string  `xml:"shape,attr"`
}

type Edge struct {
	ID       string `xml:"id,attr"`
	From     string `xml:"from,attr"`
	To       string `xml:"to,attr"`
	Function string `xml:"function,attr"`
	RawShape string `xml:"shape,attr"`
	Lanes    []Lane `xml:"lane"`

	shape []Point
}

// Allows reports whether any lane of the edge permits the given vehicle class.
// A lane with an explicit allow list permits only the listed classes, otherwise
// everything not on the disallow list is permitted.
func (e *Edge) Allows(class string) bool {
	for _, lane := range e.Lanes {
		if lane.allows(class) {
			return true
		}
	}
	return false
}

func (l *Lane) allows(class string) bool {
	if l.Allow != "" {
		return containsClass(l.Allow, class)
	}
	if l.Disallow != "" {
		return !containsClass(l.Disallow, class)
	}
	return true
}

func containsClass(list string, class string) bool {
	if list == "all" {
		return class != ""
	}
	for _, entry := range strings.Fields(list) {
		if entry == class {
			return true
		}
	}
	return false
}

// Length returns the longest lane length of the edge.
func (e *Edge) Length() float64 {
	var length float64
	for _, lane := range e.Lanes {
		if lane.Length > length {
			length = lane.Length
		}
	}
	return length
}

// Shape returns the edge geometry, falling back to the first lane's shape when
// the edge element itself carries none.
func (e *Edge) Shape() []Point {
	return e.shape
}

func (e *Edge) parseShapes() error {
	raw := e.RawShape
	if raw == "" && len(e.Lanes) > 0 {
		raw = e.Lanes[0].RawShape
	}

	shape, err := parseShape(raw)
	if err != nil {
		return fmt.Errorf("edge %s: %w", e.ID, err)
	}
	e.shape = shape

	return nil
}

func parseShape(raw string) ([]Point, error) {
	if raw == "" {
		return nil, nil
	}

	pairs := strings.Fields(raw)
	shape := make([]Point, 0, len(pairs))
	for _, pair := range pairs {
		coords := strings.Split(pair, ",")
		if len(coords) < 2 {
			return nil, fmt.Errorf("malformed shape point %q", pair)
		}

		x, err := strconv.ParseFloat(coords[0], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed shape point %q: %w", pair, err)
		}
		y, err := strconv.ParseFloat(coords[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed shape point %q: %w", pair, err)
		}

		shape = append(shape, Point{X: x, Y: y})
	}
	return shape, nil
}

type Network struct {
	edges  []*Edge
	edgeID map[string]*Edge
}

// NewNetwork builds a Network from an edge list, preserving order.
// Used by tools and tests that construct networks programmatically.
func NewNetwork(edges []*Edge) *Network {
	network := &Network{
		edges:  edges,
		edgeID: map[string]*Edge{},
	}
	for _, edge := range edges {
		if edge.shape == nil {
			edge.parseShapes()
		}
		network.edgeID[edge.ID] = edge
	}
	return network
}

// Edges returns every non-internal edge in document order. The stable ordering
// is what makes seeded runs reproducible, so callers must not rely on any other
// ordering source.
func (n *Network) Edges() []*Edge {
	return n.edges
}

func (n *Network) Edge(id string) *Edge {
	return n.edgeID[id]
}

// Load parses a SUMO .net.xml file.
func Load(path string) (*Network, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open network %s: %w", path, err)
	}
	defer file.Close()

	return Parse(file)
}

func Parse(reader io.Reader) (*Network, error) {
	var edges []*Edge

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := d.Token()
		if tok == nil || err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode network: %w", err)
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			if ty.Name.Local != "edge" {
				continue
			}

			var edge Edge
			if err := d.DecodeElement(&edge, &ty); err != nil {
				return nil, fmt.Errorf("decode edge: %w", err)
			}

			// Internal junction edges are not trip endpoints.
			if edge.Function == "internal" {
				continue
			}

			if err := edge.parseShapes(); err != nil {
				return nil, err
			}
			edges = append(edges, &edge)
		}
	}

	if len(edges) == 0 {
		return nil, fmt.Errorf("network contains no usable edges")
	}

	return NewNetwork(edges), nil
}
