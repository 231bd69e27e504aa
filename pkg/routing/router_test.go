package routing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/walkgen/walkgen/pkg/sumonet"
)

// chainNetwork builds a directed chain J0 -> J1 -> ... with one edge per hop
// plus matching reverse edges, every edge 100m and pedestrian accessible.
func chainNetwork(hops int) *sumonet.Network {
	var edges []*sumonet.Edge
	for i := 0; i < hops; i++ {
		forward := fmt.Sprintf("E%d", i)
		backward := fmt.Sprintf("-E%d", i)
		from := fmt.Sprintf("J%d", i)
		to := fmt.Sprintf("J%d", i+1)

		edges = append(edges, &sumonet.Edge{
			ID: forward, From: from, To: to,
			Lanes: []sumonet.Lane{{ID: forward + "_0", Length: 100, Allow: "pedestrian"}},
		})
		edges = append(edges, &sumonet.Edge{
			ID: backward, From: to, To: from,
			Lanes: []sumonet.Lane{{ID: backward + "_0", Length: 100, Allow: "pedestrian"}},
		})
	}
	return sumonet.NewNetwork(edges)
}

func TestShortestPathAlongChain(t *testing.T) {
	router := NewNetworkRouter(chainNetwork(4))

	path, err := router.ShortestPath("E0", "E3")
	if err != nil {
		t.Fatalf("ShortestPath failed: %v", err)
	}

	// all four chain edges are traversed, origin included
	if len(path.Edges) != 4 {
		t.Fatalf("path has %d edges, want 4: %v", len(path.Edges), path.Edges)
	}
	if path.Length != 400 {
		t.Errorf("path length = %f, want 400", path.Length)
	}
	if path.Edges[0] != "E0" || path.Edges[3] != "E3" {
		t.Errorf("path endpoints wrong: %v", path.Edges)
	}
}

func TestShortestPathSameEdge(t *testing.T) {
	router := NewNetworkRouter(chainNetwork(2))

	path, err := router.ShortestPath("E1", "E1")
	if err != nil {
		t.Fatalf("ShortestPath failed: %v", err)
	}
	if len(path.Edges) != 1 || path.Length != 100 {
		t.Errorf("same-edge path = %v (%.0f), want just E1 at 100", path.Edges, path.Length)
	}
}

func TestShortestPathDisconnected(t *testing.T) {
	edges := []*sumonet.Edge{
		{ID: "A", From: "J0", To: "J1", Lanes: []sumonet.Lane{{ID: "A_0", Length: 50, Allow: "pedestrian"}}},
		{ID: "B", From: "J5", To: "J6", Lanes: []sumonet.Lane{{ID: "B_0", Length: 50, Allow: "pedestrian"}}},
	}
	router := NewNetworkRouter(sumonet.NewNetwork(edges))

	if _, err := router.ShortestPath("A", "B"); !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
}

func TestShortestPathRespectsDirection(t *testing.T) {
	// one-way chain only, no reverse edges
	edges := []*sumonet.Edge{
		{ID: "A", From: "J0", To: "J1", Lanes: []sumonet.Lane{{ID: "A_0", Length: 50, Allow: "pedestrian"}}},
		{ID: "B", From: "J1", To: "J2", Lanes: []sumonet.Lane{{ID: "B_0", Length: 50, Allow: "pedestrian"}}},
	}
	router := NewNetworkRouter(sumonet.NewNetwork(edges))

	if _, err := router.ShortestPath("A", "B"); err != nil {
		t.Fatalf("forward path should exist: %v", err)
	}
	if _, err := router.ShortestPath("B", "A"); !errors.Is(err, ErrNoPath) {
		t.Fatalf("reverse path should not exist, got %v", err)
	}
}

func TestShortestPathUnknownEdge(t *testing.T) {
	router := NewNetworkRouter(chainNetwork(1))

	if _, err := router.ShortestPath("nope", "E0"); err == nil {
		t.Fatalf("expected an error for an unknown origin")
	}
	if _, err := router.ShortestPath("E0", "nope"); err == nil {
		t.Fatalf("expected an error for an unknown destination")
	}
}

func TestShortestPathSkipsInaccessibleEdges(t *testing.T) {
	edges := []*sumonet.Edge{
		{ID: "A", From: "J0", To: "J1", Lanes: []sumonet.Lane{{ID: "A_0", Length: 50, Allow: "pedestrian"}}},
		{ID: "road", From: "J1", To: "J2", Lanes: []sumonet.Lane{{ID: "road_0", Length: 50, Disallow: "pedestrian"}}},
		{ID: "B", From: "J2", To: "J3", Lanes: []sumonet.Lane{{ID: "B_0", Length: 50, Allow: "pedestrian"}}},
	}
	router := NewNetworkRouter(sumonet.NewNetwork(edges))

	if _, err := router.ShortestPath("A", "B"); !errors.Is(err, ErrNoPath) {
		t.Fatalf("path through a pedestrian-free edge should not exist, got %v", err)
	}
}
