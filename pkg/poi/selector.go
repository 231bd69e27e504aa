// Package poi selects the point of interest set: the trip endpoints of the
// generated demand. POIs are network edges proven mutually reachable with a
// small fully connected core, so trips scheduled between them are overwhelmingly
// routable.
package poi

import (
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/walkgen/walkgen/pkg/routing"
	"github.com/walkgen/walkgen/pkg/sumonet"
	"github.com/walkgen/walkgen/pkg/util"
)

type Selector struct {
	net    *sumonet.Network
	oracle routing.Oracle
	rnd    *rand.Rand

	// Workers bounds the goroutines running pairwise reachability checks.
	Workers int
}

func NewSelector(net *sumonet.Network, oracle routing.Oracle, rnd *rand.Rand) *Selector {
	return &Selector{
		net:     net,
		oracle:  oracle,
		rnd:     rnd,
		Workers: runtime.NumCPU(),
	}
}

// Select grows the full POI set: the largest accessible component is reduced to
// a core clique of mutually reachable anchors, then candidates are admitted as
// long as they reach (and are reached by) the first anchor. A targetCount of 0
// admits every qualifying edge.
func (s *Selector) Select(targetCount int, coreCount int) ([]*sumonet.Edge, error) {
	candidates := s.ConnectedEdges()

	core, err := s.CorePOIs(candidates, coreCount)
	if err != nil {
		return nil, err
	}

	anchor := core[0]
	remaining := slices.Clone(candidates)
	total := len(remaining)
	var pois []*sumonet.Edge

	for len(remaining) > 0 && (targetCount == 0 || len(pois) < targetCount) {
		i := s.rnd.Intn(len(remaining))
		candidate := remaining[i]
		remaining = util.RemoveAt(remaining, i)

		if s.bothWays(candidate.ID, anchor.ID) {
			pois = append(pois, candidate)
		}

		if examined := total - len(remaining); examined%500 == 0 {
			log.Debug().Int("examined", examined).Int("admitted", len(pois)).Msg("Growing points of interest")
		}
	}

	if len(pois) == 0 {
		return nil, fmt.Errorf("no points of interest reachable from anchor %s", anchor.ID)
	}

	log.Info().Int("pois", len(pois)).Msg("Generated points of interest")
	return pois, nil
}

// ConnectedEdges returns the pedestrian-accessible edges whose endpoints lie in
// the largest connected component of the undirected accessibility graph, in
// network document order.
func (s *Selector) ConnectedEdges() []*sumonet.Edge {
	accessible := slices.Clone(s.net.Edges())
	util.InPlaceFilter(&accessible, func(e *sumonet.Edge) bool {
		return e.Allows("pedestrian")
	})

	nodeIDs := map[string]int64{}
	nodeID := func(name string) int64 {
		if id, ok := nodeIDs[name]; ok {
			return id
		}
		id := int64(len(nodeIDs))
		nodeIDs[name] = id
		return id
	}

	g := simple.NewUndirectedGraph()
	for _, edge := range accessible {
		from := nodeID(edge.From)
		to := nodeID(edge.To)

		if g.Node(from) == nil {
			g.AddNode(simple.Node(from))
		}
		if from == to {
			continue
		}
		if g.Node(to) == nil {
			g.AddNode(simple.Node(to))
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
	}

	component := largestComponent(topo.ConnectedComponents(g))
	util.InPlaceFilter(&accessible, func(e *sumonet.Edge) bool {
		return component[nodeIDs[e.From]] && component[nodeIDs[e.To]]
	})

	log.Info().Int("edges", len(accessible)).Msg("Largest accessible component")
	return accessible
}

// largestComponent picks by size, breaking ties on the smallest contained node
// id so the choice does not depend on gonum's map iteration order.
func largestComponent(components [][]graph.Node) map[int64]bool {
	var best []graph.Node
	bestMin := int64(-1)

	for _, component := range components {
		min := component[0].ID()
		for _, node := range component {
			if node.ID() < min {
				min = node.ID()
			}
		}
		if len(component) > len(best) || (len(component) == len(best) && min < bestMin) {
			best = component
			bestMin = min
		}
	}

	members := make(map[int64]bool, len(best))
	for _, node := range best {
		members[node.ID()] = true
	}
	return members
}

// CorePOIs samples coreCount candidates without replacement and returns the
// maximum clique under pairwise bidirectional reachability. Ties between
// maximum cliques break deterministically on member order.
func (s *Selector) CorePOIs(candidates []*sumonet.Edge, coreCount int) ([]*sumonet.Edge, error) {
	if coreCount > len(candidates) {
		return nil, fmt.Errorf("cannot sample %d core candidates from %d accessible edges", coreCount, len(candidates))
	}

	sample := make([]*sumonet.Edge, coreCount)
	for i, j := range s.rnd.Perm(len(candidates))[:coreCount] {
		sample[i] = candidates[j]
	}

	type pair struct{ a, b int }
	var pairs []pair
	for a := 0; a < coreCount; a++ {
		for b := a + 1; b < coreCount; b++ {
			pairs = append(pairs, pair{a, b})
		}
	}

	// Pairwise checks are independent, the result slice keeps them ordered
	// regardless of which goroutine finishes first.
	connected := make([]bool, len(pairs))
	var checked atomic.Int64

	workers := pool.New().WithMaxGoroutines(s.Workers)
	for i, p := range pairs {
		i, p := i, p
		workers.Go(func() {
			connected[i] = s.bothWays(sample[p.a].ID, sample[p.b].ID)

			if done := checked.Add(1); done%10 == 0 || int(done) == len(pairs) {
				log.Debug().Int64("checked", done).Int("total", len(pairs)).Msg("Checking core candidate pairs")
			}
		})
	}
	workers.Wait()

	cliqueGraph := simple.NewUndirectedGraph()
	for i, p := range pairs {
		if connected[i] {
			cliqueGraph.SetEdge(cliqueGraph.NewEdge(simple.Node(p.a), simple.Node(p.b)))
		}
	}

	if cliqueGraph.Nodes().Len() == 0 {
		return nil, &InsufficientConnectivityError{CoreCount: coreCount}
	}

	best := maximumClique(topo.BronKerbosch(cliqueGraph))
	core := make([]*sumonet.Edge, len(best))
	for i, member := range best {
		core[i] = sample[member]
	}

	log.Info().Int("core", len(core)).Msg("Generated core points of interest")
	return core, nil
}

func maximumClique(cliques [][]graph.Node) []int64 {
	normalized := make([][]int64, len(cliques))
	for i, clique := range cliques {
		members := make([]int64, len(clique))
		for j, node := range clique {
			members[j] = node.ID()
		}
		slices.Sort(members)
		normalized[i] = members
	}

	sort.Slice(normalized, func(i, j int) bool {
		if len(normalized[i]) != len(normalized[j]) {
			return len(normalized[i]) > len(normalized[j])
		}
		return slices.Compare(normalized[i], normalized[j]) < 0
	})

	return normalized[0]
}

func (s *Selector) bothWays(a string, b string) bool {
	return s.hasPath(a, b) && s.hasPath(b, a)
}

func (s *Selector) hasPath(from string, to string) bool {
	_, err := s.oracle.ShortestPath(from, to)
	return err == nil
}
