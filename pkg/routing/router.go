package routing

import (
	"container/heap"
	"fmt"

	"github.com/walkgen/walkgen/pkg/sumonet"
)

// NetworkRouter is an in-process shortest-path oracle over the directed
// pedestrian edge graph of a network. Costs follow sumolib's edge-based
// routing: the length of every traversed edge counts, origin included.
type NetworkRouter struct {
	net *sumonet.Network

	// successors of an edge are the pedestrian edges leaving its end node
	successors map[string][]string
}

func NewNetworkRouter(net *sumonet.Network) *NetworkRouter {
	router := &NetworkRouter{
		net:        net,
		successors: map[string][]string{},
	}

	outgoing := map[string][]string{}
	for _, edge := range net.Edges() {
		if edge.Allows("pedestrian") {
			outgoing[edge.From] = append(outgoing[edge.From], edge.ID)
		}
	}

	for _, edge := range net.Edges() {
		if edge.Allows("pedestrian") {
			router.successors[edge.ID] = outgoing[edge.To]
		}
	}

	return router
}

func (r *NetworkRouter) ShortestPath(fromEdge string, toEdge string) (*Path, error) {
	origin := r.net.Edge(fromEdge)
	if origin == nil || !origin.Allows("pedestrian") {
		return nil, fmt.Errorf("unknown or inaccessible origin edge %s", fromEdge)
	}
	if target := r.net.Edge(toEdge); target == nil || !target.Allows("pedestrian") {
		return nil, fmt.Errorf("unknown or inaccessible destination edge %s", toEdge)
	}

	dist := map[string]float64{fromEdge: origin.Length()}
	cameFrom := map[string]string{}
	visited := map[string]bool{}

	pq := &edgeQueue{}
	heap.Init(pq)
	heap.Push(pq, &queuedEdge{id: fromEdge, cost: dist[fromEdge]})

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*queuedEdge)

		if current.id == toEdge {
			return &Path{
				Edges:  r.reconstruct(cameFrom, current.id),
				Length: current.cost,
			}, nil
		}

		if visited[current.id] {
			continue
		}
		visited[current.id] = true

		for _, next := range r.successors[current.id] {
			tentative := current.cost + r.net.Edge(next).Length()
			if old, seen := dist[next]; !seen || tentative < old {
				dist[next] = tentative
				cameFrom[next] = current.id
				heap.Push(pq, &queuedEdge{id: next, cost: tentative})
			}
		}
	}

	return nil, ErrNoPath
}

func (r *NetworkRouter) reconstruct(cameFrom map[string]string, current string) []string {
	var path []string
	for {
		path = append([]string{current}, path...)
		prev, ok := cameFrom[current]
		if !ok {
			return path
		}
		current = prev
	}
}

type queuedEdge struct {
	id   string
	cost float64
}

type edgeQueue []*queuedEdge

func (pq edgeQueue) Len() int           { return len(pq) }
func (pq edgeQueue) Less(i, j int) bool { return pq[i].cost < pq[j].cost }
func (pq edgeQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

func (pq *edgeQueue) Push(x any) {
	*pq = append(*pq, x.(*queuedEdge))
}

func (pq *edgeQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
