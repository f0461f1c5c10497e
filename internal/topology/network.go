package topology

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
)

// Edge is an undirected edge with From < To.
type Edge struct {
	From agent.NodeID `json:"source"`
	To   agent.NodeID `json:"target"`
}

// Network places agents on the nodes of an undirected graph. The graph is
// fixed after construction; only occupancy changes.
type Network struct {
	g     *simple.UndirectedGraph
	nodes []agent.NodeID
	adj   map[agent.NodeID][]agent.NodeID
	reach map[agent.NodeID][]agent.NodeID // radius-2 cache
	occ   occupancy[agent.NodeID]
}

// NewNetwork wraps g. Neighbor lists are sorted by node ID because gonum
// iterates adjacency in map order.
func NewNetwork(g *simple.UndirectedGraph) *Network {
	n := &Network{
		g:     g,
		adj:   make(map[agent.NodeID][]agent.NodeID),
		reach: make(map[agent.NodeID][]agent.NodeID),
		occ:   newOccupancy[agent.NodeID](),
	}
	for _, node := range graph.NodesOf(g.Nodes()) {
		id := agent.NodeID(node.ID())
		n.nodes = append(n.nodes, id)
		var nbrs []agent.NodeID
		for it := g.From(node.ID()); it.Next(); {
			nbrs = append(nbrs, agent.NodeID(it.Node().ID()))
		}
		slices.Sort(nbrs)
		n.adj[id] = nbrs
	}
	slices.Sort(n.nodes)
	return n
}

// Graph exposes the underlying graph read-only.
func (n *Network) Graph() graph.Undirected {
	return n.g
}

// Nodes returns all node IDs ascending.
func (n *Network) Nodes() []agent.NodeID {
	return slices.Clone(n.nodes)
}

// Neighbors returns the nodes adjacent to node, ascending.
func (n *Network) Neighbors(node agent.NodeID) []agent.NodeID {
	return slices.Clone(n.adj[node])
}

// Degree is the number of nodes adjacent to node.
func (n *Network) Degree(node agent.NodeID) int {
	return len(n.adj[node])
}

// Within returns the nodes at graph distance 1..radius from node, ascending.
// An isolated node has an empty neighborhood.
func (n *Network) Within(node agent.NodeID, radius int) []agent.NodeID {
	if radius == 2 {
		if cached, ok := n.reach[node]; ok {
			return cached
		}
	}
	start := n.g.Node(int64(node))
	if start == nil {
		return nil
	}
	var found []agent.NodeID
	var bf traverse.BreadthFirst
	bf.Walk(n.g, start, func(v graph.Node, depth int) bool {
		if depth > radius {
			return true
		}
		if depth > 0 {
			found = append(found, agent.NodeID(v.ID()))
		}
		return false
	})
	slices.Sort(found)
	if radius == 2 {
		n.reach[node] = found
	}
	return found
}

// Edges lists every edge once, sorted.
func (n *Network) Edges() []Edge {
	var edges []Edge
	for _, from := range n.nodes {
		for _, to := range n.adj[from] {
			if from < to {
				edges = append(edges, Edge{From: from, To: to})
			}
		}
	}
	return edges
}

// Place puts id on node.
func (n *Network) Place(id agent.ID, node agent.NodeID) {
	n.occ.place(id, node)
}

// Move relocates id. It reports false if id was not on from.
func (n *Network) Move(id agent.ID, from, to agent.NodeID) bool {
	return n.occ.move(id, from, to)
}

// Remove takes id off the network.
func (n *Network) Remove(id agent.ID, node agent.NodeID) bool {
	return n.occ.remove(id, node)
}

// Occupants returns the agents on node in arrival order.
func (n *Network) Occupants(node agent.NodeID) []agent.ID {
	return n.occ.occupants(node)
}

// Locate returns the node id is on.
func (n *Network) Locate(id agent.ID) (agent.NodeID, bool) {
	return n.occ.locate(id)
}

// NeighborAgents returns the agents on nodes adjacent to node. Agents that
// share node itself are not included.
func (n *Network) NeighborAgents(node agent.NodeID) []agent.ID {
	var ids []agent.ID
	for _, nbr := range n.adj[node] {
		ids = append(ids, n.occ.at[nbr]...)
	}
	return ids
}
