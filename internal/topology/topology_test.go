package topology

import (
	"errors"
	"slices"
	"testing"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/rng"
)

func mustGrid(t *testing.T, cfg scenario.GridConfig) *Grid {
	t.Helper()
	g, err := NewGrid(cfg)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestGridRejectsOversizedZone(t *testing.T) {
	_, err := NewGrid(scenario.GridConfig{Width: 5, Height: 4, RecoverySize: 0, InfectiousSize: 5})
	if !errors.Is(err, scenario.ErrInvalidConfig) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestGridNeighborhoodWrapsTorus(t *testing.T) {
	g := mustGrid(t, scenario.GridConfig{Width: 10, Height: 10})
	cells := g.Neighborhood(agent.Cell{X: 0, Y: 0}, false)
	if len(cells) != 8 {
		t.Fatalf("Expected 8 Moore neighbors, got %d", len(cells))
	}
	if !slices.Contains(cells, agent.Cell{X: 9, Y: 9}) {
		t.Errorf("Expected (9,9) to neighbor (0,0) on the torus, got %v", cells)
	}
	if slices.Contains(cells, agent.Cell{X: 0, Y: 0}) {
		t.Error("Center must be excluded")
	}
	if with := g.Neighborhood(agent.Cell{X: 5, Y: 5}, true); len(with) != 9 {
		t.Errorf("Expected 9 cells with center, got %d", len(with))
	}
}

func TestGridNeighborhoodDeduplicatesSmallTorus(t *testing.T) {
	g := mustGrid(t, scenario.GridConfig{Width: 2, Height: 1})
	cells := g.Neighborhood(agent.Cell{X: 0, Y: 0}, false)
	if len(cells) != 1 || cells[0] != (agent.Cell{X: 1, Y: 0}) {
		t.Errorf("Expected the single distinct neighbor (1,0), got %v", cells)
	}
	if lone := mustGrid(t, scenario.GridConfig{Width: 1, Height: 1}); len(lone.Neighborhood(agent.Cell{}, false)) != 0 {
		t.Error("A 1x1 torus has no neighbors")
	}
}

func TestGridZones(t *testing.T) {
	g := mustGrid(t, scenario.GridConfig{Width: 10, Height: 8, RecoverySize: 2, InfectiousSize: 3})

	if !g.InRecoveryZone(agent.Cell{X: 1, Y: 1}) || g.InRecoveryZone(agent.Cell{X: 2, Y: 0}) {
		t.Error("Recovery zone should be the 2x2 top-left square")
	}
	if !g.InInfectionZone(agent.Cell{X: 7, Y: 5}) || g.InInfectionZone(agent.Cell{X: 6, Y: 7}) {
		t.Error("Infection zone should be the 3x3 bottom-right square")
	}
	if len(g.RecoveryZone()) != 4 || len(g.InfectionZone()) != 9 {
		t.Errorf("Unexpected zone sizes %d and %d", len(g.RecoveryZone()), len(g.InfectionZone()))
	}

	full := mustGrid(t, scenario.GridConfig{Width: 10, Height: 10, InfectiousSize: 10})
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			if !full.InInfectionZone(agent.Cell{X: x, Y: y}) {
				t.Fatalf("Expected (%d,%d) inside a full-grid infection zone", x, y)
			}
		}
	}
}

func TestGridOccupancy(t *testing.T) {
	g := mustGrid(t, scenario.GridConfig{Width: 5, Height: 5})
	a, b := agent.Cell{X: 1, Y: 1}, agent.Cell{X: 2, Y: 1}
	g.Place(1, a)
	g.Place(2, a)
	g.Place(3, b)

	if got := g.Occupants(a); !slices.Equal(got, []agent.ID{1, 2}) {
		t.Errorf("Expected [1 2] on %v, got %v", a, got)
	}
	if !g.Move(1, a, b) {
		t.Fatal("Expected move to succeed")
	}
	if got := g.Occupants(b); !slices.Equal(got, []agent.ID{3, 1}) {
		t.Errorf("Expected arrival order [3 1], got %v", got)
	}
	if g.Move(1, a, b) {
		t.Error("Moving from a cell the agent is not on must fail")
	}
	if got := g.NeighborAgents(a, true); !slices.Equal(got, []agent.ID{2, 3, 1}) {
		t.Errorf("Expected neighborhood occupants [2 3 1], got %v", got)
	}
	if !g.Remove(2, a) || g.Population() != 2 {
		t.Errorf("Expected removal to leave 2 agents, got %d", g.Population())
	}
}

func generate(t *testing.T, cfg scenario.GraphConfig, n int, seed uint64) *Network {
	t.Helper()
	g, err := Generate(cfg, n, rng.New(seed))
	if err != nil {
		t.Fatalf("Generate(%s): %v", cfg.Type, err)
	}
	return NewNetwork(g)
}

func TestGenerateIsDeterministic(t *testing.T) {
	for _, kind := range scenario.GraphTypes {
		cfg := scenario.GraphConfig{Type: kind, M: 3, P: 4}
		a := generate(t, cfg, 60, 11)
		b := generate(t, cfg, 60, 11)
		if !slices.Equal(a.Edges(), b.Edges()) {
			t.Errorf("%s: expected identical edges for the same seed", kind)
		}
		if len(a.Nodes()) != 60 {
			t.Errorf("%s: expected 60 nodes, got %d", kind, len(a.Nodes()))
		}
	}
}

func TestBarabasiAlbertEdgeCount(t *testing.T) {
	net := generate(t, scenario.GraphConfig{Type: scenario.GraphBarabasiAlbert, M: 2}, 30, 5)
	// star of m edges, then m edges per added node
	want := 2 + (30-3)*2
	if got := len(net.Edges()); got != want {
		t.Errorf("Expected %d edges, got %d", want, got)
	}
}

func TestWattsStrogatzKeepsEdgeCount(t *testing.T) {
	net := generate(t, scenario.GraphConfig{Type: scenario.GraphWattsStrogatz, P: 3}, 40, 5)
	if got := len(net.Edges()); got != 40*WattsStrogatzK/2 {
		t.Errorf("Expected rewiring to preserve %d edges, got %d", 40*WattsStrogatzK/2, got)
	}

	lattice := generate(t, scenario.GraphConfig{Type: scenario.GraphWattsStrogatz, P: 0}, 20, 5)
	if got := lattice.Neighbors(0); !slices.Equal(got, []agent.NodeID{1, 2, 3, 17, 18, 19}) {
		t.Errorf("Expected ring lattice neighbors, got %v", got)
	}

	small := generate(t, scenario.GraphConfig{Type: scenario.GraphWattsStrogatz, P: 5}, 5, 5)
	if got := len(small.Edges()); got != 10 {
		t.Errorf("Expected complete graph on 5 nodes, got %d edges", got)
	}
}

func TestErdosRenyiExtremes(t *testing.T) {
	complete := generate(t, scenario.GraphConfig{Type: scenario.GraphErdosRenyi, P: 10}, 12, 1)
	if got := len(complete.Edges()); got != 12*11/2 {
		t.Errorf("Expected complete graph, got %d edges", got)
	}
	empty := generate(t, scenario.GraphConfig{Type: scenario.GraphErdosRenyi, P: 0}, 12, 1)
	if got := len(empty.Edges()); got != 0 {
		t.Errorf("Expected no edges, got %d", got)
	}
	if got := empty.Within(3, 2); len(got) != 0 {
		t.Errorf("Isolated node must have no neighborhood, got %v", got)
	}
}

func TestPowerLawClusterDegrees(t *testing.T) {
	net := generate(t, scenario.GraphConfig{Type: scenario.GraphPowerLawCluster, M: 3, P: 5}, 50, 9)
	for _, node := range net.Nodes() {
		if node >= 3 && net.Degree(node) < 1 {
			t.Errorf("Node %d joined the graph but has no edges", node)
		}
	}
	if got := len(net.Edges()); got < 50-3 || got > (50-3)*3 {
		t.Errorf("Expected between %d and %d edges, got %d", 50-3, (50-3)*3, got)
	}
}

func TestGenerateRejectsBadParameters(t *testing.T) {
	cases := []scenario.GraphConfig{
		{Type: scenario.GraphBarabasiAlbert, M: 10},
		{Type: scenario.GraphPowerLawCluster, M: 0},
		{Type: scenario.GraphErdosRenyi, P: 11},
		{Type: "ring"},
	}
	for _, cfg := range cases {
		if _, err := Generate(cfg, 10, rng.New(1)); !errors.Is(err, scenario.ErrInvalidConfig) {
			t.Errorf("%+v: expected configuration error, got %v", cfg, err)
		}
	}
}

func TestNetworkWithinRadiusTwo(t *testing.T) {
	// path 0-1-2-3
	net := generate(t, scenario.GraphConfig{Type: scenario.GraphWattsStrogatz, P: 0}, 20, 1)
	got := net.Within(0, 2)
	want := []agent.NodeID{1, 2, 3, 4, 5, 6, 14, 15, 16, 17, 18, 19}
	if !slices.Equal(got, want) {
		t.Errorf("Expected radius-2 neighborhood %v, got %v", want, got)
	}
	if slices.Contains(got, 0) {
		t.Error("Radius-2 neighborhood must exclude the center")
	}
}

func TestNetworkNeighborAgentsExcludesOwnNode(t *testing.T) {
	net := generate(t, scenario.GraphConfig{Type: scenario.GraphErdosRenyi, P: 10}, 3, 1)
	net.Place(0, 0)
	net.Place(1, 0)
	net.Place(2, 1)
	net.Place(3, 2)

	if got := net.NeighborAgents(0); !slices.Equal(got, []agent.ID{2, 3}) {
		t.Errorf("Expected agents on adjacent nodes [2 3], got %v", got)
	}
	if !net.Move(1, 0, 2) {
		t.Fatal("Expected move to succeed")
	}
	if got := net.Occupants(2); !slices.Equal(got, []agent.ID{3, 1}) {
		t.Errorf("Expected [3 1] on node 2, got %v", got)
	}
	if node, ok := net.Locate(1); !ok || node != 2 {
		t.Errorf("Expected agent 1 on node 2, got %v %v", node, ok)
	}
}
