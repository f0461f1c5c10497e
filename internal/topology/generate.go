package topology

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/rng"
)

// WattsStrogatzK is the ring-lattice degree of Watts-Strogatz graphs.
const WattsStrogatzK = 6

// Generate builds a random graph of n nodes (IDs 0..n-1) for cfg, drawing
// exclusively from r.
func Generate(cfg scenario.GraphConfig, n int, r *rng.Source) (*simple.UndirectedGraph, error) {
	if n <= 0 {
		return nil, &scenario.ConfigurationError{Field: "population", Value: n, Reason: "must be positive"}
	}
	if cfg.P < 0 || cfg.P > 10 {
		return nil, &scenario.ConfigurationError{Field: "graph.p", Value: cfg.P, Reason: "must be within [0, 10]"}
	}
	if cfg.Type.UsesM() && (cfg.M < 1 || cfg.M >= n) {
		return nil, &scenario.ConfigurationError{Field: "graph.m", Value: cfg.M, Reason: fmt.Sprintf("must be within [1, %d)", n)}
	}

	b := newBuilder(n)
	p := cfg.Probability()
	switch cfg.Type {
	case scenario.GraphBarabasiAlbert:
		b.barabasiAlbert(cfg.M, r)
	case scenario.GraphWattsStrogatz:
		b.wattsStrogatz(WattsStrogatzK, p, r)
	case scenario.GraphErdosRenyi:
		b.erdosRenyi(p, r)
	case scenario.GraphPowerLawCluster:
		b.powerLawCluster(cfg.M, p, r)
	default:
		return nil, &scenario.ConfigurationError{Field: "graph.type", Value: cfg.Type, Reason: "unknown graph family"}
	}
	return b.g, nil
}

type builder struct {
	g *simple.UndirectedGraph
	n int
}

func newBuilder(n int) *builder {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	return &builder{g: g, n: n}
}

func (b *builder) link(u, v int64) {
	b.g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
}

func (b *builder) linked(u, v int64) bool {
	return b.g.HasEdgeBetween(u, v)
}

func (b *builder) degree(u int64) int {
	return b.g.From(u).Len()
}

func (b *builder) neighbors(u int64) []int64 {
	var ids []int64
	for it := b.g.From(u); it.Next(); {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	return ids
}

func (b *builder) complete() {
	for u := int64(0); u < int64(b.n); u++ {
		for v := u + 1; v < int64(b.n); v++ {
			b.link(u, v)
		}
	}
}

// randomSubset draws from seq until m distinct values are collected.
// seq must contain at least m distinct values.
func randomSubset(seq []int64, m int, r *rng.Source) []int64 {
	chosen := make(map[int64]bool, m)
	for len(chosen) < m {
		chosen[rng.Pick(r, seq)] = true
	}
	out := make([]int64, 0, m)
	for v := range chosen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// barabasiAlbert grows a star of m+1 nodes by preferential attachment:
// every new node links to m distinct existing nodes picked by degree.
func (b *builder) barabasiAlbert(m int, r *rng.Source) {
	repeated := make([]int64, 0, 2*b.n*m)
	for v := int64(1); v <= int64(m); v++ {
		b.link(0, v)
		repeated = append(repeated, 0, v)
	}
	slices.Sort(repeated)

	for source := int64(m + 1); source < int64(b.n); source++ {
		targets := randomSubset(repeated, m, r)
		for _, t := range targets {
			b.link(source, t)
		}
		repeated = append(repeated, targets...)
		for i := 0; i < m; i++ {
			repeated = append(repeated, source)
		}
	}
}

// wattsStrogatz rewires a ring lattice of degree k with probability p.
// A lattice that cannot be built (k >= n) becomes the complete graph.
func (b *builder) wattsStrogatz(k int, p float64, r *rng.Source) {
	n := int64(b.n)
	if int64(k) >= n {
		b.complete()
		return
	}
	for j := int64(1); j <= int64(k/2); j++ {
		for u := int64(0); u < n; u++ {
			b.link(u, (u+j)%n)
		}
	}

	for j := int64(1); j <= int64(k/2); j++ {
		for u := int64(0); u < n; u++ {
			v := (u + j) % n
			if !r.Chance(p) {
				continue
			}
			w := int64(r.IntN(b.n))
			skip := false
			for w == u || b.linked(u, w) {
				w = int64(r.IntN(b.n))
				if b.degree(u) >= b.n-1 {
					skip = true
					break
				}
			}
			if skip {
				continue
			}
			b.g.RemoveEdge(u, v)
			b.link(u, w)
		}
	}
}

// erdosRenyi includes every pair independently with probability p.
func (b *builder) erdosRenyi(p float64, r *rng.Source) {
	if p <= 0 {
		return
	}
	if p >= 1 {
		b.complete()
		return
	}
	for u := int64(0); u < int64(b.n); u++ {
		for v := u + 1; v < int64(b.n); v++ {
			if r.Chance(p) {
				b.link(u, v)
			}
		}
	}
}

// powerLawCluster is the Holme-Kim model: preferential attachment where each
// further edge closes a triangle with probability p.
func (b *builder) powerLawCluster(m int, p float64, r *rng.Source) {
	repeated := make([]int64, 0, 2*b.n*m)
	for v := int64(0); v < int64(m); v++ {
		repeated = append(repeated, v)
	}

	for source := int64(m); source < int64(b.n); source++ {
		possible := randomSubset(repeated, m, r)
		pop := func() int64 {
			last := possible[len(possible)-1]
			possible = possible[:len(possible)-1]
			return last
		}

		target := pop()
		b.link(source, target)
		repeated = append(repeated, target)
		for count := 1; count < m; count++ {
			if r.Chance(p) {
				var candidates []int64
				for _, nbr := range b.neighbors(target) {
					if nbr != source && !b.linked(source, nbr) {
						candidates = append(candidates, nbr)
					}
				}
				if len(candidates) > 0 {
					nbr := rng.Pick(r, candidates)
					b.link(source, nbr)
					repeated = append(repeated, nbr)
					continue
				}
			}
			target = pop()
			b.link(source, target)
			repeated = append(repeated, target)
		}
		for i := 0; i < m; i++ {
			repeated = append(repeated, source)
		}
	}
}
