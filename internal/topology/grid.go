// Package topology defines who can interact with whom: a toroidal lattice
// with two static zones, or a random graph. Both own an occupancy index that
// is only changed through Place, Move and Remove.
package topology

import (
	"fmt"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
)

// Grid is a width x height torus. Several agents may share a cell.
// The recovery zone is the top-left square of side RecoverySize and the
// infection zone the bottom-right square of side InfectiousSize.
type Grid struct {
	width          int
	height         int
	recoverySize   int
	infectiousSize int
	occ            occupancy[agent.Cell]
}

// NewGrid builds a grid. Zone sides may not exceed min(width, height).
func NewGrid(cfg scenario.GridConfig) (*Grid, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &scenario.ConfigurationError{Field: "grid", Value: fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), Reason: "dimensions must be positive"}
	}
	limit := min(cfg.Width, cfg.Height)
	if cfg.RecoverySize < 0 || cfg.RecoverySize > limit {
		return nil, &scenario.ConfigurationError{Field: "grid.recovery_size", Value: cfg.RecoverySize, Reason: "zone exceeds grid"}
	}
	if cfg.InfectiousSize < 0 || cfg.InfectiousSize > limit {
		return nil, &scenario.ConfigurationError{Field: "grid.infectious_size", Value: cfg.InfectiousSize, Reason: "zone exceeds grid"}
	}
	return &Grid{
		width:          cfg.Width,
		height:         cfg.Height,
		recoverySize:   cfg.RecoverySize,
		infectiousSize: cfg.InfectiousSize,
		occ:            newOccupancy[agent.Cell](),
	}, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Wrap maps any coordinate onto the torus.
func (g *Grid) Wrap(c agent.Cell) agent.Cell {
	return agent.Cell{X: mod(c.X, g.width), Y: mod(c.Y, g.height)}
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Neighborhood returns the Moore radius-1 cells around c, scanning dx then
// dy from -1 to 1. Cells that coincide on a small torus appear once.
func (g *Grid) Neighborhood(c agent.Cell, includeCenter bool) []agent.Cell {
	cells := make([]agent.Cell, 0, 9)
	seen := make(map[agent.Cell]bool, 9)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 && !includeCenter {
				continue
			}
			n := g.Wrap(agent.Cell{X: c.X + dx, Y: c.Y + dy})
			if n == c && !includeCenter {
				continue
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			cells = append(cells, n)
		}
	}
	return cells
}

// InRecoveryZone reports whether c lies in the forced-recovery square.
func (g *Grid) InRecoveryZone(c agent.Cell) bool {
	return c.X < g.recoverySize && c.Y < g.recoverySize
}

// InInfectionZone reports whether c lies in the forced-infection square.
func (g *Grid) InInfectionZone(c agent.Cell) bool {
	return c.X >= g.width-g.infectiousSize && c.Y >= g.height-g.infectiousSize
}

// RecoveryZone lists the recovery cells for renderers.
func (g *Grid) RecoveryZone() []agent.Cell {
	return g.square(0, 0, g.recoverySize)
}

// InfectionZone lists the infection cells for renderers.
func (g *Grid) InfectionZone() []agent.Cell {
	return g.square(g.width-g.infectiousSize, g.height-g.infectiousSize, g.infectiousSize)
}

func (g *Grid) square(x0, y0, side int) []agent.Cell {
	cells := make([]agent.Cell, 0, side*side)
	for x := x0; x < x0+side; x++ {
		for y := y0; y < y0+side; y++ {
			cells = append(cells, agent.Cell{X: x, Y: y})
		}
	}
	return cells
}

// Place puts id on c.
func (g *Grid) Place(id agent.ID, c agent.Cell) {
	g.occ.place(id, g.Wrap(c))
}

// Move relocates id. It reports false if id was not on from.
func (g *Grid) Move(id agent.ID, from, to agent.Cell) bool {
	return g.occ.move(id, from, g.Wrap(to))
}

// Remove takes id off the grid permanently.
func (g *Grid) Remove(id agent.ID, c agent.Cell) bool {
	return g.occ.remove(id, c)
}

// Occupants returns the agents on c in arrival order.
func (g *Grid) Occupants(c agent.Cell) []agent.ID {
	return g.occ.occupants(c)
}

// Locate returns the cell id is on.
func (g *Grid) Locate(id agent.ID) (agent.Cell, bool) {
	return g.occ.locate(id)
}

// Population is the number of placed agents.
func (g *Grid) Population() int {
	return g.occ.count()
}

// NeighborAgents returns every agent in the Moore neighborhood of c,
// center included when includeCenter is set.
func (g *Grid) NeighborAgents(c agent.Cell, includeCenter bool) []agent.ID {
	var ids []agent.ID
	for _, n := range g.Neighborhood(c, includeCenter) {
		ids = append(ids, g.occ.at[n]...)
	}
	return ids
}
