// Package nav provides the navigation lattice and the pathfinding engine
// that runs over it: A*, Dijkstra, and goal-centric flow fields. The grid is
// immutable during a simulation tick; edits are applied between ticks by the
// orchestrator.
package nav

import (
	"fmt"
	"math"
)

// mooreOffsets is the 8-connected neighborhood in fixed scan order. Neighbor
// lists are always built in this order so every search expands candidates
// deterministically.
var mooreOffsets = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Cell is one tile of the navigation lattice. Cells are created once at
// Build time and live until the grid is rebuilt; pointers into the grid stay
// valid across edits.
type Cell struct {
	IX, IZ   int
	Walkable bool
	Cost     float64

	neighbors []*Cell
}

// Neighbors returns the walkable cells in this cell's Moore neighborhood.
// The returned slice is owned by the grid and must not be mutated.
func (c *Cell) Neighbors() []*Cell { return c.neighbors }

// Grid is a finite 2D lattice of cells with precomputed adjacency.
// All methods are single-goroutine with respect to edits: the orchestrator
// serializes SetWalkable/SetCost between ticks.
type Grid struct {
	width    int
	height   int
	cellSize float64
	cells    []Cell // flat, row-major: cells[iz*width+ix]
	version  uint64
}

// Build allocates a width×height grid with every cell walkable at cost 1 and
// computes the 8-neighbor adjacency lists.
func Build(width, height int, cellSize float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrConfig, width, height)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("%w: cell size %v", ErrConfig, cellSize)
	}
	g := &Grid{
		width:    width,
		height:   height,
		cellSize: cellSize,
		cells:    make([]Cell, width*height),
	}
	for iz := 0; iz < height; iz++ {
		for ix := 0; ix < width; ix++ {
			c := &g.cells[iz*width+ix]
			c.IX = ix
			c.IZ = iz
			c.Walkable = true
			c.Cost = 1
		}
	}
	for i := range g.cells {
		g.rebuildNeighbors(&g.cells[i])
	}
	return g, nil
}

func (g *Grid) Width() int        { return g.width }
func (g *Grid) Height() int       { return g.height }
func (g *Grid) CellSize() float64 { return g.cellSize }

// Version increments on every edit. Cached paths compare versions to decide
// whether a recomputation is needed.
func (g *Grid) Version() uint64 { return g.version }

func (g *Grid) inBounds(ix, iz int) bool {
	return ix >= 0 && iz >= 0 && ix < g.width && iz < g.height
}

// CellAt returns the cell at (ix, iz), or nil when out of range.
func (g *Grid) CellAt(ix, iz int) *Cell {
	if !g.inBounds(ix, iz) {
		return nil
	}
	return &g.cells[iz*g.width+ix]
}

// contains reports whether c is a cell owned by this grid. Identity matters:
// a cell copied out of another grid must not sneak into a path query.
func (g *Grid) contains(c *Cell) bool {
	if c == nil || !g.inBounds(c.IX, c.IZ) {
		return false
	}
	return &g.cells[c.IZ*g.width+c.IX] == c
}

// Center returns the world-space center of the cell.
func (g *Grid) Center(c *Cell) (x, z float64) {
	return (float64(c.IX) + 0.5) * g.cellSize, (float64(c.IZ) + 0.5) * g.cellSize
}

// SetWalkable toggles a cell's walkability and patches adjacency locally:
// only the cell itself and its Moore neighbors have their neighbor lists
// recomputed, keeping the walkable-only invariant without a full rebuild.
func (g *Grid) SetWalkable(ix, iz int, walkable bool) error {
	if !g.inBounds(ix, iz) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, ix, iz)
	}
	c := &g.cells[iz*g.width+ix]
	if c.Walkable == walkable {
		return nil
	}
	c.Walkable = walkable
	g.rebuildNeighbors(c)
	for _, off := range mooreOffsets {
		if n := g.CellAt(ix+off[0], iz+off[1]); n != nil {
			g.rebuildNeighbors(n)
		}
	}
	g.version++
	return nil
}

// SetCost updates a cell's traversal cost. Adjacency is unaffected.
func (g *Grid) SetCost(ix, iz int, cost float64) error {
	if !g.inBounds(ix, iz) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, ix, iz)
	}
	if cost < 0 {
		return fmt.Errorf("%w: %v at (%d, %d)", ErrInvalidCost, cost, ix, iz)
	}
	g.cells[iz*g.width+ix].Cost = cost
	g.version++
	return nil
}

func (g *Grid) rebuildNeighbors(c *Cell) {
	c.neighbors = c.neighbors[:0]
	for _, off := range mooreOffsets {
		n := g.CellAt(c.IX+off[0], c.IZ+off[1])
		if n != nil && n.Walkable {
			c.neighbors = append(c.neighbors, n)
		}
	}
}

// NearestCell returns the cell whose center is closest to the world position
// by Euclidean distance. On a regular lattice that is the clamped per-axis
// rounding; exact midpoints resolve to the lower index so the lookup is
// deterministic.
func (g *Grid) NearestCell(x, z float64) *Cell {
	return &g.cells[g.nearestIndex(z, g.height)*g.width+g.nearestIndex(x, g.width)]
}

func (g *Grid) nearestIndex(v float64, limit int) int {
	// Centers sit at (i+0.5)*cellSize; Ceil(f-0.5) rounds half-way cases down.
	i := int(math.Ceil(v/g.cellSize - 1.0))
	if i < 0 {
		i = 0
	}
	if i >= limit {
		i = limit - 1
	}
	return i
}

// stepDistance is the Euclidean distance between the centers of two adjacent
// cells: cellSize for cardinal steps, cellSize*sqrt(2) for diagonals.
func (g *Grid) stepDistance(a, b *Cell) float64 {
	if a.IX != b.IX && a.IZ != b.IZ {
		return g.cellSize * math.Sqrt2
	}
	return g.cellSize
}

// heuristic is the Euclidean distance between cell centers — admissible and
// consistent for the destination-cost×distance edge weights used by A*.
func (g *Grid) heuristic(a, b *Cell) float64 {
	dx := float64(a.IX-b.IX) * g.cellSize
	dz := float64(a.IZ-b.IZ) * g.cellSize
	return math.Hypot(dx, dz)
}
