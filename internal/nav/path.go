package nav

import "fmt"

// Path is an ordered sequence of cells from start to goal, inclusive. It is
// empty when no path exists and has length 1 when start == goal. Once
// returned it is owned by the caller and never mutated by the engine.
type Path []*Cell

// TotalCost sums the edge costs along the path: each step is charged the
// destination cell's cost times the Euclidean distance between centers.
func (p Path) TotalCost(g *Grid) float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += p[i].Cost * g.stepDistance(p[i-1], p[i])
	}
	return total
}

// Contains reports whether the path visits the given cell.
func (p Path) Contains(c *Cell) bool {
	for _, pc := range p {
		if pc == c {
			return true
		}
	}
	return false
}

// checkEndpoints applies the shared contract for malformed input: nil cells
// or cells belonging to another grid. Unreachable goals are not errors.
func (g *Grid) checkEndpoints(start, goal *Cell) error {
	if start == nil || goal == nil {
		return fmt.Errorf("%w: nil cell", ErrInvalidArgument)
	}
	if !g.contains(start) || !g.contains(goal) {
		return fmt.Errorf("%w: cell not part of grid", ErrInvalidArgument)
	}
	return nil
}
