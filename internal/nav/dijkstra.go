package nav

// FindPathDijkstra is uniform-cost search without a heuristic, for grids
// where heuristic admissibility cannot be guaranteed (e.g. non-uniform
// directional costs). Ties on equal distance resolve by insertion order, the
// same rule A* applies, so output is deterministic for identical grid state.
func (g *Grid) FindPathDijkstra(start, goal *Cell) (Path, error) {
	return g.search(start, goal, false)
}
