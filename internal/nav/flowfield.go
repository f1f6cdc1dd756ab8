package nav

import "container/heap"

// FlowField is a precomputed direction-and-cost map from every reachable
// cell to a single goal. Many agents sharing one destination in one tick
// follow the field instead of issuing one A* query each.
type FlowField struct {
	goal *Cell
	next map[*Cell]*Cell
	cost map[*Cell]float64
}

// BuildFlowField runs a single-source reverse expansion from the goal. The
// field cost of a cell is the cost-weighted hop count to the goal: each step
// is charged the traversal cost of the cell being entered, so under uniform
// cost the field cost equals the number of steps.
func (g *Grid) BuildFlowField(goal *Cell) (*FlowField, error) {
	if err := g.checkEndpoints(goal, goal); err != nil {
		return nil, err
	}
	f := &FlowField{
		goal: goal,
		next: make(map[*Cell]*Cell),
		cost: make(map[*Cell]float64),
	}
	if !goal.Walkable {
		return f, nil
	}

	open := &frontier{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &searchNode{cell: goal, seq: seq})
	f.cost[goal] = 0
	f.next[goal] = goal

	closed := make(map[*Cell]struct{})
	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		if _, seen := closed[current.cell]; seen {
			continue
		}
		closed[current.cell] = struct{}{}
		// Entering current.cell from any neighbor costs current.cell.Cost.
		for _, n := range current.cell.Neighbors() {
			if _, seen := closed[n]; seen {
				continue
			}
			tentative := current.g + current.cell.Cost
			if prev, ok := f.cost[n]; ok && tentative >= prev {
				continue
			}
			f.cost[n] = tentative
			f.next[n] = current.cell
			seq++
			heap.Push(open, &searchNode{cell: n, g: tentative, f: tentative, seq: seq})
		}
	}
	return f, nil
}

// Goal returns the cell the field converges on.
func (f *FlowField) Goal() *Cell { return f.goal }

// DirectionAt returns the next cell toward the goal. The goal maps to
// itself. The second result is false for cells the goal cannot be reached
// from.
func (f *FlowField) DirectionAt(c *Cell) (*Cell, bool) {
	n, ok := f.next[c]
	return n, ok
}

// CostAt returns the field cost of a cell; absent for unreachable cells.
func (f *FlowField) CostAt(c *Cell) (float64, bool) {
	v, ok := f.cost[c]
	return v, ok
}
