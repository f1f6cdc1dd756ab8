package nav

import "container/heap"

// searchNode is a frontier entry shared by A* and Dijkstra. seq records
// insertion order so ties resolve deterministically regardless of heap
// internals.
type searchNode struct {
	cell   *Cell
	g      float64 // accumulated cost from start
	h      float64 // heuristic to goal (0 for Dijkstra)
	f      float64 // g + h
	seq    int
	parent *searchNode
	index  int
}

// frontier orders nodes by lowest f, then lowest h, then insertion order.
// With h == 0 everywhere this degrades to Dijkstra's distance ordering.
type frontier []*searchNode

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}

func (q frontier) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *frontier) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// FindPathAStar searches with A*: Euclidean heuristic between cell centers,
// edge cost = destination cell cost × step distance. Output is deterministic
// for identical grid state. An unreachable goal yields an empty path and a
// nil error.
func (g *Grid) FindPathAStar(start, goal *Cell) (Path, error) {
	return g.search(start, goal, true)
}

func (g *Grid) search(start, goal *Cell, useHeuristic bool) (Path, error) {
	if err := g.checkEndpoints(start, goal); err != nil {
		return nil, err
	}
	if !start.Walkable || !goal.Walkable {
		return nil, nil
	}
	if start == goal {
		return Path{start}, nil
	}

	h := func(c *Cell) float64 {
		if useHeuristic {
			return g.heuristic(c, goal)
		}
		return 0
	}

	open := &frontier{}
	heap.Init(open)
	seq := 0
	root := &searchNode{cell: start, h: h(start), seq: seq}
	root.f = root.h
	heap.Push(open, root)

	best := map[*Cell]float64{start: 0}
	closed := make(map[*Cell]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		if _, seen := closed[current.cell]; seen {
			continue
		}
		closed[current.cell] = struct{}{}
		if current.cell == goal {
			return reconstruct(current), nil
		}
		for _, n := range current.cell.Neighbors() {
			if _, seen := closed[n]; seen {
				continue
			}
			tentative := current.g + n.Cost*g.stepDistance(current.cell, n)
			if prev, ok := best[n]; ok && tentative >= prev {
				continue
			}
			best[n] = tentative
			seq++
			node := &searchNode{
				cell:   n,
				g:      tentative,
				h:      h(n),
				seq:    seq,
				parent: current,
			}
			node.f = node.g + node.h
			heap.Push(open, node)
		}
	}
	return nil, nil
}

func reconstruct(end *searchNode) Path {
	var path Path
	for n := end; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
