package nav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAStarDiagonal(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)

	path, err := g.FindPathAStar(g.CellAt(0, 0), g.CellAt(4, 4))
	require.NoError(t, err)
	require.Len(t, path, 5)
	assert.Same(t, g.CellAt(0, 0), path[0])
	assert.Same(t, g.CellAt(4, 4), path[4])
	assert.InDelta(t, 4*math.Sqrt2, path.TotalCost(g), 1e-9)
}

func TestAStarStartEqualsGoal(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)

	c := g.CellAt(2, 2)
	path, err := g.FindPathAStar(c, c)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Same(t, c, path[0])
	assert.Zero(t, path.TotalCost(g))
}

func TestAStarDetoursAroundWall(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)
	// Wall on column 2, one gap at the bottom row.
	for iz := 0; iz < 4; iz++ {
		require.NoError(t, g.SetWalkable(2, iz, false))
	}

	start, goal := g.CellAt(0, 2), g.CellAt(4, 2)
	path, err := g.FindPathAStar(start, goal)
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.Same(t, start, path[0])
	assert.Same(t, goal, path[len(path)-1])

	for _, c := range path {
		assert.True(t, c.Walkable, "path visits unwalkable cell (%d,%d)", c.IX, c.IZ)
	}
	assert.True(t, path.Contains(g.CellAt(2, 4)), "only opening is at (2,4)")
	// Longer than the straight 4-step line it would take without the wall.
	assert.Greater(t, path.TotalCost(g), 4.0)
}

func TestAStarUnreachable(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)
	for iz := 0; iz < 5; iz++ {
		require.NoError(t, g.SetWalkable(2, iz, false))
	}

	path, err := g.FindPathAStar(g.CellAt(0, 2), g.CellAt(4, 2))
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestAStarUnwalkableEndpoints(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)
	require.NoError(t, g.SetWalkable(4, 4, false))

	path, err := g.FindPathAStar(g.CellAt(0, 0), g.CellAt(4, 4))
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = g.FindPathAStar(g.CellAt(4, 4), g.CellAt(0, 0))
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestAStarInvalidArguments(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)
	other, err := Build(5, 5, 1.0)
	require.NoError(t, err)

	_, err = g.FindPathAStar(nil, g.CellAt(0, 0))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = g.FindPathAStar(g.CellAt(0, 0), other.CellAt(1, 1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAStarPrefersCheapTerrain(t *testing.T) {
	g, err := Build(5, 3, 1.0)
	require.NoError(t, err)
	// Expensive strip across the middle row.
	for ix := 1; ix < 4; ix++ {
		require.NoError(t, g.SetCost(ix, 1, 10))
	}

	path, err := g.FindPathAStar(g.CellAt(0, 1), g.CellAt(4, 1))
	require.NoError(t, err)
	require.NotEmpty(t, path)
	for _, c := range path {
		assert.Less(t, c.Cost, 10.0, "path should avoid the expensive strip")
	}
}

func TestDijkstraMatchesAStarCost(t *testing.T) {
	g, err := Build(8, 8, 1.0)
	require.NoError(t, err)
	require.NoError(t, g.SetWalkable(3, 3, false))
	require.NoError(t, g.SetWalkable(3, 4, false))
	require.NoError(t, g.SetCost(5, 5, 4))
	require.NoError(t, g.SetCost(4, 2, 2.5))

	cases := [][4]int{
		{0, 0, 7, 7},
		{0, 7, 7, 0},
		{2, 2, 6, 6},
		{1, 5, 6, 1},
	}
	for _, tc := range cases {
		start, goal := g.CellAt(tc[0], tc[1]), g.CellAt(tc[2], tc[3])
		a, err := g.FindPathAStar(start, goal)
		require.NoError(t, err)
		d, err := g.FindPathDijkstra(start, goal)
		require.NoError(t, err)
		require.NotEmpty(t, a)
		require.NotEmpty(t, d)
		assert.InDelta(t, d.TotalCost(g), a.TotalCost(g), 1e-9,
			"A* and Dijkstra should agree on optimal cost for (%d,%d)->(%d,%d)",
			tc[0], tc[1], tc[2], tc[3])
	}
}

func TestSearchDeterministic(t *testing.T) {
	g, err := Build(10, 10, 1.0)
	require.NoError(t, err)
	require.NoError(t, g.SetWalkable(5, 5, false))

	start, goal := g.CellAt(0, 0), g.CellAt(9, 9)
	first, err := g.FindPathAStar(start, goal)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := g.FindPathAStar(start, goal)
		require.NoError(t, err)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Same(t, first[j], again[j])
		}
	}
}
