package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowFieldUniformCostIsStepCount(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)

	goal := g.CellAt(2, 2)
	field, err := g.BuildFlowField(goal)
	require.NoError(t, err)

	// Under uniform cost the field cost is the Chebyshev step count.
	for iz := 0; iz < 5; iz++ {
		for ix := 0; ix < 5; ix++ {
			c := g.CellAt(ix, iz)
			cost, ok := field.CostAt(c)
			require.True(t, ok)
			dx, dz := ix-2, iz-2
			if dx < 0 {
				dx = -dx
			}
			if dz < 0 {
				dz = -dz
			}
			want := dx
			if dz > dx {
				want = dz
			}
			assert.Equal(t, float64(want), cost, "cell (%d,%d)", ix, iz)
		}
	}
}

func TestFlowFieldGoalMapsToItself(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)

	goal := g.CellAt(3, 1)
	field, err := g.BuildFlowField(goal)
	require.NoError(t, err)

	assert.Same(t, goal, field.Goal())
	next, ok := field.DirectionAt(goal)
	require.True(t, ok)
	assert.Same(t, goal, next)

	cost, ok := field.CostAt(goal)
	require.True(t, ok)
	assert.Zero(t, cost)
}

func TestFlowFieldDirectionsDescend(t *testing.T) {
	g, err := Build(6, 6, 1.0)
	require.NoError(t, err)
	require.NoError(t, g.SetWalkable(3, 2, false))
	require.NoError(t, g.SetWalkable(3, 3, false))
	require.NoError(t, g.SetCost(1, 1, 5))

	goal := g.CellAt(5, 5)
	field, err := g.BuildFlowField(goal)
	require.NoError(t, err)

	// Following DirectionAt from any reachable cell must strictly lower the
	// field cost and terminate at the goal.
	for iz := 0; iz < 6; iz++ {
		for ix := 0; ix < 6; ix++ {
			c := g.CellAt(ix, iz)
			if !c.Walkable {
				continue
			}
			for steps := 0; c != goal; steps++ {
				require.Less(t, steps, 36, "direction chain must terminate")
				cur, ok := field.CostAt(c)
				require.True(t, ok)
				next, ok := field.DirectionAt(c)
				require.True(t, ok)
				nextCost, ok := field.CostAt(next)
				require.True(t, ok)
				assert.Less(t, nextCost, cur)
				c = next
			}
		}
	}
}

func TestFlowFieldUnreachableCells(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)
	for iz := 0; iz < 5; iz++ {
		require.NoError(t, g.SetWalkable(2, iz, false))
	}

	field, err := g.BuildFlowField(g.CellAt(4, 2))
	require.NoError(t, err)

	_, ok := field.DirectionAt(g.CellAt(0, 0))
	assert.False(t, ok)
	_, ok = field.CostAt(g.CellAt(0, 0))
	assert.False(t, ok)

	// Right of the wall stays reachable.
	_, ok = field.DirectionAt(g.CellAt(3, 0))
	assert.True(t, ok)
}

func TestFlowFieldUnwalkableGoal(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)
	require.NoError(t, g.SetWalkable(2, 2, false))

	goal := g.CellAt(2, 2)
	field, err := g.BuildFlowField(goal)
	require.NoError(t, err)

	_, ok := field.DirectionAt(goal)
	assert.False(t, ok)
	_, ok = field.CostAt(g.CellAt(0, 0))
	assert.False(t, ok)
}

func TestFlowFieldInvalidGoal(t *testing.T) {
	g, err := Build(5, 5, 1.0)
	require.NoError(t, err)
	other, err := Build(5, 5, 1.0)
	require.NoError(t, err)

	_, err = g.BuildFlowField(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = g.BuildFlowField(other.CellAt(0, 0))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
