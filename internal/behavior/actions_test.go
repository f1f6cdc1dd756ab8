package behavior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypost/engine/internal/agent"
	"github.com/waypost/engine/internal/core/event"
	"github.com/waypost/engine/internal/nav"
)

func builtinContext(t *testing.T, width, height int) *Context {
	t.Helper()
	grid, err := nav.Build(width, height, 1.0)
	require.NoError(t, err)
	return &Context{
		Agent: &agent.Agent{X: 0.5, Z: 0.5, Speed: 1.0},
		Dt:    0.1,
		Grid:  grid,
	}
}

func TestMoveReachesTarget(t *testing.T) {
	ctx := builtinContext(t, 8, 8)
	ctx.Agent.Speed = 2.0
	ctx.Params = Params{"x": 4.5, "z": 0.5}

	status := actionMove(ctx)
	for i := 0; status == Running && i < 100; i++ {
		status = actionMove(ctx)
	}
	require.Equal(t, Success, status)
	assert.InDelta(t, 4.5, ctx.Agent.X, 0.2)
	assert.InDelta(t, 0.5, ctx.Agent.Z, 0.2)
	assert.Nil(t, ctx.Agent.Path, "path cache cleared on arrival")
}

func TestMoveAdvancesBySpeedTimesDt(t *testing.T) {
	ctx := builtinContext(t, 8, 8)
	ctx.Agent.Speed = 1.0
	ctx.Params = Params{"x": 6.5, "z": 0.5}

	startX := ctx.Agent.X
	require.Equal(t, Running, actionMove(ctx))
	moved := math.Hypot(ctx.Agent.X-startX, ctx.Agent.Z-0.5)
	assert.InDelta(t, 0.1, moved, 1e-9)
	assert.InDelta(t, 0.0, ctx.Agent.Heading, 1e-9, "heading faces +X")
}

func TestMoveFailsWhenUnreachable(t *testing.T) {
	ctx := builtinContext(t, 8, 8)
	for iz := 0; iz < 8; iz++ {
		require.NoError(t, ctx.Grid.SetWalkable(4, iz, false))
	}
	ctx.Params = Params{"x": 6.5, "z": 0.5}

	assert.Equal(t, Failure, actionMove(ctx))
	assert.Nil(t, ctx.Agent.Path)
}

func TestMoveReplansAfterGridEdit(t *testing.T) {
	ctx := builtinContext(t, 8, 8)
	ctx.Params = Params{"x": 6.5, "z": 0.5}

	require.Equal(t, Running, actionMove(ctx))
	cached := ctx.Agent.Path
	require.NotNil(t, cached)
	version := ctx.Agent.PathVersion

	require.NoError(t, ctx.Grid.SetWalkable(4, 1, false))
	require.Equal(t, Running, actionMove(ctx))
	assert.NotEqual(t, version, ctx.Agent.PathVersion, "edit must trigger a replan")
}

func TestMoveResolvesNamedAgent(t *testing.T) {
	ctx := builtinContext(t, 8, 8)
	ctx.Params = Params{"target": "beacon"}
	ctx.Agents = []agent.Snapshot{
		{ID: 99, Name: "beacon", X: 3.5, Z: 3.5},
	}

	assert.Equal(t, Running, actionMove(ctx))

	// An unknown name fails instead of defaulting to the origin.
	ctx.Agent.ClearPath()
	ctx.Params = Params{"target": "nobody"}
	assert.Equal(t, Failure, actionMove(ctx))
}

func TestWaitAccumulates(t *testing.T) {
	ctx := builtinContext(t, 4, 4)
	ctx.Dt = 0.4
	ctx.Params = Params{"seconds": 1.0}

	assert.Equal(t, Running, actionWait(ctx))
	assert.Equal(t, Running, actionWait(ctx))
	assert.Equal(t, Success, actionWait(ctx))

	// State cleared: the next wait starts from zero.
	assert.Equal(t, Running, actionWait(ctx))
}

func TestWaitWithoutSecondsSucceeds(t *testing.T) {
	ctx := builtinContext(t, 4, 4)
	ctx.Params = Params{}
	assert.Equal(t, Success, actionWait(ctx))
}

func TestInteractEmitsWithinRadius(t *testing.T) {
	ctx := builtinContext(t, 8, 8)
	ctx.Agent.InteractRadius = 2.0
	ctx.Params = Params{"target": "charger"}
	ctx.Agents = []agent.Snapshot{
		{ID: 7, Name: "charger", X: 1.5, Z: 0.5},
	}

	var got []event.InteractionTriggered
	ctx.Emit = func(ev any) {
		if e, ok := ev.(event.InteractionTriggered); ok {
			got = append(got, e)
		}
	}

	assert.Equal(t, Success, actionInteract(ctx))
	require.Len(t, got, 1)
	assert.Equal(t, "charger", got[0].Target)
	assert.Equal(t, 1.5, got[0].X)
}

func TestInteractFailsOutOfRange(t *testing.T) {
	ctx := builtinContext(t, 8, 8)
	ctx.Agent.InteractRadius = 1.0
	ctx.Params = Params{"target": "charger"}
	ctx.Agents = []agent.Snapshot{
		{ID: 7, Name: "charger", X: 6.5, Z: 6.5},
	}

	emitted := false
	ctx.Emit = func(any) { emitted = true }

	assert.Equal(t, Failure, actionInteract(ctx))
	assert.False(t, emitted)
}

func TestConditionDistance(t *testing.T) {
	ctx := builtinContext(t, 8, 8)
	ctx.Params = Params{"x": 3.5, "z": 0.5, "range": 4.0}
	assert.True(t, conditionDistance(ctx))

	ctx.Params = Params{"x": 3.5, "z": 0.5, "range": 2.0}
	assert.False(t, conditionDistance(ctx))

	// Missing range parameter never passes.
	ctx.Params = Params{"x": 3.5, "z": 0.5}
	assert.False(t, conditionDistance(ctx))
}

func TestConditionHealthBelow(t *testing.T) {
	ctx := builtinContext(t, 4, 4)
	ctx.Agent.Health = 30

	ctx.Params = Params{"threshold": 50.0}
	assert.True(t, conditionHealthBelow(ctx))

	ctx.Params = Params{"threshold": 30.0}
	assert.False(t, conditionHealthBelow(ctx), "threshold is exclusive")

	ctx.Params = Params{}
	assert.False(t, conditionHealthBelow(ctx))
}

func TestWanderStaysOnWalkableCells(t *testing.T) {
	ctx := builtinContext(t, 8, 8)
	ctx.Agent.X, ctx.Agent.Z = 4.5, 4.5
	ctx.Params = Params{"radius": 2.0}

	for i := 0; i < 200; i++ {
		actionWander(ctx)
		c := ctx.Grid.NearestCell(ctx.Agent.X, ctx.Agent.Z)
		assert.True(t, c.Walkable)
	}
}
