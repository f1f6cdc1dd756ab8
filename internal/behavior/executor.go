package behavior

import "fmt"

// Executor ticks compiled trees. It holds no per-agent state — resume points
// live in each agent's blackboard — so one executor serves every agent and
// may be shared across parallel workers.
type Executor struct{}

func NewExecutor() *Executor { return &Executor{} }

// Tick runs one tree for one agent. A Running result means some node
// suspended; the next Tick resumes there rather than restarting.
func (e *Executor) Tick(tree *Tree, ctx *Context) Status {
	return e.tick(tree, tree.root, ctx)
}

func (e *Executor) tick(tree *Tree, id NodeID, ctx *Context) Status {
	node := &tree.nodes[id]
	ctx.Params = node.Params

	switch node.Kind {
	case KindSequence:
		return e.tickSequence(tree, id, node, ctx)
	case KindSelector:
		return e.tickSelector(tree, node, ctx)
	case KindAction:
		return node.action(ctx)
	case KindCondition:
		if node.condition(ctx) {
			return Success
		}
		return Failure
	case KindDecorator:
		return e.tickDecorator(tree, id, node, ctx)
	default:
		return Failure
	}
}

// tickSequence runs children left to right. Failure and Running
// short-circuit; on Running the child index persists in the blackboard so
// the next tick resumes there without re-evaluating prior siblings.
func (e *Executor) tickSequence(tree *Tree, id NodeID, node *Node, ctx *Context) Status {
	bb := &ctx.Agent.Blackboard
	start := 0
	if cur, ok := bb.Cursor(int(id)); ok && cur < len(node.Children) {
		start = cur
	}
	for i := start; i < len(node.Children); i++ {
		switch e.tick(tree, node.Children[i], ctx) {
		case Failure:
			bb.ClearCursor(int(id))
			return Failure
		case Running:
			bb.SetCursor(int(id), i)
			return Running
		}
	}
	bb.ClearCursor(int(id))
	return Success
}

// tickSelector re-evaluates from the first child every tick, so a
// higher-priority branch (e.g. an arrival condition) can preempt a Running
// lower branch. The first Success or Running short-circuits.
func (e *Executor) tickSelector(tree *Tree, node *Node, ctx *Context) Status {
	for _, child := range node.Children {
		switch e.tick(tree, child, ctx) {
		case Success:
			return Success
		case Running:
			return Running
		}
	}
	return Failure
}

func (e *Executor) tickDecorator(tree *Tree, id NodeID, node *Node, ctx *Context) Status {
	child := node.Children[0]
	status := e.tick(tree, child, ctx)

	switch node.Name {
	case DecoratorInvert:
		switch status {
		case Success:
			return Failure
		case Failure:
			return Success
		default:
			return Running
		}
	case DecoratorRepeat:
		if status == Running {
			return Running
		}
		// The child finished: reset its resume state so the next tick
		// restarts it from scratch, then keep the loop alive. An optional
		// "times" parameter bounds the loop; 0 or absent repeats forever.
		e.resetSubtree(tree, child, ctx)
		if limit, ok := node.Params.Float("times"); ok && limit > 0 {
			key := fmt.Sprintf("repeat#%d", id)
			count := 0.0
			if v, ok := ctx.Agent.Blackboard.GetFloat(key); ok {
				count = v
			}
			count++
			if count >= limit {
				ctx.Agent.Blackboard.Delete(key)
				return status
			}
			ctx.Agent.Blackboard.Set(key, count)
		}
		return Running
	default:
		return status
	}
}

// resetSubtree clears the resume cursors of a finished subtree so a Repeat
// restarts it cleanly.
func (e *Executor) resetSubtree(tree *Tree, id NodeID, ctx *Context) {
	ctx.Agent.Blackboard.ClearCursor(int(id))
	for _, child := range tree.nodes[id].Children {
		e.resetSubtree(tree, child, ctx)
	}
}
