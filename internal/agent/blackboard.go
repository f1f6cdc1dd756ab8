package agent

// Blackboard is per-agent transient key-value scratch memory. Behavior nodes
// use the generic store for decision state; composite nodes persist their
// last-running child here (keyed by node id) so a Running tree resumes at
// the same node next tick instead of restarting. The zero value is ready to
// use.
type Blackboard struct {
	values  map[string]any
	cursors map[int]int
}

func (b *Blackboard) Set(key string, value any) {
	if b.values == nil {
		b.values = make(map[string]any, 8)
	}
	b.values[key] = value
}

func (b *Blackboard) Get(key string) (any, bool) {
	v, ok := b.values[key]
	return v, ok
}

func (b *Blackboard) Delete(key string) {
	delete(b.values, key)
}

// GetFloat reads a float64 value; missing or mistyped keys return 0, false.
func (b *Blackboard) GetFloat(key string) (float64, bool) {
	v, ok := b.values[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// GetString reads a string value; missing or mistyped keys return "", false.
func (b *Blackboard) GetString(key string) (string, bool) {
	v, ok := b.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Cursor returns the persisted running-child index for a composite node.
func (b *Blackboard) Cursor(nodeID int) (int, bool) {
	c, ok := b.cursors[nodeID]
	return c, ok
}

// SetCursor records which child of a composite node was Running so the next
// tick resumes there.
func (b *Blackboard) SetCursor(nodeID, child int) {
	if b.cursors == nil {
		b.cursors = make(map[int]int, 8)
	}
	b.cursors[nodeID] = child
}

// ClearCursor removes a node's resume point once it finishes.
func (b *Blackboard) ClearCursor(nodeID int) {
	delete(b.cursors, nodeID)
}
