package behavior

import "fmt"

// Kind tags the node variants.
type Kind uint8

const (
	KindSequence Kind = iota
	KindSelector
	KindAction
	KindCondition
	KindDecorator
)

// Decorator rules. Repeat remaps a terminal child result back to Running so
// the child loops; Invert swaps Success and Failure and passes Running
// through.
const (
	DecoratorRepeat = "Repeat"
	DecoratorInvert = "Invert"
)

// NodeID indexes into a tree's node arena.
type NodeID int

// Node is one arena entry. Trees are strictly acyclic and stored as an arena
// of nodes indexed by integer id rather than nested owned pointers, so one
// tree is shared read-only across many agents without duplication. Leaf
// functions are resolved once at load time.
type Node struct {
	Kind     Kind
	Name     string
	Params   Params
	Children []NodeID

	action    ActionFunc
	condition ConditionFunc
}

// Tree is a compiled, immutable behavior tree.
type Tree struct {
	id    string
	nodes []Node
	root  NodeID
}

func (t *Tree) ID() string { return t.id }
func (t *Tree) Len() int   { return len(t.nodes) }

// NodeDef is the serializable nested tree descriptor: kind, optional name
// and parameters, and children for composites. The data package unmarshals
// YAML into this shape; callers may also build definitions in code.
type NodeDef struct {
	Kind       string
	Name       string
	Parameters map[string]any
	Children   []NodeDef
}

// Compile validates a definition against the library and flattens it into an
// arena. Every violation — unknown kind, missing leaf name, decorator child
// count != 1, or a leaf referencing an unregistered name — is a load-time
// schema error, so a malformed tree can never reach tick execution.
func Compile(id string, def NodeDef, lib *Library) (*Tree, error) {
	t := &Tree{id: id}
	root, err := t.compileNode(def, lib, id)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

func (t *Tree) compileNode(def NodeDef, lib *Library, treeID string) (NodeID, error) {
	node := Node{Name: def.Name, Params: Params(def.Parameters)}

	switch def.Kind {
	case "Sequence":
		node.Kind = KindSequence
	case "Selector":
		node.Kind = KindSelector
	case "Action":
		node.Kind = KindAction
	case "Condition":
		node.Kind = KindCondition
	case "Decorator":
		node.Kind = KindDecorator
	default:
		return 0, fmt.Errorf("%w: tree %q has unknown kind %q", ErrSchema, treeID, def.Kind)
	}

	switch node.Kind {
	case KindSequence, KindSelector:
		if len(def.Children) == 0 {
			return 0, fmt.Errorf("%w: tree %q has %s with no children", ErrSchema, treeID, def.Kind)
		}
	case KindAction:
		if def.Name == "" {
			return 0, fmt.Errorf("%w: tree %q has Action without name", ErrSchema, treeID)
		}
		fn, err := lib.Action(def.Name)
		if err != nil {
			return 0, fmt.Errorf("%w: tree %q: %v", ErrSchema, treeID, err)
		}
		node.action = fn
	case KindCondition:
		if def.Name == "" {
			return 0, fmt.Errorf("%w: tree %q has Condition without name", ErrSchema, treeID)
		}
		fn, err := lib.Condition(def.Name)
		if err != nil {
			return 0, fmt.Errorf("%w: tree %q: %v", ErrSchema, treeID, err)
		}
		node.condition = fn
	case KindDecorator:
		if def.Name != DecoratorRepeat && def.Name != DecoratorInvert {
			return 0, fmt.Errorf("%w: tree %q has unknown decorator %q", ErrSchema, treeID, def.Name)
		}
		if len(def.Children) != 1 {
			return 0, fmt.Errorf("%w: tree %q decorator %q has %d children, want 1",
				ErrSchema, treeID, def.Name, len(def.Children))
		}
	}

	// Reserve the slot before recursing so ids follow preorder.
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node)

	children := make([]NodeID, 0, len(def.Children))
	for _, childDef := range def.Children {
		childID, err := t.compileNode(childDef, lib, treeID)
		if err != nil {
			return 0, err
		}
		children = append(children, childID)
	}
	t.nodes[id].Children = children
	return id, nil
}

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "Sequence"
	case KindSelector:
		return "Selector"
	case KindAction:
		return "Action"
	case KindCondition:
		return "Condition"
	case KindDecorator:
		return "Decorator"
	default:
		return "unknown"
	}
}
