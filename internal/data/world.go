// Package data loads world-authoring definitions from YAML: grid dimensions
// and per-cell overrides, behavior-tree descriptors, and agent spawn
// definitions. Validation of tree semantics happens in the behavior package
// at compile time; this package only checks document shape.
package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/waypost/engine/internal/behavior"
)

// WorldDef is one complete world-authoring document.
type WorldDef struct {
	Grid   GridDef    `yaml:"grid"`
	Cells  []CellDef  `yaml:"cells"`
	Trees  []TreeDef  `yaml:"trees"`
	Spawns []SpawnDef `yaml:"spawns"`
}

type GridDef struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	CellSize float64 `yaml:"cell_size"`
}

// CellDef overrides one cell's walkability or cost. Nil pointers leave the
// built defaults (walkable, cost 1) in place.
type CellDef struct {
	IX       int      `yaml:"ix"`
	IZ       int      `yaml:"iz"`
	Walkable *bool    `yaml:"walkable"`
	Cost     *float64 `yaml:"cost"`
}

// TreeDef names one behavior-tree descriptor.
type TreeDef struct {
	ID   string  `yaml:"id"`
	Root NodeDef `yaml:"root"`
}

// NodeDef mirrors the serializable tree format:
// {kind, name?, parameters?, children?}.
type NodeDef struct {
	Kind       string         `yaml:"kind"`
	Name       string         `yaml:"name"`
	Parameters map[string]any `yaml:"parameters"`
	Children   []NodeDef      `yaml:"children"`
}

// SpawnDef describes one agent to spawn at startup.
type SpawnDef struct {
	Name           string  `yaml:"name"`
	X              float64 `yaml:"x"`
	Y              float64 `yaml:"y"`
	Z              float64 `yaml:"z"`
	Heading        float64 `yaml:"heading"`
	Speed          float64 `yaml:"speed"`
	Health         float64 `yaml:"health"`
	InteractRadius float64 `yaml:"interact_radius"`
	Tree           string  `yaml:"tree"`
}

// LoadWorld reads and parses a world definition file.
func LoadWorld(path string) (*WorldDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world %s: %w", path, err)
	}
	var def WorldDef
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse world %s: %w", path, err)
	}
	for i, t := range def.Trees {
		if t.ID == "" {
			return nil, fmt.Errorf("parse world %s: tree %d has no id", path, i)
		}
	}
	return &def, nil
}

// Behavior converts a YAML node descriptor into the behavior package's
// neutral definition type.
func (n NodeDef) Behavior() behavior.NodeDef {
	children := make([]behavior.NodeDef, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, c.Behavior())
	}
	return behavior.NodeDef{
		Kind:       n.Kind,
		Name:       n.Name,
		Parameters: n.Parameters,
		Children:   children,
	}
}
