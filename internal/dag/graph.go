// Package dag provides the feature dependency graph: closure validation,
// cycle detection, stable topological ordering and wave grouping.
package dag

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrCycle is wrapped by CycleError.
	ErrCycle = errors.New("circular dependency detected")
	// ErrMissingDependency is returned when a node depends on an id that is not in the graph.
	ErrMissingDependency = errors.New("dependency not in graph")
	// ErrDuplicateNode is returned when the same id is added twice.
	ErrDuplicateNode = errors.New("duplicate node")
)

// CycleError reports a dependency cycle. Path starts and ends on the same id.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// NodeStatus is the resolution state of a feature node.
type NodeStatus int

const (
	// StatusPending indicates the node has not been resolved against answers.
	StatusPending NodeStatus = iota
	// StatusActive indicates the feature contributes at least one stage.
	StatusActive
	// StatusSkipped indicates every stage of the feature was filtered out.
	StatusSkipped
)

// String returns the string representation of a NodeStatus.
func (s NodeStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusActive:
		return "Active"
	case StatusSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// Node is one feature in the graph.
type Node struct {
	ID           string     // Feature identifier
	Index        int        // Insertion position, used as the ordering tie-break
	Dependencies []string   // IDs this feature depends on
	Dependents   []string   // IDs that depend on this feature
	Status       NodeStatus // Resolution state
}

// DependencyGraph is a directed graph of feature dependencies.
// Nodes keep their insertion order, which callers set to catalog
// declaration order.
type DependencyGraph struct {
	nodes map[string]*Node
	order []string
	roots []string
}

// NewDependencyGraph creates an empty dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*Node),
		roots: []string{},
	}
}

// AddNode appends a feature and its dependencies to the graph.
func (g *DependencyGraph) AddNode(id string, deps []string) error {
	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("adding %s: %w", id, ErrDuplicateNode)
	}
	d := make([]string, len(deps))
	copy(d, deps)
	g.nodes[id] = &Node{
		ID:           id,
		Index:        len(g.order),
		Dependencies: d,
		Dependents:   []string{},
		Status:       StatusPending,
	}
	g.order = append(g.order, id)
	return nil
}

// Edge is the input form of one node for Build.
type Edge struct {
	ID        string
	DependsOn []string
}

// Build constructs a graph from edges in order, then links dependents.
func Build(edges []Edge) (*DependencyGraph, error) {
	g := NewDependencyGraph()
	for _, e := range edges {
		if err := g.AddNode(e.ID, e.DependsOn); err != nil {
			return nil, fmt.Errorf("building graph: %w", err)
		}
	}
	if err := g.Link(); err != nil {
		return nil, err
	}
	return g, nil
}

// Link checks that every dependency is present, fills Dependents and
// identifies roots. It is idempotent.
func (g *DependencyGraph) Link() error {
	for _, id := range g.order {
		g.nodes[id].Dependents = []string{}
	}
	for _, id := range g.order {
		node := g.nodes[id]
		for _, depID := range node.Dependencies {
			dep, ok := g.nodes[depID]
			if !ok {
				return fmt.Errorf("%s depends on %s: %w", id, depID, ErrMissingDependency)
			}
			dep.Dependents = append(dep.Dependents, id)
		}
	}
	g.roots = []string{}
	for _, id := range g.order {
		if len(g.nodes[id].Dependencies) == 0 {
			g.roots = append(g.roots, id)
		}
	}
	return nil
}

// Nodes returns the node map.
func (g *DependencyGraph) Nodes() map[string]*Node {
	return g.nodes
}

// Order returns node ids in insertion order.
func (g *DependencyGraph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Roots returns ids with no dependencies, in insertion order.
func (g *DependencyGraph) Roots() []string {
	return g.roots
}

// GetNode returns a node by id, or nil.
func (g *DependencyGraph) GetNode(id string) *Node {
	return g.nodes[id]
}

// Size returns the number of nodes.
func (g *DependencyGraph) Size() int {
	return len(g.nodes)
}

// DetectCycle returns a *CycleError naming the first cycle found, walking
// nodes and their dependencies in insertion order so the reported path is
// deterministic. Dependencies missing from the graph are ignored here.
func (g *DependencyGraph) DetectCycle() error {
	visited := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))

	for _, id := range g.order {
		if visited[id] {
			continue
		}
		if cycle := g.detectCycleDFS(id, visited, onStack, nil); cycle != nil {
			return &CycleError{Path: cycle}
		}
	}
	return nil
}

func (g *DependencyGraph) detectCycleDFS(id string, visited, onStack map[string]bool, path []string) []string {
	visited[id] = true
	onStack[id] = true
	path = append(path, id)

	for _, depID := range g.nodes[id].Dependencies {
		if _, ok := g.nodes[depID]; !ok {
			continue
		}
		if !visited[depID] {
			if cycle := g.detectCycleDFS(depID, visited, onStack, path); cycle != nil {
				return cycle
			}
		} else if onStack[depID] {
			return buildCyclePath(path, depID)
		}
	}

	onStack[id] = false
	return nil
}

func buildCyclePath(path []string, start string) []string {
	for i, id := range path {
		if id == start {
			cycle := make([]string, 0, len(path)-i+1)
			cycle = append(cycle, path[i:]...)
			return append(cycle, start)
		}
	}
	cycle := make([]string, 0, len(path)+1)
	cycle = append(cycle, path...)
	return append(cycle, start)
}

// Validate links the graph and rejects cycles.
func (g *DependencyGraph) Validate() error {
	if err := g.Link(); err != nil {
		return err
	}
	return g.DetectCycle()
}

// TopologicalOrder returns ids so every node follows its dependencies.
// Among nodes whose dependencies are satisfied, the lowest insertion index
// goes first, so the result is stable for a given insertion order.
func (g *DependencyGraph) TopologicalOrder() ([]string, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	inDegree := make(map[string]int, len(g.nodes))
	ready := make([]int, 0, len(g.roots))
	for _, id := range g.order {
		n := g.nodes[id]
		inDegree[id] = len(n.Dependencies)
		if inDegree[id] == 0 {
			ready = append(ready, n.Index)
		}
	}

	out := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		idx := ready[0]
		ready = ready[1:]
		id := g.order[idx]
		out = append(out, id)

		for _, depID := range g.nodes[id].Dependents {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				ready = insertSorted(ready, g.nodes[depID].Index)
			}
		}
	}
	return out, nil
}

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// SetNodeStatus updates the status of a node.
func (g *DependencyGraph) SetNodeStatus(id string, status NodeStatus) error {
	node := g.nodes[id]
	if node == nil {
		return fmt.Errorf("setting node status: feature %s not found", id)
	}
	node.Status = status
	return nil
}
