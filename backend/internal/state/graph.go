package state

import (
	"graph-explorer/backend/internal/graph"
)

// Graph is the running graph of one exploration session: nodes and
// relationships in first-seen order, unique by id, plus the set of nodes
// already used as expansion triggers. It only ever grows.
//
// Graph is not safe for concurrent use; the owner serializes access.
type Graph struct {
	nodes         []graph.Node
	nodeIndex     map[string]int
	relationships []graph.Relationship
	relIndex      map[string]struct{}
	expanded      map[string]struct{}
	expandedOrder []string
}

// NewGraph creates an empty running graph.
func NewGraph() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		relIndex:  make(map[string]struct{}),
		expanded:  make(map[string]struct{}),
	}
}

// Merge folds a styled fragment into the graph. Entities whose id is already
// present are skipped, never overwritten. When trigger is non-empty it is
// then recorded as expanded and its node marked activated.
func (g *Graph) Merge(fragment graph.StyledFragment, trigger string) MergeResult {
	var result MergeResult

	added := make(map[string]bool)
	for _, n := range fragment.Nodes {
		if g.appendNode(n) {
			added[n.ID] = true
			result.Nodes = append(result.Nodes, n)
		}
	}

	for _, r := range fragment.Relationships {
		if _, ok := g.relIndex[r.ID]; ok {
			continue
		}
		if !g.HasNode(r.From) || !g.HasNode(r.To) {
			result.Dangling++
			continue
		}
		g.relIndex[r.ID] = struct{}{}
		g.relationships = append(g.relationships, r)
		result.Relationships = append(result.Relationships, r)
	}

	if trigger != "" {
		g.MarkExpanded(trigger)
		g.Activate(trigger)
	}

	for _, p := range fragment.Positions {
		if added[p.ID] {
			result.Positions = append(result.Positions, p)
		}
	}
	return result
}

func (g *Graph) appendNode(n graph.Node) bool {
	if _, ok := g.nodeIndex[n.ID]; ok {
		return false
	}
	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return true
}

// HasNode reports whether a node with id is present.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// Node returns the node with id.
func (g *Graph) Node(id string) (graph.Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return graph.Node{}, false
	}
	return g.nodes[i], true
}

// MarkExpanded records id as an expansion trigger.
func (g *Graph) MarkExpanded(id string) {
	if _, ok := g.expanded[id]; ok {
		return
	}
	g.expanded[id] = struct{}{}
	g.expandedOrder = append(g.expandedOrder, id)
}

// IsExpanded reports whether id was already used as an expansion trigger.
func (g *Graph) IsExpanded(id string) bool {
	_, ok := g.expanded[id]
	return ok
}

// Activate sets the activated flag on the node with id. It reports false
// when no such node exists.
func (g *Graph) Activate(id string) bool {
	i, ok := g.nodeIndex[id]
	if !ok {
		return false
	}
	g.nodes[i].Activated = true
	return true
}

// Len returns the node and relationship counts.
func (g *Graph) Len() (nodes, relationships int) {
	return len(g.nodes), len(g.relationships)
}

// Nodes returns a copy of the nodes in insertion order.
func (g *Graph) Nodes() []graph.Node {
	return append([]graph.Node{}, g.nodes...)
}

// Relationships returns a copy of the relationships in insertion order.
func (g *Graph) Relationships() []graph.Relationship {
	return append([]graph.Relationship{}, g.relationships...)
}

// Snapshot copies the graph. Busy is left for the owner to fill in.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Nodes:         g.Nodes(),
		Relationships: g.Relationships(),
		Expanded:      append([]string{}, g.expandedOrder...),
	}
}
