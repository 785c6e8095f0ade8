package state

import (
	"fmt"

	"graph-explorer/backend/internal/graph"
)

// Snapshot is a point-in-time copy of the running graph, serialized for the
// HTTP API and handed to the renderer.
type Snapshot struct {
	Nodes         []graph.Node         `json:"nodes"`
	Relationships []graph.Relationship `json:"relationships"`
	Expanded      []string             `json:"expanded"`
	Busy          bool                 `json:"busy"`
}

// MergeResult lists what a merge actually added, in fragment order.
type MergeResult struct {
	Nodes         []graph.Node
	Relationships []graph.Relationship
	Positions     []graph.Position // positions of the added nodes only
	Dangling      int              // relationships dropped for a missing endpoint
}

// Validate checks the running-graph invariants: unique ids and relationship
// endpoints that resolve to nodes.
func (s *Snapshot) Validate() error {
	nodes := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if nodes[n.ID] {
			return ErrDuplicateID{Kind: "node", ID: n.ID}
		}
		nodes[n.ID] = true
	}

	rels := make(map[string]bool, len(s.Relationships))
	for _, r := range s.Relationships {
		if rels[r.ID] {
			return ErrDuplicateID{Kind: "relationship", ID: r.ID}
		}
		rels[r.ID] = true
		if !nodes[r.From] {
			return ErrDanglingRelationship{ID: r.ID, Endpoint: r.From}
		}
		if !nodes[r.To] {
			return ErrDanglingRelationship{ID: r.ID, Endpoint: r.To}
		}
	}
	return nil
}

// Errors

type ErrDuplicateID struct {
	Kind string
	ID   string
}

func (e ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate %s id: %s", e.Kind, e.ID)
}

type ErrDanglingRelationship struct {
	ID       string
	Endpoint string
}

func (e ErrDanglingRelationship) Error() string {
	return fmt.Sprintf("relationship %s references missing node %s", e.ID, e.Endpoint)
}
