package graph

import "math"

// ============================================================================
// Fetched (unstyled) graph data
// ============================================================================

// RawNode is a node as the graph backend returns it. Optional flags stay nil
// when the backend omits them so the styler can tell "absent" from "false".
type RawNode struct {
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Color     string `json:"color,omitempty"`
	Selected  *bool  `json:"selected,omitempty"`
	Activated *bool  `json:"activated,omitempty"`
}

// RawRelationship is a relationship as the graph backend returns it.
type RawRelationship struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type,omitempty"`
}

// Fragment is one fetch worth of nodes and relationships, not yet merged
// into a running graph.
type Fragment struct {
	Nodes         []RawNode         `json:"nodes"`
	Relationships []RawRelationship `json:"relationships"`
}

// ============================================================================
// Render-ready graph data
// ============================================================================

// Caption is one styled line of text drawn on a node or relationship.
type Caption struct {
	Value string `json:"value"`
}

// Node is a styled, render-ready node.
type Node struct {
	ID        string    `json:"id"`
	Type      string    `json:"type,omitempty"`
	Caption   string    `json:"caption,omitempty"`
	Color     string    `json:"color"`
	Size      float64   `json:"size"`
	Captions  []Caption `json:"captions"`
	Selected  bool      `json:"selected"`
	Activated bool      `json:"activated"`
	Pinned    bool      `json:"pinned"`
}

// Relationship is a styled, render-ready relationship.
type Relationship struct {
	ID       string    `json:"id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Type     string    `json:"type,omitempty"`
	Captions []Caption `json:"captions"`
	Width    float64   `json:"width"`
	Color    string    `json:"color"`
}

// Position is a candidate placement for a node. It is handed to the renderer
// and never stored on the node itself.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// StyledFragment is a fragment after styling, with one position per node in
// the same order as Nodes.
type StyledFragment struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
	Positions     []Position     `json:"positions"`
}

// FindPosition returns the position recorded for id.
func FindPosition(positions []Position, id string) (Position, bool) {
	for _, p := range positions {
		if p.ID == id {
			return p, true
		}
	}
	return Position{}, false
}
