package render

import (
	"context"

	"graph-explorer/backend/internal/graph"
)

// Commands sent to rendering clients
const (
	ActionRender       = "render"
	ActionSetPositions = "set_positions"
	ActionSetZoom      = "set_zoom"
	ActionSetPan       = "set_pan"
	ActionResetZoom    = "reset_zoom"
	ActionFitNodes     = "fit_nodes"
	ActionError        = "error"
)

// Interaction events received from rendering clients
const (
	EventNodeDoubleClick  = "node_double_click"
	EventNodeClick        = "node_click"
	EventDrag             = "drag"
	EventCanvasClick      = "canvas_click"
	EventCanvasRightClick = "canvas_right_click"
	EventPan              = "pan"
	EventZoom             = "zoom"
)

// Point is a viewport coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Command is one imperative instruction for the rendering widget.
type Command struct {
	Action        string               `json:"action"`
	Nodes         []graph.Node         `json:"nodes,omitempty"`
	Relationships []graph.Relationship `json:"relationships,omitempty"`
	Positions     []graph.Position     `json:"positions,omitempty"`
	Animate       bool                 `json:"animate,omitempty"`
	Zoom          float64              `json:"zoom,omitempty"`
	Pan           *Point               `json:"pan,omitempty"`
	NodeIDs       []string             `json:"node_ids,omitempty"`
	Message       string               `json:"message,omitempty"`
}

// Event is one user interaction reported by a rendering client.
//
//	{"event": "node_double_click", "node_id": "Publication#___#9693"}
//	{"event": "drag", "nodes": [{"id": "...", "x": 10, "y": 20}]}
//	{"event": "pan", "pan": {"x": 5, "y": -3}}
//	{"event": "zoom", "zoom": 1.5}
type Event struct {
	Event  string           `json:"event"`
	NodeID string           `json:"node_id,omitempty"`
	Nodes  []graph.Position `json:"nodes,omitempty"`
	Zoom   float64          `json:"zoom,omitempty"`
	Pan    *Point           `json:"pan,omitempty"`
}

// EventHandler reacts to interaction events.
type EventHandler interface {
	HandleEvent(ctx context.Context, clientID string, ev Event)
}

// Broadcaster delivers a command to every connected client.
type Broadcaster interface {
	Broadcast(cmd Command) error
}
