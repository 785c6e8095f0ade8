package render

import (
	"sync"

	"go.uber.org/zap"
	"graph-explorer/backend/internal/graph"
	"graph-explorer/backend/pkg/logger"
)

const defaultZoom = 1.0

// Canvas is the server-side model of the rendering widget. It remembers
// what was last rendered, where every node sits, and the viewport, and
// mirrors each change to the connected clients.
type Canvas struct {
	out    Broadcaster
	logger *zap.Logger

	mu            sync.RWMutex
	nodes         []graph.Node
	relationships []graph.Relationship
	positions     []graph.Position
	index         map[string]int
	zoom          float64
	pan           Point
}

// NewCanvas creates a canvas that mirrors its commands to out.
func NewCanvas(out Broadcaster) *Canvas {
	return &Canvas{
		out:    out,
		index:  make(map[string]int),
		zoom:   defaultZoom,
		logger: logger.With("canvas"),
	}
}

// Render replaces the declarative render input.
func (c *Canvas) Render(nodes []graph.Node, relationships []graph.Relationship) {
	c.mu.Lock()
	c.nodes = append([]graph.Node(nil), nodes...)
	c.relationships = append([]graph.Relationship(nil), relationships...)
	c.mu.Unlock()

	c.send(Command{Action: ActionRender, Nodes: nodes, Relationships: relationships})
}

// NodePositions returns the last known position of every placed node.
func (c *Canvas) NodePositions() []graph.Position {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]graph.Position(nil), c.positions...)
}

// SetNodePositions moves the given nodes, leaving all others in place.
func (c *Canvas) SetNodePositions(positions []graph.Position, animate bool) {
	if len(positions) == 0 {
		return
	}

	c.mu.Lock()
	for _, p := range positions {
		if i, ok := c.index[p.ID]; ok {
			c.positions[i] = p
			continue
		}
		c.index[p.ID] = len(c.positions)
		c.positions = append(c.positions, p)
	}
	c.mu.Unlock()

	c.send(Command{Action: ActionSetPositions, Positions: positions, Animate: animate})
}

// SetZoom sets the zoom level.
func (c *Canvas) SetZoom(zoom float64) {
	c.mu.Lock()
	c.zoom = zoom
	c.mu.Unlock()

	c.send(Command{Action: ActionSetZoom, Zoom: zoom})
}

// SetPan moves the viewport.
func (c *Canvas) SetPan(x, y float64) {
	c.mu.Lock()
	c.pan = Point{X: x, Y: y}
	c.mu.Unlock()

	c.send(Command{Action: ActionSetPan, Pan: &Point{X: x, Y: y}})
}

// ResetZoom restores the default zoom and centers the viewport.
func (c *Canvas) ResetZoom() {
	c.mu.Lock()
	c.zoom = defaultZoom
	c.pan = Point{}
	c.mu.Unlock()

	c.send(Command{Action: ActionResetZoom, Zoom: defaultZoom, Pan: &Point{}})
}

// FitNodes centers the viewport on the given nodes. Unknown ids are ignored.
func (c *Canvas) FitNodes(ids []string) {
	c.mu.Lock()
	var sumX, sumY float64
	found := 0
	for _, id := range ids {
		if i, ok := c.index[id]; ok {
			sumX += c.positions[i].X
			sumY += c.positions[i].Y
			found++
		}
	}
	if found > 0 {
		c.pan = Point{X: sumX / float64(found), Y: sumY / float64(found)}
	}
	pan := c.pan
	c.mu.Unlock()

	c.send(Command{Action: ActionFitNodes, NodeIDs: ids, Pan: &pan})
}

// ShowError displays a message next to the graph.
func (c *Canvas) ShowError(message string) {
	c.send(Command{Action: ActionError, Message: message})
}

// Viewport returns the current zoom and pan.
func (c *Canvas) Viewport() (float64, Point) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zoom, c.pan
}

// Replay returns the commands that bring a fresh client up to date.
func (c *Canvas) Replay() []Command {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pan := c.pan
	cmds := []Command{
		{Action: ActionRender, Nodes: c.nodes, Relationships: c.relationships},
	}
	if len(c.positions) > 0 {
		cmds = append(cmds, Command{Action: ActionSetPositions, Positions: append([]graph.Position(nil), c.positions...)})
	}
	cmds = append(cmds,
		Command{Action: ActionSetZoom, Zoom: c.zoom},
		Command{Action: ActionSetPan, Pan: &pan},
	)
	return cmds
}

func (c *Canvas) send(cmd Command) {
	if c.out == nil {
		return
	}
	if err := c.out.Broadcast(cmd); err != nil {
		c.logger.Warn("Failed to deliver command",
			zap.String("action", cmd.Action),
			zap.Error(err),
		)
	}
}
