package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"graph-explorer/backend/internal/render"
	apperrors "graph-explorer/backend/pkg/errors"
	"graph-explorer/backend/pkg/logger"
)

// Controller binds rendering-surface interactions to the session.
type Controller struct {
	session  *Session
	renderer Renderer
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewController creates a controller driving renderer on behalf of session.
func NewController(session *Session, renderer Renderer) *Controller {
	return &Controller{
		session:  session,
		renderer: renderer,
		logger:   logger.With("controller"),
	}
}

// HandleEvent implements render.EventHandler.
func (c *Controller) HandleEvent(ctx context.Context, clientID string, ev render.Event) {
	switch ev.Event {
	case render.EventNodeDoubleClick:
		// Expansion blocks on the fetch; keep the client's event stream moving.
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.expand(ctx, ev.NodeID)
		}()

	case render.EventNodeClick:
		if ev.NodeID != "" {
			c.renderer.FitNodes([]string{ev.NodeID})
		}

	case render.EventDrag:
		c.renderer.SetNodePositions(ev.Nodes, true)

	case render.EventCanvasClick, render.EventCanvasRightClick:
		c.renderer.ResetZoom()

	case render.EventPan:
		if c.session.Busy() || ev.Pan == nil {
			return
		}
		c.renderer.SetPan(ev.Pan.X, ev.Pan.Y)

	case render.EventZoom:
		if c.session.Busy() || ev.Zoom <= 0 {
			return
		}
		c.renderer.SetZoom(ev.Zoom)

	default:
		c.logger.Debug("Ignoring unknown event",
			zap.String("event", ev.Event),
			zap.String("client_id", clientID),
		)
	}
}

// Wait blocks until every expansion started by an event has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) expand(ctx context.Context, nodeID string) {
	outcome, err := c.session.Expand(ctx, nodeID)
	if err != nil {
		c.renderer.ShowError(apperrors.UserMessage(err))
		return
	}
	c.logger.Debug("Handled double click",
		zap.String("node_id", nodeID),
		zap.String("outcome", string(outcome)),
	)
}
