package styling

import "graph-explorer/backend/internal/graph"

// Passthrough keeps nodes and relationships as the backend styled them. It
// only normalizes the flags the renderer requires and unpins every node.
type Passthrough struct {
	placer Placer
}

// NewPassthrough creates a pass-through strategy.
func NewPassthrough(placer Placer) *Passthrough {
	return &Passthrough{placer: placer}
}

// Style implements Strategy.
func (p *Passthrough) Style(fragment graph.Fragment, anchor *Anchor) graph.StyledFragment {
	nodes := make([]graph.Node, 0, len(fragment.Nodes))
	for _, raw := range fragment.Nodes {
		node := graph.Node{
			ID:        raw.ID,
			Type:      raw.Type,
			Caption:   raw.Caption,
			Color:     raw.Color,
			Selected:  deref(raw.Selected),
			Activated: deref(raw.Activated),
		}
		if raw.Caption != "" {
			node.Captions = []graph.Caption{{Value: raw.Caption}}
		}
		nodes = append(nodes, node)
	}

	relationships := make([]graph.Relationship, 0, len(fragment.Relationships))
	for _, raw := range fragment.Relationships {
		relationships = append(relationships, graph.Relationship{
			ID:   raw.ID,
			From: raw.From,
			To:   raw.To,
			Type: raw.Type,
		})
	}

	return graph.StyledFragment{
		Nodes:         nodes,
		Relationships: relationships,
		Positions:     assignIDs(place(p.placer, len(fragment.Nodes), anchor), fragment.Nodes),
	}
}
