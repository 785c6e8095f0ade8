package styling

import (
	"fmt"

	"go.uber.org/zap"
	"graph-explorer/backend/internal/constants"
	"graph-explorer/backend/internal/graph"
	"graph-explorer/backend/pkg/logger"
)

// Anchor places a fragment around an existing node instead of scattering it.
type Anchor struct {
	Center   graph.Position
	Existing []graph.Position
}

// Strategy turns a fetched fragment into render-ready nodes, relationships
// and positions. A nil anchor selects organic placement.
type Strategy interface {
	Style(fragment graph.Fragment, anchor *Anchor) graph.StyledFragment
}

// Placer produces one position per node, in node order.
type Placer interface {
	Organic(count int, center graph.Position) []graph.Position
	Expansion(count int, center graph.Position, existing []graph.Position) []graph.Position
}

// ColorResolver maps an entity type to a display color.
type ColorResolver interface {
	ColorFor(nodeType string) string
}

// SizeResolver maps an entity type to a node size.
type SizeResolver interface {
	SizeFor(nodeType string) float64
}

// RelationshipStyle is applied to every relationship.
type RelationshipStyle struct {
	Width          float64
	Color          string
	DefaultCaption string
}

// DefaultRelationshipStyle returns the stock relationship styling.
func DefaultRelationshipStyle() RelationshipStyle {
	return RelationshipStyle{
		Width:          constants.DefaultRelationshipWidth,
		Color:          constants.DefaultRelationshipColor,
		DefaultCaption: constants.DefaultRelationshipCaption,
	}
}

// Styler is the typed styling strategy: colors and sizes follow each node's
// entity type, and captions fall back to the type name.
type Styler struct {
	colors        ColorResolver
	sizes         SizeResolver
	placer        Placer
	relationships RelationshipStyle
	logger        *zap.Logger
}

// NewStyler creates a typed styler.
func NewStyler(colors ColorResolver, sizes SizeResolver, placer Placer, relationships RelationshipStyle) *Styler {
	def := DefaultRelationshipStyle()
	if relationships.Width <= 0 {
		relationships.Width = def.Width
	}
	if relationships.Color == "" {
		relationships.Color = def.Color
	}
	if relationships.DefaultCaption == "" {
		relationships.DefaultCaption = def.DefaultCaption
	}

	return &Styler{
		colors:        colors,
		sizes:         sizes,
		placer:        placer,
		relationships: relationships,
		logger:        logger.With("styling"),
	}
}

// Style implements Strategy.
func (s *Styler) Style(fragment graph.Fragment, anchor *Anchor) graph.StyledFragment {
	placements := place(s.placer, len(fragment.Nodes), anchor)

	nodes := make([]graph.Node, 0, len(fragment.Nodes))
	for _, raw := range fragment.Nodes {
		nodes = append(nodes, s.styleNode(raw))
	}

	relationships := make([]graph.Relationship, 0, len(fragment.Relationships))
	for _, raw := range fragment.Relationships {
		relationships = append(relationships, s.styleRelationship(raw))
	}

	s.logger.Debug("Styled fragment",
		zap.Int("nodes", len(nodes)),
		zap.Int("relationships", len(relationships)),
		zap.Bool("anchored", anchor != nil),
	)

	return graph.StyledFragment{
		Nodes:         nodes,
		Relationships: relationships,
		Positions:     assignIDs(placements, fragment.Nodes),
	}
}

// DisplayType resolves the type a node is styled as: the type encoded in its
// identifier, else its explicit type, else "Unknown".
func DisplayType(raw graph.RawNode) string {
	if nodeType, _ := graph.ParseNodeID(raw.ID); nodeType != "" {
		return nodeType
	}
	if raw.Type != "" {
		return raw.Type
	}
	return constants.UnknownNodeType
}

func (s *Styler) styleNode(raw graph.RawNode) graph.Node {
	displayType := DisplayType(raw)

	color := raw.Color
	if color == "" {
		color = s.colors.ColorFor(displayType)
	}

	caption := raw.Caption
	if caption == "" {
		caption = displayType
	}

	return graph.Node{
		ID:        raw.ID,
		Type:      displayType,
		Caption:   raw.Caption,
		Color:     color,
		Size:      s.sizes.SizeFor(displayType),
		Captions:  []graph.Caption{{Value: caption}},
		Selected:  deref(raw.Selected),
		Activated: deref(raw.Activated),
		Pinned:    false,
	}
}

func (s *Styler) styleRelationship(raw graph.RawRelationship) graph.Relationship {
	caption := raw.Type
	if caption == "" {
		caption = s.relationships.DefaultCaption
	}

	return graph.Relationship{
		ID:       raw.ID,
		From:     raw.From,
		To:       raw.To,
		Type:     raw.Type,
		Captions: []graph.Caption{{Value: caption}},
		Width:    s.relationships.Width,
		Color:    s.relationships.Color,
	}
}

// place picks the placement mode: expansion around the anchor when there is
// one, organic around the origin otherwise.
func place(placer Placer, count int, anchor *Anchor) []graph.Position {
	if anchor != nil {
		return placer.Expansion(count, anchor.Center, anchor.Existing)
	}
	return placer.Organic(count, graph.Position{})
}

// assignIDs names placements by index: position i belongs to node i.
func assignIDs(placements []graph.Position, nodes []graph.RawNode) []graph.Position {
	positions := make([]graph.Position, len(placements))
	for i, p := range placements {
		id := fmt.Sprintf("%s%d", constants.SyntheticNodeIDPrefix, i)
		if i < len(nodes) && nodes[i].ID != "" {
			id = nodes[i].ID
		}
		positions[i] = graph.Position{ID: id, X: p.X, Y: p.Y}
	}
	return positions
}

func deref(b *bool) bool {
	return b != nil && *b
}
