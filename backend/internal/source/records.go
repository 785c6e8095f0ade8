package source

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"graph-explorer/backend/internal/graph"
)

// ============================================================================
// Record transformation
// ============================================================================

// captionProperties are tried in order for a node's caption.
var captionProperties = []string{"name", "title", "caption"}

// recordCollector gathers every node, relationship and path found in any
// column of any record, deduplicated by element id, in first-seen order.
type recordCollector struct {
	nodeIDs       map[string]string // element id → composite node id
	nodes         []graph.RawNode
	relationships []neo4j.Relationship
	seenRels      map[string]bool
}

func fragmentFromRecords(records []*neo4j.Record) *graph.Fragment {
	c := &recordCollector{
		nodeIDs:  make(map[string]string),
		seenRels: make(map[string]bool),
	}
	for _, record := range records {
		for _, value := range record.Values {
			c.collect(value)
		}
	}

	fragment := &graph.Fragment{
		Nodes:         c.nodes,
		Relationships: make([]graph.RawRelationship, 0, len(c.relationships)),
	}
	if fragment.Nodes == nil {
		fragment.Nodes = []graph.RawNode{}
	}

	// Relationships whose endpoints were not returned cannot be drawn.
	for _, rel := range c.relationships {
		from, okFrom := c.nodeIDs[rel.StartElementId]
		to, okTo := c.nodeIDs[rel.EndElementId]
		if !okFrom || !okTo {
			continue
		}
		fragment.Relationships = append(fragment.Relationships, graph.RawRelationship{
			ID:   rel.ElementId,
			From: from,
			To:   to,
			Type: rel.Type,
		})
	}
	return fragment
}

func (c *recordCollector) collect(value any) {
	switch v := value.(type) {
	case neo4j.Node:
		c.addNode(v)
	case neo4j.Relationship:
		c.addRelationship(v)
	case neo4j.Path:
		for _, n := range v.Nodes {
			c.addNode(n)
		}
		for _, r := range v.Relationships {
			c.addRelationship(r)
		}
	case []any:
		for _, item := range v {
			c.collect(item)
		}
	}
}

func (c *recordCollector) addNode(n neo4j.Node) {
	if _, ok := c.nodeIDs[n.ElementId]; ok {
		return
	}

	label := ""
	if len(n.Labels) > 0 {
		label = n.Labels[0]
	}
	id := nodeIDFor(label, n)
	c.nodeIDs[n.ElementId] = id

	c.nodes = append(c.nodes, graph.RawNode{
		ID:      id,
		Type:    label,
		Caption: captionFor(n.Props),
	})
}

func (c *recordCollector) addRelationship(r neo4j.Relationship) {
	if c.seenRels[r.ElementId] {
		return
	}
	c.seenRels[r.ElementId] = true
	c.relationships = append(c.relationships, r)
}

// nodeIDFor encodes "<label>#___#<id property or element id>". Unlabelled
// nodes keep the bare element id.
func nodeIDFor(label string, n neo4j.Node) string {
	localID := n.ElementId
	if raw, ok := n.Props["id"]; ok && raw != nil {
		localID = fmt.Sprint(raw)
	}
	if label == "" {
		return n.ElementId
	}
	return graph.FormatNodeID(label, localID)
}

func captionFor(props map[string]any) string {
	for _, key := range captionProperties {
		if s := getStringFromMap(props, key, ""); s != "" {
			return s
		}
	}
	return ""
}

func getStringFromMap(m map[string]interface{}, key, defaultValue string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}
