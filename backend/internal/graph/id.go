package graph

import (
	"strings"

	"graph-explorer/backend/internal/constants"
)

// ParseNodeID splits a "<type>#___#<localId>" identifier. Identifiers without
// the separator degrade to an empty type with the whole identifier as the
// local id. Anything after a second separator is ignored.
func ParseNodeID(id string) (nodeType, localID string) {
	parts := strings.Split(id, constants.NodeIDSeparator)
	if len(parts) > 1 {
		return parts[0], parts[1]
	}
	return "", id
}

// FormatNodeID builds the composite identifier for a graph-database node.
func FormatNodeID(nodeType, localID string) string {
	return nodeType + constants.NodeIDSeparator + localID
}

// IsExpandable reports whether id carries both a type and a local id, which
// is what a neighborhood fetch is keyed on.
func IsExpandable(id string) bool {
	nodeType, localID := ParseNodeID(id)
	return nodeType != "" && localID != ""
}
