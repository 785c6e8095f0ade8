package constants

// Identifier constants
const (
	// NodeIDSeparator splits a graph-database node identifier into its type
	// and local id: "<type>#___#<localId>".
	NodeIDSeparator = "#___#"
	// SyntheticNodeIDPrefix names positions for nodes that arrive without an id.
	SyntheticNodeIDPrefix = "node-"
)

// Styling constants
const (
	// UnknownNodeType is the display type for nodes with no parseable or explicit type
	UnknownNodeType = "Unknown"
	// DefaultRelationshipCaption labels relationships that carry no type
	DefaultRelationshipCaption = "CONNECTED"
	// DefaultRelationshipWidth is the stroke width of every relationship
	DefaultRelationshipWidth = 2.0
	// DefaultRelationshipColor is the stroke color of every relationship
	DefaultRelationshipColor = "#666666"
	// DefaultNodeSize applies to types missing from the size table
	DefaultNodeSize = 28.0
)

// Fetch constants
const (
	// NodeTypeParameter is the request parameter carrying the trigger's type
	NodeTypeParameter = "node_type"
	// DefaultInitialQuery and DefaultInitialNodeType seed the first view
	DefaultInitialQuery    = "9693"
	DefaultInitialNodeType = "Publication"
)

// Metrics namespace
const MetricsNamespace = "graph_explorer"
