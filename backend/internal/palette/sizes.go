package palette

import "graph-explorer/backend/internal/constants"

// DefaultSizes is the node radius per well-known type.
var DefaultSizes = map[string]float64{
	"Publication": 35,
	"Author":      28,
	"Publisher":   32,
	"Year":        22,
	"Language":    22,
}

// SizeTable resolves a node size from its display type.
type SizeTable struct {
	sizes       map[string]float64
	defaultSize float64
}

// NewSizeTable merges overrides onto DefaultSizes. A non-positive
// defaultSize keeps constants.DefaultNodeSize.
func NewSizeTable(overrides map[string]float64, defaultSize float64) *SizeTable {
	sizes := make(map[string]float64, len(DefaultSizes)+len(overrides))
	for t, s := range DefaultSizes {
		sizes[t] = s
	}
	for t, s := range overrides {
		if s > 0 {
			sizes[t] = s
		}
	}
	if defaultSize <= 0 {
		defaultSize = constants.DefaultNodeSize
	}
	return &SizeTable{sizes: sizes, defaultSize: defaultSize}
}

// SizeFor returns the size for nodeType, or the default for unknown types.
func (t *SizeTable) SizeFor(nodeType string) float64 {
	if s, ok := t.sizes[nodeType]; ok {
		return s
	}
	return t.defaultSize
}
