package palette

import (
	"sort"
	"sync"

	"go.uber.org/zap"
	"graph-explorer/backend/pkg/logger"
)

// DefaultPalette is cycled through for types without a seeded color. The
// first five entries double as the seeded colors below.
var DefaultPalette = []string{
	"#4D8DDA", // Publication
	"#8DCC93", // Year
	"#F79767", // Language
	"#C990C0", // Author
	"#F16767", // Publisher
	"#FFDF81",
	"#56C7E4",
	"#D8C7AE",
	"#ECB4C9",
	"#FFC354",
	"#DA7294",
	"#579380",
}

// DefaultSeeds assigns fixed colors to the well-known bibliographic types.
var DefaultSeeds = map[string]string{
	"Publication": "#4D8DDA",
	"Year":        "#8DCC93",
	"Language":    "#F79767",
	"Author":      "#C990C0",
	"Publisher":   "#F16767",
}

// defaultFallbackStart skips the palette entries already used by DefaultSeeds.
const defaultFallbackStart = 5

// Entry is one type→color assignment.
type Entry struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// Registry maps entity types to display colors. Assignments are permanent:
// once a type has a color, every later lookup returns the same one. Unseen
// types take the next palette color, wrapping around, in first-seen order.
type Registry struct {
	mu      sync.Mutex
	palette []string
	colors  map[string]string
	order   []string
	next    int
	logger  *zap.Logger
}

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	palette       []string
	seeds         map[string]string
	fallbackStart *int
}

// WithPalette replaces the fallback palette. An empty palette is ignored.
// Unless WithFallbackStart is also given, assignment starts at index 0.
func WithPalette(colors []string) Option {
	return func(o *registryOptions) {
		if len(colors) > 0 {
			o.palette = append([]string(nil), colors...)
		}
	}
}

// WithSeeds adds (or overrides) fixed type colors on top of DefaultSeeds.
func WithSeeds(seeds map[string]string) Option {
	return func(o *registryOptions) {
		for t, c := range seeds {
			o.seeds[t] = c
		}
	}
}

// WithFallbackStart sets the palette index the first unseen type receives.
func WithFallbackStart(index int) Option {
	return func(o *registryOptions) {
		if index >= 0 {
			o.fallbackStart = &index
		}
	}
}

// NewRegistry creates a registry seeded with DefaultSeeds.
func NewRegistry(opts ...Option) *Registry {
	o := &registryOptions{seeds: make(map[string]string, len(DefaultSeeds))}
	for t, c := range DefaultSeeds {
		o.seeds[t] = c
	}
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{
		palette: DefaultPalette,
		colors:  make(map[string]string, len(o.seeds)),
		next:    defaultFallbackStart,
		logger:  logger.With("palette"),
	}
	if o.palette != nil {
		r.palette = o.palette
		r.next = 0
	}
	if o.fallbackStart != nil {
		r.next = *o.fallbackStart
	}

	// Seeds are recorded in sorted order so Entries is stable across runs.
	seeded := make([]string, 0, len(o.seeds))
	for t := range o.seeds {
		seeded = append(seeded, t)
	}
	sort.Strings(seeded)
	for _, t := range seeded {
		r.colors[t] = o.seeds[t]
		r.order = append(r.order, t)
	}

	return r
}

// ColorFor returns the color for nodeType, assigning the next fallback color
// on first sight. It is safe for concurrent use.
func (r *Registry) ColorFor(nodeType string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if color, ok := r.colors[nodeType]; ok {
		return color
	}

	color := r.palette[r.next%len(r.palette)]
	r.colors[nodeType] = color
	r.order = append(r.order, nodeType)
	r.next++

	r.logger.Debug("Assigned color to new type",
		zap.String("type", nodeType),
		zap.String("color", color),
	)
	return color
}

// Entries returns every assignment made so far: seeds first, then fallback
// assignments in the order they were made.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]Entry, 0, len(r.order))
	for _, t := range r.order {
		entries = append(entries, Entry{Type: t, Color: r.colors[t]})
	}
	return entries
}
