package layout

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"graph-explorer/backend/internal/graph"
)

// Mode names which placement produced a batch of positions.
type Mode string

const (
	ModeOrganic   Mode = "organic"
	ModeExpansion Mode = "expansion"
)

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// OrganicParams shapes the initial scatter around a center point.
type OrganicParams struct {
	MinSeparation   float64
	MaxAttempts     int
	AngleJitter     float64 // total span, sampled as ±AngleJitter/2
	BaseRadius      float64
	RadiusStep      float64 // added per slot index
	RadiusJitter    float64 // total span
	MinRadius       float64
	CartesianJitter float64 // total span, applied to x and y independently
}

// ExpansionParams shapes the ring placed around an expanded node.
type ExpansionParams struct {
	MinSeparation float64
	MaxAttempts   int
	AngleJitter   float64 // total span
	Radius        float64
	RadiusJitter  float64 // total span
}

// DefaultOrganicParams match the spacing the explorer has always used.
func DefaultOrganicParams() OrganicParams {
	return OrganicParams{
		MinSeparation:   80,
		MaxAttempts:     50,
		AngleJitter:     0.8,
		BaseRadius:      100,
		RadiusStep:      15,
		RadiusJitter:    60,
		MinRadius:       50,
		CartesianJitter: 40,
	}
}

// DefaultExpansionParams match the spacing the explorer has always used.
func DefaultExpansionParams() ExpansionParams {
	return ExpansionParams{
		MinSeparation: 100,
		MaxAttempts:   30,
		AngleJitter:   1.2,
		Radius:        150,
		RadiusJitter:  80,
	}
}

// Synthesizer generates 2D coordinates for batches of new nodes using
// bounded rejection sampling. Output position i always belongs to input
// node i; ids are left blank for the caller to fill.
type Synthesizer struct {
	mu         sync.Mutex // guards rnd; math/rand sources are not goroutine-safe
	rnd        RandomSource
	organic    OrganicParams
	expansion  ExpansionParams
	onFallback func(mode Mode)
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRandom injects the random source, e.g. a seeded *rand.Rand in tests.
func WithRandom(rnd RandomSource) Option {
	return func(s *Synthesizer) {
		if rnd != nil {
			s.rnd = rnd
		}
	}
}

// WithMaxAttempts overrides the retry bound of both placement modes.
// Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(s *Synthesizer) {
		if n >= 1 {
			s.organic.MaxAttempts = n
			s.expansion.MaxAttempts = n
		}
	}
}

// WithOrganicParams replaces the organic placement parameters.
func WithOrganicParams(p OrganicParams) Option {
	return func(s *Synthesizer) { s.organic = p }
}

// WithExpansionParams replaces the expansion placement parameters.
func WithExpansionParams(p ExpansionParams) Option {
	return func(s *Synthesizer) { s.expansion = p }
}

// WithFallbackHook registers a callback invoked whenever a slot exhausts its
// retries and its last candidate is accepted despite a conflict.
func WithFallbackHook(fn func(mode Mode)) Option {
	return func(s *Synthesizer) { s.onFallback = fn }
}

// NewSynthesizer creates a synthesizer with the default parameters and a
// time-seeded random source.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		organic:   DefaultOrganicParams(),
		expansion: DefaultExpansionParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Organic scatters count positions around center. A single node sits exactly
// on center.
func (s *Synthesizer) Organic(count int, center graph.Position) []graph.Position {
	if count <= 0 {
		return []graph.Position{}
	}
	if count == 1 {
		return []graph.Position{{X: center.X, Y: center.Y}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.organic
	positions := make([]graph.Position, 0, count)
	for i := 0; i < count; i++ {
		positions = s.place(ModeOrganic, positions, nil, p.MinSeparation, p.MaxAttempts, func() graph.Position {
			angle := slotAngle(i, count) + s.jitter(p.AngleJitter)
			radius := math.Max(p.MinRadius, p.BaseRadius+float64(i)*p.RadiusStep+s.jitter(p.RadiusJitter))
			return graph.Position{
				X: center.X + radius*math.Cos(angle) + s.jitter(p.CartesianJitter),
				Y: center.Y + radius*math.Sin(angle) + s.jitter(p.CartesianJitter),
			}
		})
	}
	return positions
}

// Expansion places count positions on a ring around center, keeping clear
// of existing positions and of the positions placed earlier in this batch.
func (s *Synthesizer) Expansion(count int, center graph.Position, existing []graph.Position) []graph.Position {
	if count <= 0 {
		return []graph.Position{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.expansion
	positions := make([]graph.Position, 0, count)
	for i := 0; i < count; i++ {
		positions = s.place(ModeExpansion, positions, existing, p.MinSeparation, p.MaxAttempts, func() graph.Position {
			angle := slotAngle(i, count) + s.jitter(p.AngleJitter)
			radius := p.Radius + s.jitter(p.RadiusJitter)
			return graph.Position{
				X: center.X + radius*math.Cos(angle),
				Y: center.Y + radius*math.Sin(angle),
			}
		})
	}
	return positions
}

// place samples candidates until one clears every other position by
// minSeparation. The final attempt is accepted unconditionally, so exactly
// one position is appended per call.
func (s *Synthesizer) place(mode Mode, placed, existing []graph.Position, minSeparation float64, maxAttempts int, sample func() graph.Position) []graph.Position {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := sample()
		if !conflicts(candidate, existing, minSeparation) && !conflicts(candidate, placed, minSeparation) {
			return append(placed, candidate)
		}
		if attempt == maxAttempts-1 {
			if s.onFallback != nil {
				s.onFallback(mode)
			}
			return append(placed, candidate)
		}
	}
	return placed
}

// jitter returns a value in [-span/2, span/2).
func (s *Synthesizer) jitter(span float64) float64 {
	return (s.rnd.Float64() - 0.5) * span
}

func slotAngle(i, count int) float64 {
	return float64(i) / float64(count) * 2 * math.Pi
}

func conflicts(candidate graph.Position, others []graph.Position, minSeparation float64) bool {
	for _, other := range others {
		if candidate.DistanceTo(other) < minSeparation {
			return true
		}
	}
	return false
}
