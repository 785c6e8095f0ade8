package layout

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"graph-explorer/backend/internal/graph"
)

// constantSource always returns the same value, which zeroes every jitter
// term when set to 0.5.
type constantSource struct {
	value float64
	calls int
}

func (c *constantSource) Float64() float64 {
	c.calls++
	return c.value
}

func seeded() Option {
	return WithRandom(rand.New(rand.NewSource(42)))
}

func minPairwiseDistance(positions []graph.Position) float64 {
	min := math.Inf(1)
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			if d := positions[i].DistanceTo(positions[j]); d < min {
				min = d
			}
		}
	}
	return min
}

func TestOrganic_Count(t *testing.T) {
	s := NewSynthesizer(seeded())

	for _, n := range []int{0, 1, 2, 3, 10, 40} {
		positions := s.Organic(n, graph.Position{})
		assert.Len(t, positions, n, "count %d", n)
		for _, p := range positions {
			assert.Empty(t, p.ID)
			assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
		}
	}

	assert.NotNil(t, s.Organic(-3, graph.Position{}))
}

func TestOrganic_SingleNodeSitsOnCenter(t *testing.T) {
	s := NewSynthesizer(seeded())

	positions := s.Organic(1, graph.Position{X: 12, Y: -7})
	require.Len(t, positions, 1)
	assert.Equal(t, 12.0, positions[0].X)
	assert.Equal(t, -7.0, positions[0].Y)
}

func TestOrganic_ZeroJitterIsDeterministic(t *testing.T) {
	s := NewSynthesizer(WithRandom(&constantSource{value: 0.5}))

	positions := s.Organic(4, graph.Position{})
	require.Len(t, positions, 4)

	// Slot i sits at angle i/4·2π on radius 100+15i.
	for i, p := range positions {
		angle := float64(i) / 4 * 2 * math.Pi
		radius := 100 + 15*float64(i)
		assert.InDelta(t, radius*math.Cos(angle), p.X, 1e-9, "slot %d x", i)
		assert.InDelta(t, radius*math.Sin(angle), p.Y, 1e-9, "slot %d y", i)
	}
}

func TestOrganic_SeparatesSmallBatches(t *testing.T) {
	s := NewSynthesizer(seeded())

	positions := s.Organic(6, graph.Position{})
	assert.GreaterOrEqual(t, minPairwiseDistance(positions), DefaultOrganicParams().MinSeparation)
}

func TestOrganic_ExhaustedRetriesStillTerminate(t *testing.T) {
	src := &constantSource{value: 0.5}
	var fallbacks []Mode
	params := DefaultOrganicParams()
	params.MinSeparation = 1e9

	s := NewSynthesizer(
		WithRandom(src),
		WithOrganicParams(params),
		WithMaxAttempts(3),
		WithFallbackHook(func(mode Mode) { fallbacks = append(fallbacks, mode) }),
	)

	positions := s.Organic(3, graph.Position{})
	assert.Len(t, positions, 3)
	// Slot 0 has nothing to conflict with; slots 1 and 2 burn all attempts.
	assert.Equal(t, []Mode{ModeOrganic, ModeOrganic}, fallbacks)
	// Four random draws per candidate: 1 + 3 + 3 candidates.
	assert.Equal(t, 4*7, src.calls)
}

func TestExpansion_Count(t *testing.T) {
	s := NewSynthesizer(seeded())
	center := graph.Position{ID: "Publication#___#1", X: 500, Y: 500}

	for _, n := range []int{0, 1, 5, 25} {
		positions := s.Expansion(n, center, nil)
		assert.Len(t, positions, n)
	}
}

func TestExpansion_RingAroundCenter(t *testing.T) {
	s := NewSynthesizer(WithRandom(&constantSource{value: 0.5}))
	center := graph.Position{X: 300, Y: -200}

	positions := s.Expansion(3, center, nil)
	require.Len(t, positions, 3)
	for _, p := range positions {
		assert.InDelta(t, 150, p.DistanceTo(center), 1e-9)
	}
}

func TestExpansion_AvoidsExistingPositions(t *testing.T) {
	s := NewSynthesizer(seeded())
	center := graph.Position{X: 0, Y: 0}
	// The center itself plus two nodes on the ring's diagonals, between the
	// slot directions of a four-node batch.
	existing := []graph.Position{
		{ID: "a", X: 0, Y: 0},
		{ID: "b", X: 106, Y: 106},
		{ID: "c", X: -106, Y: -106},
	}

	positions := s.Expansion(4, center, existing)
	require.Len(t, positions, 4)

	minSep := DefaultExpansionParams().MinSeparation
	fallbacks := 0
	for _, p := range positions {
		for _, e := range existing {
			if p.DistanceTo(e) < minSep {
				fallbacks++
			}
		}
	}
	// With 30 attempts per slot a conflict-free spot on the ring exists for
	// every slot, so no accepted candidate should crowd an existing node.
	assert.Zero(t, fallbacks)
	assert.GreaterOrEqual(t, minPairwiseDistance(positions), minSep)
}

func TestExpansion_ExhaustedRetriesAcceptLastCandidate(t *testing.T) {
	src := &constantSource{value: 0.5}
	var fallbacks int
	s := NewSynthesizer(
		WithRandom(src),
		WithMaxAttempts(2),
		WithFallbackHook(func(mode Mode) {
			assert.Equal(t, ModeExpansion, mode)
			fallbacks++
		}),
	)

	center := graph.Position{}
	// Everything on the ring conflicts with this dense blanket of positions.
	var existing []graph.Position
	for a := 0; a < 360; a += 10 {
		rad := float64(a) * math.Pi / 180
		existing = append(existing, graph.Position{X: 150 * math.Cos(rad), Y: 150 * math.Sin(rad)})
	}

	positions := s.Expansion(2, center, existing)
	assert.Len(t, positions, 2)
	assert.Equal(t, 2, fallbacks)
	// Two draws per candidate, two candidates per slot.
	assert.Equal(t, 2*2*2, src.calls)
}

func TestWithMaxAttempts_IgnoresNonPositive(t *testing.T) {
	s := NewSynthesizer(WithMaxAttempts(0))
	assert.Equal(t, DefaultOrganicParams().MaxAttempts, s.organic.MaxAttempts)
	assert.Equal(t, DefaultExpansionParams().MaxAttempts, s.expansion.MaxAttempts)
}
