package source

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"graph-explorer/backend/internal/graph"
	apperrors "graph-explorer/backend/pkg/errors"
)

// scriptedFetcher returns a fixed error (or an empty fragment) and counts calls.
type scriptedFetcher struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *scriptedFetcher) Fetch(ctx context.Context, req Request) (*graph.Fragment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &graph.Fragment{Nodes: []graph.RawNode{{ID: "Year#___#1"}}}, nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testBreakerSettings() BreakerSettings {
	settings := DefaultBreakerSettings("graph-api")
	settings.OpenTimeout = time.Hour
	return settings
}

func TestBreakerFetcher_PassesThrough(t *testing.T) {
	next := &scriptedFetcher{}
	breaker := NewBreakerFetcher(next, testBreakerSettings())

	fragment, err := breaker.Fetch(context.Background(), NeighborhoodRequest("Year", "1"))
	require.NoError(t, err)
	assert.Len(t, fragment.Nodes, 1)
	assert.Equal(t, "closed", breaker.State())
}

func TestBreakerFetcher_TripsOnTransportFailures(t *testing.T) {
	next := &scriptedFetcher{err: apperrors.NewTransport("http://backend", 503, nil)}
	breaker := NewBreakerFetcher(next, testBreakerSettings())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := breaker.Fetch(ctx, NeighborhoodRequest("Year", "1"))
		var transport *apperrors.ErrTransport
		require.ErrorAs(t, err, &transport)
		assert.Equal(t, 503, transport.StatusCode, "backend errors are returned unchanged")
	}
	assert.Equal(t, "open", breaker.State())

	_, err := breaker.Fetch(ctx, NeighborhoodRequest("Year", "1"))
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeTransport))
	assert.Equal(t, 3, next.Calls(), "an open breaker does not call the backend")
}

func TestBreakerFetcher_TimeoutsCountAsFailures(t *testing.T) {
	next := &scriptedFetcher{err: apperrors.NewFetchTimeout("graph API request", time.Second, context.DeadlineExceeded)}
	breaker := NewBreakerFetcher(next, testBreakerSettings())

	for i := 0; i < 3; i++ {
		_, err := breaker.Fetch(context.Background(), NeighborhoodRequest("Year", "1"))
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeTimeout))
	}
	assert.Equal(t, "open", breaker.State())
}

func TestBreakerFetcher_MalformedResponsesDoNotTrip(t *testing.T) {
	next := &scriptedFetcher{err: apperrors.NewMalformedResponse("missing nodes", nil)}
	breaker := NewBreakerFetcher(next, testBreakerSettings())

	for i := 0; i < 5; i++ {
		_, err := breaker.Fetch(context.Background(), NeighborhoodRequest("Year", "1"))
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeResponse))
	}
	assert.Equal(t, "closed", breaker.State())
	assert.Equal(t, 5, next.Calls())
}
