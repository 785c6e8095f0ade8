package source

import (
	"context"
	"errors"
	"time"

	"graph-explorer/backend/internal/constants"
	"graph-explorer/backend/internal/graph"
	apperrors "graph-explorer/backend/pkg/errors"
)

// Request is the fetch contract shared by every graph backend:
// {"query": ..., "parameters": {"node_type": ...}}.
type Request struct {
	Query      string         `json:"query"`
	Parameters map[string]any `json:"parameters"`
}

// NeighborhoodRequest builds the request that expands the node identified
// by (nodeType, localID).
func NeighborhoodRequest(nodeType, localID string) Request {
	return Request{
		Query:      localID,
		Parameters: map[string]any{constants.NodeTypeParameter: nodeType},
	}
}

// NodeType returns the node_type parameter, if any.
func (r Request) NodeType() string {
	if r.Parameters == nil {
		return ""
	}
	nodeType, _ := r.Parameters[constants.NodeTypeParameter].(string)
	return nodeType
}

// Fetcher retrieves one graph fragment. Implementations return typed errors
// from pkg/errors and never an empty fragment in place of a failure.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*graph.Fragment, error)
}

// classify turns a low-level failure into a timeout or transport error.
func classify(operation, endpoint string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewFetchTimeout(operation, timeout, err)
	}
	return apperrors.NewTransport(endpoint, 0, err)
}
