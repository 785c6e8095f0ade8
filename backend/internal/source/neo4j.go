package source

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"graph-explorer/backend/internal/graph"
	"graph-explorer/backend/pkg/logger"
)

// neighborhoodQuery returns the trigger node with every adjacent node and
// relationship. The trigger matches on its id property or its element id.
const neighborhoodQuery = `
	MATCH (a)
	WHERE $label IN labels(a)
	  AND (toString(a.id) = $id OR elementId(a) = $id)
	OPTIONAL MATCH (a)-[r]-(b)
	RETURN a, r, b
	LIMIT $limit
`

// labelViewQuery returns every relationship touching nodes with a label.
const labelViewQuery = `
	MATCH (a)-[r]-(b)
	WHERE $label IN labels(a)
	RETURN a, r, b
	LIMIT $limit
`

const defaultNeighborhoodLimit = 500

// Neo4jSource answers fragment fetches straight from a Neo4j database.
type Neo4jSource struct {
	driver  neo4j.DriverWithContext
	uri     string
	timeout time.Duration
	limit   int
	logger  *zap.Logger
}

// NewNeo4jSource wraps an open driver. Every fetch is bounded by timeout.
func NewNeo4jSource(driver neo4j.DriverWithContext, uri string, timeout time.Duration) *Neo4jSource {
	return &Neo4jSource{
		driver:  driver,
		uri:     uri,
		timeout: timeout,
		limit:   defaultNeighborhoodLimit,
		logger:  logger.With("neo4j_source"),
	}
}

// VerifyConnectivity checks that the database is reachable.
func (s *Neo4jSource) VerifyConnectivity(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return classify("neo4j connectivity check", s.uri, s.timeout, err)
	}
	return nil
}

// Close closes the Neo4j driver connection
func (s *Neo4jSource) Close() error {
	return s.driver.Close(context.Background())
}

// Fetch implements Fetcher. A request carrying node_type expands that node's
// neighborhood; any other request runs Query as Cypher with Parameters.
func (s *Neo4jSource) Fetch(ctx context.Context, req Request) (*graph.Fragment, error) {
	if nodeType := req.NodeType(); nodeType != "" {
		return s.run(ctx, neighborhoodQuery, map[string]any{
			"label": nodeType,
			"id":    req.Query,
			"limit": s.limit,
		})
	}
	return s.run(ctx, req.Query, req.Parameters)
}

// LabelView returns up to limit relationships around nodes labelled label.
func (s *Neo4jSource) LabelView(ctx context.Context, label string, limit int) (*graph.Fragment, error) {
	return s.run(ctx, labelViewQuery, map[string]any{
		"label": label,
		"limit": limit,
	})
}

func (s *Neo4jSource) run(ctx context.Context, query string, params map[string]any) (*graph.Fragment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	start := time.Now()
	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, classify("neo4j query", s.uri, s.timeout, fmt.Errorf("failed to execute query: %w", err))
	}

	var records []*neo4j.Record
	for result.Next(ctx) {
		records = append(records, result.Record())
	}
	if err := result.Err(); err != nil {
		return nil, classify("neo4j query", s.uri, s.timeout, fmt.Errorf("failed to fetch records: %w", err))
	}

	fragment := fragmentFromRecords(records)
	s.logger.Debug("Fetched fragment from Neo4j",
		zap.Int("records", len(records)),
		zap.Int("nodes", len(fragment.Nodes)),
		zap.Int("relationships", len(fragment.Relationships)),
		zap.Duration("latency", time.Since(start)),
	)
	return fragment, nil
}
