package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"graph-explorer/backend/pkg/config"
	"graph-explorer/backend/pkg/logger"
)

// seedNode is one labelled node of the sample bibliography.
type seedNode struct {
	Label string
	ID    string
	Name  string
}

// seedLink is a typed relationship between two seed nodes, addressed by
// label and id.
type seedLink struct {
	FromLabel, FromID string
	Type              string
	ToLabel, ToID     string
}

type dataset struct {
	Nodes []seedNode
	Links []seedLink
}

// sampleDataset is a small bibliography around the default initial
// publication, deep enough to expand a few levels.
func sampleDataset() dataset {
	return dataset{
		Nodes: []seedNode{
			{"Publication", "9693", "Incremental Layout of Evolving Graphs"},
			{"Publication", "9701", "Force-Directed Placement Revisited"},
			{"Publication", "9720", "Stable Colors for Typed Networks"},
			{"Author", "a17", "R. Okafor"},
			{"Author", "a18", "M. Lindqvist"},
			{"Author", "a22", "S. Tanaka"},
			{"Year", "2019", "2019"},
			{"Year", "2021", "2021"},
			{"Venue", "v3", "Graph Drawing Symposium"},
			{"Keyword", "k1", "layout"},
			{"Keyword", "k2", "visualization"},
		},
		Links: []seedLink{
			{"Author", "a17", "AUTHORED", "Publication", "9693"},
			{"Author", "a18", "AUTHORED", "Publication", "9693"},
			{"Author", "a18", "AUTHORED", "Publication", "9701"},
			{"Author", "a22", "AUTHORED", "Publication", "9720"},
			{"Publication", "9693", "PUBLISHED_IN", "Year", "2021"},
			{"Publication", "9701", "PUBLISHED_IN", "Year", "2019"},
			{"Publication", "9720", "PUBLISHED_IN", "Year", "2021"},
			{"Publication", "9693", "APPEARED_AT", "Venue", "v3"},
			{"Publication", "9701", "APPEARED_AT", "Venue", "v3"},
			{"Publication", "9693", "CITES", "Publication", "9701"},
			{"Publication", "9720", "CITES", "Publication", "9693"},
			{"Publication", "9693", "TAGGED", "Keyword", "k1"},
			{"Publication", "9720", "TAGGED", "Keyword", "k2"},
		},
	}
}

func main() {
	force := flag.Bool("force", false, "Delete previously seeded nodes before seeding")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// The seeder always writes to Neo4j, whatever source the server uses.
	if os.Getenv("GRAPH_SOURCE") == "" {
		_ = os.Setenv("GRAPH_SOURCE", config.SourceNeo4j)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	data := sampleDataset()

	log.Info("Creating constraints...")
	if err := createConstraints(ctx, driver, data); err != nil {
		log.Warn("Failed to create some constraints (may already exist)", zap.Error(err))
	}

	if *force {
		log.Info("Deleting previously seeded nodes...")
		if err := deleteSeeded(ctx, driver, data); err != nil {
			log.Fatal("Failed to delete seeded nodes", zap.Error(err))
		}
	}

	if err := seed(ctx, driver, data); err != nil {
		log.Fatal("Failed to seed sample graph", zap.Error(err))
	}

	log.Info("Seed completed",
		zap.Int("nodes", len(data.Nodes)),
		zap.Int("relationships", len(data.Links)),
		zap.String("initial_node", "Publication/9693"),
	)
}

// labels returns the distinct labels of the dataset in first-seen order.
func (d dataset) labels() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range d.Nodes {
		if !seen[n.Label] {
			seen[n.Label] = true
			out = append(out, n.Label)
		}
	}
	return out
}

// createConstraints makes the id property unique per label, which is what
// neighborhood fetches match on.
func createConstraints(ctx context.Context, driver neo4j.DriverWithContext, data dataset) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	var firstErr error
	for _, label := range data.labels() {
		query := fmt.Sprintf(
			"CREATE CONSTRAINT %s_id_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE",
			label, label,
		)
		if _, err := session.Run(ctx, query, nil); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to create constraint for %s: %w", label, err)
		}
	}
	return firstErr
}

func deleteSeeded(ctx context.Context, driver neo4j.DriverWithContext, data dataset) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, n := range data.Nodes {
			query := fmt.Sprintf("MATCH (n:%s {id: $id}) DETACH DELETE n", n.Label)
			if _, err := tx.Run(ctx, query, map[string]any{"id": n.ID}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// seed merges every node and relationship, so re-running is harmless.
func seed(ctx context.Context, driver neo4j.DriverWithContext, data dataset) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, n := range data.Nodes {
			query := fmt.Sprintf("MERGE (n:%s {id: $id}) SET n.name = $name", n.Label)
			if _, err := tx.Run(ctx, query, map[string]any{"id": n.ID, "name": n.Name}); err != nil {
				return nil, fmt.Errorf("failed to merge %s %s: %w", n.Label, n.ID, err)
			}
		}
		for _, l := range data.Links {
			query := fmt.Sprintf(
				"MATCH (a:%s {id: $from}), (b:%s {id: $to}) MERGE (a)-[:%s]->(b)",
				l.FromLabel, l.ToLabel, l.Type,
			)
			if _, err := tx.Run(ctx, query, map[string]any{"from": l.FromID, "to": l.ToID}); err != nil {
				return nil, fmt.Errorf("failed to link %s %s -> %s %s: %w", l.FromLabel, l.FromID, l.ToLabel, l.ToID, err)
			}
		}
		return nil, nil
	})
	return err
}
