package database

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"movierag/internal/common/config"
)

// Neo4jClient wraps the Neo4j driver.
type Neo4jClient struct {
	Driver   neo4j.DriverWithContext
	database string
}

// NewNeo4j creates a new Neo4j client.
func NewNeo4j(cfg config.Neo4jConfig) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	return &Neo4jClient{Driver: driver, database: cfg.Database}, nil
}

// Ping tests the Neo4j connection.
func (c *Neo4jClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying driver.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.Driver != nil {
		return c.Driver.Close(ctx)
	}
	return nil
}

// Run executes a read-only Cypher query and returns the rows as maps keyed
// by the RETURN aliases.
func (c *Neo4jClient) Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("neo4j query failed: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("neo4j collect failed: %w", err)
	}

	rows := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.AsMap())
	}
	return rows, nil
}
