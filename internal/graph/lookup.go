// Package graph executes fixed per-category query templates against the
// movie property graph.
package graph

import (
	"context"
	"errors"
	"fmt"

	"movierag/internal/common/logger"
	"movierag/internal/common/metrics"
	"movierag/internal/models"
)

var ErrGraphQueryFailed = errors.New("GRAPH_QUERY_FAILED")

// Executor runs a parametrized read-only query and returns tabular rows.
// *database.Neo4jClient satisfies this; tests stub it.
type Executor interface {
	Run(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error)
}

// Lookup resolves (category, name) pairs to movie records.
type Lookup struct {
	exec   Executor
	logger logger.Logger
}

func NewLookup(exec Executor, log logger.Logger) *Lookup {
	return &Lookup{
		exec: exec,
		logger: log.With(map[string]interface{}{
			"component": "graph-lookup",
		}),
	}
}

// Find returns the movies matching the category's template for the given
// name, capped at 10 rows. An unknown category yields an empty result, not
// an error.
func (l *Lookup) Find(ctx context.Context, category models.Category, name string) ([]models.MovieRecord, error) {
	cypher, ok := queryMap[category]
	if !ok {
		return nil, nil
	}

	metrics.GraphLookups.WithLabelValues(string(category)).Inc()

	rows, err := l.exec.Run(ctx, cypher, map[string]interface{}{"param": name})
	if err != nil {
		return nil, fmt.Errorf("%w: category %s: %v", ErrGraphQueryFailed, category, err)
	}

	if len(rows) > maxResults {
		rows = rows[:maxResults]
	}

	records := make([]models.MovieRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToRecord(row))
	}

	l.logger.Debug("graph lookup completed", map[string]interface{}{
		"category": category,
		"name":     name,
		"results":  len(records),
	})

	return records, nil
}

// rowToRecord maps a result row onto a MovieRecord by RETURN alias. Missing
// columns (the Movie similarity template returns a reduced set) stay zero.
func rowToRecord(row map[string]interface{}) models.MovieRecord {
	return models.MovieRecord{
		ID:        toInt64(row["id"]),
		Title:     toString(row["title"]),
		Overview:  toString(row["overview"]),
		Genres:    toString(row["genres"]),
		Actors:    toString(row["actors"]),
		Director:  toString(row["director"]),
		Rating:    toFloat64(row["rating"]),
		ImagePath: toString(row["image_path"]),
	}
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
