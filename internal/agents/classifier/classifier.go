// Package classifier extracts (category, name) pairs from a free-text query.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"movierag/internal/common/logger"
	"movierag/internal/llm"
	"movierag/internal/models"
)

const Stage = "entity-classifier"

// ErrMalformedClassification flags inference output that cannot be parsed as
// the expected {Category, Name} structure. The router treats it as an empty
// classification and falls back to the emotion path.
var ErrMalformedClassification = errors.New("MALFORMED_CLASSIFICATION")

const systemPrompt = `Analyze the user query and categorize the mentioned term(s) into one or more of the following categories:

- "Director" (e.g., Christopher Nolan, Quentin Tarantino)
- "Actor" (e.g., Leonardo DiCaprio, Tom Hanks)
- "Genre" (e.g., 'Action', 'Adventure', 'Fantasy', 'Science Fiction', 'Crime', 'Drama', 'Thriller', 'Animation', 'Family', 'Western', 'Comedy', 'Romance', 'Horror', 'Mystery', 'History', 'War', 'Music', 'Documentary', 'Foreign', 'TV Movie')
- "Keyword" (e.g., 'culture clash', 'future', 'space war', 'society', 'space travel', 'alien', 'romance', 'soldier', 'battle', 'love affair', 'revenge', 'spy', 'based on novel', 'secret agent', 'superhero', 'time bomb', 'vigilante', 'magic', 'fairy tale', 'musical', 'witch', 'werewolf', 'super powers', 'vampire')
- "Movie" (e.g., Inception, Interstellar)

Expected Output:

The output should be a JSON object with the keys "Category" and "Name". If multiple categories apply, return them as a comma-separated list in the "Category" field. The "Name" field should contain the name of the entity or term mentioned in the query, comma-separated in the same order as the categories.`

// Classifier runs the entity-categorization inference stage.
type Classifier struct {
	completer llm.Completer
	logger    logger.Logger
}

func New(completer llm.Completer, log logger.Logger) *Classifier {
	return &Classifier{
		completer: completer,
		logger: log.With(map[string]interface{}{
			"stage": Stage,
		}),
	}
}

// Classify invokes the inference collaborator once and parses its structured
// result into (category, name) pairs.
//
// The two comma-joined lists are split, trimmed and stripped of empties
// independently; when their lengths differ, pairing is positional up to the
// shorter list (zip to min length). That truncation rule is deterministic
// and deliberate: a count mismatch must never crash the pipeline.
func (c *Classifier) Classify(ctx context.Context, query string) ([]models.EntityMatch, error) {
	raw, err := c.completer.Complete(ctx, systemPrompt, query)
	if err != nil {
		return nil, fmt.Errorf("classify inference: %w", err)
	}

	var parsed struct {
		Category string `json:"Category"`
		Name     string `json:"Name"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedClassification, err)
	}

	categories := splitTrimmed(parsed.Category)
	names := splitTrimmed(parsed.Name)

	n := len(categories)
	if len(names) < n {
		n = len(names)
	}
	if n < len(categories) || n < len(names) {
		c.logger.Warn("category/name count mismatch, truncating", map[string]interface{}{
			"categories": len(categories),
			"names":      len(names),
		})
	}

	matches := make([]models.EntityMatch, 0, n)
	for i := 0; i < n; i++ {
		matches = append(matches, models.EntityMatch{
			Category: models.Category(categories[i]),
			Name:     names[i],
		})
	}

	c.logger.Info("query classified", map[string]interface{}{
		"pairs": len(matches),
	})

	return matches, nil
}

func splitTrimmed(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
