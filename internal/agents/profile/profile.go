// Package profile infers a compact preference summary from a user's
// historical queries.
package profile

import (
	"context"
	"fmt"
	"strings"

	"movierag/internal/common/logger"
	"movierag/internal/llm"
)

const Stage = "profile-extractor"

const systemPrompt = `You are a movie preference classification agent. Your task is to analyze past user queries and extract a comprehensive user profile based on their movie preferences.

EXTRACTION TARGETS:
- Most frequently requested movie genres (prioritize top 2-3)
- Preferred directors (identify top 2-3 most mentioned)
- Favorite actors/actresses (identify top 2-3 most mentioned)
- Recurring keywords/themes (extract 3-5 descriptive terms)

ANALYSIS GUIDELINES:
1. Count frequency of mentions across all queries
2. Identify patterns in user language and preferences
3. Prioritize explicit preferences over implicit ones
4. Handle variations in naming (e.g., "Nolan" vs "Christopher Nolan")
5. Extract thematic keywords that capture the user's taste profile

OUTPUT FORMAT:
Return a single structured string in this exact format:
"Preferred genres: [genre1, genre2]; Top directors: [director1, director2]; Favorite actors: [actor1, actor2]; Key themes: [keyword1, keyword2, keyword3]"

EDGE CASES:
- If insufficient data for any category, return "Not enough data"
- If user shows equal preference for multiple items, list up to 3 maximum
- Normalize similar terms (e.g., "sci-fi" and "science fiction" -> "Science Fiction")`

// Extractor runs the preference-summary inference stage.
type Extractor struct {
	completer llm.Completer
	logger    logger.Logger
}

func New(completer llm.Completer, log logger.Logger) *Extractor {
	return &Extractor{
		completer: completer,
		logger: log.With(map[string]interface{}{
			"stage": Stage,
		}),
	}
}

// Extract summarizes the user's past query texts into the fixed-grammar
// profile string. The output is advisory context only and is passed through
// verbatim; the "Not enough data" sentinel for thin history is enforced by
// the inference contract, not here.
func (e *Extractor) Extract(ctx context.Context, history []string) (string, error) {
	summary, err := e.completer.Complete(ctx, systemPrompt, strings.Join(history, "\n"))
	if err != nil {
		return "", fmt.Errorf("profile inference: %w", err)
	}

	e.logger.Debug("profile extracted", map[string]interface{}{
		"historySize": len(history),
	})

	return summary, nil
}
