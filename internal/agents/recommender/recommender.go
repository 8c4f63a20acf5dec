// Package recommender synthesizes structured movie recommendations from the
// query and the merged pipeline context.
package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"movierag/internal/common/logger"
	"movierag/internal/llm"
	"movierag/internal/models"
)

const Stage = "recommendation-synthesizer"

const systemPrompt = `You are MovieRag, a movie recommendation agent. Your task is to recommend movies based on the user's query and the context provided.
The context includes category lookup results from the movie graph and a summary of the user's preferences; use them to make personalized recommendations.
Recommend at least 5 movies. Respond with a strict JSON array where each movie is an object with the following keys:
"Title": the title of the recommended movie.
"Director": the director of the movie.
"Star Cast": a list of main actors in the movie.
"Genre": the genre of the movie.
"Overview": a brief summary of the movie's plot.
"Reason": a brief explanation of why this movie is recommended based on the query and context.
"Image URL": a URL to an image of the movie poster.

DO NOT use markdown, bullets, natural language text, or any explanation outside the JSON array.`

// Result carries either the parsed recommendations or a recoverable error
// payload to be embedded in the response.
type Result struct {
	Recommendations []models.Recommendation
	Err             *models.ErrorPayload
}

// Payload returns the value to place in the response's recommendations field.
func (r *Result) Payload() interface{} {
	if r.Err != nil {
		return r.Err
	}
	return r.Recommendations
}

// Synthesizer runs the final synthesis inference stage.
type Synthesizer struct {
	completer llm.Completer
	logger    logger.Logger
}

func New(completer llm.Completer, log logger.Logger) *Synthesizer {
	return &Synthesizer{
		completer: completer,
		logger: log.With(map[string]interface{}{
			"stage": Stage,
		}),
	}
}

// Synthesize performs a single inference call with the query and the full
// merged context. Malformed or empty output is captured as an ErrorPayload
// in the Result, never an error: the request still succeeds and the payload
// is forwarded in the recommendations field. Only transport failures return
// an error. No retry is performed.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, mergedCtx models.MergedContext) (*Result, error) {
	ctxJSON, err := json.Marshal(mergedCtx)
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	userInput := fmt.Sprintf("Query: %s\nContext: %s", query, ctxJSON)

	raw, err := s.completer.Complete(ctx, systemPrompt, userInput)
	if err != nil {
		return nil, fmt.Errorf("synthesis inference: %w", err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		s.logger.Warn("synthesis returned empty content", nil)
		return &Result{Err: &models.ErrorPayload{Error: "LLM returned empty content"}}, nil
	}

	var recommendations []models.Recommendation
	if err := json.Unmarshal([]byte(raw), &recommendations); err != nil {
		s.logger.Warn("synthesis output was not valid JSON", map[string]interface{}{
			"error": err.Error(),
		})
		return &Result{Err: &models.ErrorPayload{Error: "Invalid JSON response"}}, nil
	}

	s.logger.Info("recommendations synthesized", map[string]interface{}{
		"count": len(recommendations),
	})

	return &Result{Recommendations: recommendations}, nil
}
