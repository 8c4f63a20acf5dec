// Package router composes the reasoning stages into the query pipeline and
// decides which path a query takes.
package router

import (
	"context"
	"errors"
	"sync"
	"time"

	"movierag/internal/agents/classifier"
	"movierag/internal/agents/recommender"
	"movierag/internal/common/logger"
	"movierag/internal/common/metrics"
	"movierag/internal/graph"
	"movierag/internal/models"
)

// Collaborator contracts, satisfied by the agent packages and stubbed in tests.

type Classifier interface {
	Classify(ctx context.Context, query string) ([]models.EntityMatch, error)
}

type Lookup interface {
	Find(ctx context.Context, category models.Category, name string) ([]models.MovieRecord, error)
}

type HistoryProvider interface {
	UserMessageHistory(ctx context.Context, username string) ([]string, error)
}

type ProfileExtractor interface {
	Extract(ctx context.Context, history []string) (string, error)
}

type EmotionResponder interface {
	Respond(ctx context.Context, query string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, query string, mergedCtx models.MergedContext) (*recommender.Result, error)
}

// Timeouts bounds each stage call. Zero values leave the request context
// unchanged.
type Timeouts struct {
	Classify  time.Duration
	Lookup    time.Duration
	Profile   time.Duration
	Synthesis time.Duration
	Emotion   time.Duration
}

// Router runs one query through the pipeline. It holds no per-request state;
// a single Router serves concurrent requests.
type Router struct {
	classifier Classifier
	lookup     Lookup
	history    HistoryProvider
	profile    ProfileExtractor
	emotion    EmotionResponder
	synth      Synthesizer
	timeouts   Timeouts
	logger     logger.Logger
}

func New(
	cl Classifier,
	lookup Lookup,
	history HistoryProvider,
	profile ProfileExtractor,
	emotion EmotionResponder,
	synth Synthesizer,
	timeouts Timeouts,
	log logger.Logger,
) *Router {
	return &Router{
		classifier: cl,
		lookup:     lookup,
		history:    history,
		profile:    profile,
		emotion:    emotion,
		synth:      synth,
		timeouts:   timeouts,
		logger: log.With(map[string]interface{}{
			"component": "query-router",
		}),
	}
}

// Process routes a query: classification, then either the category path
// (graph lookups, history, profile, synthesis) or the emotion fallback.
//
// The category path is taken iff at least one classified pair survives
// lookup with non-empty results. A query whose category is detected but
// yields zero graph matches falls back to the emotion path; that policy is
// part of the routing contract.
func (r *Router) Process(ctx context.Context, username, query string) (*models.AgentResponse, error) {
	matches, err := r.classify(ctx, query)
	if err != nil {
		return nil, err
	}

	categories := r.lookupAll(ctx, matches)

	if hasResults(categories) {
		return r.categoryPath(ctx, username, query, categories)
	}
	return r.emotionPath(ctx, query)
}

func (r *Router) classify(ctx context.Context, query string) ([]models.EntityMatch, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.Classify)
	defer cancel()

	start := time.Now()
	matches, err := r.classifier.Classify(ctx, query)
	metrics.StageDuration.WithLabelValues(classifier.Stage).Observe(time.Since(start).Seconds())

	if err != nil {
		// Unparseable classifier output means "no categories found", not a
		// request failure; anything else propagates.
		if errors.Is(err, classifier.ErrMalformedClassification) {
			r.logger.Warn("malformed classification, falling back to emotion path", map[string]interface{}{
				"error": err.Error(),
			})
			return nil, nil
		}
		metrics.QueriesFailed.WithLabelValues(classifier.Stage).Inc()
		return nil, err
	}
	return matches, nil
}

// lookupAll resolves every classified pair concurrently, preserving the
// classifier's order in the result. Pairs whose category has no registered
// template are dropped before lookup. A failed lookup degrades to empty
// results rather than failing the request.
func (r *Router) lookupAll(ctx context.Context, matches []models.EntityMatch) []models.CategoryMatch {
	known := make([]models.EntityMatch, 0, len(matches))
	for _, m := range matches {
		if !graph.HasTemplate(m.Category) {
			r.logger.Warn("dropping unknown category", map[string]interface{}{
				"category": m.Category,
				"name":     m.Name,
			})
			continue
		}
		known = append(known, m)
	}

	if len(known) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.timeouts.Lookup)
	defer cancel()

	start := time.Now()
	categories := make([]models.CategoryMatch, len(known))
	var wg sync.WaitGroup
	for i, m := range known {
		wg.Add(1)
		go func(i int, m models.EntityMatch) {
			defer wg.Done()
			results, err := r.lookup.Find(ctx, m.Category, m.Name)
			if err != nil {
				r.logger.Warn("graph lookup failed, degrading to empty results", map[string]interface{}{
					"category": m.Category,
					"name":     m.Name,
					"error":    err.Error(),
				})
				results = nil
			}
			categories[i] = models.CategoryMatch{
				Category: m.Category,
				Name:     m.Name,
				Results:  results,
			}
		}(i, m)
	}
	wg.Wait()
	metrics.StageDuration.WithLabelValues("graph-lookup").Observe(time.Since(start).Seconds())

	return categories
}

func (r *Router) categoryPath(ctx context.Context, username, query string, categories []models.CategoryMatch) (*models.AgentResponse, error) {
	history := r.fetchHistory(ctx, username)

	profileCtx, cancel := withTimeout(ctx, r.timeouts.Profile)
	start := time.Now()
	summary, err := r.profile.Extract(profileCtx, history)
	cancel()
	metrics.StageDuration.WithLabelValues("profile-extractor").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueriesFailed.WithLabelValues("profile-extractor").Inc()
		return nil, err
	}

	mergedCtx := models.MergedContext{
		Categories: categories,
		Profile:    summary,
	}

	synthCtx, cancel := withTimeout(ctx, r.timeouts.Synthesis)
	start = time.Now()
	result, err := r.synth.Synthesize(synthCtx, query, mergedCtx)
	cancel()
	metrics.StageDuration.WithLabelValues(recommender.Stage).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueriesFailed.WithLabelValues(recommender.Stage).Inc()
		return nil, err
	}

	metrics.QueriesProcessed.WithLabelValues(models.ModeCategory).Inc()
	r.logger.Info("category path completed", map[string]interface{}{
		"categories": len(categories),
		"username":   username,
	})

	return &models.AgentResponse{
		Mode:            models.ModeCategory,
		Categories:      categories,
		Profile:         summary,
		Recommendations: result.Payload(),
	}, nil
}

func (r *Router) emotionPath(ctx context.Context, query string) (*models.AgentResponse, error) {
	ctx, cancel := withTimeout(ctx, r.timeouts.Emotion)
	defer cancel()

	start := time.Now()
	reply, err := r.emotion.Respond(ctx, query)
	metrics.StageDuration.WithLabelValues("emotion-responder").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueriesFailed.WithLabelValues("emotion-responder").Inc()
		return nil, err
	}

	metrics.QueriesProcessed.WithLabelValues(models.ModeEmotion).Inc()
	r.logger.Info("emotion path completed", nil)

	return &models.AgentResponse{
		Mode:            models.ModeEmotion,
		EmotionResponse: reply,
	}, nil
}

// fetchHistory collapses any store failure to an empty history here, at the
// router boundary, so the degrade-not-fail policy stays visible in one place.
func (r *Router) fetchHistory(ctx context.Context, username string) []string {
	history, err := r.history.UserMessageHistory(ctx, username)
	if err != nil {
		r.logger.Warn("history store unavailable, continuing with empty history", map[string]interface{}{
			"username": username,
			"error":    err.Error(),
		})
		return nil
	}
	return history
}

func hasResults(categories []models.CategoryMatch) bool {
	for _, c := range categories {
		if len(c.Results) > 0 {
			return true
		}
	}
	return false
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
