// Package tmdb wraps the movie-metadata lookups for trailer and poster URLs.
// Plain request/response calls: no retry, no caching.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"movierag/internal/common/config"
	"movierag/internal/common/logger"
)

var (
	ErrLookupFailed    = errors.New("METADATA_LOOKUP_FAILED")
	ErrMovieNotFound   = errors.New("MOVIE_NOT_FOUND")
	ErrTrailerNotFound = errors.New("TRAILER_NOT_FOUND")
)

// Client calls the TMDB API.
type Client struct {
	config     config.TMDBConfig
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.TMDBConfig, log logger.Logger) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger: log.With(map[string]interface{}{
			"component": "tmdb",
		}),
	}
}

type movieHit struct {
	ID         int64  `json:"id"`
	PosterPath string `json:"poster_path"`
}

type searchResult struct {
	Results []movieHit `json:"results"`
}

type videosResult struct {
	Results []struct {
		Key  string `json:"key"`
		Type string `json:"type"`
	} `json:"results"`
}

// TrailerURL resolves a movie title to its first trailer on YouTube.
func (c *Client) TrailerURL(ctx context.Context, title string) (string, error) {
	movie, err := c.search(ctx, title)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/movie/%d/videos?api_key=%s&language=en-US",
		c.config.BaseURL, movie.ID, url.QueryEscape(c.config.APIKey))

	var videos videosResult
	if err := c.get(ctx, endpoint, &videos); err != nil {
		return "", err
	}

	for _, v := range videos.Results {
		if v.Type == "Trailer" {
			return "https://www.youtube.com/watch?v=" + v.Key, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrTrailerNotFound, title)
}

// PosterURL resolves a movie title to its poster image URL.
func (c *Client) PosterURL(ctx context.Context, title string) (string, error) {
	movie, err := c.search(ctx, title)
	if err != nil {
		return "", err
	}

	if movie.PosterPath == "" {
		return "", fmt.Errorf("%w: no poster for %s", ErrMovieNotFound, title)
	}

	return c.config.ImageBaseURL + movie.PosterPath, nil
}

func (c *Client) search(ctx context.Context, title string) (*movieHit, error) {
	endpoint := fmt.Sprintf("%s/search/movie?api_key=%s&query=%s&language=en-US",
		c.config.BaseURL, url.QueryEscape(c.config.APIKey), url.QueryEscape(title))

	var result searchResult
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMovieNotFound, title)
	}

	return &result.Results[0], nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode error: %v", ErrLookupFailed, err)
	}
	return nil
}
