package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/pantrypal/backend/config"
)

const unsplashSearchURL = "https://api.unsplash.com/search/photos"

// UnsplashService searches Unsplash for hero image candidates. Results are
// cached per query for a bounded window to avoid burning through the API
// quota; entries simply expire, there is no invalidation.
type UnsplashService struct {
	accessKey string
	searchURL string
	client    *resty.Client
	logger    *zap.Logger

	cacheTTL time.Duration
	redis    *redis.Client

	mu    sync.Mutex
	local map[string]localCacheEntry
}

type localCacheEntry struct {
	urls    []string
	expires time.Time
}

// NewUnsplashService creates the image search client. The Redis client is
// optional; without it caching falls back to an in-process map.
func NewUnsplashService(cfg config.ImageConfig, redisClient *redis.Client, logger *zap.Logger) *UnsplashService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnsplashService{
		accessKey: cfg.AccessKey,
		searchURL: unsplashSearchURL,
		client:    resty.New().SetTimeout(cfg.Timeout),
		logger:    logger,
		cacheTTL:  cfg.CacheTTL,
		redis:     redisClient,
		local:     make(map[string]localCacheEntry),
	}
}

// FetchImages returns up to n image URLs for the query. Any failure, and a
// missing access key, yield an empty slice; the workflow then finalizes the
// recipe without a hero image.
func (s *UnsplashService) FetchImages(ctx context.Context, query string, n int) []string {
	if s.accessKey == "" {
		return []string{}
	}

	cacheKey := fmt.Sprintf("images:%s:%d", query, n)
	if urls, ok := s.cached(ctx, cacheKey); ok {
		return urls
	}

	var result struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":     query + " recipe food",
			"per_page":  fmt.Sprintf("%d", n),
			"client_id": s.accessKey,
		}).
		SetResult(&result).
		Get(s.searchURL)
	if err != nil {
		s.logger.Warn("image search failed", zap.String("query", query), zap.Error(err))
		return []string{}
	}
	if resp.IsError() {
		s.logger.Warn("image search returned error status",
			zap.String("query", query), zap.Int("status", resp.StatusCode()))
		return []string{}
	}

	urls := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		urls = append(urls, r.URLs.Regular)
	}

	s.store(ctx, cacheKey, urls)
	return urls
}

func (s *UnsplashService) cached(ctx context.Context, key string) ([]string, bool) {
	if s.redis != nil {
		data, err := s.redis.Get(ctx, key).Bytes()
		if err != nil {
			return nil, false
		}
		var urls []string
		if json.Unmarshal(data, &urls) != nil {
			return nil, false
		}
		return urls, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.local[key]
	if !ok || time.Now().After(entry.expires) {
		delete(s.local, key)
		return nil, false
	}
	return entry.urls, true
}

func (s *UnsplashService) store(ctx context.Context, key string, urls []string) {
	if s.redis != nil {
		if data, err := json.Marshal(urls); err == nil {
			if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache image results", zap.Error(err))
			}
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.local[key] = localCacheEntry{urls: urls, expires: time.Now().Add(s.cacheTTL)}
}
