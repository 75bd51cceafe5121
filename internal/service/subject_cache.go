package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/correcteur-api/internal/dto"
)

// SubjectCache stores the student view of subjects by code. A nil client disables caching.
type SubjectCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSubjectCache builds a cache over client.
func NewSubjectCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *SubjectCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SubjectCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "subject_cache").Logger(),
	}
}

func subjectCacheKey(code string) string {
	return fmt.Sprintf("subject:code:%s", code)
}

// Get returns the cached view for code. Cache errors are logged and reported as a miss.
func (c *SubjectCache) Get(ctx context.Context, code string) (dto.StudentSubjectResponse, bool) {
	if c == nil || c.client == nil {
		return dto.StudentSubjectResponse{}, false
	}

	cached, err := c.client.Get(ctx, subjectCacheKey(code)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("code", code).Msg("failed to read subject cache")
		}
		return dto.StudentSubjectResponse{}, false
	}

	var response dto.StudentSubjectResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		c.logger.Warn().Err(err).Str("code", code).Msg("discarding unreadable subject cache entry")
		return dto.StudentSubjectResponse{}, false
	}

	c.logger.Debug().Str("code", code).Msg("subject cache hit")
	return response, true
}

// Set stores the view for code.
func (c *SubjectCache) Set(ctx context.Context, code string, response dto.StudentSubjectResponse) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, subjectCacheKey(code), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("code", code).Msg("failed to store subject cache")
	}
}

// Invalidate drops the entry for code.
func (c *SubjectCache) Invalidate(ctx context.Context, code string) {
	if c == nil || c.client == nil || code == "" {
		return
	}
	if err := c.client.Del(ctx, subjectCacheKey(code)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("code", code).Msg("failed to invalidate subject cache")
	}
}
