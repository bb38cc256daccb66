package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultVolunteerTTL = 10 * time.Minute

// CachedVolunteerLookup decorates a VolunteerLookup with a Redis cache.
// Volunteer display data changes rarely and is read on every governance
// operation, so resolved entries are cached with a short TTL. Cache errors
// fall through to the inner lookup; only resolution failures propagate.
type CachedVolunteerLookup struct {
	inner     chapter.VolunteerLookup
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisClient creates a Redis client from configuration and verifies
// the connection
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewCachedVolunteerLookup creates a caching decorator around inner
func NewCachedVolunteerLookup(inner chapter.VolunteerLookup, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedVolunteerLookup {
	if ttl <= 0 {
		ttl = defaultVolunteerTTL
	}
	return &CachedVolunteerLookup{
		inner:     inner,
		client:    client,
		ttl:       ttl,
		keyPrefix: "volunteer:resolve:",
		logger:    logger,
	}
}

type cachedVolunteer struct {
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email,omitempty"`
	MemberID    *uuid.UUID `json:"member_id,omitempty"`
}

// Resolve returns the cached resolution when present, otherwise delegates
// to the inner lookup and caches the result
func (l *CachedVolunteerLookup) Resolve(ctx context.Context, volunteerID uuid.UUID) (*chapter.VolunteerInfo, error) {
	key := l.keyPrefix + volunteerID.String()

	raw, err := l.client.Get(ctx, key).Result()
	if err == nil {
		var cached cachedVolunteer
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &chapter.VolunteerInfo{
				DisplayName: cached.DisplayName,
				Email:       cached.Email,
				MemberID:    cached.MemberID,
			}, nil
		}
		// Corrupt entry, drop it and fall through
		l.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		l.logger.Warn("volunteer cache read failed",
			zap.String("volunteer_id", volunteerID.String()),
			zap.Error(err),
		)
	}

	info, err := l.inner.Resolve(ctx, volunteerID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedVolunteer{
		DisplayName: info.DisplayName,
		Email:       info.Email,
		MemberID:    info.MemberID,
	})
	if err == nil {
		if err := l.client.Set(ctx, key, payload, l.ttl).Err(); err != nil {
			l.logger.Warn("volunteer cache write failed",
				zap.String("volunteer_id", volunteerID.String()),
				zap.Error(err),
			)
		}
	}
	return info, nil
}

// Invalidate removes a volunteer from the cache, for use after the
// volunteer record itself changes
func (l *CachedVolunteerLookup) Invalidate(ctx context.Context, volunteerID uuid.UUID) error {
	return l.client.Del(ctx, l.keyPrefix+volunteerID.String()).Err()
}

// Ensure CachedVolunteerLookup implements VolunteerLookup
var _ chapter.VolunteerLookup = (*CachedVolunteerLookup)(nil)
