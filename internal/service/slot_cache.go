package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/peter-abel/healthcare/internal/domain/entity"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SlotCache stores derived slot lists per doctor. It is never the source of truth:
// callers treat every error as a miss.
type SlotCache interface {
	Get(ctx context.Context, key entity.CacheKey) ([]entity.TimeOfDay, bool, error)
	Set(ctx context.Context, key entity.CacheKey, slots []entity.TimeOfDay, ttl time.Duration) error
	// Invalidate drops every cached entry of entityType owned by ownerID
	Invalidate(ctx context.Context, entityType string, ownerID uuid.UUID) error
}

const (
	RedisCacheKeyPrefix = "cache:"

	redisCacheTimeout = 2 * time.Second
)

// invalidateOwnerScript deletes every key listed in the owner's index set, then the set.
// KEYS[1] is the index set.
var invalidateOwnerScript = redis.NewScript(`
	local keys = redis.call('SMEMBERS', KEYS[1])
	for i = 1, #keys do
		redis.call('DEL', keys[i])
	end
	redis.call('DEL', KEYS[1])
	return #keys
`)

// SlotCacheKey addresses the free slots of doctorID on date for the given slot interval
func SlotCacheKey(doctorID uuid.UUID, date time.Time, interval time.Duration) entity.CacheKey {
	filter := date.Format(entity.DateLayout) + "|" + interval.String()
	return entity.CacheKey{
		EntityType: entity.CacheEntitySlots,
		OwnerID:    doctorID,
		FilterHash: strconv.FormatUint(xxhash.Sum64String(filter), 16),
	}
}

type redisSlotCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewRedisSlotCache(redisClient *redis.Client, log *logrus.Logger) SlotCache {
	return &redisSlotCache{
		redisClient: redisClient,
		log:         log,
	}
}

func (c *redisSlotCache) Get(ctx context.Context, key entity.CacheKey) ([]entity.TimeOfDay, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := c.redisClient.Get(ctx, entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", entryKey(key), err)
	}

	var slots []entity.TimeOfDay
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("decode cached slots: %w", err)
	}
	return slots, true, nil
}

// Set writes the entry and registers it in the owner's index in one transaction
func (c *redisSlotCache) Set(ctx context.Context, key entity.CacheKey, slots []entity.TimeOfDay, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if slots == nil {
		slots = []entity.TimeOfDay{}
	}
	payload, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}

	indexKey := ownerIndexKey(key.EntityType, key.OwnerID)

	pipe := c.redisClient.TxPipeline()
	pipe.Set(ctx, entryKey(key), payload, ttl)
	pipe.SAdd(ctx, indexKey, entryKey(key))
	// the index outlives its entries so an invalidation always sees them
	pipe.Expire(ctx, indexKey, 2*ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %s: %w", entryKey(key), err)
	}

	c.log.Debugf("Cached %d slots under %s", len(slots), entryKey(key))
	return nil
}

func (c *redisSlotCache) Invalidate(ctx context.Context, entityType string, ownerID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	indexKey := ownerIndexKey(entityType, ownerID)
	dropped, err := invalidateOwnerScript.Run(ctx, c.redisClient, []string{indexKey}).Int()
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", indexKey, err)
	}

	c.log.Debugf("Invalidated %d cache entries for %s", dropped, indexKey)
	return nil
}

func entryKey(key entity.CacheKey) string {
	return fmt.Sprintf("%s%s:%s:%s", RedisCacheKeyPrefix, key.EntityType, key.OwnerID, key.FilterHash)
}

func ownerIndexKey(entityType string, ownerID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s:keys", RedisCacheKeyPrefix, entityType, ownerID)
}
