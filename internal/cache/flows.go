package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"SevaFlow/entity"
	"SevaFlow/internal/lib/sl"
)

// FlowBackend is the persistent store behind the cache.
type FlowBackend interface {
	FindActiveFlowsByCompany(companyID string) ([]entity.FlowDefinition, error)
	FindFlowByID(companyID, flowID string) (*entity.FlowDefinition, error)
	IncrementFlowUsage(flowID string) error
}

// FlowCache is a read-through redis cache over each tenant's active flow
// list. Flow definitions are read on every inbound message but change only
// on authoring writes, which call Invalidate. Sessions are never cached
// here: their advancement depends on an atomic store write.
type FlowCache struct {
	backend FlowBackend
	client  *redis.Client
	ttl     time.Duration
	log     *slog.Logger
}

func NewFlowCache(backend FlowBackend, client *redis.Client, ttl time.Duration, log *slog.Logger) *FlowCache {
	return &FlowCache{
		backend: backend,
		client:  client,
		ttl:     ttl,
		log:     log.With(sl.Module("cache.flows")),
	}
}

func activeKey(companyID string) string {
	return fmt.Sprintf("flows:active:%s", companyID)
}

func (c *FlowCache) FindActiveFlowsByCompany(companyID string) ([]entity.FlowDefinition, error) {
	ctx := context.Background()
	key := activeKey(companyID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var flows []entity.FlowDefinition
		if err := json.Unmarshal(raw, &flows); err == nil {
			return flows, nil
		}
		// Unreadable entry, fall through to the backend and overwrite.
		c.log.Warn("dropping corrupt cache entry", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down degrades to mongo reads, not to failure.
		c.log.Warn("cache read failed", sl.Err(err))
	}

	flows, err := c.backend.FindActiveFlowsByCompany(companyID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(flows); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.log.Warn("cache write failed", sl.Err(err))
		}
	}
	return flows, nil
}

func (c *FlowCache) FindFlowByID(companyID, flowID string) (*entity.FlowDefinition, error) {
	return c.backend.FindFlowByID(companyID, flowID)
}

func (c *FlowCache) IncrementFlowUsage(flowID string) error {
	return c.backend.IncrementFlowUsage(flowID)
}

// Invalidate drops the tenant's cached flow list after an authoring write.
func (c *FlowCache) Invalidate(companyID string) {
	if err := c.client.Del(context.Background(), activeKey(companyID)).Err(); err != nil {
		c.log.Warn("cache invalidation failed",
			slog.String("company_id", companyID),
			sl.Err(err),
		)
	}
}
