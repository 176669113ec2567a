package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

const (
	slaRulesKey        = "sla:rules"
	escalationRulesKey = "sla:escalation_rules"
)

// RuleCache keeps the small SLA and escalation rule tables in Redis so every
// ticket creation and evaluation pass does not hit Postgres. Entries are JSON
// blobs with a TTL; a cache miss or decode failure falls back to the loader.
type RuleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRuleCache builds the cache. A nil client disables caching entirely.
func NewRuleCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RuleCache {
	return &RuleCache{client: client, ttl: ttl, logger: logger}
}

// SlaRules returns cached SLA rules, loading and storing them on a miss.
func (c *RuleCache) SlaRules(ctx context.Context, load func(context.Context) ([]domain.SlaRule, error)) ([]domain.SlaRule, error) {
	var rules []domain.SlaRule
	if c.tryGet(ctx, slaRulesKey, &rules) {
		return rules, nil
	}
	rules, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, slaRulesKey, rules)
	return rules, nil
}

// EscalationRules returns cached escalation rules, loading on a miss.
func (c *RuleCache) EscalationRules(ctx context.Context, load func(context.Context) ([]domain.EscalationRule, error)) ([]domain.EscalationRule, error) {
	var rules []domain.EscalationRule
	if c.tryGet(ctx, escalationRulesKey, &rules) {
		return rules, nil
	}
	rules, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, escalationRulesKey, rules)
	return rules, nil
}

// Invalidate drops cached rule tables after an admin edit.
func (c *RuleCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, slaRulesKey, escalationRulesKey).Err(); err != nil {
		c.logger.Warn("rule cache invalidation failed", zap.Error(err))
	}
}

func (c *RuleCache) tryGet(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("rule cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Warn("rule cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *RuleCache) store(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("rule cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("rule cache write failed", zap.String("key", key), zap.Error(err))
	}
}
