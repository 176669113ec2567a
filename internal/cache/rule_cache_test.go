package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

func setupRuleCache(t *testing.T) (*miniredis.Miniredis, *RuleCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRuleCache(client, 5*time.Minute, zap.NewNop())
}

func TestRuleCache_LoadsOnMissThenServesFromCache(t *testing.T) {
	_, cache := setupRuleCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) ([]domain.SlaRule, error) {
		loads++
		return []domain.SlaRule{{ID: "rule-1", ResolutionTimeHours: 24, IsActive: true}}, nil
	}

	rules, err := cache.SlaRules(ctx, loader)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 1, loads)

	rules, err = cache.SlaRules(ctx, loader)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "rule-1", rules[0].ID)
	assert.Equal(t, 1, loads, "second read must be served from redis")
}

func TestRuleCache_InvalidateForcesReload(t *testing.T) {
	_, cache := setupRuleCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) ([]domain.EscalationRule, error) {
		loads++
		return []domain.EscalationRule{{ID: "esc-1", IsActive: true}}, nil
	}

	_, err := cache.EscalationRules(ctx, loader)
	require.NoError(t, err)

	cache.Invalidate(ctx)

	_, err = cache.EscalationRules(ctx, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestRuleCache_ExpiryReloads(t *testing.T) {
	mr, cache := setupRuleCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) ([]domain.SlaRule, error) {
		loads++
		return []domain.SlaRule{{ID: "rule-1", IsActive: true}}, nil
	}

	_, err := cache.SlaRules(ctx, loader)
	require.NoError(t, err)

	mr.FastForward(10 * time.Minute)

	_, err = cache.SlaRules(ctx, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestRuleCache_LoaderErrorPropagates(t *testing.T) {
	_, cache := setupRuleCache(t)

	wantErr := errors.New("db unavailable")
	_, err := cache.SlaRules(context.Background(), func(context.Context) ([]domain.SlaRule, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestRuleCache_NilClientAlwaysLoads(t *testing.T) {
	cache := NewRuleCache(nil, time.Minute, zap.NewNop())

	loads := 0
	loader := func(context.Context) ([]domain.SlaRule, error) {
		loads++
		return nil, nil
	}

	for i := 0; i < 3; i++ {
		_, err := cache.SlaRules(context.Background(), loader)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, loads)
}
