package usecase

import (
	"context"
	"time"
)

// SessionCache is the narrow cache surface usecases depend on; the redis
// implementation lives in infrastructure/cache and degrades to a no-op.
type SessionCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

func profileCacheKey(subjectID string) string {
	return "profile:subject:" + subjectID
}

func submitLockKey(ownerID, normalizedURL string) string {
	return "captures:lock:" + ownerID + ":" + normalizedURL
}
