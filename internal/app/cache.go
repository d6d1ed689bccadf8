package app

import "context"

// userCache gives each user a private namespace in a shared LocalCache, so the
// deterministic quiz keys never collide between users.
type userCache struct {
	inner  LocalCache
	prefix string
}

func scopeCache(inner LocalCache, userID string) LocalCache {
	if inner == nil {
		return nil
	}
	return userCache{inner: inner, prefix: "u:" + userID + ":"}
}

func (c userCache) Get(ctx context.Context, key string) (string, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

func (c userCache) Set(ctx context.Context, key, value string) error {
	return c.inner.Set(ctx, c.prefix+key, value)
}

func (c userCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}
