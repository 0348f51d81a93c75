package switcher

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache used by the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *registryConfig) {
		cfg.programCache = cache
	}
}

// ttlProgramCache evicts compiled programs that have not been stored again
// within ttl.
type ttlProgramCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewProgramCache returns a ProgramCache backed by go-cache. A ttl <= 0 keeps
// entries until the process exits.
func NewProgramCache(ttl time.Duration) ProgramCache {
	expiration := ttl
	cleanup := 2 * ttl
	if ttl <= 0 {
		expiration = gocache.NoExpiration
		cleanup = 0
	}
	return &ttlProgramCache{
		store: gocache.New(expiration, cleanup),
		ttl:   expiration,
	}
}

func (c *ttlProgramCache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

func (c *ttlProgramCache) Set(key string, value any) {
	c.store.Set(key, value, c.ttl)
}
