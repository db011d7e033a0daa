package container

import "sync"

// ── Singleton ────────────────────────────────────────────────────────────────

// SingletonScope caches the first successfully constructed instance for the
// life of the container. Concurrent first lookups construct exactly once.
func SingletonScope(provider ComponentProvider) ComponentProvider {
	return &singletonProvider{provider: provider}
}

type singletonProvider struct {
	provider ComponentProvider

	mu       sync.RWMutex
	built    bool
	instance any
}

func (p *singletonProvider) Get(ctx Context) (any, error) {
	// The write lock is held while constructing; waiting on it from the
	// constructing chain would never return.
	if err := reentrant(ctx, p); err != nil {
		return nil, err
	}

	p.mu.RLock()
	if p.built {
		instance := p.instance
		p.mu.RUnlock()
		return instance, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have won the race while we waited for the write lock.
	if p.built {
		return p.instance, nil
	}

	// A failed construction is not cached; the next lookup tries again.
	instance, err := p.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	p.instance, p.built = instance, true
	return instance, nil
}

func (p *singletonProvider) Dependencies() []Ref { return p.provider.Dependencies() }

// ── Pooled ───────────────────────────────────────────────────────────────────

// PooledScope returns a policy that keeps at most size instances. The first
// size lookups each construct a fresh instance; later lookups cycle through
// the pool in order.
//
//	cfg.Scope(container.Pooled{}, container.PooledScope(2))
func PooledScope(size int) ScopeFunc {
	if size < 1 {
		size = 1
	}
	return func(provider ComponentProvider) ComponentProvider {
		return &pooledProvider{provider: provider, size: size}
	}
}

type pooledProvider struct {
	provider ComponentProvider
	size     int

	mu    sync.Mutex
	pool  []any
	calls int
}

func (p *pooledProvider) Get(ctx Context) (any, error) {
	if err := reentrant(ctx, p); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pool) < p.size {
		instance, err := p.provider.Get(ctx)
		if err != nil {
			return nil, err
		}
		p.pool = append(p.pool, instance)
	}
	instance := p.pool[p.calls%p.size]
	p.calls++
	return instance, nil
}

func (p *pooledProvider) Dependencies() []Ref { return p.provider.Dependencies() }
