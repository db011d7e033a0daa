package container

import (
	"errors"
	"fmt"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the bindings of one module.
//
// Register declares bindings on the config. Boot is called after ALL
// providers have been registered and the container has been finalized, making
// it safe to resolve components inside Boot.
//
//	type GarageProvider struct{ container.BaseProvider }
//
//	func (p *GarageProvider) Register(cfg *container.ContextConfig) error {
//	    return container.Component[*Garage, Garage](cfg, container.Singleton{})
//	}
//
//	func (p *GarageProvider) Boot(c *container.Container) error {
//	    _, _, err := container.Resolve[*Garage](c)
//	    return err
//	}
type ServiceProvider interface {
	// Register binds components into the config.
	// Do NOT resolve anything here; the container does not exist yet.
	Register(cfg *ContextConfig) error

	// Boot is called once the container is finalized.
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider provides a no-op Boot. Embed it in providers that only
// register bindings.
//
//	type MyProvider struct{ container.BaseProvider }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers providers into one ContextConfig, finalizes it
// and boots the providers in registration order.
type ProviderRegistry struct {
	cfg        *ContextConfig
	container  *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
	err        error
}

// NewProviderRegistry creates a registry bound to cfg.
func NewProviderRegistry(cfg *ContextConfig) *ProviderRegistry {
	return &ProviderRegistry{
		cfg:        cfg,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. Registering the
// same provider twice is a no-op. Providers cannot be added after Boot,
// because the container's bindings are fixed by then.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	if r.booted {
		return fmt.Errorf("container: register %T after boot: %w", provider, ErrContextFinalized)
	}
	if err := provider.Register(r.cfg); err != nil {
		return fmt.Errorf("container: register %T: %w", provider, err)
	}
	r.registered[provider] = true
	r.providers = append(r.providers, provider)
	return nil
}

// Boot finalizes the config and calls Boot on every provider. It must be
// called after ALL providers have been registered; later calls return the
// same container and the same boot error.
func (r *ProviderRegistry) Boot() (*Container, error) {
	if r.booted {
		return r.container, r.err
	}
	c, err := r.cfg.Build()
	if err != nil {
		return nil, err
	}
	r.container, r.booted = c, true

	var errs []error
	for _, provider := range r.providers {
		if err := provider.Boot(c); err != nil {
			errs = append(errs, fmt.Errorf("container: boot %T: %w", provider, err))
		}
	}
	r.err = errors.Join(errs...)
	return c, r.err
}

// Booted returns true once Boot has finalized the container.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }

// Container returns the finalized container, or nil before Boot.
func (r *ProviderRegistry) Container() *Container { return r.container }

// Config returns the config providers register into.
func (r *ProviderRegistry) Config() *ContextConfig { return r.cfg }
