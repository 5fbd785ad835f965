package tracelib

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	// DefaultRetryCount is a number of retries of rate limited
	// provider call. So a provider is called up to DefaultRetryCount+1
	// times.
	DefaultRetryCount = 3

	// DefaultRetryDelay is used if rate limited response has no
	// Retry-After header.
	DefaultRetryDelay = 5 * time.Second

	// AddressGuessLabel is a label of guesses made by address
	// geolocation. We know coordinates but not a name of the place.
	AddressGuessLabel = "unknown"
)

// RetryConfig defines how rate limited provider calls are retried.
type RetryConfig struct {
	Count int
	Delay time.Duration
}

func (r RetryConfig) withDefaults() RetryConfig {
	if r.Count <= 0 {
		r.Count = DefaultRetryCount
	}

	if r.Delay <= 0 {
		r.Delay = DefaultRetryDelay
	}

	return r
}

// AddressResolver locates IP addresses using external providers.
// Every result, including failures, is persisted in the Store and
// never asked again.
type AddressResolver struct {
	store      Store
	providers  []Provider
	usageStats []*UsageStats
	logger     Logger
	metrics    *Metrics
	retry      RetryConfig
	classifier privateClassifier
	sleep      func(context.Context, time.Duration) error
}

// Resolve returns coordinates of the address if they are known or
// can be found.
func (a *AddressResolver) Resolve(ctx context.Context, address string) (LocationGuess, bool) {
	entry, ok, err := a.store.Get(ctx, address)

	switch {
	case err != nil:
		a.logger.CacheError(address, err)
	case ok:
		a.metrics.cacheLookup(true)

		return addressGuess(entry)
	}

	a.metrics.cacheLookup(false)

	entry = a.lookup(ctx, address)

	// a lookup interrupted by the caller says nothing about the address
	if ctx.Err() != nil {
		return LocationGuess{}, false
	}

	if err := a.store.Put(ctx, address, entry); err != nil {
		a.logger.CacheError(address, err)
	}

	return addressGuess(entry)
}

// UsageStats returns stats of providers in the order they are asked.
func (a *AddressResolver) UsageStats() []*UsageStats {
	rv := make([]*UsageStats, len(a.usageStats))
	copy(rv, a.usageStats)

	return rv
}

func (a *AddressResolver) lookup(ctx context.Context, address string) CacheEntry {
	ip := net.ParseIP(address)

	switch {
	case ip == nil:
		return UnknownCacheEntry()
	case a.classifier.IsPrivate(ip):
		return PrivateCacheEntry()
	}

	for i, provider := range a.providers {
		result, err := a.lookupProvider(ctx, provider, a.usageStats[i], ip)
		if err == nil {
			return LocatedCacheEntry(result.Latitude, result.Longitude)
		}

		if ctx.Err() != nil {
			break
		}

		a.logger.LookupError(ip, provider.Name(), err)
	}

	return UnknownCacheEntry()
}

func (a *AddressResolver) lookupProvider(ctx context.Context,
	provider Provider,
	stats *UsageStats,
	ip net.IP) (ProviderLookupResult, error) {
	for attempt := 0; ; attempt++ {
		result, err := provider.Lookup(ctx, ip)
		if err == nil && !validCoordinates(result.Latitude, result.Longitude) {
			err = ErrNoCoordinates
		}

		stats.Used(err)
		a.metrics.providerLookup(provider.Name(), err)

		var rateLimitErr *RateLimitError

		if err == nil || !errors.As(err, &rateLimitErr) {
			return result, err
		}

		if attempt >= a.retry.Count {
			return result, fmt.Errorf("gave up after %d retries: %w", a.retry.Count, err)
		}

		delay := rateLimitErr.RetryAfter
		if delay <= 0 {
			delay = a.retry.Delay
		}

		a.logger.RateLimited(ip, provider.Name(), delay)

		if err := a.sleep(ctx, delay); err != nil {
			return result, err
		}
	}
}

func addressGuess(entry CacheEntry) (LocationGuess, bool) {
	if entry.Kind != CacheLocated {
		return LocationGuess{}, false
	}

	population := 0

	return LocationGuess{
		Label:      AddressGuessLabel,
		Latitude:   entry.Latitude,
		Longitude:  entry.Longitude,
		Population: &population,
	}, true
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewAddressResolver creates a resolver which asks providers in the
// given order.
func NewAddressResolver(store Store,
	providers []Provider,
	retry RetryConfig,
	logger Logger,
	metrics *Metrics) *AddressResolver {
	rv := &AddressResolver{
		store:      store,
		providers:  providers,
		usageStats: make([]*UsageStats, len(providers)),
		logger:     logger,
		metrics:    metrics,
		retry:      retry.withDefaults(),
		classifier: defaultPrivateClassifier,
		sleep:      sleepContext,
	}

	for i, v := range providers {
		rv.usageStats[i] = &UsageStats{Name: v.Name()}
	}

	return rv
}
