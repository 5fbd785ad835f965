package tracelib

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Provider is a geolocation provider: something which can tell
// coordinates of the IP address.
//
// If provider is rate limited, it has to return an error which wraps
// *RateLimitError. HTTPClient does that for you.
type Provider interface {
	Name() string
	Lookup(context.Context, net.IP) (ProviderLookupResult, error)
}

// HTTPClient is an interface for the HTTP client used by online
// providers. NewHTTPClient returns a ready implementation.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Store is a persistent storage of address geolocation results.
//
// Get returns false if there is no row for the address. Put may be
// called many times for the same address: last write wins.
type Store interface {
	Get(ctx context.Context, address string) (CacheEntry, bool, error)
	Put(ctx context.Context, address string, entry CacheEntry) error
}

// Logger is used by tracelib to report events which are not errors of
// the pipeline but still worth to know about.
type Logger interface {
	LookupError(ip net.IP, name string, err error)
	RateLimited(ip net.IP, name string, delay time.Duration)
	CacheError(address string, err error)
	TraceResolved(id string, hops, located int)
}
