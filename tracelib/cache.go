package tracelib

import (
	"context"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"
)

// CacheKind is a classification of the address stored in the cache.
type CacheKind uint8

const (
	// CacheUnknown means that lookup was attempted and failed.
	CacheUnknown CacheKind = iota

	// CachePrivate means that address is private or non-routable.
	CachePrivate

	// CacheLocated means that coordinates are known.
	CacheLocated
)

func (c CacheKind) String() string {
	switch c {
	case CachePrivate:
		return "private"
	case CacheLocated:
		return "located"
	default:
		return "unknown"
	}
}

// CacheEntry is a value stored for the address. Coordinates make sense
// only for CacheLocated.
type CacheEntry struct {
	Kind      CacheKind
	Latitude  float64
	Longitude float64
}

// Row converts an entry into a storage row: nullable lat and lng and
// is_private flag.
func (c CacheEntry) Row() (lat, lng *float64, isPrivate bool) {
	switch c.Kind {
	case CachePrivate:
		return nil, nil, true
	case CacheLocated:
		latitude, longitude := c.Latitude, c.Longitude

		return &latitude, &longitude, false
	}

	return nil, nil, false
}

// CacheEntryFromRow is the opposite of CacheEntry.Row.
func CacheEntryFromRow(lat, lng *float64, isPrivate bool) CacheEntry {
	switch {
	case isPrivate:
		return CacheEntry{Kind: CachePrivate}
	case lat == nil || lng == nil:
		return CacheEntry{Kind: CacheUnknown}
	}

	return CacheEntry{
		Kind:      CacheLocated,
		Latitude:  *lat,
		Longitude: *lng,
	}
}

// PrivateCacheEntry returns an entry for private address.
func PrivateCacheEntry() CacheEntry {
	return CacheEntry{Kind: CachePrivate}
}

// UnknownCacheEntry returns an entry for address we failed to locate.
func UnknownCacheEntry() CacheEntry {
	return CacheEntry{Kind: CacheUnknown}
}

// LocatedCacheEntry returns an entry with known coordinates.
func LocatedCacheEntry(latitude, longitude float64) CacheEntry {
	return CacheEntry{
		Kind:      CacheLocated,
		Latitude:  latitude,
		Longitude: longitude,
	}
}

func validCoordinates(latitude, longitude float64) bool {
	return !math.IsNaN(latitude) && !math.IsInf(latitude, 0) &&
		!math.IsNaN(longitude) && !math.IsInf(longitude, 0)
}

type cachingStore struct {
	Store

	cache *lru.Cache
}

func (c cachingStore) Get(ctx context.Context, address string) (CacheEntry, bool, error) {
	if value, ok := c.cache.Get(address); ok {
		return value.(CacheEntry), true, nil
	}

	entry, ok, err := c.Store.Get(ctx, address)
	if err != nil || !ok {
		return entry, ok, err
	}

	c.cache.Add(address, entry)

	return entry, true, nil
}

func (c cachingStore) Put(ctx context.Context, address string, entry CacheEntry) error {
	if err := c.Store.Put(ctx, address, entry); err != nil {
		return err
	}

	c.cache.Add(address, entry)

	return nil
}

// NewCachingStore wraps a store with in-memory LRU cache. Rows are
// never changed once written so there is no need to invalidate
// anything.
func NewCachingStore(store Store, itemsCount int) (Store, error) {
	cache, err := lru.New(itemsCount)
	if err != nil {
		return nil, fmt.Errorf("cannot create lru cache: %w", err)
	}

	return cachingStore{
		Store: store,
		cache: cache,
	}, nil
}
