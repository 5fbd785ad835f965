package tracelib

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// UsageStats tracks how a provider is doing.
type UsageStats struct {
	Name string

	mutex            sync.Mutex
	lastUsed         time.Time
	successCount     uint64
	failureCount     uint64
	rateLimitedCount uint64
}

// Used registers a result of a single provider call. Rate limited
// calls are counted separately from failures.
func (u *UsageStats) Used(err error) {
	var rateLimitErr *RateLimitError

	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	switch {
	case err == nil:
		u.successCount++
	case errors.As(err, &rateLimitErr):
		u.rateLimitedCount++
	default:
		u.failureCount++
	}
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastUsedTime int64

	u.mutex.Lock()

	if !u.lastUsed.IsZero() {
		lastUsedTime = u.lastUsed.Unix()
	}

	rawStruct := struct {
		Name             string `json:"name"`
		LastUsed         int64  `json:"last_used"`
		SuccessCount     uint64 `json:"success_count"`
		FailureCount     uint64 `json:"failure_count"`
		RateLimitedCount uint64 `json:"rate_limited_count"`
	}{
		Name:             u.Name,
		LastUsed:         lastUsedTime,
		SuccessCount:     u.successCount,
		FailureCount:     u.failureCount,
		RateLimitedCount: u.rateLimitedCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}
