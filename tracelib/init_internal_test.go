package tracelib

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Lookup(ctx context.Context, ip net.IP) (ProviderLookupResult, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(ProviderLookupResult), args.Error(1)
}

func (m *ProviderMock) Name() string {
	return m.Called().String(0)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(ip net.IP, name string, err error) {
	m.Called(ip, name, err)
}

func (m *LoggerMock) RateLimited(ip net.IP, name string, delay time.Duration) {
	m.Called(ip, name, delay)
}

func (m *LoggerMock) CacheError(address string, err error) {
	m.Called(address, err)
}

func (m *LoggerMock) TraceResolved(id string, hops, located int) {
	m.Called(id, hops, located)
}

type memoryStore struct {
	mutex sync.Mutex
	rows  map[string]CacheEntry
	gets  int
	puts  int
}

func (m *memoryStore) Get(_ context.Context, address string) (CacheEntry, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.gets++
	entry, ok := m.rows[address]

	return entry, ok, nil
}

func (m *memoryStore) Put(_ context.Context, address string, entry CacheEntry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.puts++
	m.rows[address] = entry

	return nil
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rows: map[string]CacheEntry{},
	}
}
