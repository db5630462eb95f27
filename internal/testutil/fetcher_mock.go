package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
)

// MockFetcher is a mock implementation of fetcher.Fetcher for testing.
// It serves predefined artifacts by URL instead of making HTTP calls.
type MockFetcher struct {
	mu        sync.Mutex
	artifacts map[string][]byte
	errors    map[string]error
	gates     map[string]chan struct{}
	delays    map[string]time.Duration
	calls     map[string]int
	inFlight  map[string]int
	peak      map[string]int
}

// NewMockFetcher creates a mock fetcher that serves nothing.
// Unknown URLs fail with a 404 FetchError.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		artifacts: make(map[string][]byte),
		errors:    make(map[string]error),
		gates:     make(map[string]chan struct{}),
		delays:    make(map[string]time.Duration),
		calls:     make(map[string]int),
		inFlight:  make(map[string]int),
		peak:      make(map[string]int),
	}
}

// WithArtifact configures the bytes returned for url.
func (m *MockFetcher) WithArtifact(url string, data []byte) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[url] = data
	delete(m.errors, url)
	return m
}

// WithError configures url to fail with err.
func (m *MockFetcher) WithError(url string, err error) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[url] = err
	return m
}

// WithGate makes fetches of url block until gate is closed.
func (m *MockFetcher) WithGate(url string, gate chan struct{}) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates[url] = gate
	return m
}

// WithDelay makes fetches of url sleep for d first.
func (m *MockFetcher) WithDelay(url string, d time.Duration) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[url] = d
	return m
}

// Fetch returns the configured artifact or error for url.
func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.calls[url]++
	m.inFlight[url]++
	if m.inFlight[url] > m.peak[url] {
		m.peak[url] = m.inFlight[url]
	}
	gate := m.gates[url]
	delay := m.delays[url]
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight[url]--
		m.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &apperrors.FetchError{URL: url, Err: ctx.Err()}
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &apperrors.FetchError{URL: url, Err: ctx.Err()}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errors[url]; ok {
		return nil, err
	}
	data, ok := m.artifacts[url]
	if !ok {
		return nil, &apperrors.FetchError{URL: url, StatusCode: 404, Err: fmt.Errorf("no artifact for %s", url)}
	}
	return append([]byte(nil), data...), nil
}

// CallCount returns how many times url was fetched.
func (m *MockFetcher) CallCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

// MaxInFlight returns the highest number of concurrent fetches of url seen so far.
func (m *MockFetcher) MaxInFlight(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak[url]
}

// TotalCalls returns the number of fetches across all URLs.
func (m *MockFetcher) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}
