package api

import (
	"context"
	"sync"
	"time"

	"weatherdash/internal/logger"
)

// DefaultMemoTTL matches the dashboard refresh window of ten minutes
const DefaultMemoTTL = 600 * time.Second

// Fetcher is the pair of lookups the dashboard needs. *WeatherClient and
// *Memo both implement it.
type Fetcher interface {
	FetchCurrent(ctx context.Context, q WeatherQuery) Outcome[CurrentConditions]
	FetchForecast(ctx context.Context, q WeatherQuery) Outcome[[]DailyForecast]
}

type memoKind string

const (
	memoCurrent  memoKind = "current"
	memoForecast memoKind = "forecast"
)

// memoEntry holds one successful outcome and when it was stored
type memoEntry struct {
	value    any
	storedAt time.Time
}

// Memo is a time-boxed, in-memory memo in front of a Fetcher.
// Only successful outcomes are kept; failures are always retried on the next
// call. Safe for concurrent use.
type Memo struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]memoEntry
}

// NewMemo wraps fetcher. A non-positive ttl disables memoization.
func NewMemo(fetcher Fetcher, ttl time.Duration) *Memo {
	return &Memo{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoEntry),
	}
}

// FetchCurrent returns memoized current conditions or fetches them
func (m *Memo) FetchCurrent(ctx context.Context, q WeatherQuery) Outcome[CurrentConditions] {
	key := string(memoCurrent) + "|" + q.memoKey()
	if v, ok := m.lookup(key); ok {
		logger.Debug("Memo hit: kind=%s, city=%s", memoCurrent, q.DemoKey())
		return Ok(v.(CurrentConditions))
	}

	outcome := m.fetcher.FetchCurrent(ctx, q)
	if outcome.IsOk() {
		m.store(key, outcome.Value())
	}
	return outcome
}

// FetchForecast returns a memoized daily forecast or fetches it
func (m *Memo) FetchForecast(ctx context.Context, q WeatherQuery) Outcome[[]DailyForecast] {
	key := string(memoForecast) + "|" + q.memoKey()
	if v, ok := m.lookup(key); ok {
		logger.Debug("Memo hit: kind=%s, city=%s", memoForecast, q.DemoKey())
		return Ok(v.([]DailyForecast))
	}

	outcome := m.fetcher.FetchForecast(ctx, q)
	if outcome.IsOk() {
		m.store(key, outcome.Value())
	}
	return outcome
}

// lookup returns a live entry, evicting it when its window has passed
func (m *Memo) lookup(key string) (any, bool) {
	if m.ttl <= 0 {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(entry.storedAt) >= m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (m *Memo) store(key string, value any) {
	if m.ttl <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoEntry{value: value, storedAt: m.now()}
}

// Len returns the number of stored entries, expired or not
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Purge drops every stored entry
func (m *Memo) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoEntry)
	logger.Debug("Memo purged")
}
