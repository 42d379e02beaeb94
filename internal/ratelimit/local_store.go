package ratelimit

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"
)

type localEntry struct {
	count     int64
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e *localEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// LocalStore is the in-process fallback CounterStore. It is only correct
// within a single instance: counts are not shared across replicas, so
// enforcement degrades to per-instance limits while redis is down. Expired
// entries are reaped lazily on access.
type LocalStore struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	now     func() time.Time
}

func NewLocalStore() *LocalStore {
	return &LocalStore{
		entries: make(map[string]*localEntry),
		now:     time.Now,
	}
}

// get returns the live entry for key, dropping it first if expired.
// Callers must hold mu.
func (s *LocalStore) get(key string) *localEntry {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil
	}
	return e
}

func (s *LocalStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key)
	if e == nil {
		e = &localEntry{}
		s.entries[key] = e
	}
	e.count++
	e.value = strconv.FormatInt(e.count, 10)
	return e.count, nil
}

func (s *LocalStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.get(key); e != nil {
		e.expiresAt = s.now().Add(ttl)
	}
	return nil
}

func (s *LocalStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key)
	if e == nil {
		return 0, nil
	}
	return e.count, nil
}

func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(key) != nil, nil
}

func (s *LocalStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key)
	if e == nil || e.expiresAt.IsZero() {
		return 0, nil
	}
	return e.expiresAt.Sub(s.now()), nil
}

func (s *LocalStore) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, _ := strconv.ParseInt(value, 10, 64)
	s.entries[key] = &localEntry{
		count:     count,
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *LocalStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func (s *LocalStore) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key := range s.entries {
		if s.entries[key].expired(s.now()) {
			delete(s.entries, key)
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
