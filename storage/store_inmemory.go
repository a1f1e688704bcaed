package storage

import (
	"errors"
	"sync"
)

// InMemoryStore is a thread-safe in-memory implementation of the Store interface
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemoryStore creates a new in-memory key-value store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		values: make(map[string]string),
	}
}

// Get retrieves the value stored under key
func (s *InMemoryStore) Get(key string) (string, error) {
	if key == "" {
		return "", errors.New("key cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.values[key]
	if !exists {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores or replaces the value under key
func (s *InMemoryStore) Set(key, value string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Remove deletes the value under key; removing an absent key is not an error
func (s *InMemoryStore) Remove(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Clear deletes every stored value
func (s *InMemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string)
	return nil
}
