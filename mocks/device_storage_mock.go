package mocks

import (
	"context"
	"sync"
)

// DeviceStorageMock is a map-backed DeviceStorage. Err fails every call.
type DeviceStorageMock struct {
	mu    sync.Mutex
	items map[string]string
	Err   error
}

func NewDeviceStorageMock() *DeviceStorageMock {
	return &DeviceStorageMock{items: map[string]string{}}
}

func (s *DeviceStorageMock) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", false, s.Err
	}
	value, ok := s.items[key]
	return value, ok, nil
}

func (s *DeviceStorageMock) SetItem(ctx context.Context, key, value string) error {
	return s.SetItems(ctx, map[string]string{key: value})
}

func (s *DeviceStorageMock) RemoveItem(ctx context.Context, key string) error {
	return s.RemoveItems(ctx, key)
}

func (s *DeviceStorageMock) SetItems(ctx context.Context, items map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for key, value := range items {
		s.items[key] = value
	}
	return nil
}

func (s *DeviceStorageMock) RemoveItems(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, key := range keys {
		delete(s.items, key)
	}
	return nil
}

func (s *DeviceStorageMock) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}
