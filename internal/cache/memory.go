// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

// Memory is an in-process Gateway used in tests and when no Valkey is
// configured. Expiry is checked lazily on Get.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
}

type memoryItem struct {
	value   []byte
	expires time.Time
}

// NewMemory returns an empty in-memory cache gateway.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expires) {
		delete(m.items, key)
		return nil, false
	}
	return item.value, true
}

func (m *Memory) SetEx(_ context.Context, key string, ttl time.Duration, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{value: value, expires: time.Now().Add(ttl)}
}

func (m *Memory) Invalidate(_ context.Context, keyOrPattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.items {
		// path.Match supports the same '*' glob shape Valkey SCAN uses;
		// exact keys match themselves.
		if ok, _ := path.Match(keyOrPattern, key); ok {
			delete(m.items, key)
		}
	}
}

// Len reports how many live entries the cache holds. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
