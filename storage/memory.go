package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Object is a blob held by Memory
type Object struct {
	ContentType string
	Data        []byte
}

// Memory is an in-process Blob used for development and tests
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
	baseURL string

	failDeletes int
}

func NewMemory(baseURL string) *Memory {
	return &Memory{
		objects: make(map[string]Object),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (m *Memory) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(io.LimitReader(body, size+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("object %s: read %d bytes, expected %d", key, len(data), size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{ContentType: contentType, Data: data}
	return m.baseURL + "/" + key, nil
}

func (m *Memory) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeletes > 0 {
		m.failDeletes--
		return 0, fmt.Errorf("delete %s: blob store unavailable", prefix)
	}
	deleted := 0
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
			deleted++
		}
	}
	return deleted, nil
}

// FailNextDeletes makes the next n DeletePrefix calls return an error
func (m *Memory) FailNextDeletes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDeletes = n
}

// Get returns the object stored under key
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Keys lists the stored keys in order
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
