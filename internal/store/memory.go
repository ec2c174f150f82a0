package store

import (
	"context"
	"fmt"
	"sync"
)

type memObject struct {
	body        []byte
	contentType string
	tags        map[string]string
}

// Memory is an in-memory Store used by tests and local runs. Safe for
// concurrent use.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	out := make([]byte, len(obj.body))
	copy(out, obj.body)
	return out, nil
}

func (m *Memory) Put(ctx context.Context, key string, body []byte, contentType string, tags map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]byte, len(body))
	copy(stored, body)
	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{body: stored, contentType: contentType, tags: copied}
	return nil
}

func (m *Memory) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[src]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, src)
	}
	body := make([]byte, len(obj.body))
	copy(body, obj.body)
	tags := make(map[string]string, len(obj.tags))
	for k, v := range obj.tags {
		tags[k] = v
	}
	m.objects[dst] = memObject{body: body, contentType: obj.contentType, tags: tags}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) Tags(ctx context.Context, key string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	out := make(map[string]string, len(obj.tags))
	for k, v := range obj.tags {
		out[k] = v
	}
	return out, nil
}
