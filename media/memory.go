package media

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Memory keeps objects in process. It backs MEDIA_DRIVER=memory for local runs
// and tests.
type Memory struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	deletes []string

	// FailPut and FailDelete force errors from the next calls when set.
	FailPut    error
	FailDelete error
}

func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "http://localhost/media"
	}
	return &Memory{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, folder string, blob Blob) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil {
		return "", m.FailPut
	}

	data, err := io.ReadAll(blob.Reader)
	if err != nil {
		return "", err
	}
	key := objectKey(folder, blob.Filename)
	m.objects[key] = data
	return m.baseURL + "/" + key, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	if m.FailDelete != nil {
		return m.FailDelete
	}
	if _, ok := m.objects[id]; !ok {
		return errors.New("object not found")
	}
	delete(m.objects, id)
	return nil
}

func (m *Memory) ObjectID(url string) (string, bool) {
	return keyFromURL(m.baseURL, url)
}

// Keys lists the stored object keys.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

// Deletes lists every identifier Delete was called with, in order.
func (m *Memory) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}
