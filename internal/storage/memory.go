package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps objects in memory. It backs local development without
// MinIO and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]StoredObject
}

type StoredObject struct {
	Data        []byte
	ContentType string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]StoredObject)}
}

func (s *MemoryStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(reader, size+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", objectName, err)
	}
	if n != size {
		return "", fmt.Errorf("size mismatch for %s: declared %d, read %d", objectName, size, n)
	}

	s.mu.Lock()
	s.objects[objectName] = StoredObject{Data: buf.Bytes(), ContentType: contentType}
	s.mu.Unlock()
	return s.URL(objectName), nil
}

func (s *MemoryStore) Delete(ctx context.Context, objectName string) error {
	s.mu.Lock()
	delete(s.objects, objectName)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) URL(objectName string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, objectName)
}

// Get returns a stored object.
func (s *MemoryStore) Get(objectName string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[objectName]
	return obj, ok
}
