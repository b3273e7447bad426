package memory

import (
	"context"
	"io"
	"path"
	"sync"
)

// MediaStore keeps uploaded objects in memory and hands out fake URLs.
type MediaStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMediaStore() *MediaStore {
	return &MediaStore{objects: map[string][]byte{}}
}

func (s *MediaStore) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectPath] = b
	return "memory://" + path.Clean(objectPath), nil
}

// Object returns the bytes stored at objectPath.
func (s *MediaStore) Object(objectPath string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[objectPath]
	return b, ok
}
