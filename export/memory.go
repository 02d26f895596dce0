package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps delivered artifacts in memory. Useful for tests and for
// serving previews from a single process.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]storedArtifact
	now       func() time.Time
}

type storedArtifact struct {
	payload []byte
	meta    ArtifactMeta
}

// NewMemoryStore creates an in-memory artifact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{artifacts: make(map[string]storedArtifact), now: time.Now}
}

// Put stores an artifact. Size is taken from the bytes actually read.
func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error) {
	if err := ctx.Err(); err != nil {
		return ArtifactRef{}, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ArtifactRef{}, NewError(KindValidation, "artifact key is required", nil)
	}
	if r == nil {
		return ArtifactRef{}, NewError(KindValidation, "artifact reader is required", nil)
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return ArtifactRef{}, NewError(KindDelivery, "read artifact failed", err)
	}
	meta.Size = int64(len(payload))
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}

	s.mu.Lock()
	s.artifacts[key] = storedArtifact{payload: payload, meta: meta}
	s.mu.Unlock()

	return ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads an artifact.
func (s *MemoryStore) Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, ArtifactMeta{}, err
	}
	s.mu.RLock()
	artifact, ok := s.artifacts[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ArtifactMeta{}, NewError(KindNotFound, fmt.Sprintf("artifact %q not found", key), nil)
	}
	return io.NopCloser(bytes.NewReader(artifact.payload)), artifact.meta, nil
}

// Delete removes an artifact. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	delete(s.artifacts, key)
	s.mu.Unlock()
	return nil
}

// Keys lists stored keys with the given prefix in lexical order.
func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.artifacts))
	for key := range s.artifacts {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

var (
	_ ArtifactStore  = (*MemoryStore)(nil)
	_ ArtifactLister = (*MemoryStore)(nil)
)
