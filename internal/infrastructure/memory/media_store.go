package memory

import (
	"context"
	"net/http"
	"path"
	"sync"

	"github.com/google/uuid"
	"github.com/mathieu6700417/conciergeriecordo/internal/domain/media"
)

type MediaStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

func NewMediaStore(baseURL string) *MediaStore {
	return &MediaStore{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (s *MediaStore) Upload(ctx context.Context, data []byte, owner media.Owner) (media.Object, error) {
	if err := ctx.Err(); err != nil {
		return media.Object{}, err
	}
	if len(data) == 0 {
		return media.Object{}, media.ErrEmpty
	}
	scope := owner.TempID
	if owner.OrderID != "" {
		scope = path.Join(owner.OrderID, owner.PairID)
	}
	p := path.Join("photos", scope, uuid.NewString()+".jpg")

	s.mu.Lock()
	s.objects[p] = append([]byte(nil), data...)
	s.mu.Unlock()

	return media.Object{
		URL:         s.baseURL + "/" + p,
		Path:        p,
		ContentType: http.DetectContentType(data),
		Size:        len(data),
	}, nil
}

func (s *MediaStore) Delete(ctx context.Context, p string) (bool, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[p]; !ok {
		return false, nil
	}
	delete(s.objects, p)
	return true, nil
}

// Get returns a copy of the bytes stored at p.
func (s *MediaStore) Get(p string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[p]
	return append([]byte(nil), b...), ok
}
