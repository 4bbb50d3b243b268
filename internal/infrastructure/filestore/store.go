package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	dommedia "github.com/mathieu6700417/conciergeriecordo/internal/domain/media"
)

// Store keeps media objects on local disk under root. Objects are served by
// the HTTP layer under baseURL.
type Store struct {
	root    string
	baseURL string
}

func New(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create media dir: %w", dommedia.ErrStore, err)
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory objects are written under.
func (s *Store) Root() string { return s.root }

func (s *Store) Upload(ctx context.Context, data []byte, owner dommedia.Owner) (dommedia.Object, error) {
	if err := ctx.Err(); err != nil {
		return dommedia.Object{}, err
	}
	if len(data) == 0 {
		return dommedia.Object{}, dommedia.ErrEmpty
	}

	scope := owner.TempID
	if owner.OrderID != "" {
		scope = path.Join(owner.OrderID, owner.PairID)
	}
	rel := path.Join("photos", scope, uuid.NewString()+".jpg")
	full, err := s.resolve(rel)
	if err != nil {
		return dommedia.Object{}, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return dommedia.Object{}, fmt.Errorf("%w: %w", dommedia.ErrStore, err)
	}
	// write then rename so readers never see a partial file
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return dommedia.Object{}, fmt.Errorf("%w: %w", dommedia.ErrStore, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return dommedia.Object{}, fmt.Errorf("%w: %w", dommedia.ErrStore, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return dommedia.Object{}, fmt.Errorf("%w: %w", dommedia.ErrStore, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return dommedia.Object{}, fmt.Errorf("%w: %w", dommedia.ErrStore, err)
	}

	return dommedia.Object{
		URL:         s.baseURL + "/" + rel,
		Path:        rel,
		ContentType: http.DetectContentType(data),
		Size:        len(data),
	}, nil
}

func (s *Store) Delete(ctx context.Context, rel string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := s.resolve(rel)
	if err != nil {
		return false, err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", dommedia.ErrStore, err)
	}
	return true, nil
}

// resolve maps an object path to a file under root, refusing anything that escapes it.
func (s *Store) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fmt.Errorf("%w: empty path", dommedia.ErrStore)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
