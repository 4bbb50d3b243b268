package media

import (
	"context"

	"github.com/mathieu6700417/conciergeriecordo/internal/domain/errkind"
)

var (
	ErrInvalidImage = errkind.New(errkind.Validation, "media: invalid image")
	ErrEmpty        = errkind.New(errkind.Validation, "media: no photo provided")
	ErrStore        = errkind.New(errkind.External, "media: store failure")
)

// Owner scopes an upload. OrderID and PairID are empty for photos taken before the order exists.
type Owner struct {
	TempID  string
	OrderID string
	PairID  string
}

// Object references stored bytes.
type Object struct {
	URL         string
	Path        string
	ContentType string
	Size        int
}

type Store interface {
	Upload(ctx context.Context, data []byte, owner Owner) (Object, error)
	// Delete reports whether an object existed at path.
	Delete(ctx context.Context, path string) (bool, error)
}
