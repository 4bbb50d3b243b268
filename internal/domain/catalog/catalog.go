package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/mathieu6700417/conciergeriecordo/internal/domain/errkind"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidShoeType = errkind.New(errkind.Validation, "catalog: invalid shoe type")
	ErrInvalidPrice    = errkind.New(errkind.Validation, "catalog: price must be zero or greater")
	ErrNameRequired    = errkind.New(errkind.Validation, "catalog: name is required")
)

type ShoeType string

const (
	ShoeTypeMale   ShoeType = "MALE"
	ShoeTypeFemale ShoeType = "FEMALE"
)

// ParseShoeType matches s case-insensitively against the known shoe types.
// Anything else is rejected rather than defaulted.
func ParseShoeType(s string) (ShoeType, error) {
	switch ShoeType(strings.ToUpper(strings.TrimSpace(s))) {
	case ShoeTypeMale:
		return ShoeTypeMale, nil
	case ShoeTypeFemale:
		return ShoeTypeFemale, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidShoeType, s)
	}
}

// Label is the human form used on checkout line items ("Male", "Female").
func (t ShoeType) Label() string {
	if t == "" {
		return ""
	}
	s := strings.ToLower(string(t))
	return strings.ToUpper(s[:1]) + s[1:]
}

// Service is a repair offered for one shoe type. Orders copy its price at selection time,
// so editing a Service never changes an existing order.
type Service struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	ShoeType      ShoeType
	Active        bool
	Description   string
	ImageFilename string
	CreatedAt     time.Time
}

func NewService(id, name string, price decimal.Decimal, shoeType ShoeType, description string) (*Service, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if _, err := ParseShoeType(string(shoeType)); err != nil {
		return nil, err
	}
	return &Service{
		ID:          id,
		Name:        name,
		Price:       price.Round(2),
		ShoeType:    shoeType,
		Active:      true,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Selectable reports whether the service can be attached to a pair of the given shoe type.
func (s *Service) Selectable(t ShoeType) bool {
	return s != nil && s.Active && s.ShoeType == t
}
