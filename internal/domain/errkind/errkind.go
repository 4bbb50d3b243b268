// Package errkind classifies errors into the small set of kinds the transport edge
// knows how to report: validation, not found, invalid state, external, unauthenticated.
package errkind

import "errors"

var (
	Validation      = errors.New("validation")
	NotFound        = errors.New("not found")
	InvalidState    = errors.New("invalid state")
	External        = errors.New("external service")
	Unauthenticated = errors.New("unauthenticated")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

// New returns a sentinel that matches itself and kind under errors.Is.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Of reports the kind of err, or nil when err carries none.
func Of(err error) error {
	for _, k := range []error{Validation, NotFound, InvalidState, Unauthenticated, External} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
