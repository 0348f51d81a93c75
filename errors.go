package switcher

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Element and Registry operations
// matches exactly one of these through errors.Is.
var (
	// ErrValidation indicates malformed construction input.
	ErrValidation = errors.New("switcher: validation failed")
	// ErrElementNotFound indicates an operation referenced an unknown name.
	ErrElementNotFound = errors.New("switcher: element not found")
	// ErrElementAlreadyExists indicates AddElement received a registered name.
	ErrElementAlreadyExists = errors.New("switcher: element already exists")
	// ErrMultipleActiveConflict indicates an operation would leave more than
	// one element active while multiple mode is disabled.
	ErrMultipleActiveConflict = errors.New("switcher: multiple active state conflict")
	// ErrConfig indicates contradictory registry options.
	ErrConfig = errors.New("switcher: invalid configuration")
	// ErrRuleRejected indicates the activation rule refused an activation.
	ErrRuleRejected = errors.New("switcher: activation rule rejected")
)

// ElementError carries the error kind, the element involved and an optional
// underlying cause.
type ElementError struct {
	Kind    error
	Element string
	Reason  string
	Err     error
}

func (e *ElementError) Error() string {
	if e == nil {
		return "<nil>"
	}
	kind := "switcher: error"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	msg := kind
	if e.Element != "" {
		msg = fmt.Sprintf("%s: element %q", msg, e.Element)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports whether target is the kind of this error.
func (e *ElementError) Is(target error) bool {
	if e == nil || e.Kind == nil {
		return false
	}
	return target == e.Kind
}

func (e *ElementError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind error, element, reason string) *ElementError {
	return &ElementError{Kind: kind, Element: element, Reason: reason}
}

func wrapError(kind error, element string, err error) *ElementError {
	return &ElementError{Kind: kind, Element: element, Err: err}
}

func validationError(element, format string, args ...any) *ElementError {
	return newError(ErrValidation, element, fmt.Sprintf(format, args...))
}

func notFoundError(name string) *ElementError {
	return newError(ErrElementNotFound, name, "not defined in registry")
}

func conflictError(name, reason string) *ElementError {
	return newError(ErrMultipleActiveConflict, name, reason)
}
