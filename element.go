package switcher

import (
	"fmt"
	"strings"
)

// ElementSpec is the plain description of an element. A nil Active means
// the caller did not supply a value.
type ElementSpec struct {
	Name         string `json:"name" yaml:"name"`
	Active       *bool  `json:"active,omitempty" yaml:"active,omitempty"`
	AlwaysActive bool   `json:"always_active,omitempty" yaml:"always_active,omitempty"`
}

// Flag returns a pointer to v, for use in ElementSpec.Active.
func Flag(v bool) *bool {
	return &v
}

func (s ElementSpec) isEmpty() bool {
	return s.Name == "" && s.Active == nil && !s.AlwaysActive
}

// ElementOption configures an Element at construction.
type ElementOption func(*Element)

// WithElementWarningLogger routes warnings raised by the element's own
// methods to logger.
func WithElementWarningLogger(logger WarningLogger) ElementOption {
	return func(e *Element) {
		e.warnings = logger
	}
}

// Element is a named boolean flag with an "always active" pin.
//
// An Element is not safe for concurrent use. Once an element is owned by a
// Registry, mutate it through the Registry so its invariants hold.
type Element struct {
	name         string
	active       bool
	alwaysActive bool
	warnings     WarningLogger
	owner        *Registry
}

// NewElement builds an element from spec. The zero spec, a blank name, or
// an explicit Active=false combined with AlwaysActive fail with ErrValidation.
func NewElement(spec ElementSpec, opts ...ElementOption) (*Element, error) {
	if spec.isEmpty() {
		return nil, validationError("", "cannot create an element from an empty spec")
	}
	if strings.TrimSpace(spec.Name) == "" {
		return nil, validationError("", "an element must have a name")
	}
	if spec.AlwaysActive && spec.Active != nil && !*spec.Active {
		return nil, validationError(spec.Name, "active cannot be false when always_active is true")
	}

	e := &Element{
		name:         spec.Name,
		alwaysActive: spec.AlwaysActive,
	}
	if spec.Active != nil {
		e.active = *spec.Active
	}
	if e.alwaysActive {
		e.active = true
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Name returns the immutable element name.
func (e *Element) Name() string {
	return e.name
}

// IsActive reports whether the element is active.
func (e *Element) IsActive() bool {
	return e.active
}

// IsAlwaysActive reports whether the element is pinned.
func (e *Element) IsAlwaysActive() bool {
	return e.alwaysActive
}

// Activate marks the element active.
func (e *Element) Activate() {
	e.activate()
}

// Deactivate marks the element inactive. Pinned elements stay active and a
// warning is logged instead.
func (e *Element) Deactivate() {
	if w, ok := e.deactivate(); ok {
		e.logWarning(w)
	}
}

// Toggle flips the element. Pinned elements stay active and a warning is
// logged instead.
func (e *Element) Toggle() {
	if w, ok := e.toggle(); ok {
		e.logWarning(w)
	}
}

// SetAlwaysActive pins (and activates) or unpins (and deactivates) the
// element.
func (e *Element) SetAlwaysActive(value bool) {
	e.setAlwaysActive(value)
}

func (e *Element) String() string {
	return fmt.Sprintf("%s(active=%t, always_active=%t)", e.name, e.active, e.alwaysActive)
}

func (e *Element) activate() {
	e.active = true
}

func (e *Element) deactivate() (Warning, bool) {
	if e.alwaysActive {
		return Warning{
			Code:    WarningPinnedDeactivate,
			Element: e.name,
			Message: fmt.Sprintf("cannot deactivate always active element %s", e.name),
		}, true
	}
	e.active = false
	return Warning{}, false
}

func (e *Element) toggle() (Warning, bool) {
	if e.alwaysActive {
		return Warning{
			Code:    WarningPinnedToggle,
			Element: e.name,
			Message: fmt.Sprintf("cannot toggle always active element %s", e.name),
		}, true
	}
	e.active = !e.active
	return Warning{}, false
}

func (e *Element) setAlwaysActive(value bool) {
	e.alwaysActive = value
	if value {
		e.active = true
		return
	}
	e.active = false
}

func (e *Element) logWarning(w Warning) {
	if e.warnings == nil {
		defaultWarningLogger().LogWarning(w)
		return
	}
	e.warnings.LogWarning(w)
}
