package switcher

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-switcher/pkg/activity"
	"github.com/google/uuid"
)

// Registry owns a set of elements and enforces the single active element
// policy across them.
//
// Every public method holds the registry lock for its whole duration, so a
// Registry is safe for concurrent use. Warnings and activity events raised
// by an operation are delivered after the lock is released.
type Registry struct {
	mu            sync.Mutex
	id            string
	elements      map[string]*Element
	allowMultiple bool
	anyActive     bool

	warnings   WarningLogger
	evaluator  Evaluator
	evalLogger EvaluatorLogger
	rule       CompiledRule
	ruleExpr   string
	emitter    *activity.Emitter
}

// NewRegistry builds a registry from initial, keyed by element name.
// Entries are inserted in key order and each insertion is checked against
// the single active element policy.
func NewRegistry(initial map[string]Entry, opts ...Option) (*Registry, error) {
	cfg := applyOptions(opts)
	if len(cfg.errs) > 0 {
		return nil, wrapError(ErrConfig, "", errors.Join(cfg.errs...))
	}
	if cfg.activateAll && cfg.deactivateAll {
		return nil, newError(ErrConfig, "", "activate all and deactivate all cannot both be requested")
	}

	r := &Registry{
		id:            uuid.NewString(),
		elements:      make(map[string]*Element, len(initial)),
		allowMultiple: cfg.allowMultiple,
		warnings:      cfg.warnings,
		evaluator:     cfg.resolveEvaluator(),
		evalLogger:    cfg.evalLogger,
		emitter:       cfg.emitter(),
	}

	if cfg.activationRule != "" {
		rule, err := r.evaluator.Compile(cfg.activationRule, RequireBool())
		if err != nil {
			return nil, wrapError(ErrConfig, "", fmt.Errorf("compile activation rule: %w", err))
		}
		r.rule = rule
		r.ruleExpr = cfg.activationRule
	}

	b := &batch{}
	keys := make([]string, 0, len(initial))
	for key := range initial {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := r.insertLocked(key, initial[key], b); err != nil {
			r.release()
			return nil, err
		}
	}

	switch {
	case cfg.activateAll:
		r.activateAllLocked(b)
	case cfg.deactivateAll:
		r.deactivateAllLocked(b)
	}

	r.flush(b)
	return r, nil
}

// ID returns the unique identifier stamped on this registry's events.
func (r *Registry) ID() string {
	return r.id
}

// GetElement returns the element registered under name. Pre-built elements
// are returned as the same pointer that was handed over.
func (r *Registry) GetElement(name string) (*Element, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(name)
}

// IsActive reports whether the named element is active.
func (r *Registry) IsActive(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, err := r.lookup(name)
	if err != nil {
		return false, err
	}
	return el.active, nil
}

// AddElement registers a new element.
func (r *Registry) AddElement(entry Entry) error {
	return r.run(func(b *batch) error {
		return r.insertLocked("", entry, b)
	})
}

// ActivateAll activates every element. In single mode it is a no-op that
// logs a warning.
func (r *Registry) ActivateAll() {
	_ = r.run(func(b *batch) error {
		r.activateAllLocked(b)
		return nil
	})
}

// DeactivateAll deactivates every element. Pinned elements stay active and
// raise a warning each.
func (r *Registry) DeactivateAll() {
	_ = r.run(func(b *batch) error {
		r.deactivateAllLocked(b)
		return nil
	})
}

// Activate activates the named element.
func (r *Registry) Activate(name string) error {
	return r.run(func(b *batch) error {
		return r.activateLocked(name, b)
	})
}

// Deactivate deactivates the named element unless it is pinned.
func (r *Registry) Deactivate(name string) error {
	return r.run(func(b *batch) error {
		el, err := r.lookup(name)
		if err != nil {
			return err
		}
		before := stateOf(el)
		if w, ok := el.deactivate(); ok {
			b.warn(r.id, el, w)
		}
		b.transition(r.id, el, before)
		r.refreshAnyActive()
		return nil
	})
}

// Toggle flips every unpinned element in the registry, the named one
// included. When the named element is pinned the call is a no-op that logs a
// warning. The resulting state is validated as a whole before any element
// changes.
func (r *Registry) Toggle(name string) error {
	return r.run(func(b *batch) error {
		return r.toggleLocked(name, b)
	})
}

// SetAlwaysActive pins (and activates) or unpins (and deactivates) the named
// element.
func (r *Registry) SetAlwaysActive(name string, value bool) error {
	return r.run(func(b *batch) error {
		return r.setAlwaysActiveLocked(name, value, b)
	})
}

// AllowsMultiple reports whether more than one element may be active.
func (r *Registry) AllowsMultiple() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allowMultiple
}

// SetAllowMultiple switches between single and multiple mode. Leaving
// multiple mode while more than one element is active fails with
// ErrMultipleActiveConflict.
func (r *Registry) SetAllowMultiple(allow bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !allow {
		if active := r.activeNamesLocked(); len(active) > 1 {
			return conflictError(active[1], fmt.Sprintf("cannot disable multiple mode while %d elements are active", len(active)))
		}
	}
	r.allowMultiple = allow
	return nil
}

// HasAnyActive reports whether at least one element is active.
func (r *Registry) HasAnyActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.anyActive
}

// Len returns the number of registered elements.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.elements)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedNamesLocked()
}

// ActiveNames returns the names of active elements in sorted order.
func (r *Registry) ActiveNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeNamesLocked()
}

func (r *Registry) run(fn func(*batch) error) error {
	b := &batch{}
	r.mu.Lock()
	err := fn(b)
	r.mu.Unlock()
	r.flush(b)
	return err
}

func (r *Registry) lookup(name string) (*Element, error) {
	el, ok := r.elements[name]
	if !ok {
		return nil, notFoundError(name)
	}
	return el, nil
}

// conflicts reports whether name becoming active would break single mode.
func (r *Registry) conflicts(name string) bool {
	if r.allowMultiple {
		return false
	}
	for other, el := range r.elements {
		if other != name && el.active {
			return true
		}
	}
	return false
}

func (r *Registry) refreshAnyActive() {
	r.anyActive = false
	for _, el := range r.elements {
		if el.active {
			r.anyActive = true
			return
		}
	}
}

func (r *Registry) insertLocked(key string, entry Entry, b *batch) error {
	el, err := entry.resolve(WithElementWarningLogger(r.warnings))
	if err != nil {
		return err
	}
	name := el.name
	if key != "" && key != name {
		return validationError(name, "registered under key %q but named %q", key, name)
	}
	if el.owner != nil && el.owner != r {
		return validationError(name, "element is owned by another registry")
	}
	if _, exists := r.elements[name]; exists {
		return newError(ErrElementAlreadyExists, name, "already registered")
	}
	if el.active && r.conflicts(name) {
		return conflictError(name, "another element is already active")
	}
	if el.active {
		if err := r.checkRuleLocked(name); err != nil {
			return err
		}
	}

	if el.warnings == nil {
		el.warnings = r.warnings
	}
	el.owner = r
	r.elements[name] = el
	r.anyActive = r.anyActive || el.active
	b.added(r.id, el)
	return nil
}

// release drops ownership of every element after a failed construction so
// pre-built elements can be handed to another registry.
func (r *Registry) release() {
	for _, el := range r.elements {
		if el.owner == r {
			el.owner = nil
		}
	}
}

// activateAllLocked activates every element, or nothing when multiple mode
// is off or the activation rule rejects any inactive element.
func (r *Registry) activateAllLocked(b *batch) {
	if !r.allowMultiple {
		b.warn(r.id, nil, Warning{
			Code:    WarningActivateAllSingleMode,
			Message: "cannot activate all elements while multiple mode is disabled",
		})
		return
	}
	names := r.sortedNamesLocked()
	if r.rule != nil {
		next := make(map[string]bool, len(names))
		for _, name := range names {
			next[name] = true
		}
		for _, name := range names {
			el := r.elements[name]
			if el.active {
				continue
			}
			if err := r.checkRuleAgainstLocked(name, r.projectedSnapshotLocked(next, name)); err != nil {
				b.warn(r.id, el, Warning{
					Code:    WarningActivateAllRuleRejected,
					Element: name,
					Message: fmt.Sprintf("cannot activate all elements: activation rule rejected %s", name),
					Err:     err,
				})
				return
			}
		}
	}
	for _, name := range names {
		el := r.elements[name]
		before := stateOf(el)
		el.activate()
		b.transition(r.id, el, before)
	}
	r.refreshAnyActive()
}

func (r *Registry) deactivateAllLocked(b *batch) {
	for _, name := range r.sortedNamesLocked() {
		el := r.elements[name]
		before := stateOf(el)
		if w, ok := el.deactivate(); ok {
			b.warn(r.id, el, w)
		}
		b.transition(r.id, el, before)
	}
	r.refreshAnyActive()
}

func (r *Registry) activateLocked(name string, b *batch) error {
	el, err := r.lookup(name)
	if err != nil {
		return err
	}
	if el.active {
		return nil
	}
	if r.conflicts(name) {
		return conflictError(name, "another element is already active")
	}
	if err := r.checkRuleLocked(name); err != nil {
		return err
	}
	before := stateOf(el)
	el.activate()
	b.transition(r.id, el, before)
	r.anyActive = true
	return nil
}

func (r *Registry) toggleLocked(name string, b *batch) error {
	target, err := r.lookup(name)
	if err != nil {
		return err
	}
	if target.alwaysActive {
		if w, ok := target.toggle(); ok {
			b.warn(r.id, target, w)
		}
		return nil
	}

	names := r.sortedNamesLocked()
	next := make(map[string]bool, len(names))
	var activating []string
	activeAfter := 0
	for _, n := range names {
		el := r.elements[n]
		next[n] = el.alwaysActive || !el.active
		if next[n] {
			activeAfter++
		}
		if !el.alwaysActive && !el.active {
			activating = append(activating, n)
		}
	}
	if !r.allowMultiple && activeAfter > 1 {
		culprit := name
		if len(activating) > 0 {
			culprit = activating[0]
		}
		return conflictError(culprit, fmt.Sprintf("toggling %q would leave %d elements active", name, activeAfter))
	}
	if r.rule != nil {
		for _, n := range activating {
			if err := r.checkRuleAgainstLocked(n, r.projectedSnapshotLocked(next, n)); err != nil {
				return err
			}
		}
	}

	for _, n := range names {
		el := r.elements[n]
		if el.alwaysActive {
			continue
		}
		before := stateOf(el)
		el.toggle()
		b.transition(r.id, el, before)
	}
	r.refreshAnyActive()
	return nil
}

func (r *Registry) setAlwaysActiveLocked(name string, value bool, b *batch) error {
	el, err := r.lookup(name)
	if err != nil {
		return err
	}
	if value && !el.active {
		if r.conflicts(name) {
			return conflictError(name, "cannot pin while another element is active")
		}
		if err := r.checkRuleLocked(name); err != nil {
			return err
		}
	}
	before := stateOf(el)
	el.setAlwaysActive(value)
	b.transition(r.id, el, before)
	r.refreshAnyActive()
	return nil
}

func (r *Registry) sortedNamesLocked() []string {
	names := make([]string, 0, len(r.elements))
	for name := range r.elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) activeNamesLocked() []string {
	names := make([]string, 0, len(r.elements))
	for name, el := range r.elements {
		if el.active {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
