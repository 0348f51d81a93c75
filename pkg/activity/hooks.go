package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event describes an element transition or a warning raised by a registry.
// Element is empty for events about the registry as a whole; Active and
// AlwaysActive are only meaningful when it is set.
type Event struct {
	Verb         string
	RegistryID   string
	Element      string
	Active       bool
	AlwaysActive bool
	WarningCode  string
	Message      string
	// ActorID and TenantID identify who drove the change, filled from the
	// emitter Config when blank.
	ActorID    string
	TenantID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ObjectType is ObjectTypeElement for element events and ObjectTypeRegistry
// otherwise.
func (e Event) ObjectType() string {
	if e.Element == "" {
		return ObjectTypeRegistry
	}
	return ObjectTypeElement
}

// ObjectID is the element name, or the registry id for registry events.
func (e Event) ObjectID() string {
	if e.Element == "" {
		return e.RegistryID
	}
	return e.Element
}

// Valid reports whether the event carries enough to be delivered.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectID() != ""
}

// Data flattens the event into a payload for sinks. Custom metadata is copied
// first so the event's own fields win on key collisions.
func (e Event) Data() map[string]any {
	data := make(map[string]any, len(e.Metadata)+5)
	for key, value := range e.Metadata {
		data[key] = value
	}
	if e.RegistryID != "" {
		data["registry_id"] = e.RegistryID
	}
	if e.Element != "" {
		data["active"] = e.Active
		data["always_active"] = e.AlwaysActive
	}
	if e.WarningCode != "" {
		data["warning_code"] = e.WarningCode
	}
	if e.Message != "" {
		data["message"] = e.Message
	}
	return data
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Notify forwards the event to all hooks, returning a joined error if any
// fail. Invalid events are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	normalized := NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, copies metadata and stamps OccurredAt
// when it is missing.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.RegistryID = strings.TrimSpace(event.RegistryID)
	normalized.Element = strings.TrimSpace(event.Element)
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.TenantID = strings.TrimSpace(event.TenantID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	if len(event.Metadata) > 0 {
		normalized.Metadata = make(map[string]any, len(event.Metadata))
		for key, value := range event.Metadata {
			normalized.Metadata[key] = value
		}
	} else {
		normalized.Metadata = nil
	}
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}
