package switcher

import (
	"context"

	"github.com/goliatone/go-switcher/pkg/activity"
)

type elementState struct {
	active       bool
	alwaysActive bool
}

func stateOf(el *Element) elementState {
	return elementState{active: el.active, alwaysActive: el.alwaysActive}
}

// batch collects what an operation produced while the registry lock is held.
// Warnings and their events are queued in the order they were raised.
type batch struct {
	warnings []Warning
	events   []activity.Event
}

// warn queues w and its activity event. A nil el makes the event registry
// level, so it carries no element state.
func (b *batch) warn(registryID string, el *Element, w Warning) {
	b.warnings = append(b.warnings, w)
	if el == nil {
		b.events = append(b.events, activity.WarningEvent(registryID, "", string(w.Code), w.Message))
		return
	}
	event := activity.WarningEvent(registryID, el.name, string(w.Code), w.Message)
	event.Active = el.active
	event.AlwaysActive = el.alwaysActive
	b.events = append(b.events, event)
}

func (b *batch) added(registryID string, el *Element) {
	b.events = append(b.events, elementEvent(activity.VerbElementAdded, registryID, el))
}

// transition records one event per observable change between before and the
// element's current state. Pin changes are reported before activity changes.
func (b *batch) transition(registryID string, el *Element, before elementState) {
	after := stateOf(el)
	if before.alwaysActive != after.alwaysActive {
		verb := activity.VerbElementUnpinned
		if after.alwaysActive {
			verb = activity.VerbElementPinned
		}
		b.events = append(b.events, elementEvent(verb, registryID, el))
	}
	if before.active != after.active {
		verb := activity.VerbElementDeactivated
		if after.active {
			verb = activity.VerbElementActivated
		}
		b.events = append(b.events, elementEvent(verb, registryID, el))
	}
}

func elementEvent(verb, registryID string, el *Element) activity.Event {
	return activity.ElementEvent(verb, registryID, el.name, el.active, el.alwaysActive)
}

// flush delivers warnings and events. It must run without the registry lock
// held so hooks and loggers may call back into the registry.
func (r *Registry) flush(b *batch) {
	if b == nil {
		return
	}
	for _, w := range b.warnings {
		r.warnings.LogWarning(w)
	}
	for _, event := range b.events {
		r.emit(event)
	}
}

func (r *Registry) emit(event activity.Event) {
	if !r.emitter.Enabled() {
		return
	}
	if err := r.emitter.Emit(context.Background(), event); err != nil {
		r.warnings.LogWarning(Warning{
			Code:    WarningActivityHook,
			Element: event.Element,
			Message: "activity hook failed for " + event.Verb,
			Err:     err,
		})
	}
}
