package activity

// Object types reported to sinks.
const (
	ObjectTypeElement  = "element"
	ObjectTypeRegistry = "registry"
)

// Element event verbs.
const (
	VerbElementAdded       = "element.added"
	VerbElementActivated   = "element.activated"
	VerbElementDeactivated = "element.deactivated"
	VerbElementPinned      = "element.pinned"
	VerbElementUnpinned    = "element.unpinned"
	VerbElementWarning     = "element.warning"
)

// ElementEvent describes a transition of one element, carrying its state
// after the change.
func ElementEvent(verb, registryID, element string, active, alwaysActive bool) Event {
	return Event{
		Verb:         verb,
		RegistryID:   registryID,
		Element:      element,
		Active:       active,
		AlwaysActive: alwaysActive,
	}
}

// WarningEvent describes a warning. An empty element makes it a registry
// level warning.
func WarningEvent(registryID, element, code, message string) Event {
	return Event{
		Verb:        VerbElementWarning,
		RegistryID:  registryID,
		Element:     element,
		WarningCode: code,
		Message:     message,
	}
}
