package switcher

// EntryKind discriminates the two shapes an Entry can take.
type EntryKind uint8

const (
	// EntryKindInvalid is the zero Entry.
	EntryKindInvalid EntryKind = iota
	// EntryKindSpec entries are built into a new Element by the registry.
	EntryKindSpec
	// EntryKindElement entries hand an existing Element over to the registry.
	EntryKindElement
)

func (k EntryKind) String() string {
	switch k {
	case EntryKindSpec:
		return "spec"
	case EntryKindElement:
		return "element"
	default:
		return "invalid"
	}
}

// Entry is either a pre-built Element or an ElementSpec.
type Entry struct {
	kind    EntryKind
	spec    ElementSpec
	element *Element
}

// FromSpec wraps spec as an Entry.
func FromSpec(spec ElementSpec) Entry {
	return Entry{kind: EntryKindSpec, spec: spec}
}

// FromElement wraps an existing element as an Entry. Ownership of el passes
// to the registry that accepts the entry.
func FromElement(el *Element) Entry {
	return Entry{kind: EntryKindElement, element: el}
}

// Kind returns the entry discriminant.
func (e Entry) Kind() EntryKind {
	return e.kind
}

// resolve returns the element the entry describes, building one when the
// entry holds a spec.
func (e Entry) resolve(opts ...ElementOption) (*Element, error) {
	switch e.kind {
	case EntryKindElement:
		if e.element == nil {
			return nil, validationError("", "element entry must not be nil")
		}
		return e.element, nil
	case EntryKindSpec:
		return NewElement(e.spec, opts...)
	default:
		return nil, validationError("", "entry must hold an element or a spec with a name")
	}
}
