// Package switcher tracks a named active/inactive flag for a set of UI
// elements (tabs, toggle buttons, switches) and enforces two rules across
// them: pinned ("always active") elements cannot be deactivated or toggled,
// and unless multiple mode is enabled at most one element is active.
//
// A Registry owns its elements. It is safe for concurrent use; warnings and
// activity events raised by an operation are delivered after the registry
// lock is released. Optional activation rules written in expr, CEL or (with
// the js_eval build tag) JavaScript can veto activations, and registries can
// be declared in YAML with ParseDefinition.
package switcher
