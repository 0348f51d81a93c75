package switcher

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-switcher/internal/hydrate"
	"github.com/goliatone/go-switcher/internal/layering"
	"gopkg.in/yaml.v3"
)

// Definition is a declarative registry description, usually parsed from
// YAML or JSON with ParseDefinition.
type Definition struct {
	AllowMultiple  bool                   `json:"allow_multiple" yaml:"allow_multiple"`
	ActivateAll    bool                   `json:"activate_all" yaml:"activate_all"`
	DeactivateAll  bool                   `json:"deactivate_all" yaml:"deactivate_all"`
	ActivationRule string                 `json:"activation_rule" yaml:"activation_rule"`
	Elements       map[string]ElementSpec `json:"elements" yaml:"elements"`
}

const definitionSource = "definition"

// ParseDefinition decodes a YAML (or JSON) document into a Definition.
// Element entries may omit their name, in which case the map key is used,
// and may be empty to declare an inactive element. Unknown keys and
// mistyped values fail with ErrValidation.
func ParseDefinition(data []byte) (Definition, error) {
	payload, err := parseDefinitionPayload(data)
	if err != nil {
		return Definition{}, wrapError(ErrValidation, "", err)
	}
	return decodeDefinition(payload)
}

// ParseLayeredDefinition parses several documents ordered from strongest to
// weakest and merges them before decoding, so an overlay can flip a single
// flag of an element declared in a base document.
func ParseLayeredDefinition(layers ...[]byte) (Definition, error) {
	payloads := make([]map[string]any, 0, len(layers))
	for i, data := range layers {
		payload, err := parseDefinitionPayload(data)
		if err != nil {
			return Definition{}, wrapError(ErrValidation, "", fmt.Errorf("layer %d: %w", i, err))
		}
		payloads = append(payloads, payload)
	}
	merged := layering.MergeMaps(payloads...)
	if merged == nil {
		merged = map[string]any{}
	}
	return decodeDefinition(merged)
}

func parseDefinitionPayload(data []byte) (map[string]any, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

func decodeDefinition(payload map[string]any) (Definition, error) {
	decoder := hydrate.NewDecoder(
		hydrate.WithPreHook[Definition](fillElementNames),
		hydrate.WithDisallowUnknownFields[Definition](),
	)
	def, err := decoder.Decode(hydrate.Context{Source: definitionSource}, payload)
	if err != nil {
		return Definition{}, wrapError(ErrValidation, "", err)
	}
	return def, nil
}

func fillElementNames(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	raw, ok := payload["elements"]
	if !ok || raw == nil {
		return payload, nil
	}
	elements, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("elements must be a mapping, got %T", raw)
	}
	for key, value := range elements {
		switch entry := value.(type) {
		case nil:
			elements[key] = map[string]any{"name": key}
		case map[string]any:
			if _, named := entry["name"]; !named {
				entry["name"] = key
			}
		default:
			return nil, fmt.Errorf("element %q must be a mapping, got %T", key, value)
		}
	}
	return payload, nil
}

// Options converts the definition flags into registry options.
func (d Definition) Options() []Option {
	var opts []Option
	if d.AllowMultiple {
		opts = append(opts, WithAllowMultiple(true))
	}
	if d.ActivateAll {
		opts = append(opts, WithActivateAll())
	}
	if d.DeactivateAll {
		opts = append(opts, WithDeactivateAll())
	}
	if d.ActivationRule != "" {
		opts = append(opts, WithActivationRule(d.ActivationRule))
	}
	return opts
}

// Entries returns one spec entry per declared element.
func (d Definition) Entries() map[string]Entry {
	entries := make(map[string]Entry, len(d.Elements))
	for key, spec := range d.Elements {
		entries[key] = FromSpec(spec)
	}
	return entries
}

// Names returns the declared element keys in sorted order.
func (d Definition) Names() []string {
	names := make([]string, 0, len(d.Elements))
	for key := range d.Elements {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// NewRegistryFromDefinition builds a registry from def. Options in opts are
// applied after the definition's own and win on conflict.
func NewRegistryFromDefinition(def Definition, opts ...Option) (*Registry, error) {
	all := append(def.Options(), opts...)
	return NewRegistry(def.Entries(), all...)
}

// SpecFromMap decodes a loosely typed element description such as
// {"name": "home", "active": true}. A non-string name, a non-boolean flag
// or an unknown key fails with ErrValidation.
func SpecFromMap(payload map[string]any) (ElementSpec, error) {
	if payload == nil {
		return ElementSpec{}, validationError("", "cannot create an element from an empty spec")
	}
	decoder := hydrate.NewDecoder(hydrate.WithDisallowUnknownFields[ElementSpec]())
	name, _ := payload["name"].(string)
	spec, err := decoder.Decode(hydrate.Context{Source: "element", Key: name}, payload)
	if err != nil {
		return ElementSpec{}, wrapError(ErrValidation, name, err)
	}
	return spec, nil
}
