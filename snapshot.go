package switcher

// ElementSnapshot is a point-in-time copy of one element.
type ElementSnapshot struct {
	Name         string `json:"name" yaml:"name"`
	Active       bool   `json:"active" yaml:"active"`
	AlwaysActive bool   `json:"always_active" yaml:"always_active"`
}

// Snapshot is a point-in-time copy of a registry. Elements are sorted by name.
type Snapshot struct {
	ID            string            `json:"id" yaml:"id"`
	AllowMultiple bool              `json:"allow_multiple" yaml:"allow_multiple"`
	AnyActive     bool              `json:"any_active" yaml:"any_active"`
	Elements      []ElementSnapshot `json:"elements" yaml:"elements"`
}

// Snapshot copies the current registry state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:            r.id,
		AllowMultiple: r.allowMultiple,
		AnyActive:     r.anyActive,
		Elements:      make([]ElementSnapshot, 0, len(r.elements)),
	}
	for _, name := range r.sortedNamesLocked() {
		el := r.elements[name]
		snap.Elements = append(snap.Elements, ElementSnapshot{
			Name:         el.name,
			Active:       el.active,
			AlwaysActive: el.alwaysActive,
		})
	}
	return snap
}

// projectedSnapshotLocked returns the state an operation would produce by
// applying next, with candidate still inactive. Names missing from next keep
// their current state.
func (r *Registry) projectedSnapshotLocked(next map[string]bool, candidate string) Snapshot {
	snap := r.snapshotLocked()
	snap.AnyActive = false
	for i := range snap.Elements {
		el := &snap.Elements[i]
		if active, ok := next[el.Name]; ok {
			el.Active = active
		}
		if el.Name == candidate {
			el.Active = false
		}
		snap.AnyActive = snap.AnyActive || el.Active
	}
	return snap
}

// ActiveCount returns the number of active elements in the snapshot.
func (s Snapshot) ActiveCount() int {
	count := 0
	for _, el := range s.Elements {
		if el.Active {
			count++
		}
	}
	return count
}

// Bindings exposes the snapshot to expression evaluators:
//
//	elements.<name>.active, elements.<name>.always_active
//	active          list of active names
//	active_count    number of active elements
//	allow_multiple, any_active, registry_id
func (s Snapshot) Bindings() map[string]any {
	elements := make(map[string]any, len(s.Elements))
	active := make([]any, 0, len(s.Elements))
	for _, el := range s.Elements {
		elements[el.Name] = map[string]any{
			"name":          el.Name,
			"active":        el.Active,
			"always_active": el.AlwaysActive,
		}
		if el.Active {
			active = append(active, el.Name)
		}
	}
	return map[string]any{
		"elements":       elements,
		"active":         active,
		"active_count":   len(active),
		"allow_multiple": s.AllowMultiple,
		"any_active":     s.AnyActive,
		"registry_id":    s.ID,
	}
}
