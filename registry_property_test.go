package switcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var propertyNames = []string{"a", "b", "c", "d", "e"}

// applyRandomOp performs one drawn operation and reports its error, if any.
func applyRandomOp(rt *rapid.T, registry *Registry, step int) (string, error) {
	name := rapid.SampledFrom(propertyNames).Draw(rt, fmt.Sprintf("name%d", step))
	op := rapid.IntRange(0, 8).Draw(rt, fmt.Sprintf("op%d", step))
	switch op {
	case 0:
		return "activate " + name, registry.Activate(name)
	case 1:
		return "deactivate " + name, registry.Deactivate(name)
	case 2:
		return "toggle " + name, registry.Toggle(name)
	case 3:
		return "pin " + name, registry.SetAlwaysActive(name, true)
	case 4:
		return "unpin " + name, registry.SetAlwaysActive(name, false)
	case 5:
		registry.ActivateAll()
		return "activate all", nil
	case 6:
		registry.DeactivateAll()
		return "deactivate all", nil
	case 7:
		spec := ElementSpec{
			Name:         name,
			Active:       Flag(rapid.Bool().Draw(rt, fmt.Sprintf("active%d", step))),
			AlwaysActive: rapid.Bool().Draw(rt, fmt.Sprintf("pinned%d", step)),
		}
		if spec.AlwaysActive {
			spec.Active = nil
		}
		return "add " + name, registry.AddElement(FromSpec(spec))
	default:
		allow := rapid.Bool().Draw(rt, fmt.Sprintf("allow%d", step))
		return fmt.Sprintf("allow multiple %t", allow), registry.SetAllowMultiple(allow)
	}
}

func TestRegistryInvariantsHoldUnderRandomOperations(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		initial := rapid.SliceOfNDistinct(rapid.SampledFrom(propertyNames), 0, 3, rapid.ID[string]).Draw(rt, "initial")
		registry, err := NewRegistry(specs(initial...),
			WithAllowMultiple(rapid.Bool().Draw(rt, "allowMultiple")),
			WithWarningLogger(nil),
		)
		require.NoError(rt, err)

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for step := 0; step < steps; step++ {
			before := registry.Snapshot()
			desc, err := applyRandomOp(rt, registry, step)
			after := registry.Snapshot()

			if err != nil {
				require.Equal(rt, before, after, "failed %q must leave state unchanged: %v", desc, err)
			}

			active := after.ActiveCount()
			require.Equal(rt, active > 0, after.AnyActive, "any active cache out of sync after %q", desc)
			require.Equal(rt, active > 0, registry.HasAnyActive())
			if !after.AllowMultiple {
				require.LessOrEqual(rt, active, 1, "single mode violated after %q", desc)
			}
			for _, el := range after.Elements {
				if el.AlwaysActive {
					require.True(rt, el.Active, "pinned element %s inactive after %q", el.Name, desc)
				}
			}
		}
	})
}

func TestDuplicateAddNeverChangesExisting(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		pinned := rapid.Bool().Draw(rt, "pinned")
		active := pinned || rapid.Bool().Draw(rt, "active")
		registry, err := NewRegistry(map[string]Entry{
			"a": FromSpec(ElementSpec{Name: "a", Active: Flag(active), AlwaysActive: pinned}),
		}, WithWarningLogger(nil))
		require.NoError(rt, err)
		before := registry.Snapshot()

		err = registry.AddElement(FromSpec(ElementSpec{
			Name:         "a",
			Active:       Flag(rapid.Bool().Draw(rt, "dupActive")),
			AlwaysActive: false,
		}))
		require.ErrorIs(rt, err, ErrElementAlreadyExists)
		require.Equal(rt, before, registry.Snapshot())
	})
}
