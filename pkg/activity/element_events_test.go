package activity

import "testing"

func TestElementEventDataCarriesState(t *testing.T) {
	event := ElementEvent(VerbElementPinned, "reg-1", "tabs", true, true)
	event.Metadata = map[string]any{"custom": "value", "active": "overridden"}

	if event.ObjectType() != ObjectTypeElement || event.ObjectID() != "tabs" {
		t.Fatalf("unexpected object %s/%s", event.ObjectType(), event.ObjectID())
	}
	data := event.Data()
	if data["active"] != true || data["always_active"] != true {
		t.Fatalf("expected element state to win over metadata, got %+v", data)
	}
	if data["registry_id"] != "reg-1" || data["custom"] != "value" {
		t.Fatalf("expected registry and custom data, got %+v", data)
	}
	if event.Metadata["active"] != "overridden" {
		t.Fatalf("data must not mutate metadata: %+v", event.Metadata)
	}
}

func TestRegistryWarningOmitsElementState(t *testing.T) {
	event := WarningEvent("reg-9", "", "activate_all_single_mode", "cannot activate all")

	if event.ObjectType() != ObjectTypeRegistry || event.ObjectID() != "reg-9" {
		t.Fatalf("expected registry object, got %s/%s", event.ObjectType(), event.ObjectID())
	}
	data := event.Data()
	if _, ok := data["active"]; ok {
		t.Fatalf("registry warnings carry no element state: %+v", data)
	}
	if _, ok := data["always_active"]; ok {
		t.Fatalf("registry warnings carry no element state: %+v", data)
	}
	if data["warning_code"] != "activate_all_single_mode" || data["message"] != "cannot activate all" {
		t.Fatalf("expected warning data, got %+v", data)
	}
}

func TestElementWarningReportsState(t *testing.T) {
	event := WarningEvent("reg-1", "home", "pinned_deactivate", "pinned")
	event.Active = true
	event.AlwaysActive = true

	data := event.Data()
	if event.Verb != VerbElementWarning || data["active"] != true || data["always_active"] != true {
		t.Fatalf("unexpected warning event %+v data %+v", event, data)
	}

	inactive := WarningEvent("reg-1", "tab", "activate_all_rule_rejected", "rejected")
	if inactive.Data()["active"] != false {
		t.Fatalf("expected inactive element state, got %+v", inactive.Data())
	}
}

func TestEventValid(t *testing.T) {
	cases := []struct {
		name  string
		event Event
		want  bool
	}{
		{name: "element", event: Event{Verb: VerbElementAdded, Element: "a"}, want: true},
		{name: "registry", event: Event{Verb: VerbElementWarning, RegistryID: "r"}, want: true},
		{name: "no verb", event: Event{Element: "a"}, want: false},
		{name: "no object", event: Event{Verb: VerbElementAdded}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.event.Valid(); got != tc.want {
				t.Fatalf("valid=%t want %t", got, tc.want)
			}
		})
	}
}
