package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-switcher/pkg/activity"
	"github.com/goliatone/go-switcher/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsElementEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	event := activity.ElementEvent(activity.VerbElementActivated, "reg-1", "settings", true, false)
	event.OccurredAt = now
	event.ActorID = actorID.String()
	event.TenantID = tenantID.String()
	event.Channel = "elements"

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected identity mapping: %+v", record)
	}
	if record.Verb != activity.VerbElementActivated || record.ObjectType != activity.ObjectTypeElement || record.ObjectID != "settings" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "elements" {
		t.Fatalf("expected channel elements got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["active"] != true || record.Data["always_active"] != false || record.Data["registry_id"] != "reg-1" {
		t.Fatalf("expected element state in data, got %v", record.Data)
	}
}

func TestHookNotifyMapsRegistryWarning(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	event := activity.WarningEvent("reg-2", "", "activate_all_single_mode", "single mode")
	event.ActorID = "not-a-uuid"
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ObjectType != activity.ObjectTypeRegistry || record.ObjectID != "reg-2" {
		t.Fatalf("unexpected object %s/%s", record.ObjectType, record.ObjectID)
	}
	if record.ActorID != uuid.Nil || record.UserID != uuid.Nil {
		t.Fatalf("expected invalid ids to map to uuid.Nil, got %+v", record)
	}
	if _, ok := record.Data["active"]; ok {
		t.Fatalf("registry warnings carry no element state: %v", record.Data)
	}
	if record.Data["warning_code"] != "activate_all_single_mode" {
		t.Fatalf("unexpected data %v", record.Data)
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyFiltersVerbs(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, Verbs: []string{activity.VerbElementPinned}}

	warning := activity.WarningEvent("reg-1", "a", "pinned_toggle", "pinned")
	pinned := activity.ElementEvent(activity.VerbElementPinned, "reg-1", "a", true, true)

	if err := hook.Notify(context.Background(), warning); err != nil {
		t.Fatalf("notify warning: %v", err)
	}
	if err := hook.Notify(context.Background(), pinned); err != nil {
		t.Fatalf("notify pinned: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].Verb != activity.VerbElementPinned {
		t.Fatalf("expected only pinned record, got %+v", sink.records)
	}
}

func TestHookNotifyDefaultsTimestampAndPropagatesErrors(t *testing.T) {
	boom := errors.New("sink down")
	sink := &recordingSink{err: boom}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:    activity.VerbElementAdded,
		Element: "1",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted: %+v", sink.records)
	}
}
