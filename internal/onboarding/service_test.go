package onboarding

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type upsertRecorder struct {
	observed []string
}

func (u *upsertRecorder) ObserveUpsert(path, status string) {
	u.observed = append(u.observed, path+"/"+status)
}

func newTestService(t *testing.T) (*Service, *upsertRecorder) {
	t.Helper()
	upserts := &upsertRecorder{}
	repo := NewInMemoryRepository()
	synth := NewSynthesizer(nil, nil)
	return NewService(repo, synth, nil, upserts), upserts
}

func TestServiceUpsertInsertThenUpdate(t *testing.T) {
	svc, upserts := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, nil, map[string]AnswerValue{
		"clinic_name": String("Clínica Bela"),
	})
	if err != nil {
		t.Fatalf("insert upsert: %v", err)
	}
	if rec.Name == nil || *rec.Name != "Clínica Bela" {
		t.Errorf("name = %v", rec.Name)
	}
	if !rec.ClinicInfoAdded {
		t.Error("identity flag not set")
	}

	updated, err := svc.Upsert(ctx, &rec.ID, map[string]AnswerValue{
		"greeting": String("Olá!"),
	})
	if err != nil {
		t.Fatalf("update upsert: %v", err)
	}
	if updated.Name == nil || *updated.Name != "Clínica Bela" {
		t.Errorf("earlier answer lost: %v", updated.Name)
	}
	if updated.Instructions["greeting"] != "Olá!" {
		t.Errorf("instructions = %v", updated.Instructions)
	}

	want := []string{"insert/ok", "update/ok"}
	if len(upserts.observed) != 2 || upserts.observed[0] != want[0] || upserts.observed[1] != want[1] {
		t.Errorf("observed = %v; want %v", upserts.observed, want)
	}
}

func TestServiceUpsertKeepsBothScheduleEncodings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, nil, map[string]AnswerValue{
		"deactivation_schedule": Object(map[string]any{
			"monday": map[string]any{"start_h": float64(8), "end_h": float64(19)},
		}),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if len(rec.AvailabilityBlocks) != 1 || rec.AvailabilityBlocks[0].StartTime != "08:00" {
		t.Fatalf("availability blocks = %+v", rec.AvailabilityBlocks)
	}

	rec, err = svc.Upsert(ctx, &rec.ID, map[string]AnswerValue{
		"operating_hours": Object(map[string]any{
			"monday": map[string]any{"enabled": true, "start": "09:00", "end": "18:00"},
		}),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	// The later answer lands in its own column; the earlier one survives.
	if len(rec.AvailabilityBlocks) != 1 || rec.AvailabilityBlocks[0].StartTime != "08:00" {
		t.Errorf("deactivation blocks lost: %+v", rec.AvailabilityBlocks)
	}
	if len(rec.OperatingHoursBlocks) != 1 || rec.OperatingHoursBlocks[0].StartTime != "09:00" {
		t.Errorf("operating hours blocks = %+v", rec.OperatingHoursBlocks)
	}
}

func TestServiceUpsertIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	batch := map[string]AnswerValue{
		"clinic_name":            String("Clínica Bela"),
		"clinic_whatsapp_phone":  String("(11) 98765-4321"),
		"is_group_bot_activated": String("Sim"),
		"greeting":               String("Olá!"),
		"operating_hours": Object(map[string]any{
			"monday": map[string]any{"enabled": true, "start": "08:00", "end": "18:00"},
		}),
	}

	first, err := svc.Upsert(ctx, nil, batch)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := svc.Upsert(ctx, &first.ID, batch)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	first.UpdatedAt = second.UpdatedAt
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-submitting the same batch changed the record:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestServiceUpsertZeroIDInserts(t *testing.T) {
	svc, _ := newTestService(t)

	zero := int64(0)
	rec, err := svc.Upsert(context.Background(), &zero, map[string]AnswerValue{
		"clinic_name": String("Nova"),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if rec.ID == 0 {
		t.Error("zero id must insert a fresh record")
	}
}

func TestServiceUpsertUnknownID(t *testing.T) {
	svc, upserts := newTestService(t)

	id := int64(999)
	if _, err := svc.Upsert(context.Background(), &id, nil); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v; want ErrRecordNotFound", err)
	}
	if len(upserts.observed) != 1 || upserts.observed[0] != "update/not_found" {
		t.Errorf("observed = %v", upserts.observed)
	}
}

func TestServiceUpsertNegativeID(t *testing.T) {
	svc, _ := newTestService(t)

	id := int64(-1)
	if _, err := svc.Upsert(context.Background(), &id, nil); !errors.Is(err, ErrInvalidRecordID) {
		t.Errorf("err = %v; want ErrInvalidRecordID", err)
	}
}

func TestServiceGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, nil, map[string]AnswerValue{"clinic_name": String("Bela")})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("id = %d; want %d", got.ID, rec.ID)
	}

	if _, err := svc.Get(ctx, 0); !errors.Is(err, ErrInvalidRecordID) {
		t.Errorf("err = %v; want ErrInvalidRecordID", err)
	}
}
