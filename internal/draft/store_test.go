package draft

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, 0), mr
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id := int64(42)
	in := State{
		UserData:         map[string]string{"clinic_name": "Clinica Viva"},
		CurrentStepIndex: 3,
		WelcomeComplete:  true,
		OnboardingID:     &id,
	}
	if err := store.Save(ctx, "sess-1", in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out == nil {
		t.Fatal("expected state, got nil")
	}
	if out.Version != SchemaVersion {
		t.Errorf("version = %d, want %d", out.Version, SchemaVersion)
	}
	if out.UserData["clinic_name"] != "Clinica Viva" {
		t.Errorf("user_data = %v", out.UserData)
	}
	if out.OnboardingID == nil || *out.OnboardingID != 42 {
		t.Errorf("onboarding_id = %v", out.OnboardingID)
	}
	if out.SavedAt == 0 {
		t.Error("saved_at not stamped")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	out, err := store.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil, got %+v", out)
	}
}

func TestStoreDiscardsVersionMismatch(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	mr.Set(draftKey("sess-1"), `{"version":1,"user_data":{"a":"b"},"current_step_index":2,"saved_at":1}`)

	out, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != nil {
		t.Fatalf("expected stale version discarded, got %+v", out)
	}
	if mr.Exists(draftKey("sess-1")) {
		t.Error("stale snapshot should have been deleted")
	}
}

func TestStoreDiscardsExpired(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", State{UserData: map[string]string{"a": "b"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	out, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != nil {
		t.Fatalf("expected expired snapshot discarded, got %+v", out)
	}
}

func TestStoreDiscardsCorruptPayload(t *testing.T) {
	store, mr := newTestStore(t)

	mr.Set(draftKey("sess-1"), "{not json")

	out, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != nil {
		t.Fatalf("expected corrupt snapshot discarded, got %+v", out)
	}
}

func TestStoreClear(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", State{UserData: map[string]string{"a": "b"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists(draftKey("sess-1")) {
		t.Error("snapshot should be gone")
	}
}

func TestStoreSummarize(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id := int64(7)
	state := State{
		UserData: map[string]string{
			"clinic_name":              "Clinica Viva",
			"project_responsible_name": "Ana",
			"phone":                    "11987654321",
		},
		CurrentStepIndex: 10,
		OnboardingID:     &id,
	}
	if err := store.Save(ctx, "sess-1", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	sum, err := store.Summarize(ctx, "sess-1", 20)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum == nil {
		t.Fatal("expected summary")
	}
	if sum.AnsweredQuestions != 3 {
		t.Errorf("answered = %d, want 3", sum.AnsweredQuestions)
	}
	if sum.Percentage != 50 {
		t.Errorf("percentage = %d, want 50", sum.Percentage)
	}
	if sum.ClinicName != "Clinica Viva" || sum.ResponsibleName != "Ana" {
		t.Errorf("names = %q/%q", sum.ClinicName, sum.ResponsibleName)
	}
	if sum.OnboardingID == nil || *sum.OnboardingID != 7 {
		t.Errorf("onboarding_id = %v", sum.OnboardingID)
	}
}

func TestStoreSummarizeCapsAt100(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state := State{
		UserData:         map[string]string{"a": "b"},
		CurrentStepIndex: 30,
	}
	if err := store.Save(ctx, "sess-1", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	sum, err := store.Summarize(ctx, "sess-1", 20)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Percentage != 100 {
		t.Errorf("percentage = %d, want 100", sum.Percentage)
	}
}

func TestStoreSummarizeNoProgress(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", State{UserData: map[string]string{}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	sum, err := store.Summarize(ctx, "sess-1", 20)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum != nil {
		t.Fatalf("expected nil summary, got %+v", sum)
	}
}
