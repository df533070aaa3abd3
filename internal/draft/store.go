package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SchemaVersion is bumped whenever the snapshot layout changes. Snapshots
// written under an older version are discarded on load rather than migrated.
const SchemaVersion = 2

// DefaultRetention is how long an abandoned draft survives before it is
// discarded.
const DefaultRetention = 30 * 24 * time.Hour

// BookingInfo is the human-facing confirmation of a scheduled call.
type BookingInfo struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	ShortFormat string `json:"short_format"`
}

// State is one session's in-progress wizard snapshot.
type State struct {
	Version          int               `json:"version"`
	UserData         map[string]string `json:"user_data"`
	CurrentStepIndex int               `json:"current_step_index"`
	WelcomeComplete  bool              `json:"welcome_complete"`
	IsComplete       bool              `json:"is_complete"`
	BookingInfo      *BookingInfo      `json:"booking_info"`
	OnboardingID     *int64            `json:"onboarding_id"`
	SavedAt          int64             `json:"saved_at"`
}

// Summary is the resume prompt shown when a session comes back.
type Summary struct {
	AnsweredQuestions int    `json:"answered_questions"`
	Percentage        int    `json:"percentage"`
	ClinicName        string `json:"clinic_name,omitempty"`
	ResponsibleName   string `json:"responsible_name,omitempty"`
	OnboardingID      *int64 `json:"onboarding_id,omitempty"`
}

// Store keeps draft snapshots in Redis, keyed by session id.
type Store struct {
	redis     *redis.Client
	retention time.Duration
	now       func() time.Time
}

func NewStore(client *redis.Client, retention time.Duration) *Store {
	if client == nil {
		panic("draft: redis client cannot be nil")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{redis: client, retention: retention, now: time.Now}
}

// Save overwrites the session's snapshot. The version and saved_at fields are
// stamped here so callers cannot write a stale schema.
func (s *Store) Save(ctx context.Context, sessionID string, state State) error {
	state.Version = SchemaVersion
	state.SavedAt = s.now().UnixMilli()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("draft: marshal state: %w", err)
	}
	if err := s.redis.Set(ctx, draftKey(sessionID), data, s.retention).Err(); err != nil {
		return fmt.Errorf("draft: persist state: %w", err)
	}
	return nil
}

// Load returns the session's snapshot, or nil when none exists. A snapshot
// written under a different schema version, or older than the retention
// window, is deleted and treated as absent.
func (s *Store) Load(ctx context.Context, sessionID string) (*State, error) {
	data, err := s.redis.Get(ctx, draftKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("draft: load state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		_ = s.Clear(ctx, sessionID)
		return nil, nil
	}
	if state.Version != SchemaVersion {
		_ = s.Clear(ctx, sessionID)
		return nil, nil
	}
	if s.now().UnixMilli()-state.SavedAt > s.retention.Milliseconds() {
		_ = s.Clear(ctx, sessionID)
		return nil, nil
	}
	if state.UserData == nil {
		state.UserData = map[string]string{}
	}
	return &state, nil
}

// Clear removes the session's snapshot.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("draft: clear state: %w", err)
	}
	return nil
}

// Summarize reports resumable progress, or nil when there is nothing worth
// resuming (no snapshot, or no answered questions yet).
func (s *Store) Summarize(ctx context.Context, sessionID string, totalSteps int) (*Summary, error) {
	state, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil || state.CurrentStepIndex < 0 || len(state.UserData) == 0 {
		return nil, nil
	}

	percentage := 0
	if totalSteps > 0 {
		percentage = int(float64(state.CurrentStepIndex)/float64(totalSteps)*100 + 0.5)
		if percentage > 100 {
			percentage = 100
		}
	}
	return &Summary{
		AnsweredQuestions: len(state.UserData),
		Percentage:        percentage,
		ClinicName:        state.UserData["clinic_name"],
		ResponsibleName:   state.UserData["project_responsible_name"],
		OnboardingID:      state.OnboardingID,
	}, nil
}

func draftKey(sessionID string) string {
	return fmt.Sprintf("onboarding_draft:%s", sessionID)
}
