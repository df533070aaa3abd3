package onboarding

import (
	"context"
	"sync"
	"time"
)

// Repository is the storage boundary for onboarding records. Merge runs the
// caller's function against the current row under whatever serialization the
// implementation provides, so concurrent writers cannot merge against a
// stale snapshot.
type Repository interface {
	Insert(ctx context.Context, write ColumnWrite) (*Record, error)
	Get(ctx context.Context, id int64) (*Record, error)
	Merge(ctx context.Context, id int64, merge func(existing *Record) ColumnWrite) (*Record, error)
}

// InMemoryRepository keeps records in memory. Used by handler tests and
// local development without a database.
type InMemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*Record
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, records: make(map[int64]*Record)}
}

// Insert creates a new record from the column write.
func (r *InMemoryRepository) Insert(ctx context.Context, write ColumnWrite) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	rec := &Record{ID: r.nextID, CreatedAt: now, UpdatedAt: now}
	r.nextID++
	applyWrite(rec, write)
	r.records[rec.ID] = rec
	return cloneRecord(rec), nil
}

// Get fetches a record by id.
func (r *InMemoryRepository) Get(ctx context.Context, id int64) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneRecord(rec), nil
}

// Merge applies the merge function under the repository lock.
func (r *InMemoryRepository) Merge(ctx context.Context, id int64, merge func(existing *Record) ColumnWrite) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	applyWrite(rec, merge(cloneRecord(rec)))
	rec.UpdatedAt = time.Now().UTC()
	return cloneRecord(rec), nil
}

// applyWrite copies a column write onto the record, mirroring what the SQL
// UPDATE does column by column.
func applyWrite(rec *Record, write ColumnWrite) {
	for column, value := range write {
		switch column {
		case ColName:
			rec.Name = stringPtr(value)
		case ColTimezone:
			rec.Timezone = stringPtr(value)
		case ColAddress:
			rec.Address = stringPtr(value)
		case ColGoogleMapsLink:
			rec.GoogleMapsLink = stringPtr(value)
		case ColOperatingHours:
			rec.OperatingHours = stringPtr(value)
		case ColParking:
			rec.Parking = stringPtr(value)
		case ColAssistantName:
			rec.AssistantName = stringPtr(value)
		case ColBotReplyTo:
			rec.BotReplyTo = stringPtr(value)
		case ColCRMProvider:
			rec.CRMProvider = stringPtr(value)
		case ColCommunicationStyle:
			rec.CommunicationStyle = stringPtr(value)
		case ColBookingReminderToday:
			rec.BookingReminderToday = stringPtr(value)
		case ColBookingReminderTomorrow:
			rec.BookingReminderTomorrow = stringPtr(value)
		case ColPhone:
			rec.Phone = int64Ptr(value)
		case ColNotificationPhone:
			rec.NotificationPhone = int64Ptr(value)
		case ColGroupBotActivated:
			rec.GroupBotActivated = boolPtr(value)
		case ColVoiceReplyActivated:
			rec.VoiceReplyActivated = boolPtr(value)
		case ColAIAllowedToBook:
			rec.AIAllowedToBook = boolPtr(value)
		case ColBookingReminders:
			rec.BookingRemindersActive = boolPtr(value)
		case ColSmartFollowups:
			rec.SmartFollowupsActivated = boolPtr(value)
		case ColDeactivateOnHumanReply:
			rec.DeactivateOnHumanReply = boolPtr(value)
		case ColAIReactivationInterval:
			if n, ok := value.(int); ok {
				rec.AIReactivationInterval = &n
			}
		case ColReactivationLeadStatus:
			if ids, ok := value.([]int); ok {
				rec.ReactivationLeadStatuses = ids
			}
		case ColAvailabilityBlocks:
			if blocks, ok := value.([]RecurrenceBlock); ok {
				rec.AvailabilityBlocks = blocks
			}
		case ColOperatingHoursBlocks:
			if blocks, ok := value.([]RecurrenceBlock); ok {
				rec.OperatingHoursBlocks = blocks
			}
		case ColInstagramLinks:
			if links, ok := value.([]string); ok {
				rec.InstagramLinks = links
			}
		case ColClinicInfoAdded:
			if b, ok := value.(bool); ok {
				rec.ClinicInfoAdded = b
			}
		case ColInstructions:
			rec.Instructions = bucketValue(value)
		case ColCalendarLogic:
			rec.CalendarLogic = bucketValue(value)
		case ColClientProfile:
			rec.ClientProfile = bucketValue(value)
		case ColProducts:
			rec.Products = bucketValue(value)
		case ColPainPoints:
			rec.PainPoints = bucketValue(value)
		case ColOnboardingData:
			rec.OnboardingData = bucketValue(value)
		}
	}
}

func stringPtr(value any) *string {
	if s, ok := value.(string); ok {
		return &s
	}
	return nil
}

func int64Ptr(value any) *int64 {
	if n, ok := value.(int64); ok {
		return &n
	}
	return nil
}

func boolPtr(value any) *bool {
	if b, ok := value.(bool); ok {
		return &b
	}
	return nil
}

func bucketValue(value any) Bucket {
	if b, ok := value.(Bucket); ok {
		return b.Clone()
	}
	return nil
}

func cloneRecord(rec *Record) *Record {
	out := *rec
	out.Instructions = rec.Instructions.Clone()
	out.CalendarLogic = rec.CalendarLogic.Clone()
	out.ClientProfile = rec.ClientProfile.Clone()
	out.Products = rec.Products.Clone()
	out.PainPoints = rec.PainPoints.Clone()
	out.OnboardingData = rec.OnboardingData.Clone()
	out.ReactivationLeadStatuses = append([]int(nil), rec.ReactivationLeadStatuses...)
	out.AvailabilityBlocks = append([]RecurrenceBlock(nil), rec.AvailabilityBlocks...)
	out.OperatingHoursBlocks = append([]RecurrenceBlock(nil), rec.OperatingHoursBlocks...)
	out.InstagramLinks = append([]string(nil), rec.InstagramLinks...)
	return &out
}
