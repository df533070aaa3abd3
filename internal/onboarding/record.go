package onboarding

import "time"

// Bucket is one grouped JSON column: a flat key-level map of normalized
// answer values.
type Bucket map[string]any

// Clone copies the bucket so merges never mutate the fetched record.
func (b Bucket) Clone() Bucket {
	if b == nil {
		return Bucket{}
	}
	out := make(Bucket, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Record is the durable row for one onboarding session. Nullable scalar
// columns use pointers; a nil pointer means the column has never been
// written.
type Record struct {
	ID int64 `json:"id"`

	Name           *string `json:"name,omitempty"`
	Timezone       *string `json:"timezone,omitempty"`
	Address        *string `json:"address,omitempty"`
	GoogleMapsLink *string `json:"google_maps_link,omitempty"`
	OperatingHours *string `json:"operating_hours,omitempty"`
	Parking        *string `json:"parking,omitempty"`

	AssistantName      *string `json:"assistant_name,omitempty"`
	BotReplyTo         *string `json:"bot_reply_to,omitempty"`
	CRMProvider        *string `json:"crm_provider,omitempty"`
	CommunicationStyle *string `json:"communication_style,omitempty"`

	Phone             *int64 `json:"phone,omitempty"`
	NotificationPhone *int64 `json:"clinic_notification_phone,omitempty"`

	GroupBotActivated        *bool   `json:"is_group_bot_activated,omitempty"`
	VoiceReplyActivated      *bool   `json:"is_voice_reply_activated,omitempty"`
	AIAllowedToBook          *bool   `json:"is_ai_allow_to_book_appointments,omitempty"`
	BookingRemindersActive   *bool   `json:"is_booking_reminders_activated,omitempty"`
	SmartFollowupsActivated  *bool   `json:"is_smart_followups_activated,omitempty"`
	DeactivateOnHumanReply   *bool   `json:"deactivate_on_human_reply,omitempty"`
	BookingReminderToday     *string `json:"booking_reminder_today,omitempty"`
	BookingReminderTomorrow  *string `json:"booking_reminder_tomorrow,omitempty"`
	AIReactivationInterval   *int    `json:"ai_reactivation_interval,omitempty"`
	ReactivationLeadStatuses []int   `json:"reactivation_lead_status_ids,omitempty"`

	AvailabilityBlocks   []RecurrenceBlock `json:"availability_blocks,omitempty"`
	OperatingHoursBlocks []RecurrenceBlock `json:"operating_hours_blocks,omitempty"`
	InstagramLinks       []string          `json:"instagram_links,omitempty"`

	ClinicInfoAdded bool `json:"is_clinic_info_added"`

	Instructions   Bucket `json:"custom_instructions_inputs,omitempty"`
	CalendarLogic  Bucket `json:"calendar_logic_json,omitempty"`
	ClientProfile  Bucket `json:"client_data,omitempty"`
	Products       Bucket `json:"products,omitempty"`
	PainPoints     Bucket `json:"pain_points,omitempty"`
	OnboardingData Bucket `json:"onboarding_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ColumnWrite is the set of columns one synthesis round produced. Columns
// absent from the map are left untouched by the storage layer; bucket
// columns, when present, carry the fully merged bucket and replace the
// stored value whole.
type ColumnWrite map[string]any

// Column names of the chatbot_onboarding table.
const (
	ColName                    = "name"
	ColTimezone                = "timezone"
	ColAddress                 = "address"
	ColGoogleMapsLink          = "google_maps_link"
	ColOperatingHours          = "operating_hours"
	ColParking                 = "parking"
	ColAssistantName           = "assistant_name"
	ColBotReplyTo              = "bot_reply_to"
	ColCRMProvider             = "crm_provider"
	ColCommunicationStyle      = "communication_style"
	ColPhone                   = "phone"
	ColNotificationPhone       = "clinic_notification_phone"
	ColGroupBotActivated       = "is_group_bot_activated"
	ColVoiceReplyActivated     = "is_voice_reply_activated"
	ColAIAllowedToBook         = "is_ai_allow_to_book_appointments"
	ColBookingReminders        = "is_booking_reminders_activated"
	ColBookingReminderToday    = "booking_reminder_today"
	ColBookingReminderTomorrow = "booking_reminder_tomorrow"
	ColSmartFollowups          = "is_smart_followups_activated"
	ColDeactivateOnHumanReply  = "deactivate_on_human_reply"
	ColAIReactivationInterval  = "ai_reactivation_interval"
	ColReactivationLeadStatus  = "reactivation_lead_status_ids"
	ColAvailabilityBlocks      = "availability_blocks"
	ColOperatingHoursBlocks    = "operating_hours_blocks"
	ColInstagramLinks          = "instagram_links"
	ColClinicInfoAdded         = "is_clinic_info_added"
	ColInstructions            = "custom_instructions_inputs"
	ColCalendarLogic           = "calendar_logic_json"
	ColClientProfile           = "client_data"
	ColProducts                = "products"
	ColPainPoints              = "pain_points"
	ColOnboardingData          = "onboarding_data"
)
