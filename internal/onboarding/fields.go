package onboarding

// routeKind says what the synthesizer should do with an answer key.
type routeKind int

const (
	// routeDirect writes a scalar column, possibly through a sub-transform.
	routeDirect routeKind = iota
	// routePhone writes a bigint phone column.
	routePhone
	// routeBookingPermission is the two-destination booking-permission key.
	routeBookingPermission
	// routeInstagram writes the instagram_links text[] column.
	routeInstagram
	// routeBucket merges into one of the grouped JSON buckets.
	routeBucket
	// routeFallback merges into the catch-all bucket.
	routeFallback
)

// fieldRoute is the Field Router's verdict for one answer key.
type fieldRoute struct {
	kind   routeKind
	column string // destination column (direct/phone) or bucket column (bucket)
}

// directColumns maps answer keys to their scalar destination column. Keys
// that need a sub-transform (boolean, interval, lead-status ids, schedules,
// timezone) are recognized by the synthesizer on top of this mapping.
var directColumns = map[string]string{
	"clinic_name":             ColName,
	"clinic_timezone":         ColTimezone,
	"clinic_address":          ColAddress,
	"clinic_google_maps_link": ColGoogleMapsLink,
	"operating_hours":         ColOperatingHours,
	"parking":                 ColParking,

	"assistant_name":           ColAssistantName,
	"bot_reply_to":             ColBotReplyTo,
	"is_group_bot_activated":   ColGroupBotActivated,
	"is_voice_reply_activated": ColVoiceReplyActivated,

	"is_booking_reminders_activated": ColBookingReminders,
	"booking_reminder_today":         ColBookingReminderToday,
	"booking_reminder_tomorrow":      ColBookingReminderTomorrow,

	"deactivate_on_human_reply":    ColDeactivateOnHumanReply,
	"deactivation_schedule":        ColAvailabilityBlocks,
	"is_smart_followups_activated": ColSmartFollowups,
	"ai_reactivation_interval":     ColAIReactivationInterval,
	"reactivation_lead_status_ids": ColReactivationLeadStatus,

	"crm_provider":       ColCRMProvider,
	"conversation_style": ColCommunicationStyle,
}

// phoneColumns maps phone answer keys to their bigint column.
var phoneColumns = map[string]string{
	"clinic_whatsapp_phone":     ColPhone,
	"clinic_notification_phone": ColNotificationPhone,
}

// booleanFields need Sim/Não conversion before the direct column write.
var booleanFields = map[string]struct{}{
	"is_group_bot_activated":           {},
	"is_voice_reply_activated":         {},
	"is_ai_allow_to_book_appointments": {},
	"is_booking_reminders_activated":   {},
	"is_smart_followups_activated":     {},
	"deactivate_on_human_reply":        {},
}

// clinicInfoFields flip the is_clinic_info_added flag when answered.
var clinicInfoFields = map[string]struct{}{
	"clinic_name":           {},
	"clinic_address":        {},
	"clinic_whatsapp_phone": {},
	"clinic_timezone":       {},
	"operating_hours":       {},
}

// instructionsFields land in the AI-instructions bucket.
var instructionsFields = map[string]struct{}{
	"greeting":          {},
	"ai_assistant_role": {},
	"conversation_flow": {},
	"needs_review":      {},
	"tasks":             {},

	"is_clinic_pix_shared":         {},
	"accepted_payment_methods":     {},
	"is_health_insurance_accepted": {},
	"health_insurances_accepted":   {},
	"health_insurance_specifics":   {},

	"if_booking_fails_send_needs_review": {},
	"capture_info":                       {},

	"is_ai_allowed_to_send_product_prices":   {},
	"is_ai_allowed_to_send_product_pictures": {},

	"lead_status_ai_activated": {},
	"hot_lead":                 {},
}

// calendarLogicFields land in the scheduling-settings bucket.
var calendarLogicFields = map[string]struct{}{
	"crm_provider_other": {},
}

// clientProfileFields land in the people/company bucket.
var clientProfileFields = map[string]struct{}{
	"project_responsible_role":  {},
	"project_responsible_name":  {},
	"project_responsible_phone": {},
	"owner_name":                {},
	"owner_phone":               {},
	"platform_users":            {},
	"clinic_cnpj":               {},
	"clinic_type":               {},
	"clinic_type_other":         {},
	"clinic_website":            {},
	"clinic_pix_key":            {},
}

// productsFields land in the catalog-scale bucket.
var productsFields = map[string]struct{}{
	"how_many_products": {},
	"how_many_doctors":  {},
}

// painPointsFields land in the free-text pain-points bucket.
var painPointsFields = map[string]struct{}{
	"main_pain_points": {},
}

// onboardingDataFields land in the catch-all bucket explicitly; unknown keys
// land there too via the fallback route.
var onboardingDataFields = map[string]struct{}{
	"notification":   {},
	"ads":            {},
	"when_lost_lead": {},

	"familiar_to_crm":            {},
	"import_contacts":            {},
	"import_ai_off_contacts":     {},
	"extra_infos":                {},
	"metricas":                   {},
	"onboarding_rating":          {},
	"onboarding_rating_feedback": {},
}

// route classifies an answer key. Total over the key namespace: keys no
// table lists go to the catch-all bucket so no answer is ever lost.
func route(key string) fieldRoute {
	if _, ok := phoneColumns[key]; ok {
		return fieldRoute{kind: routePhone, column: phoneColumns[key]}
	}
	if key == "is_ai_allow_to_book_appointments" {
		return fieldRoute{kind: routeBookingPermission, column: ColAIAllowedToBook}
	}
	if col, ok := directColumns[key]; ok {
		return fieldRoute{kind: routeDirect, column: col}
	}
	if key == "instagram_links" {
		return fieldRoute{kind: routeInstagram, column: ColInstagramLinks}
	}
	if _, ok := instructionsFields[key]; ok {
		return fieldRoute{kind: routeBucket, column: ColInstructions}
	}
	if _, ok := calendarLogicFields[key]; ok {
		return fieldRoute{kind: routeBucket, column: ColCalendarLogic}
	}
	if _, ok := clientProfileFields[key]; ok {
		return fieldRoute{kind: routeBucket, column: ColClientProfile}
	}
	if _, ok := productsFields[key]; ok {
		return fieldRoute{kind: routeBucket, column: ColProducts}
	}
	if _, ok := painPointsFields[key]; ok {
		return fieldRoute{kind: routeBucket, column: ColPainPoints}
	}
	if _, ok := onboardingDataFields[key]; ok {
		return fieldRoute{kind: routeBucket, column: ColOnboardingData}
	}
	return fieldRoute{kind: routeFallback, column: ColOnboardingData}
}

// isClinicInfoField reports whether answering key proves clinic identity
// info was supplied.
func isClinicInfoField(key string) bool {
	_, ok := clinicInfoFields[key]
	return ok
}

// isBooleanField reports whether key needs Sim/Não conversion.
func isBooleanField(key string) bool {
	_, ok := booleanFields[key]
	return ok
}
