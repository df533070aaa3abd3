package onboarding

import (
	"encoding/json"
	"sort"

	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

// DropObserver counts answers the pipeline degraded to "drop this field".
// Drops are best effort by design and never fail a batch; the observer
// exists so they are at least visible.
type DropObserver interface {
	ObserveDroppedField(key, reason string)
}

// Synthesizer folds a batch of raw answers into the set of columns to write.
// It holds no per-record state; each call is a pure transform over the batch
// and the previously persisted record.
type Synthesizer struct {
	logger *logging.Logger
	drops  DropObserver
}

// NewSynthesizer creates a synthesizer. drops may be nil.
func NewSynthesizer(logger *logging.Logger, drops DropObserver) *Synthesizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Synthesizer{logger: logger, drops: drops}
}

// Synthesize computes the column write for one answer batch. Buckets are
// seeded from the existing record and merged key-level in memory; scalar
// columns appear only when their encoder produced a usable value. Keys are
// processed in sorted order so same-destination collisions resolve
// deterministically (last write wins).
func (s *Synthesizer) Synthesize(answers map[string]AnswerValue, existing *Record) ColumnWrite {
	write := ColumnWrite{}

	instructions := seedBucket(existing, func(r *Record) Bucket { return r.Instructions })
	calendarLogic := seedBucket(existing, func(r *Record) Bucket { return r.CalendarLogic })
	clientProfile := seedBucket(existing, func(r *Record) Bucket { return r.ClientProfile })
	products := seedBucket(existing, func(r *Record) Bucket { return r.Products })
	painPoints := seedBucket(existing, func(r *Record) Bucket { return r.PainPoints })
	onboardingData := seedBucket(existing, func(r *Record) Bucket { return r.OnboardingData })

	buckets := map[string]Bucket{
		ColInstructions:   instructions,
		ColCalendarLogic:  calendarLogic,
		ColClientProfile:  clientProfile,
		ColProducts:       products,
		ColPainPoints:     painPoints,
		ColOnboardingData: onboardingData,
	}

	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clinicInfoSeen := false
	for _, key := range keys {
		value := answers[key]
		if value.IsEmpty() {
			continue
		}
		if isClinicInfoField(key) {
			clinicInfoSeen = true
		}

		r := route(key)
		switch r.kind {
		case routePhone:
			n, ok := PhoneToInt(value.Str)
			if !ok {
				s.drop(key, "invalid_phone")
				continue
			}
			write[r.column] = n

		case routeBookingPermission:
			perm := ParseBookingPermission(value.Str)
			write[r.column] = perm.Allowed
			if perm.Specificity != "" {
				instructions["booking_permission_specificity"] = perm.Specificity
			} else {
				instructions["booking_permission_specificity"] = nil
			}
			instructions["is_ai_allow_to_book_appointments_raw"] = value.Str

		case routeDirect:
			s.writeDirect(write, instructions, key, r.column, value)

		case routeInstagram:
			if links := instagramLinks(value); len(links) > 0 {
				write[r.column] = links
			} else {
				s.drop(key, "no_links")
			}

		case routeBucket, routeFallback:
			buckets[r.column][key] = value.Structured()
		}
	}

	// Identity info is monotonic: the flag is asserted whenever an identity
	// field shows up and is never reset by this pipeline.
	if clinicInfoSeen {
		write[ColClinicInfoAdded] = true
	}

	for column, bucket := range buckets {
		if len(bucket) > 0 {
			write[column] = bucket
		}
	}
	return write
}

// writeDirect handles the scalar columns, applying the per-key sub-transform
// the Field Router marks. Raw values of converted fields are mirrored into
// the instructions bucket for context.
func (s *Synthesizer) writeDirect(write ColumnWrite, instructions Bucket, key, column string, value AnswerValue) {
	if isBooleanField(key) {
		b, ok := ParseBool(value.Str)
		if !ok {
			s.drop(key, "ambiguous_boolean")
			return
		}
		write[column] = b
		instructions[key+"_raw"] = value.Str
		return
	}

	switch key {
	case "ai_reactivation_interval":
		instructions["ai_reactivation_interval_raw"] = value.Str
		hours, ok := IntervalToHours(value.Str)
		if !ok {
			s.drop(key, "no_interval")
			return
		}
		write[column] = hours

	case "reactivation_lead_status_ids":
		ids := LeadStatusToIDs(value)
		if len(ids) == 0 {
			s.drop(key, "no_known_status")
			return
		}
		write[column] = ids

	case "clinic_timezone":
		write[column] = TimezoneToZoneID(sanitizeString(value.Str, maxAnswerLength))

	case "operating_hours":
		if obj, ok := value.AsObject(); ok {
			// Opening hours get their own blocks column; availability_blocks
			// belongs to the deactivation schedule and must survive this write.
			if blocks := OperatingHoursToBlocks(obj); len(blocks) > 0 {
				write[ColOperatingHoursBlocks] = blocks
			}
			// The descriptive column keeps the raw day map as JSON text.
			if data, err := json.Marshal(obj); err == nil {
				write[column] = string(data)
			}
			return
		}
		if clean := sanitizeString(value.Str, maxAnswerLength); clean != "" {
			write[column] = clean
		}

	case "deactivation_schedule":
		instructions["deactivation_schedule_raw"] = value.Structured()
		obj, ok := value.AsObject()
		if !ok {
			s.drop(key, "malformed_schedule")
			return
		}
		blocks := DeactivationScheduleToBlocks(obj)
		if len(blocks) == 0 {
			// always_on or no usable day: nothing to deactivate.
			s.drop(key, "empty_schedule")
			return
		}
		write[column] = blocks

	default:
		if value.Kind != KindString {
			write[column] = value.Structured()
			return
		}
		if clean := sanitizeString(value.Str, maxAnswerLength); clean != "" {
			write[column] = clean
		}
	}
}

// instagramLinks flattens the instagram answer into the text[] form: plain
// strings pass through, {username, type} objects become "@username (type)".
func instagramLinks(value AnswerValue) []string {
	structured := value.Structured()
	items, ok := structured.([]any)
	if !ok {
		if s, isStr := structured.(string); isStr && s != "" {
			return []string{s}
		}
		return nil
	}

	var links []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				links = append(links, v)
			}
		case map[string]any:
			username, _ := v["username"].(string)
			if username == "" {
				continue
			}
			link := "@" + username
			if kind, _ := v["type"].(string); kind != "" {
				link += " (" + kind + ")"
			}
			links = append(links, link)
		}
	}
	return links
}

func seedBucket(existing *Record, pick func(*Record) Bucket) Bucket {
	if existing == nil {
		return Bucket{}
	}
	return pick(existing).Clone()
}

func (s *Synthesizer) drop(key, reason string) {
	s.logger.Debug("answer dropped", "key", key, "reason", reason)
	if s.drops != nil {
		s.drops.ObserveDroppedField(key, reason)
	}
}
