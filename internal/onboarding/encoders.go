package onboarding

import (
	"strconv"
	"strings"
)

// defaultCountryPrefix is prepended to national numbers (DDD + number) that
// arrive without a country code.
const defaultCountryPrefix = "55"

// maxAnswerLength caps sanitized free-text answers.
const maxAnswerLength = 1000

// PhoneToInt normalizes a phone answer to the bigint the record stores.
// Non-digits are stripped; fewer than 10 digits means the answer is
// incomplete and is dropped. 10 or 11 digits are a national number missing
// the country code, so the default prefix is prepended. Anything that does
// not end up with 12 or 13 digits is dropped.
func PhoneToInt(raw string) (int64, bool) {
	digits := digitsOnly(raw)
	if len(digits) < 10 {
		return 0, false
	}
	if len(digits) <= 11 {
		digits = defaultCountryPrefix + digits
	}
	if len(digits) < 12 || len(digits) > 13 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseBool maps a Sim/Não style answer to a boolean. Anything that is not
// clearly affirmative or negative is ambiguous and reported as not-ok so the
// field is dropped rather than stored as false.
func ParseBool(raw string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if hasAnswerPrefix(v, "sim") {
		return true, true
	}
	if hasAnswerPrefix(v, "não") || hasAnswerPrefix(v, "nao") {
		return false, true
	}
	return false, false
}

// hasAnswerPrefix matches the word itself or the word followed by a comma or
// space, so "sim" and "Sim, desligar automaticamente" match but "simpático"
// does not.
func hasAnswerPrefix(v, word string) bool {
	return v == word || strings.HasPrefix(v, word+",") || strings.HasPrefix(v, word+" ")
}

// IntervalToHours extracts the hour count from a reactivation-interval label
// such as "A cada 24 horas". Labels containing "nunca" or without digits are
// dropped.
func IntervalToHours(raw string) (int, bool) {
	if strings.Contains(strings.ToLower(raw), "nunca") {
		return 0, false
	}
	start := -1
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(raw[start:i])
			return n, err == nil
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(raw[start:])
		return n, err == nil
	}
	return 0, false
}

// Booking-permission specificity values stored alongside the boolean column.
const (
	SpecificityAppointmentsOnly = "apenas_consultas"
	SpecificityTreatmentsOnly   = "apenas_tratamentos"
	SpecificityBoth             = "consultas_e_tratamentos"
)

// BookingPermission is the decoded form of the "can the AI book?" answer.
type BookingPermission struct {
	Allowed     bool
	Specificity string
}

// ParseBookingPermission inspects the free-text answer for known scope
// phrases. Unrecognized non-empty text defaults to allowed with no
// specificity; only explicit "nenhum"/"revisão humana" phrasing disallows.
func ParseBookingPermission(raw string) BookingPermission {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return BookingPermission{}
	}
	if strings.Contains(v, "nenhum") || strings.Contains(v, "revisão humana") {
		return BookingPermission{}
	}
	switch {
	case strings.Contains(v, "apenas consultas"):
		return BookingPermission{Allowed: true, Specificity: SpecificityAppointmentsOnly}
	case strings.Contains(v, "apenas tratamentos"):
		return BookingPermission{Allowed: true, Specificity: SpecificityTreatmentsOnly}
	case strings.Contains(v, "consultas e tratamentos"):
		return BookingPermission{Allowed: true, Specificity: SpecificityBoth}
	}
	return BookingPermission{Allowed: true}
}

// leadStatusIDs maps funnel-stage labels to their stable CRM ids.
var leadStatusIDs = map[string]int{
	"Novo Lead":          1,
	"Em Contato":         2,
	"Interessado":        3,
	"Quer Agendar":       4,
	"Não Compareceu":     5,
	"Agendado":           6,
	"Disposto a Comprar": 7,
	"Comprou":            8,
}

// LeadStatusToIDs converts a lead-status answer into the id array the record
// stores. The answer may be a native array, a JSON array string, or a
// comma-and-space separated string. Unknown labels are silently filtered.
func LeadStatusToIDs(v AnswerValue) []int {
	var labels []string
	switch v.Kind {
	case KindArray:
		for _, item := range v.Arr {
			if s, ok := item.(string); ok {
				labels = append(labels, s)
			}
		}
	case KindString:
		if arr, ok := parseJSONSafe(v.Str).([]any); ok {
			for _, item := range arr {
				if s, isStr := item.(string); isStr {
					labels = append(labels, s)
				}
			}
		} else {
			labels = strings.Split(v.Str, ", ")
		}
	default:
		return nil
	}

	var ids []int
	for _, label := range labels {
		if id, ok := leadStatusIDs[strings.TrimSpace(label)]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// timezoneByLabel maps the regional labels the wizard shows to IANA zone ids.
var timezoneByLabel = map[string]string{
	"Brasília (GMT-3)":            "America/Sao_Paulo",
	"Manaus (GMT-4)":              "America/Manaus",
	"Cuiabá (GMT-4)":              "America/Cuiaba",
	"Rio Branco (GMT-5)":          "America/Rio_Branco",
	"Fernando de Noronha (GMT-2)": "America/Noronha",
}

// TimezoneToZoneID resolves a human-readable timezone label to its zone id.
// Unrecognized input passes through unchanged, assumed already canonical.
func TimezoneToZoneID(label string) string {
	if zone, ok := timezoneByLabel[strings.TrimSpace(label)]; ok {
		return zone
	}
	return label
}
