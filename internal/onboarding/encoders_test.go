package onboarding

import (
	"reflect"
	"testing"
)

func TestPhoneToInt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
		ok   bool
	}{
		{"mobile with ddd", "11987654321", 5511987654321, true},
		{"landline with ddd", "1133334444", 551133334444, true},
		{"already has country code", "5511987654321", 5511987654321, true},
		{"twelve digit landline", "551133334444", 551133334444, true},
		{"formatted", "+55 (11) 98765-4321", 5511987654321, true},
		{"too short", "123", 0, false},
		{"nine digits", "119876543", 0, false},
		{"fourteen digits", "55119876543210", 0, false},
		{"no digits", "sem telefone", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PhoneToInt(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("PhoneToInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
		ok   bool
	}{
		{"Sim", true, true},
		{"sim", true, true},
		{"Sim, desligar automaticamente", true, true},
		{"Sim quero", true, true},
		{"Não", false, true},
		{"nao", false, true},
		{"Não, manter ativa", false, true},
		{"simpático", false, false},
		{"talvez", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		got, ok := ParseBool(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseBool(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIntervalToHours(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"A cada 24 horas", 24, true},
		{"A cada 48 horas", 48, true},
		{"12", 12, true},
		{"Nunca reativar", 0, false},
		{"nunca", 0, false},
		{"sem prazo", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := IntervalToHours(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("IntervalToHours(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseBookingPermission(t *testing.T) {
	tests := []struct {
		in   string
		want BookingPermission
	}{
		{"Sim, apenas consultas", BookingPermission{Allowed: true, Specificity: SpecificityAppointmentsOnly}},
		{"Sim, apenas tratamentos", BookingPermission{Allowed: true, Specificity: SpecificityTreatmentsOnly}},
		{"Sim, consultas e tratamentos", BookingPermission{Allowed: true, Specificity: SpecificityBoth}},
		{"Nenhum agendamento automático", BookingPermission{}},
		{"Tudo passa por revisão humana", BookingPermission{}},
		{"Sim", BookingPermission{Allowed: true}},
		{"", BookingPermission{}},
	}
	for _, tt := range tests {
		if got := ParseBookingPermission(tt.in); got != tt.want {
			t.Errorf("ParseBookingPermission(%q) = %+v; want %+v", tt.in, got, tt.want)
		}
	}
}

func TestLeadStatusToIDs(t *testing.T) {
	tests := []struct {
		name string
		in   AnswerValue
		want []int
	}{
		{"comma separated", String("Em Contato, Interessado"), []int{2, 3}},
		{"native array", Array("Novo Lead", "Comprou"), []int{1, 8}},
		{"json array string", String(`["Quer Agendar","Agendado"]`), []int{4, 6}},
		{"unknown labels filtered", String("Em Contato, Perdido"), []int{2}},
		{"all unknown", String("Perdido"), nil},
		{"object answer", Object(map[string]any{"x": 1}), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LeadStatusToIDs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LeadStatusToIDs = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestTimezoneToZoneID(t *testing.T) {
	if got := TimezoneToZoneID("Brasília (GMT-3)"); got != "America/Sao_Paulo" {
		t.Errorf("zone = %q", got)
	}
	if got := TimezoneToZoneID("Manaus (GMT-4)"); got != "America/Manaus" {
		t.Errorf("zone = %q", got)
	}
	// Already canonical input passes through.
	if got := TimezoneToZoneID("America/Recife"); got != "America/Recife" {
		t.Errorf("zone = %q", got)
	}
}
