package gatekeeper

import (
	"testing"

	"alumni-check/internal/claim"
)

func TestHelpCallbackDataRoundTrip(t *testing.T) {
	c := claim.Claim{FullName: "Иванов Иван", Year: 2015, Klass: 3}
	data := helpCallbackData(11, c, "Мария Петровна")

	uid, got, teacher, ok := parseHelpCallback(data)
	if !ok {
		t.Fatalf("payload does not parse: %q", data)
	}
	if uid != 11 || got != c || teacher != "Мария Петровна" {
		t.Fatalf("round trip lost data: uid=%d claim=%+v teacher=%q", uid, got, teacher)
	}
}

func TestHelpCallbackDataFitsTelegramLimit(t *testing.T) {
	// Cyrillic is two bytes per rune; this name alone is over the limit.
	c := claim.Claim{FullName: "Александровская-Преображенская Анастасия", Year: 2015, Klass: 11}
	data := helpCallbackData(1234567890, c, "Марья Ивановна Очень-Длинная")

	if len(data) > maxCallbackData {
		t.Fatalf("callback data is %d bytes, limit %d: %q", len(data), maxCallbackData, data)
	}
	uid, got, _, ok := parseHelpCallback(data)
	if !ok {
		t.Fatalf("truncated payload does not parse: %q", data)
	}
	if uid != 1234567890 || got.Year != 2015 || got.Klass != 11 {
		t.Fatalf("truncation corrupted fixed fields: uid=%d claim=%+v", uid, got)
	}
}

func TestParseHelpCallbackRejectsForeignData(t *testing.T) {
	for _, data := range []string{"", "reset_ctx", "admin_help_", "admin_help_x_y_z"} {
		if _, _, _, ok := parseHelpCallback(data); ok {
			t.Errorf("parseHelpCallback(%q) accepted", data)
		}
	}
}
