package utils

import "testing"

func TestT_Fallback(t *testing.T) {
	if got := T("fr", "export.team"); got != "Equipo" {
		t.Fatalf("fallback to es failed: %s", got)
	}
	if got := T("en", "export.team"); got != "Team" {
		t.Fatalf("en lookup failed: %s", got)
	}
	if got := T("es", "no.such.key"); got != "no.such.key" {
		t.Fatalf("unknown key should echo, got %s", got)
	}
}
