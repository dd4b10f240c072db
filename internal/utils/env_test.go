package utils

import (
	"testing"
	"time"
)

func TestSafeEnv(t *testing.T) {
	const key = "_INFORMA_TEST_SAFEENV"
	t.Setenv(key, "")
	if got := SafeEnv(key, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv(key, " value ")
	if got := SafeEnv(key, "fallback"); got != "value" {
		t.Fatalf("expected 'value', got %q", got)
	}
}

func TestEnvInt(t *testing.T) {
	const key = "_INFORMA_TEST_ENVINT"
	t.Setenv(key, "12")
	if got := EnvInt(key, 3); got != 12 {
		t.Fatalf("want 12, got %d", got)
	}
	t.Setenv(key, "twelve")
	if got := EnvInt(key, 3); got != 3 {
		t.Fatalf("want fallback 3, got %d", got)
	}
}

func TestEnvDuration(t *testing.T) {
	const key = "_INFORMA_TEST_ENVDURATION"
	t.Setenv(key, "90s")
	if got := EnvDuration(key, time.Second); got != 90*time.Second {
		t.Fatalf("want 90s, got %s", got)
	}
	t.Setenv(key, "30")
	if got := EnvDuration(key, time.Second); got != 30*time.Second {
		t.Fatalf("want 30s, got %s", got)
	}
	t.Setenv(key, "soon")
	if got := EnvDuration(key, time.Second); got != time.Second {
		t.Fatalf("want fallback, got %s", got)
	}
}
