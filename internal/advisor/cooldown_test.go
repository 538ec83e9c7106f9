package advisor

import (
	"testing"
	"time"
)

func TestFixedWindowCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cd := NewFixedWindowCooldown(10*time.Second, func() time.Time { return now })

	if !cd.Allow("a") {
		t.Fatal("first hit should pass")
	}
	if cd.Allow("a") {
		t.Fatal("second hit inside the window should block")
	}
	if !cd.Allow("b") {
		t.Fatal("keys must cool down independently")
	}

	now = now.Add(9 * time.Second)
	if cd.Allow("a") {
		t.Fatal("hit at 9s should still block")
	}
	now = now.Add(1 * time.Second)
	if !cd.Allow("a") {
		t.Fatal("hit at the window boundary should pass")
	}

	if got := cd.RetryAfter(); got != 10*time.Second {
		t.Fatalf("RetryAfter = %v, want 10s", got)
	}
}

func TestFixedWindowCooldownDefaults(t *testing.T) {
	cd := NewFixedWindowCooldown(0, nil)
	if cd.window != defaultCooldownWindow {
		t.Fatalf("window = %v, want default", cd.window)
	}
	if !cd.Allow("x") {
		t.Fatal("first hit should pass")
	}
	if cd.Allow("x") {
		t.Fatal("immediate second hit should block")
	}
}
