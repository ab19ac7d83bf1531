package cli

import (
	"strings"
	"testing"
)

func TestStyles_Banner(t *testing.T) {
	s := NewStyles(DefaultTheme)

	hit := s.Banner(true, "Very High", 0.95)
	if !strings.Contains(hit, "MANIPULATION DETECTED") {
		t.Errorf("Banner(true) = %q", hit)
	}
	if strings.Contains(hit, "NO MANIPULATION") {
		t.Errorf("Banner(true) should not read as clean: %q", hit)
	}
	if !strings.Contains(hit, "Very High, 0.95") {
		t.Errorf("Banner(true) missing confidence: %q", hit)
	}

	clean := s.Banner(false, "Low", 0)
	if !strings.Contains(clean, "NO MANIPULATION DETECTED") {
		t.Errorf("Banner(false) = %q", clean)
	}
	if !strings.Contains(clean, "Low, 0.00") {
		t.Errorf("Banner(false) missing confidence: %q", clean)
	}
}

func TestStyles_StatusBadge(t *testing.T) {
	s := NewStyles(DefaultTheme)

	for _, status := range []string{"pending", "processing", "completed", "failed", "cancelled"} {
		if got := s.StatusBadge(status); !strings.Contains(got, status) {
			t.Errorf("StatusBadge(%q) = %q", status, got)
		}
	}
}

func TestStyles_Rule(t *testing.T) {
	s := NewStyles(DefaultTheme)

	if got := s.Rule(10); !strings.Contains(got, strings.Repeat("─", 10)) {
		t.Errorf("Rule(10) = %q", got)
	}
	if got := s.Rule(0); !strings.Contains(got, "─") {
		t.Errorf("Rule(0) = %q", got)
	}
}
