package version

import (
	"strings"
	"testing"
)

func TestStringContainsVersion(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "accordion "+Version) {
		t.Errorf("unexpected banner %q", s)
	}
}

func TestVersionOverride(t *testing.T) {
	orig := Version
	Version = "v9.9.9"
	t.Cleanup(func() { Version = orig })
	if !strings.Contains(String(), "v9.9.9") {
		t.Errorf("banner should use the overridden version, got %q", String())
	}
}
