package version

import (
	"strings"
	"testing"
)

func TestString_Dirty(t *testing.T) {
	oldV, oldD := Version, Dirty
	defer func() { Version, Dirty = oldV, oldD }()

	Version, Dirty = "1.2.3", "false"
	if got := String(); got != "1.2.3" {
		t.Errorf("String() = %q", got)
	}

	Dirty = "true"
	if got := String(); got != "1.2.3-dirty" {
		t.Errorf("String() = %q, want dirty suffix", got)
	}
	if !Get().Dirty {
		t.Error("Get().Dirty = false, want true")
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.HasPrefix(full, "auctionwatch ") {
		t.Errorf("Full() should start with the program name, got %q", full)
	}
	for _, want := range []string{"Commit:", "Built:", "Go version:", "OS/Arch:"} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() missing %q", want)
		}
	}
}
