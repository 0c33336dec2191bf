package darwin

import (
	"testing"

	"github.com/mj1618/desktop-agent/internal/platform"
)

func TestKeyCodeMap_CoversNormalizedNames(t *testing.T) {
	for _, combo := range []string{"Return", "escape", "ctrl+l", "cmd+space", "f5", "pgdn"} {
		keys := platform.NormalizeKeys(combo)
		last := keys[len(keys)-1]
		if _, ok := keyCodeMap[last]; !ok {
			t.Errorf("no key code for %q (from %q)", last, combo)
		}
	}
}

func TestKeyCodeMap_UniqueLetters(t *testing.T) {
	seen := make(map[uint16]string)
	for k, code := range keyCodeMap {
		if len(k) != 1 || k[0] < 'a' || k[0] > 'z' {
			continue
		}
		if prev, ok := seen[code]; ok {
			t.Errorf("letters %q and %q share key code %#x", prev, k, code)
		}
		seen[code] = k
	}
	if len(seen) != 26 {
		t.Errorf("got %d letters, want 26", len(seen))
	}
}
