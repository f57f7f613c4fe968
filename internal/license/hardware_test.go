package license

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madaris/pkg/contracts/domain"
)

// TestCollectDeterministic tests that collection is stable within a process run
func TestCollectDeterministic(t *testing.T) {
	collector := NewCollector()

	first := collector.Collect()
	second := collector.Collect()

	assert.Equal(t, first, second)
	assert.Equal(t, Fingerprint(first), Fingerprint(second))
}

// TestCollectNeverEmpty tests that every component has a value even when probes fail
func TestCollectNeverEmpty(t *testing.T) {
	hw := NewCollector().Collect()

	assert.NotEmpty(t, hw.Motherboard)
	assert.NotEmpty(t, hw.CPU)
	assert.NotEmpty(t, hw.MAC)
	assert.NotEmpty(t, hw.Drive)

	assert.LessOrEqual(t, len(hw.Motherboard), maxComponentLen)
	assert.LessOrEqual(t, len(hw.CPU), maxComponentLen)
	assert.LessOrEqual(t, len(hw.MAC), maxComponentLen)
	assert.LessOrEqual(t, len(hw.Drive), maxComponentLen)
}

// TestFingerprintFormat tests the 32-hex fingerprint shape
func TestFingerprintFormat(t *testing.T) {
	hw := domain.HardwareInfo{Motherboard: "M1", CPU: "C1", MAC: "A0", Drive: "D1"}

	fp := Fingerprint(hw)

	require.Len(t, fp, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", fp)

	// Same input, same fingerprint; any component change flips it.
	assert.Equal(t, fp, Fingerprint(hw))
	changed := hw
	changed.Drive = "D2"
	assert.NotEqual(t, fp, Fingerprint(changed))
}

// TestMatchCount tests that mutating k components yields 4-k matches
func TestMatchCount(t *testing.T) {
	base := domain.HardwareInfo{Motherboard: "M1", CPU: "C1", MAC: "A0", Drive: "D1"}

	tests := []struct {
		name    string
		mutate  func(hw *domain.HardwareInfo)
		matches int
	}{
		{
			name:    "identical",
			mutate:  func(hw *domain.HardwareInfo) {},
			matches: 4,
		},
		{
			name:    "one changed",
			mutate:  func(hw *domain.HardwareInfo) { hw.Motherboard = "M2" },
			matches: 3,
		},
		{
			name: "two changed",
			mutate: func(hw *domain.HardwareInfo) {
				hw.Motherboard = "M2"
				hw.CPU = "C2"
			},
			matches: 2,
		},
		{
			name: "three changed",
			mutate: func(hw *domain.HardwareInfo) {
				hw.Motherboard = "M2"
				hw.CPU = "C2"
				hw.MAC = "A1"
			},
			matches: 1,
		},
		{
			name: "all changed",
			mutate: func(hw *domain.HardwareInfo) {
				hw.Motherboard = "M2"
				hw.CPU = "C2"
				hw.MAC = "A1"
				hw.Drive = "D2"
			},
			matches: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := base
			tt.mutate(&current)
			assert.Equal(t, tt.matches, MatchCount(base, current))
		})
	}
}

// TestClampComponent tests trimming, the length cap and the empty fallback
func TestClampComponent(t *testing.T) {
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'x'
	}

	assert.Equal(t, "ABC", clampComponent("  ABC  "))
	assert.Len(t, clampComponent(string(long)), maxComponentLen)

	// The cap counts runes; a multibyte vendor string must not be split
	// inside a character.
	wide := strings.Repeat("ж", 60)
	clamped := clampComponent(wide)
	assert.True(t, utf8.ValidString(clamped))
	assert.Equal(t, maxComponentLen, len([]rune(clamped)))

	// Empty input falls back to a 16-hex hash, never an empty string.
	fallback := clampComponent("   ")
	require.Len(t, fallback, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", fallback)
}

// TestFallbackHash tests the 16-hex md5 fallback shape and determinism
func TestFallbackHash(t *testing.T) {
	a := fallbackHash("descriptor")
	b := fallbackHash("descriptor")

	require.Len(t, a, 16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, fallbackHash("other"))
}
