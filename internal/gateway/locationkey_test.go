package gateway

import "testing"

// TestLocationKey verifies the 2-decimal fingerprint format and that
// coordinate pairs rounding to the same 2-decimal values share a key.
func TestLocationKey(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"exact", 51.50, -0.12, "51.50,-0.12"},
		{"rounds down", 51.504, -0.124, "51.50,-0.12"},
		{"rounds up", 51.506, -0.126, "51.51,-0.13"},
		{"zero", 0, 0, "0.00,0.00"},
		{"negative", -33.8688, 151.2093, "-33.87,151.21"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LocationKey(tc.lat, tc.lon); got != tc.want {
				t.Errorf("LocationKey(%v, %v) = %q, want %q", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}

// TestLocationKey_Bucketing verifies the geographic bucketing invariant:
// nearby coordinates that round identically collide on the same key.
func TestLocationKey_Bucketing(t *testing.T) {
	pairs := [][2]float64{
		{40.7128, -74.0060},
		{40.7131, -74.0055},
		{40.7096, -74.0104},
	}
	first := LocationKey(pairs[0][0], pairs[0][1])
	for _, p := range pairs[1:] {
		if got := LocationKey(p[0], p[1]); got != first {
			t.Errorf("LocationKey(%v, %v) = %q, want shared key %q", p[0], p[1], got, first)
		}
	}
}
