package validation

import (
	"errors"
	"testing"
)

// TestParseCoordinates verifies boundary-layer coordinate validation:
// finite parsing and range bounds.
func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lon     string
		wantErr error
	}{
		{"valid", "51.5074", "-0.1278", nil},
		{"boundary north pole", "90", "0", nil},
		{"boundary south pole", "-90", "0", nil},
		{"boundary date line", "0", "-180", nil},
		{"latitude too large", "90.1", "0", ErrLatitudeOutOfRange},
		{"latitude too small", "-91", "0", ErrLatitudeOutOfRange},
		{"longitude too large", "0", "180.5", ErrLongitudeOutOfRange},
		{"longitude too small", "0", "-181", ErrLongitudeOutOfRange},
		{"garbage latitude", "abc", "0", ErrInvalidCoordinate},
		{"garbage longitude", "0", "12,5", ErrInvalidCoordinate},
		{"NaN", "NaN", "0", ErrInvalidCoordinate},
		{"infinity", "0", "+Inf", ErrInvalidCoordinate},
		{"empty", "", "0", ErrInvalidCoordinate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lat, lon, err := ParseCoordinates(tc.lat, tc.lon)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("ParseCoordinates(%q, %q) error = %v", tc.lat, tc.lon, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ParseCoordinates(%q, %q) error = %v, want %v", tc.lat, tc.lon, err, tc.wantErr)
			}
			if lat != 0 || lon != 0 {
				t.Errorf("ParseCoordinates returned (%v, %v) with error, want zeros", lat, lon)
			}
		})
	}
}

// TestValidateQuery verifies trimming and empty rejection.
func TestValidateQuery(t *testing.T) {
	got, err := ValidateQuery("  london ")
	if err != nil {
		t.Fatalf("ValidateQuery error = %v", err)
	}
	if got != "london" {
		t.Errorf("ValidateQuery = %q, want %q", got, "london")
	}

	if _, err := ValidateQuery("   "); !errors.Is(err, ErrQueryEmpty) {
		t.Errorf("ValidateQuery(whitespace) error = %v, want ErrQueryEmpty", err)
	}
}
