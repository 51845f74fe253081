// ABOUTME: Tests for geographic level ordering and API code mapping
// ABOUTME: Verifies specificity ranks drive most-specific-wins deduplication

package models

import "testing"

func TestGeoLevel_Specificity(t *testing.T) {
	if LevelStation.Specificity() <= LevelDistrict.Specificity() {
		t.Error("station should be more specific than district")
	}
	if LevelDistrict.Specificity() <= LevelCity.Specificity() {
		t.Error("district should be more specific than city")
	}
	if GeoLevel("region").Specificity() != 0 {
		t.Error("unknown level should rank below all defined levels")
	}
}

func TestGeoLevel_AreaType(t *testing.T) {
	tests := []struct {
		name  string
		level GeoLevel
		want  int
	}{
		{"station", LevelStation, 0},
		{"district", LevelDistrict, 1},
		{"city", LevelCity, 2},
		{"unknown", GeoLevel("region"), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.AreaType(); got != tt.want {
				t.Errorf("AreaType() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGeoLevel_IsValid(t *testing.T) {
	for _, l := range []GeoLevel{LevelCity, LevelDistrict, LevelStation} {
		if !l.IsValid() {
			t.Errorf("%s should be valid", l)
		}
	}
	if GeoLevel("").IsValid() {
		t.Error("empty level should be invalid")
	}
}
