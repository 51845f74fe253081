// ABOUTME: Geographic entity types resolved from question text
// ABOUTME: Levels order coarse to fine so specificity comparisons are numeric
package models

// GeoLevel is the administrative granularity of a resolved location
type GeoLevel string

const (
	LevelCity     GeoLevel = "city"
	LevelDistrict GeoLevel = "district"
	LevelStation  GeoLevel = "station"
)

// IsValid checks whether the level is one of the defined granularities
func (l GeoLevel) IsValid() bool {
	switch l {
	case LevelCity, LevelDistrict, LevelStation:
		return true
	}
	return false
}

// Specificity returns a rank where finer levels are larger.
// Station beats district beats city when deduplicating.
func (l GeoLevel) Specificity() int {
	switch l {
	case LevelStation:
		return 3
	case LevelDistrict:
		return 2
	case LevelCity:
		return 1
	}
	return 0
}

// AreaType returns the numeric area code the reporting API expects
func (l GeoLevel) AreaType() int {
	switch l {
	case LevelStation:
		return 0
	case LevelDistrict:
		return 1
	case LevelCity:
		return 2
	}
	return -1
}

// GeoEntry is one row of the location mapping table
type GeoEntry struct {
	Name       string   `json:"name"`
	Code       string   `json:"code"`
	Level      GeoLevel `json:"level"`
	ParentCode string   `json:"parent_code,omitempty"`
}

// GeoCandidate is a fuzzy match against the mapping table
type GeoCandidate struct {
	Name       string   `json:"name"`
	Code       string   `json:"code"`
	Level      GeoLevel `json:"level"`
	ParentCode string   `json:"parent_code,omitempty"`
	Confidence int      `json:"confidence"`
	Matched    string   `json:"matched,omitempty"`
}
