// ABOUTME: Extracted query parameters and reporting API wire types
// ABOUTME: Numeric codes follow the external reporting API contract
package models

// TimeType is the reporting API's period classification
type TimeType int

const (
	TimeTypeWeek      TimeType = 3
	TimeTypeMonth     TimeType = 4
	TimeTypeQuarter   TimeType = 5
	TimeTypeYear      TimeType = 7
	TimeTypeArbitrary TimeType = 8
)

// IsValid checks whether the value is a period code the API accepts
func (t TimeType) IsValid() bool {
	switch t {
	case TimeTypeWeek, TimeTypeMonth, TimeTypeQuarter, TimeTypeYear, TimeTypeArbitrary:
		return true
	}
	return false
}

// DataSource selects which measurement stream the report reads
type DataSource int

const (
	SourceRawLive      DataSource = 0
	SourceReviewedLive DataSource = 1
	SourceRawStandard  DataSource = 2
	SourceReviewedStd  DataSource = 3
)

// IsValid checks whether the value is a defined measurement stream
func (s DataSource) IsValid() bool {
	return s >= SourceRawLive && s <= SourceReviewedStd
}

// ExtractedParameters holds everything the pipeline pulled out of a question
type ExtractedParameters struct {
	Locations    []GeoCandidate `json:"locations,omitempty"`
	TimeRanges   []TimeRange    `json:"time_ranges,omitempty"`
	ContrastTime *TimeRange     `json:"contrast_time,omitempty"`
	ContrastKind ContrastKind   `json:"contrast_kind,omitempty"`
	ReportKind   ReportKind     `json:"report_kind,omitempty"`
	DataSource   DataSource     `json:"data_source"`
	TimeType     TimeType       `json:"time_type"`
}

// HasLocation reports whether at least one location was resolved
func (p *ExtractedParameters) HasLocation() bool {
	return len(p.Locations) > 0
}

// HasTime reports whether at least one time range was resolved
func (p *ExtractedParameters) HasTime() bool {
	return len(p.TimeRanges) > 0
}

// Complete reports whether the structured path can call the API directly
func (p *ExtractedParameters) Complete() bool {
	if !p.HasLocation() || !p.HasTime() {
		return false
	}
	if p.ReportKind == ReportComparison && p.ContrastTime == nil {
		return false
	}
	return true
}

// ReportRequest is the converted call the reporting API client executes
type ReportRequest struct {
	Kind         ReportKind `json:"kind"`
	AreaType     int        `json:"area_type"`
	StationCodes []string   `json:"station_codes"`
	TimeType     TimeType   `json:"time_type"`
	TimePoint    [2]string  `json:"time_point"`
	ContrastTime [2]string  `json:"contrast_time,omitempty"`
	DataSource   DataSource `json:"data_source"`
}
