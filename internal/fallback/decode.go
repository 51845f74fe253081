// ABOUTME: Decoders turning envelope result_data into typed parameters
// ABOUTME: Tolerant of both date and datetime strings from the model
package fallback

import (
	"fmt"
	"time"

	"github.com/ecosense/aqroute/internal/models"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseModelTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// DecodeTimeRanges reads result_data["time_ranges"] entries
func DecodeTimeRanges(data map[string]any) ([]models.TimeRange, error) {
	raw, ok := data["time_ranges"].([]any)
	if !ok {
		return nil, fmt.Errorf("result_data has no time_ranges list")
	}
	out := make([]models.TimeRange, 0, len(raw))
	for i, item := range raw {
		r, err := decodeRange(item)
		if err != nil {
			return nil, fmt.Errorf("time_ranges[%d]: %w", i, err)
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("time_ranges list is empty")
	}
	return out, nil
}

// DecodeContrastTime reads result_data["contrast_time"]
func DecodeContrastTime(data map[string]any) (*models.TimeRange, error) {
	raw, ok := data["contrast_time"]
	if !ok {
		return nil, fmt.Errorf("result_data has no contrast_time")
	}
	r, err := decodeRange(raw)
	if err != nil {
		return nil, fmt.Errorf("contrast_time: %w", err)
	}
	return &r, nil
}

func decodeRange(item any) (models.TimeRange, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return models.TimeRange{}, fmt.Errorf("not an object")
	}
	startStr, _ := obj["start"].(string)
	endStr, _ := obj["end"].(string)
	start, err := parseModelTime(startStr)
	if err != nil {
		return models.TimeRange{}, err
	}
	end, err := parseModelTime(endStr)
	if err != nil {
		return models.TimeRange{}, err
	}
	if end.Before(start) {
		return models.TimeRange{}, fmt.Errorf("end %v before start %v", end, start)
	}
	// Bare dates mean whole inclusive days
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		end = end.Add(24*time.Hour - time.Second)
	}
	return models.TimeRange{Start: start, End: end, Precision: models.PrecisionRelativeRecent}, nil
}

// DecodeLocations reads result_data["locations"] entries
func DecodeLocations(data map[string]any) ([]models.GeoCandidate, error) {
	raw, ok := data["locations"].([]any)
	if !ok {
		return nil, fmt.Errorf("result_data has no locations list")
	}
	out := make([]models.GeoCandidate, 0, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("locations[%d]: not an object", i)
		}
		name, _ := obj["name"].(string)
		code, _ := obj["code"].(string)
		levelStr, _ := obj["level"].(string)
		level := models.GeoLevel(levelStr)
		if code == "" || !level.IsValid() {
			return nil, fmt.Errorf("locations[%d]: missing code or bad level %q", i, levelStr)
		}
		out = append(out, models.GeoCandidate{
			Name: name, Code: code, Level: level, Confidence: 80,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("locations list is empty")
	}
	return out, nil
}

// MergeParameters overlays model-supplied fields onto extracted parameters.
// Only fields the model actually returned are touched, so a partial
// supplement never erases deterministic results.
func MergeParameters(base *models.ExtractedParameters, data map[string]any) {
	if locs, err := DecodeLocations(data); err == nil {
		base.Locations = locs
	}
	if ranges, err := DecodeTimeRanges(data); err == nil {
		base.TimeRanges = ranges
	}
	if ct, err := DecodeContrastTime(data); err == nil {
		base.ContrastTime = ct
	}
	if tt, ok := data["time_type"].(float64); ok {
		if t := models.TimeType(int(tt)); t.IsValid() {
			base.TimeType = t
		}
	}
	if ds, ok := data["data_source"].(float64); ok {
		if s := models.DataSource(int(ds)); s.IsValid() {
			base.DataSource = s
		}
	}
}
