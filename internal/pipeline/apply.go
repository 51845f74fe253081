// ABOUTME: Helpers applying envelope result_data onto parameters and requests
// ABOUTME: Thin wrappers over the fallback decoders
package pipeline

import (
	"github.com/ecosense/aqroute/internal/fallback"
	"github.com/ecosense/aqroute/internal/models"
)

func applyResultData(params *models.ExtractedParameters, data map[string]any) {
	if data == nil {
		return
	}
	fallback.MergeParameters(params, data)
}

// applyRequestData lets an api_error_recovery verdict adjust the wire
// request before the retry. Only whitelisted fields can change.
func applyRequestData(req *models.ReportRequest, data map[string]any) {
	if tt, ok := data["time_type"].(float64); ok {
		if t := models.TimeType(int(tt)); t.IsValid() {
			req.TimeType = t
		}
	}
	if ds, ok := data["data_source"].(float64); ok {
		if s := models.DataSource(int(ds)); s.IsValid() {
			req.DataSource = s
		}
	}
	if ranges, err := fallback.DecodeTimeRanges(data); err == nil {
		req.TimePoint = [2]string{
			ranges[0].Start.Format("2006-01-02 15:04:05"),
			ranges[0].End.Format("2006-01-02 15:04:05"),
		}
	}
}
