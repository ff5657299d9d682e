// Package integrity checks computed availability aggregates for
// internal consistency before they are served. Findings are collected,
// never thrown: callers decide whether a warning-only dataset is
// acceptable.
package integrity

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicflow/availability-api/internal/model"
	"github.com/clinicflow/availability-api/pkg/dateutil"
)

const (
	CheckDateFormat   = "date_format"
	CheckSlotCounts   = "slot_counts"
	CheckLevel        = "availability_level"
	CheckDateSequence = "date_sequence"
	CheckMockData     = "mock_data"
	CheckPerformance  = "performance"

	// latencyBudget bounds the validator itself; exceeding it is a
	// warning, not a failure.
	latencyBudget = 50 * time.Millisecond

	// mockDataMinRecords is the smallest dataset the uniformity
	// heuristic will flag.
	mockDataMinRecords = 5
)

type Validator struct {
	logger zerolog.Logger
}

func NewValidator(logger zerolog.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate runs every check over the dataset, accumulating findings
// rather than short-circuiting. IsValid is true iff no errors were
// recorded; warnings never affect it.
func (v *Validator) Validate(data []model.DayAvailabilityData, component, source string) model.ValidationResult {
	started := time.Now()
	result := model.ValidationResult{
		Errors:   []model.ValidationError{},
		Warnings: []model.ValidationWarning{},
	}

	checks := []struct {
		name string
		run  func([]model.DayAvailabilityData, *model.ValidationResult)
	}{
		{CheckDateFormat, v.checkDateFormat},
		{CheckSlotCounts, v.checkSlotCounts},
		{CheckLevel, v.checkAvailabilityLevels},
		{CheckDateSequence, v.checkDateSequence},
		{CheckMockData, v.checkMockData},
	}

	ran := make([]string, 0, len(checks)+1)
	for _, c := range checks {
		c.run(data, &result)
		ran = append(ran, c.name)
	}

	duration := time.Since(started)
	if duration > latencyBudget {
		result.Warnings = append(result.Warnings, model.ValidationWarning{
			Check:   CheckPerformance,
			Message: fmt.Sprintf("validation took %v, budget is %v", duration, latencyBudget),
		})
	}
	ran = append(ran, CheckPerformance)

	result.IsValid = len(result.Errors) == 0
	result.Metadata = model.ValidationMetadata{
		Timestamp:   started,
		Component:   component,
		Source:      source,
		RecordCount: len(data),
		Duration:    duration,
		ChecksRun:   ran,
	}

	v.logger.Debug().
		Str("component", component).
		Str("source", source).
		Int("records", len(data)).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Dur("duration", duration).
		Msg("availability dataset validated")

	return result
}

func (v *Validator) checkDateFormat(data []model.DayAvailabilityData, result *model.ValidationResult) {
	for _, day := range data {
		outcome := dateutil.ValidateAndNormalize(day.Date)
		if !outcome.IsValid {
			result.Errors = append(result.Errors, model.ValidationError{
				Check:    CheckDateFormat,
				Severity: model.SeverityCritical,
				Date:     day.Date,
				Message:  fmt.Sprintf("invalid date %q: %v", day.Date, outcome.Err),
			})
			continue
		}
		if outcome.Displacement.Detected {
			result.Errors = append(result.Errors, model.ValidationError{
				Check:    CheckDateFormat,
				Severity: model.SeverityHigh,
				Date:     day.Date,
				Message:  "date displacement detected",
				Detail: map[string]interface{}{
					"original":   outcome.Displacement.Original,
					"normalized": outcome.Displacement.Normalized,
					"day_delta":  outcome.Displacement.DayDelta,
				},
			})
		}
	}
}

func (v *Validator) checkSlotCounts(data []model.DayAvailabilityData, result *model.ValidationResult) {
	for _, day := range data {
		available := 0
		for _, slot := range day.Slots {
			if slot.Available {
				available++
			}
		}

		if day.AvailableSlots > day.TotalSlots {
			result.Errors = append(result.Errors, model.ValidationError{
				Check:    CheckSlotCounts,
				Severity: model.SeverityCritical,
				Date:     day.Date,
				Message:  "impossible slot count: available exceeds total",
				Detail: map[string]interface{}{
					"available_slots": day.AvailableSlots,
					"total_slots":     day.TotalSlots,
				},
			})
		}

		if available != day.AvailableSlots {
			result.Errors = append(result.Errors, model.ValidationError{
				Check:    CheckSlotCounts,
				Severity: model.SeverityHigh,
				Date:     day.Date,
				Message:  "available slot count does not match slot data",
				Detail: map[string]interface{}{
					"aggregate": day.AvailableSlots,
					"recounted": available,
				},
			})
		}

		if len(day.Slots) != day.TotalSlots {
			result.Warnings = append(result.Warnings, model.ValidationWarning{
				Check:   CheckSlotCounts,
				Date:    day.Date,
				Message: fmt.Sprintf("total slot count %d does not match %d raw slots", day.TotalSlots, len(day.Slots)),
			})
		}
	}
}

func (v *Validator) checkAvailabilityLevels(data []model.DayAvailabilityData, result *model.ValidationResult) {
	for _, day := range data {
		expected := model.LevelForSlotCount(day.SlotsCount)
		if day.AvailabilityLevel != expected {
			result.Warnings = append(result.Warnings, model.ValidationWarning{
				Check:   CheckLevel,
				Date:    day.Date,
				Message: fmt.Sprintf("availability level %q does not match recomputed %q for %d slots", day.AvailabilityLevel, expected, day.SlotsCount),
			})
		}
	}
}

func (v *Validator) checkDateSequence(data []model.DayAvailabilityData, result *model.ValidationResult) {
	for i := 1; i < len(data); i++ {
		diff, err := dateutil.DaysDifference(data[i-1].Date, data[i].Date)
		if err != nil {
			// Unparseable dates were already reported by the format check.
			continue
		}
		if diff != 1 {
			result.Warnings = append(result.Warnings, model.ValidationWarning{
				Check:   CheckDateSequence,
				Date:    data[i].Date,
				Message: fmt.Sprintf("dates %s and %s are %d days apart, expected 1", data[i-1].Date, data[i].Date, diff),
			})
		}
	}
}

// checkMockData flags suspiciously uniform datasets: enough weekday
// records all carrying one identical non-zero slot count usually means
// synthetic data leaked into the pipeline.
func (v *Validator) checkMockData(data []model.DayAvailabilityData, result *model.ValidationResult) {
	counts := make(map[int]int)
	weekdays := 0
	for _, day := range data {
		if day.IsWeekend {
			continue
		}
		weekdays++
		counts[day.SlotsCount]++
	}
	if weekdays < mockDataMinRecords {
		return
	}
	for count, occurrences := range counts {
		if count > 0 && occurrences == weekdays {
			result.Warnings = append(result.Warnings, model.ValidationWarning{
				Check:   CheckMockData,
				Message: fmt.Sprintf("all %d weekday records report exactly %d slots; dataset looks synthetic", weekdays, count),
			})
		}
	}
}
