// Package availability is the cached range-query entry point most
// callers use. It orchestrates the slot engine across a date range,
// assembles per-day aggregates, validates the result, and caches it
// under a composite key covering every filterable dimension.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicflow/availability-api/internal/model"
	"github.com/clinicflow/availability-api/internal/service/integrity"
	"github.com/clinicflow/availability-api/internal/service/slotgen"
	"github.com/clinicflow/availability-api/pkg/dateutil"
	apperrors "github.com/clinicflow/availability-api/pkg/errors"
	"github.com/clinicflow/availability-api/pkg/messaging"
	"github.com/clinicflow/availability-api/pkg/metrics"
)

const (
	// DefaultTTL matches the observed production cache lifetime.
	DefaultTTL = 5 * time.Minute

	// MaxRangeDays caps a single query's date range.
	MaxRangeDays = 90

	// InvalidationChannel is the broadcast channel peers subscribe to
	// for cross-instance cache flushes.
	InvalidationChannel = "availability.cache.invalidate"

	pastDateReason = "date is in the past"
)

type Service struct {
	generator *slotgen.Service
	validator *integrity.Validator
	store     Store
	broker    messaging.Broker
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewService wires the query service. broker and m may be nil; the
// service then skips invalidation broadcasts and metric updates.
func NewService(generator *slotgen.Service, validator *integrity.Validator, store Store, broker messaging.Broker, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		generator: generator,
		validator: validator,
		store:     store,
		broker:    broker,
		metrics:   m,
		logger:    logger,
	}
}

// GetAvailabilityData returns one DayAvailabilityData per date in
// [StartDate, EndDate]. Cache hits are returned unchanged; on a miss
// the whole range is recomputed, validated, cached, and returned.
// Upstream failures propagate; a degraded dataset is never served as
// if it were genuine.
func (s *Service) GetAvailabilityData(ctx context.Context, query model.AvailabilityQuery) ([]model.DayAvailabilityData, error) {
	startDate, endDate, err := s.normalizeRange(query)
	if err != nil {
		return nil, err
	}
	query.StartDate = startDate
	query.EndDate = endDate
	if query.Role == "" {
		query.Role = model.RolePatient
	}

	key := cacheKey(query)
	if cached, found := s.store.Get(ctx, key); found {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	days, err := s.buildRange(ctx, query)
	if err != nil {
		return nil, err
	}

	result := s.validator.Validate(days, "availability-service", key)
	s.reportFindings(result)

	s.store.Set(ctx, key, days)
	if s.metrics != nil {
		s.metrics.CacheSize.Set(float64(s.store.Size(ctx)))
	}
	return days, nil
}

func (s *Service) normalizeRange(query model.AvailabilityQuery) (string, string, error) {
	start := dateutil.ValidateAndNormalize(query.StartDate)
	if !start.IsValid {
		return "", "", apperrors.NewInvalidDate(query.StartDate, start.Err)
	}
	end := dateutil.ValidateAndNormalize(query.EndDate)
	if !end.IsValid {
		return "", "", apperrors.NewInvalidDate(query.EndDate, end.Err)
	}

	cmp, err := dateutil.CompareStrings(start.NormalizedDate, end.NormalizedDate)
	if err != nil {
		return "", "", apperrors.NewInvalidDate(query.StartDate, err)
	}
	if cmp > 0 {
		return "", "", apperrors.NewBadRequest("start date is after end date", nil)
	}

	span, err := dateutil.DaysDifference(start.NormalizedDate, end.NormalizedDate)
	if err != nil {
		return "", "", apperrors.NewInvalidDate(query.StartDate, err)
	}
	if span > MaxRangeDays {
		return "", "", apperrors.NewBadRequest(fmt.Sprintf("date range exceeds %d days", MaxRangeDays), nil)
	}

	return start.NormalizedDate, end.NormalizedDate, nil
}

func (s *Service) buildRange(ctx context.Context, query model.AvailabilityQuery) ([]model.DayAvailabilityData, error) {
	today := dateutil.Today()
	tomorrow, err := dateutil.AddDays(today, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to compute tomorrow: %w", err)
	}

	var days []model.DayAvailabilityData
	date := query.StartDate
	for {
		day, err := s.buildDay(ctx, query, date, today, tomorrow)
		if err != nil {
			return nil, err
		}
		days = append(days, day)

		if date == query.EndDate {
			break
		}
		if date, err = dateutil.AddDays(date, 1); err != nil {
			return nil, fmt.Errorf("failed to advance date: %w", err)
		}
	}
	return days, nil
}

func (s *Service) buildDay(ctx context.Context, query model.AvailabilityQuery, date, today, tomorrow string) (model.DayAvailabilityData, error) {
	started := time.Now()
	slots, err := s.generator.GenerateSlots(ctx, model.SlotGenerationParams{
		OrganizationID:     query.OrganizationID,
		Date:               date,
		DoctorID:           query.DoctorID,
		ServiceID:          query.ServiceID,
		LocationID:         query.LocationID,
		SlotDuration:       query.SlotDuration,
		Role:               query.Role,
		SkipRoleFilter:     query.SkipRoleFilter,
		ForceStandardRules: query.ForceStandardRules,
	})
	if err != nil {
		if s.metrics != nil && apperrors.IsProviderFetch(err) {
			s.metrics.ProviderErrors.WithLabelValues("slot-generation").Inc()
		}
		return model.DayAvailabilityData{}, fmt.Errorf("failed to generate slots for %s: %w", date, err)
	}
	if s.metrics != nil {
		s.metrics.SlotGenerationDuration.Observe(time.Since(started).Seconds())
	}

	dayName, err := dateutil.DayName(date)
	if err != nil {
		return model.DayAvailabilityData{}, fmt.Errorf("failed to resolve day name for %s: %w", date, err)
	}
	isWeekend, err := dateutil.IsWeekend(date)
	if err != nil {
		return model.DayAvailabilityData{}, fmt.Errorf("failed to resolve weekend flag for %s: %w", date, err)
	}
	isPast, err := dateutil.IsPastDate(date)
	if err != nil {
		return model.DayAvailabilityData{}, fmt.Errorf("failed to resolve past flag for %s: %w", date, err)
	}

	available := 0
	for _, slot := range slots {
		if slot.Available {
			available++
		}
	}
	if s.metrics != nil {
		s.metrics.SlotsGenerated.WithLabelValues("available").Add(float64(available))
		s.metrics.SlotsGenerated.WithLabelValues("unavailable").Add(float64(len(slots) - available))
	}

	day := model.DayAvailabilityData{
		Date:              date,
		DayName:           dayName,
		SlotsCount:        available,
		AvailabilityLevel: model.LevelForSlotCount(available),
		IsToday:           date == today,
		IsTomorrow:        date == tomorrow,
		IsWeekend:         isWeekend,
		Slots:             slots,
		TotalSlots:        len(slots),
		AvailableSlots:    available,
	}
	if isPast {
		day.IsBlocked = true
		day.BlockReason = pastDateReason
	}
	return day, nil
}

func (s *Service) reportFindings(result model.ValidationResult) {
	for _, e := range result.Errors {
		s.logger.Error().
			Str("check", e.Check).
			Str("severity", string(e.Severity)).
			Str("date", e.Date).
			Interface("detail", e.Detail).
			Msg(e.Message)
		if s.metrics != nil {
			s.metrics.ValidationFindings.WithLabelValues(string(e.Severity)).Inc()
		}
	}
	for _, w := range result.Warnings {
		s.logger.Warn().
			Str("check", w.Check).
			Str("date", w.Date).
			Msg(w.Message)
		if s.metrics != nil {
			s.metrics.ValidationFindings.WithLabelValues("warning").Inc()
		}
	}
	if s.metrics != nil {
		s.metrics.ValidationDuration.Observe(result.Metadata.Duration.Seconds())
	}
}

// ValidateAvailabilityData exposes the integrity validator standalone
// for diagnostics.
func (s *Service) ValidateAvailabilityData(data []model.DayAvailabilityData, component, source string) model.ValidationResult {
	return s.validator.Validate(data, component, source)
}

// ClearCache flushes the local store and, when a broker is configured,
// broadcasts the flush to peer instances.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.store.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush availability cache: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CacheSize.Set(0)
	}
	if s.broker != nil {
		if err := s.broker.Publish(ctx, InvalidationChannel, messaging.Message{Type: "flush"}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to broadcast cache invalidation")
		}
	}
	return nil
}

// CacheStats reports cache size and keys for operational inspection.
type CacheStats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

func (s *Service) CacheStats(ctx context.Context) CacheStats {
	return CacheStats{
		Size: s.store.Size(ctx),
		Keys: s.store.Keys(ctx),
	}
}

func cacheKey(query model.AvailabilityQuery) string {
	return fmt.Sprintf("%s:%s:%s:d=%s:s=%s:l=%s:r=%s:std=%t:skip=%t:dur=%d",
		query.OrganizationID,
		query.StartDate,
		query.EndDate,
		uuidOrDash(query.DoctorID),
		uuidOrDash(query.ServiceID),
		uuidOrDash(query.LocationID),
		query.Role,
		query.ForceStandardRules,
		query.SkipRoleFilter,
		query.SlotDuration,
	)
}

func uuidOrDash(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}
