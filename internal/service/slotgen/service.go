// Package slotgen computes per-doctor bookable time slots for a single
// date from weekly schedules, existing bookings, and unavailability
// blocks. All calendar arithmetic goes through pkg/dateutil; times of
// day are zero-padded HH:MM strings handled as minutes-since-midnight.
package slotgen

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinicflow/availability-api/internal/model"
	"github.com/clinicflow/availability-api/internal/repository"
	"github.com/clinicflow/availability-api/pkg/dateutil"
	apperrors "github.com/clinicflow/availability-api/pkg/errors"
)

const (
	// DefaultSlotDuration is used when the caller does not specify one.
	DefaultSlotDuration = 30

	ReasonBooked      = "booked"
	ReasonTimePast    = "time already past"
	ReasonSameDayRule = "must book at least 24 hours in advance"
)

type Service struct {
	schedules    repository.ScheduleRepository
	appointments repository.AppointmentRepository
	blocks       repository.BlockRepository

	// now is swappable for deterministic role-rule tests.
	now func() time.Time
}

func NewService(schedules repository.ScheduleRepository, appointments repository.AppointmentRepository, blocks repository.BlockRepository) *Service {
	return &Service{
		schedules:    schedules,
		appointments: appointments,
		blocks:       blocks,
		now:          time.Now,
	}
}

// GenerateSlots computes every slot for the target date. Provider
// failures abort the whole call; a partial slot list is never returned.
func (s *Service) GenerateSlots(ctx context.Context, params model.SlotGenerationParams) ([]model.TimeSlot, error) {
	outcome := dateutil.ValidateAndNormalize(params.Date)
	if !outcome.IsValid {
		return nil, apperrors.NewInvalidDate(params.Date, outcome.Err)
	}
	date := outcome.NormalizedDate

	weekday, err := dateutil.WeekdayIndex(date)
	if err != nil {
		return nil, apperrors.NewInvalidDate(date, err)
	}

	duration := params.SlotDuration
	if duration <= 0 {
		duration = DefaultSlotDuration
	}

	schedules, err := s.schedules.FetchDoctorSchedules(ctx, params.OrganizationID, weekday, params.DoctorID, params.ServiceID)
	if err != nil {
		return nil, apperrors.NewProviderFetch("doctor schedules", err)
	}

	appointments, err := s.appointments.FetchAppointments(ctx, params.OrganizationID, date, params.DoctorID)
	if err != nil {
		return nil, apperrors.NewProviderFetch("appointments", err)
	}

	blocks, err := s.blocks.FetchAvailabilityBlocks(ctx, params.OrganizationID, date, params.DoctorID)
	if err != nil {
		return nil, apperrors.NewProviderFetch("availability blocks", err)
	}

	var slots []model.TimeSlot
	for _, schedule := range schedules {
		if !schedule.Active {
			continue
		}
		if params.LocationID != nil && (schedule.LocationID == nil || *schedule.LocationID != *params.LocationID) {
			continue
		}
		generated, err := s.walkSchedule(schedule, date, duration, appointments, blocks)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slots for doctor %s: %w", schedule.DoctorID, err)
		}
		slots = append(slots, generated...)
	}

	if !params.SkipRoleFilter {
		if err := s.applyRoleRules(slots, date, params); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].DoctorName < slots[j].DoctorName
	})

	return slots, nil
}

func (s *Service) walkSchedule(schedule *model.DoctorSchedule, date string, duration int, appointments []*model.ExistingAppointment, blocks []*model.AvailabilityBlock) ([]model.TimeSlot, error) {
	start, err := parseClock(schedule.StartTime)
	if err != nil {
		return nil, fmt.Errorf("bad schedule start time %q: %w", schedule.StartTime, err)
	}
	end, err := parseClock(schedule.EndTime)
	if err != nil {
		return nil, fmt.Errorf("bad schedule end time %q: %w", schedule.EndTime, err)
	}

	doctorBlocks, err := clipBlocks(blocks, schedule.DoctorID, date)
	if err != nil {
		return nil, err
	}
	doctorBookings, err := bookedIntervals(appointments, schedule.DoctorID)
	if err != nil {
		return nil, err
	}

	var slots []model.TimeSlot
	for cur := start; cur+duration <= end; cur += duration {
		slot := model.TimeSlot{
			ID:              fmt.Sprintf("%s-%s-%s", schedule.DoctorID, date, formatClock(cur)),
			StartTime:       formatClock(cur),
			EndTime:         formatClock(cur + duration),
			Available:       true,
			DoctorID:        schedule.DoctorID,
			DoctorName:      schedule.DoctorName,
			Specialization:  schedule.Specialization,
			ConsultationFee: schedule.ConsultationFee,
			DurationMinutes: duration,
			LocationID:      schedule.LocationID,
		}

		// Block overlap wins over booking overlap when both apply.
		if reason, blocked := overlapReason(cur, cur+duration, doctorBlocks); blocked {
			slot.Available = false
			slot.Reason = reason
		} else if overlapsAny(cur, cur+duration, doctorBookings) {
			slot.Available = false
			slot.Reason = ReasonBooked
		}

		slots = append(slots, slot)
	}
	return slots, nil
}

// applyRoleRules mutates availability in place, touching only slots
// still available and only on the current date. Standard-role users
// lose the whole day, not just past times; privileged users lose only
// slots already started. The asymmetry is the observed production rule.
func (s *Service) applyRoleRules(slots []model.TimeSlot, date string, params model.SlotGenerationParams) error {
	isToday, err := dateutil.IsToday(date)
	if err != nil {
		return apperrors.NewInvalidDate(date, err)
	}
	if !isToday {
		return nil
	}

	privileged := params.Role.IsPrivileged() && !params.ForceStandardRules
	nowClock := s.now().Format("15:04")

	for i := range slots {
		if !slots[i].Available {
			continue
		}
		if !privileged {
			slots[i].Available = false
			slots[i].Reason = ReasonSameDayRule
			continue
		}
		if slots[i].StartTime <= nowClock {
			slots[i].Available = false
			slots[i].Reason = ReasonTimePast
		}
	}
	return nil
}

type interval struct {
	start, end int
	label      string
}

// clipBlocks restricts a doctor's blocks to the target date, clamping
// multi-day blocks to [00:00, 24:00) of that day.
func clipBlocks(blocks []*model.AvailabilityBlock, doctorID uuid.UUID, date string) ([]interval, error) {
	var out []interval
	for _, b := range blocks {
		if b.DoctorID != doctorID {
			continue
		}

		startCmp, err := dateutil.CompareStrings(b.StartDate, date)
		if err != nil {
			return nil, fmt.Errorf("bad block start date %q: %w", b.StartDate, err)
		}
		endCmp, err := dateutil.CompareStrings(b.EndDate, date)
		if err != nil {
			return nil, fmt.Errorf("bad block end date %q: %w", b.EndDate, err)
		}
		if startCmp > 0 || endCmp < 0 {
			continue
		}

		start := 0
		if startCmp == 0 {
			if start, err = parseClock(b.StartTime); err != nil {
				return nil, fmt.Errorf("bad block start time %q: %w", b.StartTime, err)
			}
		}
		end := 24 * 60
		if endCmp == 0 {
			if end, err = parseClock(b.EndTime); err != nil {
				return nil, fmt.Errorf("bad block end time %q: %w", b.EndTime, err)
			}
		}
		if start >= end {
			continue
		}
		out = append(out, interval{start: start, end: end, label: b.BlockLabel()})
	}
	return out, nil
}

func bookedIntervals(appointments []*model.ExistingAppointment, doctorID uuid.UUID) ([]interval, error) {
	var out []interval
	for _, apt := range appointments {
		if apt.DoctorID != doctorID {
			continue
		}
		start, err := parseClock(apt.StartTime)
		if err != nil {
			return nil, fmt.Errorf("bad appointment start time %q: %w", apt.StartTime, err)
		}
		end, err := parseClock(apt.EndTime)
		if err != nil {
			return nil, fmt.Errorf("bad appointment end time %q: %w", apt.EndTime, err)
		}
		out = append(out, interval{start: start, end: end})
	}
	return out, nil
}

// Half-open intervals: [aStart,aEnd) overlaps [b.start,b.end) iff
// aStart < b.end && b.start < aEnd.
func overlapsAny(start, end int, intervals []interval) bool {
	for _, iv := range intervals {
		if start < iv.end && iv.start < end {
			return true
		}
	}
	return false
}

func overlapReason(start, end int, intervals []interval) (string, bool) {
	for _, iv := range intervals {
		if start < iv.end && iv.start < end {
			return iv.label, true
		}
	}
	return "", false
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
