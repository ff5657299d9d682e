package slotgen

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicflow/availability-api/internal/model"
	"github.com/clinicflow/availability-api/pkg/dateutil"
	apperrors "github.com/clinicflow/availability-api/pkg/errors"
)

type fakeProviders struct {
	schedules    []*model.DoctorSchedule
	appointments []*model.ExistingAppointment
	blocks       []*model.AvailabilityBlock

	scheduleErr    error
	appointmentErr error
	blockErr       error

	lastWeekday int
}

func (f *fakeProviders) FetchDoctorSchedules(_ context.Context, _ uuid.UUID, weekday int, doctorID, _ *uuid.UUID) ([]*model.DoctorSchedule, error) {
	f.lastWeekday = weekday
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	var out []*model.DoctorSchedule
	for _, s := range f.schedules {
		if s.Weekday != weekday {
			continue
		}
		if doctorID != nil && s.DoctorID != *doctorID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeProviders) FetchAppointments(_ context.Context, _ uuid.UUID, _ string, _ *uuid.UUID) ([]*model.ExistingAppointment, error) {
	if f.appointmentErr != nil {
		return nil, f.appointmentErr
	}
	return f.appointments, nil
}

func (f *fakeProviders) FetchAvailabilityBlocks(_ context.Context, _ uuid.UUID, _ string, _ *uuid.UUID) ([]*model.AvailabilityBlock, error) {
	if f.blockErr != nil {
		return nil, f.blockErr
	}
	return f.blocks, nil
}

var (
	orgID    = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	doctorID = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")
)

// futureDate returns a date at least a week out so role rules never
// fire, pinned to the requested weekday.
func futureDate(t *testing.T, weekday int) string {
	t.Helper()
	date, err := dateutil.AddDays(dateutil.Today(), 7)
	require.NoError(t, err)
	for {
		wd, err := dateutil.WeekdayIndex(date)
		require.NoError(t, err)
		if wd == weekday {
			return date
		}
		date, err = dateutil.AddDays(date, 1)
		require.NoError(t, err)
	}
}

func newTestService(f *fakeProviders) *Service {
	return NewService(f, f, f)
}

func nineToFive(date string, t *testing.T) (*fakeProviders, string) {
	wd := 3 // Wednesday
	if date == "" {
		date = futureDate(t, wd)
	} else {
		var err error
		wd, err = dateutil.WeekdayIndex(date)
		require.NoError(t, err)
	}
	f := &fakeProviders{
		schedules: []*model.DoctorSchedule{{
			DoctorID:   doctorID,
			DoctorName: "Dr. Alice Mendes",
			Weekday:    wd,
			StartTime:  "09:00",
			EndTime:    "17:00",
			Active:     true,
		}},
	}
	return f, date
}

func TestGenerateSlotsFullDay(t *testing.T) {
	f, date := nineToFive("", t)
	svc := newTestService(f)

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           date,
		SlotDuration:   30,
		Role:           model.RolePatient,
	})
	require.NoError(t, err)
	require.Len(t, slots, 16)

	for _, s := range slots {
		assert.True(t, s.Available, s.StartTime)
		assert.Empty(t, s.Reason)
		assert.Equal(t, 30, s.DurationMinutes)
	}
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "09:30", slots[0].EndTime)
	assert.Equal(t, "16:30", slots[15].StartTime)
	assert.Equal(t, "17:00", slots[15].EndTime)
}

func TestGenerateSlotsBookedConflict(t *testing.T) {
	f, date := nineToFive("", t)
	f.appointments = []*model.ExistingAppointment{{
		DoctorID:  doctorID,
		StartTime: "09:00",
		EndTime:   "09:30",
		Status:    "scheduled",
	}}
	svc := newTestService(f)

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           date,
		SlotDuration:   30,
		Role:           model.RolePatient,
	})
	require.NoError(t, err)
	require.Len(t, slots, 16)

	assert.False(t, slots[0].Available)
	assert.Equal(t, ReasonBooked, slots[0].Reason)
	for _, s := range slots[1:] {
		assert.True(t, s.Available, s.StartTime)
	}
}

func TestGenerateSlotsBlockTakesPrecedenceOverBooking(t *testing.T) {
	f, date := nineToFive("", t)
	f.appointments = []*model.ExistingAppointment{{
		DoctorID:  doctorID,
		StartTime: "10:00",
		EndTime:   "10:30",
		Status:    "scheduled",
	}}
	f.blocks = []*model.AvailabilityBlock{{
		DoctorID:  doctorID,
		StartDate: date,
		StartTime: "10:00",
		EndDate:   date,
		EndTime:   "12:00",
		Reason:    "vacation day",
		BlockType: model.BlockTypeVacation,
	}}
	svc := newTestService(f)

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           date,
		SlotDuration:   30,
		Role:           model.RolePatient,
	})
	require.NoError(t, err)

	for _, s := range slots {
		switch {
		case s.StartTime >= "10:00" && s.StartTime < "12:00":
			assert.False(t, s.Available, s.StartTime)
			assert.Equal(t, "vacation day", s.Reason, s.StartTime)
		default:
			assert.True(t, s.Available, s.StartTime)
		}
	}
}

func TestGenerateSlotsMultiDayBlockCoversWholeDay(t *testing.T) {
	f, date := nineToFive("", t)
	dayBefore, err := dateutil.AddDays(date, -1)
	require.NoError(t, err)
	dayAfter, err := dateutil.AddDays(date, 1)
	require.NoError(t, err)

	f.blocks = []*model.AvailabilityBlock{{
		DoctorID:  doctorID,
		StartDate: dayBefore,
		StartTime: "13:00",
		EndDate:   dayAfter,
		EndTime:   "10:00",
		BlockType: model.BlockTypeSick,
	}}
	svc := newTestService(f)

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           date,
		SlotDuration:   30,
		Role:           model.RolePatient,
	})
	require.NoError(t, err)
	require.Len(t, slots, 16)

	for _, s := range slots {
		assert.False(t, s.Available, s.StartTime)
		assert.Equal(t, string(model.BlockTypeSick), s.Reason)
	}
}

func TestGenerateSlotsStandardRoleBlocksWholeToday(t *testing.T) {
	today := dateutil.Today()
	f, _ := nineToFive(today, t)
	svc := newTestService(f)

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           today,
		SlotDuration:   30,
		Role:           model.RolePatient,
	})
	require.NoError(t, err)
	require.Len(t, slots, 16)

	// Every slot goes, including ones later than now.
	for _, s := range slots {
		assert.False(t, s.Available, s.StartTime)
		assert.Equal(t, ReasonSameDayRule, s.Reason)
	}
}

func TestGenerateSlotsPrivilegedRoleBlocksOnlyPastToday(t *testing.T) {
	today := dateutil.Today()
	f, _ := nineToFive(today, t)
	svc := newTestService(f)
	svc.now = func() time.Time {
		c, err := dateutil.Parse(today)
		require.NoError(t, err)
		return time.Date(c.Year, time.Month(c.Month), c.Day, 10, 30, 0, 0, time.Local)
	}

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           today,
		SlotDuration:   30,
		Role:           model.RoleStaff,
	})
	require.NoError(t, err)
	require.Len(t, slots, 16)

	for _, s := range slots {
		if s.StartTime <= "10:30" {
			assert.False(t, s.Available, s.StartTime)
			assert.Equal(t, ReasonTimePast, s.Reason, s.StartTime)
		} else {
			assert.True(t, s.Available, s.StartTime)
		}
	}
}

func TestGenerateSlotsForceStandardRulesOverridesPrivilege(t *testing.T) {
	today := dateutil.Today()
	f, _ := nineToFive(today, t)
	svc := newTestService(f)

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID:     orgID,
		Date:               today,
		SlotDuration:       30,
		Role:               model.RoleAdmin,
		ForceStandardRules: true,
	})
	require.NoError(t, err)

	for _, s := range slots {
		assert.False(t, s.Available, s.StartTime)
		assert.Equal(t, ReasonSameDayRule, s.Reason)
	}
}

func TestGenerateSlotsSkipRoleFilter(t *testing.T) {
	today := dateutil.Today()
	f, _ := nineToFive(today, t)
	svc := newTestService(f)

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           today,
		SlotDuration:   30,
		Role:           model.RolePatient,
		SkipRoleFilter: true,
	})
	require.NoError(t, err)

	for _, s := range slots {
		assert.True(t, s.Available, s.StartTime)
	}
}

func TestGenerateSlotsSortedByStartThenDoctor(t *testing.T) {
	date := futureDate(t, 2)
	otherDoctor := uuid.MustParse("6ba7b812-9dad-11d1-80b4-00c04fd430c8")
	f := &fakeProviders{
		schedules: []*model.DoctorSchedule{
			{DoctorID: otherDoctor, DoctorName: "Dr. Zara Costa", Weekday: 2, StartTime: "09:00", EndTime: "10:00", Active: true},
			{DoctorID: doctorID, DoctorName: "Dr. Alice Mendes", Weekday: 2, StartTime: "09:00", EndTime: "10:00", Active: true},
		},
	}
	svc := newTestService(f)

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           date,
		SlotDuration:   30,
		Role:           model.RolePatient,
	})
	require.NoError(t, err)
	require.Len(t, slots, 4)

	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "Dr. Alice Mendes", slots[0].DoctorName)
	assert.Equal(t, "Dr. Zara Costa", slots[1].DoctorName)
	assert.Equal(t, "09:30", slots[2].StartTime)
	assert.Equal(t, "Dr. Alice Mendes", slots[2].DoctorName)
}

func TestGenerateSlotsInvalidDate(t *testing.T) {
	svc := newTestService(&fakeProviders{})
	_, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           "not-a-date",
		Role:           model.RolePatient,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidDate(err))
}

func TestGenerateSlotsProviderFailurePropagates(t *testing.T) {
	f, date := nineToFive("", t)
	f.appointmentErr = fmt.Errorf("connection refused")
	svc := newTestService(f)

	_, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           date,
		Role:           model.RolePatient,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderFetch(err))
}

func TestGenerateSlotsNormalizesLenientDate(t *testing.T) {
	f, date := nineToFive("", t)
	svc := newTestService(f)

	// Strip the zero padding; generation must target the same day.
	c, err := dateutil.Parse(date)
	require.NoError(t, err)
	lenient := fmt.Sprintf("%d-%d-%d", c.Year, c.Month, c.Day)

	slots, err := svc.GenerateSlots(context.Background(), model.SlotGenerationParams{
		OrganizationID: orgID,
		Date:           lenient,
		SlotDuration:   30,
		Role:           model.RolePatient,
	})
	require.NoError(t, err)
	assert.Len(t, slots, 16)

	wd, err := dateutil.WeekdayIndex(date)
	require.NoError(t, err)
	assert.Equal(t, wd, f.lastWeekday)
}
