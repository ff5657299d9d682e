package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicflow/availability-api/internal/model"
)

// The three provider contracts the slot engine consumes. Implementations
// return already-normalized rows: cancelled appointments are filtered
// out, schedules are active-only, and blocks are restricted to those
// intersecting the target date.
type (
	// ScheduleRepository fetches recurring weekly doctor schedules.
	ScheduleRepository interface {
		FetchDoctorSchedules(ctx context.Context, orgID uuid.UUID, weekday int, doctorID, serviceID *uuid.UUID) ([]*model.DoctorSchedule, error)
	}

	// AppointmentRepository fetches booked appointments for one date.
	AppointmentRepository interface {
		FetchAppointments(ctx context.Context, orgID uuid.UUID, date string, doctorID *uuid.UUID) ([]*model.ExistingAppointment, error)
	}

	// BlockRepository fetches unavailability blocks intersecting one date.
	BlockRepository interface {
		FetchAvailabilityBlocks(ctx context.Context, orgID uuid.UUID, date string, doctorID *uuid.UUID) ([]*model.AvailabilityBlock, error)
	}
)
