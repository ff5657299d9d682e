package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicflow/availability-api/internal/model"
)

func (r *appointmentRepository) FetchAppointments(ctx context.Context, orgID uuid.UUID, date string, doctorID *uuid.UUID) ([]*model.ExistingAppointment, error) {
	query := `
		SELECT doctor_id,
			   to_char(start_time, 'HH24:MI') AS start_time,
			   to_char(end_time, 'HH24:MI') AS end_time,
			   status
		FROM appointments
		WHERE organization_id = $1
		  AND appointment_date = $2::date
		  AND status != 'cancelled'
	`
	args := []interface{}{orgID, date}

	if doctorID != nil {
		args = append(args, *doctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	query += " ORDER BY start_time"

	var appointments []*model.ExistingAppointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	return appointments, nil
}
