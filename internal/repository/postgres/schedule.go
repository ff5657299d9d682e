package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicflow/availability-api/internal/model"
)

func (r *scheduleRepository) FetchDoctorSchedules(ctx context.Context, orgID uuid.UUID, weekday int, doctorID, serviceID *uuid.UUID) ([]*model.DoctorSchedule, error) {
	query := `
		SELECT ds.doctor_id, d.full_name AS doctor_name, ds.weekday,
			   to_char(ds.start_time, 'HH24:MI') AS start_time,
			   to_char(ds.end_time, 'HH24:MI') AS end_time,
			   ds.active, ds.location_id,
			   COALESCE(d.specialization, '') AS specialization,
			   d.consultation_fee
		FROM doctor_schedules ds
		JOIN doctors d ON d.id = ds.doctor_id
		WHERE ds.organization_id = $1
		  AND ds.weekday = $2
		  AND ds.active = true
	`
	args := []interface{}{orgID, weekday}

	if doctorID != nil {
		args = append(args, *doctorID)
		query += fmt.Sprintf(" AND ds.doctor_id = $%d", len(args))
	}
	if serviceID != nil {
		args = append(args, *serviceID)
		query += fmt.Sprintf(` AND ds.doctor_id IN (
			SELECT doctor_id FROM doctor_services WHERE service_id = $%d
		)`, len(args))
	}
	query += " ORDER BY ds.start_time, d.full_name"

	var schedules []*model.DoctorSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch doctor schedules: %w", err)
	}
	return schedules, nil
}
