package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicflow/availability-api/internal/model"
)

func (r *blockRepository) FetchAvailabilityBlocks(ctx context.Context, orgID uuid.UUID, date string, doctorID *uuid.UUID) ([]*model.AvailabilityBlock, error) {
	// A block intersects the target date when it starts on or before it
	// and ends on or after it. Multi-day blocks are clipped by the slot
	// engine, not here.
	query := `
		SELECT doctor_id,
			   to_char(start_datetime, 'YYYY-MM-DD') AS start_date,
			   to_char(start_datetime, 'HH24:MI') AS start_time,
			   to_char(end_datetime, 'YYYY-MM-DD') AS end_date,
			   to_char(end_datetime, 'HH24:MI') AS end_time,
			   COALESCE(reason, '') AS reason,
			   block_type
		FROM availability_blocks
		WHERE organization_id = $1
		  AND start_datetime < ($2::date + interval '1 day')
		  AND end_datetime > $2::date
	`
	args := []interface{}{orgID, date}

	if doctorID != nil {
		args = append(args, *doctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	query += " ORDER BY start_datetime"

	var blocks []*model.AvailabilityBlock
	if err := r.db.SelectContext(ctx, &blocks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch availability blocks: %w", err)
	}
	return blocks, nil
}
