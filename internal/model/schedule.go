package model

import (
	"github.com/google/uuid"
)

// Weekday indices follow time.Weekday: 0=Sunday .. 6=Saturday.

// DoctorSchedule is one recurring weekly working window for a doctor.
// Times are zero-padded HH:MM strings; the window is half-open
// [StartTime, EndTime).
type DoctorSchedule struct {
	DoctorID        uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	DoctorName      string     `db:"doctor_name" json:"doctor_name"`
	Weekday         int        `db:"weekday" json:"weekday"`
	StartTime       string     `db:"start_time" json:"start_time"`
	EndTime         string     `db:"end_time" json:"end_time"`
	Active          bool       `db:"active" json:"active"`
	LocationID      *uuid.UUID `db:"location_id" json:"location_id,omitempty"`
	Specialization  string     `db:"specialization" json:"specialization,omitempty"`
	ConsultationFee *float64   `db:"consultation_fee" json:"consultation_fee,omitempty"`
}

// ExistingAppointment is a booked interval on the target date.
// Cancelled appointments are excluded at the repository layer.
type ExistingAppointment struct {
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Status    string    `db:"status" json:"status"`
}

type BlockType string

const (
	BlockTypeVacation BlockType = "vacation"
	BlockTypeSick     BlockType = "sick"
	BlockTypePersonal BlockType = "personal"
	BlockTypeOther    BlockType = "other"
)

// AvailabilityBlock is an explicit unavailability window. It can span
// multiple days; dates are canonical YYYY-MM-DD and times HH:MM so the
// interval is [StartDate StartTime, EndDate EndTime).
type AvailabilityBlock struct {
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	StartDate string    `db:"start_date" json:"start_date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndDate   string    `db:"end_date" json:"end_date"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Reason    string    `db:"reason" json:"reason,omitempty"`
	BlockType BlockType `db:"block_type" json:"block_type"`
}

// BlockLabel is the unavailability reason shown on a slot covered by
// this block.
func (b AvailabilityBlock) BlockLabel() string {
	if b.Reason != "" {
		return b.Reason
	}
	return string(b.BlockType)
}
