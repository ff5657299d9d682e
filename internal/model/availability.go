package model

import (
	"github.com/google/uuid"
)

type Role string

const (
	RolePatient    Role = "patient"
	RoleStaff      Role = "staff"
	RoleDoctor     Role = "doctor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// IsPrivileged reports whether the role is exempt from the standard
// same-day booking rule.
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleStaff, RoleDoctor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// TimeSlot is one bookable interval for one doctor on one date.
// Invariant: StartTime < EndTime and the interval spans exactly
// DurationMinutes. Reason is set iff Available is false.
type TimeSlot struct {
	ID              string     `json:"id"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	Available       bool       `json:"available"`
	DoctorID        uuid.UUID  `json:"doctor_id"`
	DoctorName      string     `json:"doctor_name"`
	Specialization  string     `json:"specialization,omitempty"`
	ConsultationFee *float64   `json:"consultation_fee,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Reason          string     `json:"reason,omitempty"`
	ServiceID       *uuid.UUID `json:"service_id,omitempty"`
	LocationID      *uuid.UUID `json:"location_id,omitempty"`
}

// SlotGenerationParams carries everything the slot engine needs for a
// single target date.
type SlotGenerationParams struct {
	OrganizationID     uuid.UUID
	Date               string
	DoctorID           *uuid.UUID
	ServiceID          *uuid.UUID
	LocationID         *uuid.UUID
	SlotDuration       int
	Role               Role
	SkipRoleFilter     bool
	ForceStandardRules bool
}

type AvailabilityLevel string

const (
	AvailabilityNone   AvailabilityLevel = "none"
	AvailabilityLow    AvailabilityLevel = "low"
	AvailabilityMedium AvailabilityLevel = "medium"
	AvailabilityHigh   AvailabilityLevel = "high"
)

// LevelForSlotCount buckets an available-slot count into a level.
// Thresholds are fixed: 0 none, 1-2 low, 3-5 medium, >5 high.
func LevelForSlotCount(count int) AvailabilityLevel {
	switch {
	case count <= 0:
		return AvailabilityNone
	case count <= 2:
		return AvailabilityLow
	case count <= 5:
		return AvailabilityMedium
	}
	return AvailabilityHigh
}

// DayAvailabilityData is the per-day aggregate a range query returns.
// Invariant: AvailableSlots == count of Slots with Available=true and
// AvailableSlots <= TotalSlots.
type DayAvailabilityData struct {
	Date              string            `json:"date"`
	DayName           string            `json:"day_name"`
	SlotsCount        int               `json:"slots_count"`
	AvailabilityLevel AvailabilityLevel `json:"availability_level"`
	IsToday           bool              `json:"is_today"`
	IsTomorrow        bool              `json:"is_tomorrow"`
	IsWeekend         bool              `json:"is_weekend"`
	Slots             []TimeSlot        `json:"slots"`
	TotalSlots        int               `json:"total_slots"`
	AvailableSlots    int               `json:"available_slots"`
	IsBlocked         bool              `json:"is_blocked"`
	BlockReason       string            `json:"block_reason,omitempty"`
}

// AvailabilityQuery is the cached range-query input.
type AvailabilityQuery struct {
	OrganizationID     uuid.UUID  `form:"organization_id" binding:"required"`
	StartDate          string     `form:"start_date" binding:"required"`
	EndDate            string     `form:"end_date" binding:"required"`
	DoctorID           *uuid.UUID `form:"doctor_id"`
	ServiceID          *uuid.UUID `form:"service_id"`
	LocationID         *uuid.UUID `form:"location_id"`
	SlotDuration       int        `form:"slot_duration" binding:"omitempty,min=5,max=240"`
	Role               Role       `form:"role" binding:"omitempty,role"`
	SkipRoleFilter     bool       `form:"skip_role_filter"`
	ForceStandardRules bool       `form:"force_standard_rules"`
}
