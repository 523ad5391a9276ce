package domain

import "time"

// StaffRole is the operational role of a staff member at an event.
type StaffRole string

const (
	StaffRoleTechnician StaffRole = "technician"
	StaffRoleSecurity   StaffRole = "security"
	StaffRoleSupport    StaffRole = "support"
)

// Staffing ratio percentages, applied to stage capacity and rounded up.
const (
	SecurityStaffPercent = 5
	SupportStaffPercent  = 2
)

// Staff is a festival worker.
type Staff struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Role            StaffRole `json:"role"`
	ExperienceLevel int       `json:"experience_level"`
}

// StaffAssignment schedules one staff member for one event's shift. The
// ratio caps are enforced incrementally at assignment time; technician
// counts are an operational decision and are never capped.
type StaffAssignment struct {
	ID         string    `json:"id"`
	StaffID    string    `json:"staff_id"`
	EventID    string    `json:"event_id"`
	Role       StaffRole `json:"role"`
	ShiftStart time.Time `json:"shift_start"`
	ShiftEnd   time.Time `json:"shift_end"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the assignment's structural invariants.
func (a *StaffAssignment) Validate() error {
	switch a.Role {
	case StaffRoleTechnician, StaffRoleSecurity, StaffRoleSupport:
	default:
		return ErrInvalidStaffRole
	}
	if !a.ShiftStart.Before(a.ShiftEnd) {
		return ErrInvalidInterval
	}
	return nil
}
