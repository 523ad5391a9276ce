package validator

import (
	"context"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// StaffingStore counts current assignments per event and role.
type StaffingStore interface {
	CountAssignmentsByEventAndRole(ctx context.Context, eventID string, role domain.StaffRole) (int, error)
}

// StaffingRatio enforces the per-role staffing caps incrementally at
// assignment time: the (N+1)-th security or support assignment is rejected
// once N equals the requirement computed from stage capacity. Technician
// assignments are never capped. The requirement is an upper bound enforced
// at insert time, not a guaranteed minimum; callers drive assignment up to
// the cap.
type StaffingRatio struct {
	store StaffingStore
}

// NewStaffingRatio creates the staffing ratio evaluator.
func NewStaffingRatio(store StaffingStore) *StaffingRatio {
	return &StaffingRatio{store: store}
}

func (v *StaffingRatio) Name() string { return "staffing_ratio" }

func (v *StaffingRatio) Validate(ctx context.Context, c *AssignmentCandidate) error {
	var required int
	switch c.Assignment.Role {
	case domain.StaffRoleSecurity:
		required = c.Stage.RequiredSecurity()
	case domain.StaffRoleSupport:
		required = c.Stage.RequiredSupport()
	default:
		return nil
	}

	assigned, err := v.store.CountAssignmentsByEventAndRole(ctx, c.Assignment.EventID, c.Assignment.Role)
	if err != nil {
		return err
	}
	if assigned+1 > required {
		return &domain.StaffingRatioError{
			EventID:  c.Assignment.EventID,
			Role:     c.Assignment.Role,
			Required: required,
			Assigned: assigned,
		}
	}
	return nil
}
