package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Validator rejections are typed structs below; each
// matches its category sentinel through errors.Is so callers can branch on
// the category without losing the offending ids and thresholds.
var (
	// Scheduling
	ErrSchedulingConflict   = errors.New("scheduling conflict")
	ErrConsecutiveYearLimit = errors.New("consecutive festival year limit exceeded")
	ErrDurationOutOfRange   = errors.New("performance duration out of range")

	// Tickets
	ErrVipCapExceeded  = errors.New("vip ticket cap exceeded")
	ErrDuplicateTicket = errors.New("visitor already holds a ticket for this performer on this day")
	ErrUnderageVisitor = errors.New("visitor is under the minimum age")
	ErrInvalidCode     = errors.New("ticket code is not a valid EAN-13 code")

	// Staffing
	ErrStaffingRatioExceeded = errors.New("staffing ratio exceeded")

	// Reviews
	ErrIneligibleReview = errors.New("visitor is not eligible to review this performance")

	// Resale
	ErrIneligibleTicket   = errors.New("ticket is not eligible for resale")
	ErrNotAvailable       = errors.New("ticket is not available for purchase")
	ErrDuplicateOwnership = errors.New("buyer already holds a ticket for this event")
	ErrPriceCapExceeded   = errors.New("resale price exceeds the allowed cap")

	// Structural validation
	ErrInvalidPerformer     = errors.New("performance must reference exactly one artist or band")
	ErrInvalidDuration      = errors.New("duration must be positive")
	ErrInvalidInterval      = errors.New("interval start must precede its end")
	ErrInvalidFestivalDates = errors.New("festival dates must fall within the festival year")
	ErrInvalidStaffRole     = errors.New("invalid staff role")
	ErrInvalidRating        = errors.New("ratings must be between 1 and 5")

	// Not found
	ErrFestivalNotFound      = errors.New("festival not found")
	ErrFestivalDayNotFound   = errors.New("festival day not found")
	ErrStageNotFound         = errors.New("stage not found")
	ErrEventNotFound         = errors.New("event not found")
	ErrPerformanceNotFound   = errors.New("performance not found")
	ErrArtistNotFound        = errors.New("artist not found")
	ErrBandNotFound          = errors.New("band not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrVisitorNotFound       = errors.New("visitor not found")
	ErrStaffNotFound         = errors.New("staff not found")
	ErrResaleRequestNotFound = errors.New("resale request not found")
)

// SchedulingConflictError reports an interval or gap violation on a stage
// or for a performer.
type SchedulingConflictError struct {
	Reason      string
	StageID     string
	EventID     string
	Performer   PerformerRef
	ConflictID  string
	Gap         time.Duration
	RequiredMin time.Duration
	RequiredMax time.Duration
}

func (e *SchedulingConflictError) Error() string {
	if e.ConflictID != "" {
		return fmt.Sprintf("scheduling conflict (%s) with %s", e.Reason, e.ConflictID)
	}
	return fmt.Sprintf("scheduling conflict (%s)", e.Reason)
}

func (e *SchedulingConflictError) Is(target error) bool { return target == ErrSchedulingConflict }

// ConsecutiveYearLimitError reports a performer attempting a fourth
// consecutive festival year.
type ConsecutiveYearLimitError struct {
	Performer PerformerRef
	Year      int
}

func (e *ConsecutiveYearLimitError) Error() string {
	return fmt.Sprintf("%s has performed in %d and %d; a %d performance would exceed three consecutive years",
		e.Performer.Key(), e.Year-2, e.Year-1, e.Year)
}

func (e *ConsecutiveYearLimitError) Is(target error) bool { return target == ErrConsecutiveYearLimit }

// DurationOutOfRangeError reports a performance duration outside the
// permitted bounds.
type DurationOutOfRangeError struct {
	DurationMin int
	Min         int
	Max         int
}

func (e *DurationOutOfRangeError) Error() string {
	return fmt.Sprintf("duration %dm outside [%dm, %dm]", e.DurationMin, e.Min, e.Max)
}

func (e *DurationOutOfRangeError) Is(target error) bool { return target == ErrDurationOutOfRange }

// VipCapExceededError reports a VIP ticket insert beyond the stage's cap.
type VipCapExceededError struct {
	EventID  string
	StageID  string
	Cap      int
	Existing int
}

func (e *VipCapExceededError) Error() string {
	return fmt.Sprintf("event %s already has %d of %d VIP tickets", e.EventID, e.Existing, e.Cap)
}

func (e *VipCapExceededError) Is(target error) bool { return target == ErrVipCapExceeded }

// DuplicateTicketError reports a visitor attempting a second same-day
// ticket for the same performer, or a reused ticket code.
type DuplicateTicketError struct {
	VisitorID string
	EventID   string
	Code      string
	Reason    string
}

func (e *DuplicateTicketError) Error() string {
	return fmt.Sprintf("duplicate ticket for visitor %s: %s", e.VisitorID, e.Reason)
}

func (e *DuplicateTicketError) Is(target error) bool { return target == ErrDuplicateTicket }

// UnderageVisitorError reports a visitor below the minimum age at
// evaluation time.
type UnderageVisitorError struct {
	VisitorID string
	Age       int
	MinAge    int
}

func (e *UnderageVisitorError) Error() string {
	return fmt.Sprintf("visitor %s is %d, minimum age is %d", e.VisitorID, e.Age, e.MinAge)
}

func (e *UnderageVisitorError) Is(target error) bool { return target == ErrUnderageVisitor }

// InvalidCodeError reports a malformed ticket code.
type InvalidCodeError struct {
	Code string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("code %q is not exactly %d digits", e.Code, EANCodeLength)
}

func (e *InvalidCodeError) Is(target error) bool { return target == ErrInvalidCode }

// StaffingRatioError reports an assignment beyond the role's computed cap.
type StaffingRatioError struct {
	EventID  string
	Role     StaffRole
	Required int
	Assigned int
}

func (e *StaffingRatioError) Error() string {
	return fmt.Sprintf("event %s already has %d of %d required %s staff", e.EventID, e.Assigned, e.Required, e.Role)
}

func (e *StaffingRatioError) Is(target error) bool { return target == ErrStaffingRatioExceeded }

// IneligibleReviewError reports a review attempt without a used ticket.
type IneligibleReviewError struct {
	VisitorID     string
	PerformanceID string
}

func (e *IneligibleReviewError) Error() string {
	return fmt.Sprintf("visitor %s holds no used ticket for performance %s", e.VisitorID, e.PerformanceID)
}

func (e *IneligibleReviewError) Is(target error) bool { return target == ErrIneligibleReview }

// IneligibleTicketError reports a resale listing of a used or ineligible
// ticket.
type IneligibleTicketError struct {
	TicketID string
	Reason   string
}

func (e *IneligibleTicketError) Error() string {
	return fmt.Sprintf("ticket %s cannot be listed: %s", e.TicketID, e.Reason)
}

func (e *IneligibleTicketError) Is(target error) bool { return target == ErrIneligibleTicket }

// NotAvailableError reports a purchase request against a ticket that is
// not currently listed.
type NotAvailableError struct {
	TicketID string
	Status   ResaleStatus
}

func (e *NotAvailableError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("ticket %s is %s, not available", e.TicketID, e.Status)
	}
	return fmt.Sprintf("ticket %s is not listed for resale", e.TicketID)
}

func (e *NotAvailableError) Is(target error) bool { return target == ErrNotAvailable }

// DuplicateOwnershipError reports a buyer who already holds a ticket for
// the event, or who is the seller.
type DuplicateOwnershipError struct {
	BuyerID  string
	TicketID string
	EventID  string
	Reason   string
}

func (e *DuplicateOwnershipError) Error() string {
	return fmt.Sprintf("buyer %s cannot request ticket %s: %s", e.BuyerID, e.TicketID, e.Reason)
}

func (e *DuplicateOwnershipError) Is(target error) bool { return target == ErrDuplicateOwnership }

// PriceCapExceededError reports a resale listing priced above the cap.
type PriceCapExceededError struct {
	TicketID string
	Price    float64
	MaxPrice float64
}

func (e *PriceCapExceededError) Error() string {
	return fmt.Sprintf("ticket %s listed at %.2f, cap is %.2f", e.TicketID, e.Price, e.MaxPrice)
}

func (e *PriceCapExceededError) Is(target error) bool { return target == ErrPriceCapExceeded }

// IsNotFoundError checks if the error is a not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrFestivalNotFound) ||
		errors.Is(err, ErrFestivalDayNotFound) ||
		errors.Is(err, ErrStageNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrPerformanceNotFound) ||
		errors.Is(err, ErrArtistNotFound) ||
		errors.Is(err, ErrBandNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrVisitorNotFound) ||
		errors.Is(err, ErrStaffNotFound) ||
		errors.Is(err, ErrResaleRequestNotFound)
}

// IsValidationError checks if the error is a structural validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidPerformer) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidFestivalDates) ||
		errors.Is(err, ErrInvalidStaffRole) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrInvalidCode)
}

// IsInvariantViolation checks if the error is a rejected domain invariant.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrSchedulingConflict) ||
		errors.Is(err, ErrConsecutiveYearLimit) ||
		errors.Is(err, ErrDurationOutOfRange) ||
		errors.Is(err, ErrVipCapExceeded) ||
		errors.Is(err, ErrDuplicateTicket) ||
		errors.Is(err, ErrUnderageVisitor) ||
		errors.Is(err, ErrStaffingRatioExceeded) ||
		errors.Is(err, ErrIneligibleReview) ||
		errors.Is(err, ErrIneligibleTicket) ||
		errors.Is(err, ErrNotAvailable) ||
		errors.Is(err, ErrDuplicateOwnership) ||
		errors.Is(err, ErrPriceCapExceeded)
}
