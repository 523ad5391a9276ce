package domain

// Stage is a physical venue with a fixed capacity.
type Stage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

// VipCap returns the maximum number of VIP tickets that may be sold for an
// event on this stage: 10% of capacity, rounded down.
func (s *Stage) VipCap() int {
	return s.Capacity * VipCapacityPercent / 100
}

// RequiredSecurity returns the security staff requirement for this stage:
// 5% of capacity rounded up, never less than one.
func (s *Stage) RequiredSecurity() int {
	return atLeastOne(ceilPercent(s.Capacity, SecurityStaffPercent))
}

// RequiredSupport returns the support staff requirement for this stage:
// 2% of capacity rounded up, never less than one.
func (s *Stage) RequiredSupport() int {
	return atLeastOne(ceilPercent(s.Capacity, SupportStaffPercent))
}

func ceilPercent(capacity, percent int) int {
	return (capacity*percent + 99) / 100
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
