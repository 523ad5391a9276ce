package domain

import "time"

// TicketCategory is the admission class of a ticket.
type TicketCategory string

const (
	TicketCategoryGeneral   TicketCategory = "general"
	TicketCategoryVIP       TicketCategory = "vip"
	TicketCategoryBackstage TicketCategory = "backstage"
)

// PaymentMethod records how a ticket was paid for. Carried as data only.
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
)

// VipCapacityPercent is the share of stage capacity available as VIP
// tickets, rounded down.
const VipCapacityPercent = 10

// ResalePriceCapPercent caps a resale listing at 110% of the original price.
const ResalePriceCapPercent = 110

// MinVisitorAge is the minimum age for holding a ticket, computed from the
// visitor's birthdate at evaluation time.
const MinVisitorAge = 16

// EANCodeLength is the required length of a ticket code.
const EANCodeLength = 13

// Ticket grants one visitor admission to one event.
type Ticket struct {
	ID             string         `json:"id"`
	EventID        string         `json:"event_id"`
	VisitorID      string         `json:"visitor_id"`
	Category       TicketCategory `json:"category"`
	Price          float64        `json:"price"`
	Code           string         `json:"code"`
	Method         PaymentMethod  `json:"method,omitempty"`
	PurchaseDate   time.Time      `json:"purchase_date"`
	IsUsed         bool           `json:"is_used"`
	ResaleEligible bool           `json:"resale_eligible"`
}

// MaxResalePrice returns the highest price at which this ticket may be
// listed for resale.
func (t *Ticket) MaxResalePrice() float64 {
	return t.Price * ResalePriceCapPercent / 100
}

// CanBeListed reports whether the ticket may enter the resale marketplace.
func (t *Ticket) CanBeListed() bool {
	return !t.IsUsed && t.ResaleEligible
}

// ValidEAN13 reports whether code is exactly 13 numeric digits.
func ValidEAN13(code string) bool {
	if len(code) != EANCodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Visitor is a festival attendee.
type Visitor struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Birthdate time.Time `json:"birthdate"`
}

// Age returns the visitor's age in whole years at the given instant.
func (v *Visitor) Age(at time.Time) int {
	years := at.Year() - v.Birthdate.Year()
	anniversary := v.Birthdate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}
