// Package nebenkosten declares the entities of a utility-cost statement
// (Nebenkostenabrechnung) and the schema every entity must satisfy.
package nebenkosten

import (
	"time"
)

// DistributionType selects the property total a cost item is apportioned against.
type DistributionType string

const (
	DistributionArea    DistributionType = "AREA"    // Wohnfläche
	DistributionPersons DistributionType = "PERSONS" // Personenanzahl
	DistributionUnits   DistributionType = "UNITS"   // Wohneinheiten
)

// DistributionTypes returns all distribution keys in display order.
func DistributionTypes() []DistributionType {
	return []DistributionType{DistributionArea, DistributionPersons, DistributionUnits}
}

// IsValid reports whether d is one of the known distribution keys.
func (d DistributionType) IsValid() bool {
	switch d {
	case DistributionArea, DistributionPersons, DistributionUnits:
		return true
	}
	return false
}

// Period is a closed date range. To must lie strictly after From.
type Period struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required,gtfield=From"`
}

// Landlord identifies the issuer of the statement.
// Optional fields are pointers: nil means absent, "" means not provided.
type Landlord struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Street   string  `json:"street" validate:"required,max=100"`
	Zip      string  `json:"zip" validate:"min=5,max=10"`
	City     string  `json:"city" validate:"required,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"`
	IBAN     *string `json:"iban,omitempty" validate:"omitempty,min=15,max=34"`
	BankName *string `json:"bankName,omitempty" validate:"omitempty,max=100"`
	BIC      *string `json:"bic,omitempty" validate:"omitempty,max=11"`
}

// Property holds the building-wide totals cost items are apportioned against.
type Property struct {
	Street       string  `json:"street" validate:"required,max=100"`
	Zip          string  `json:"zip" validate:"min=5,max=10"`
	City         string  `json:"city" validate:"required,max=100"`
	TotalArea    float64 `json:"totalArea" validate:"gt=0,lte=1000000"`
	TotalUnits   int     `json:"totalUnits" validate:"gte=1,lte=1000"`
	TotalPersons int     `json:"totalPersons" validate:"gte=0,lte=1000"`
}

// Tenant holds the figures of the one tenant the statement is issued to.
type Tenant struct {
	Name        string  `json:"name" validate:"required,max=100"`
	CurrentArea float64 `json:"currentArea" validate:"gt=0,lte=1000000"`
	Persons     int     `json:"persons" validate:"gte=1,lte=10000"`
	Prepayments float64 `json:"prepayments" validate:"gte=0,lte=1000000"`
}

// CostItem is one position of the statement (Heizung, Müllabfuhr, ...).
type CostItem struct {
	ID               string           `json:"id" validate:"required,uuid"`
	Name             string           `json:"name" validate:"required,max=50"`
	Amount           float64          `json:"amount" validate:"gte=0.01,lte=1000000"`
	DistributionType DistributionType `json:"distributionType" validate:"required,oneof=AREA PERSONS UNITS"`
}

// CalculationData is the aggregate root of one calculation session.
type CalculationData struct {
	Landlord      Landlord   `json:"landlord"`
	BillingPeriod Period     `json:"billingPeriod"`
	UsagePeriod   Period     `json:"usagePeriod"`
	Property      Property   `json:"property"`
	Tenant        Tenant     `json:"tenant"`
	Items         []CostItem `json:"items" validate:"dive"`
}

// PreviousYear returns Jan 1 – Dec 31 (UTC midnight) of the calendar year before now.
func PreviousYear(now time.Time) Period {
	year := now.Year() - 1
	return Period{
		From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// NewCostItem returns a cost item with default values and the given id.
func NewCostItem(id string) CostItem {
	return CostItem{
		ID:               id,
		DistributionType: DistributionArea,
	}
}

// Default returns the initial aggregate: the previous calendar year as both
// periods, empty strings and zeros elsewhere, no cost items.
func Default(now time.Time) CalculationData {
	period := PreviousYear(now)
	return CalculationData{
		Landlord: Landlord{
			Email:    emptyString(),
			Phone:    emptyString(),
			IBAN:     emptyString(),
			BankName: emptyString(),
			BIC:      emptyString(),
		},
		BillingPeriod: period,
		UsagePeriod:   period,
		Items:         []CostItem{},
	}
}

// Clone returns a deep copy; no pointer or slice is shared with d.
func (d CalculationData) Clone() CalculationData {
	out := d
	out.Landlord = d.Landlord.Clone()
	out.Items = make([]CostItem, len(d.Items))
	copy(out.Items, d.Items)
	return out
}

// Clone returns a copy with its own optional-field pointers.
func (l Landlord) Clone() Landlord {
	out := l
	out.Email = cloneString(l.Email)
	out.Phone = cloneString(l.Phone)
	out.IBAN = cloneString(l.IBAN)
	out.BankName = cloneString(l.BankName)
	out.BIC = cloneString(l.BIC)
	return out
}

// String returns a pointer to s. Handy for optional landlord fields.
func String(s string) *string {
	return &s
}

func emptyString() *string {
	return String("")
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
