package calculation

import (
	nk "nebenkosten/internal/domain/nebenkosten"
)

// CalculationPatch replaces top-level entities wholesale. A nil field means
// "not supplied" and leaves the current entity untouched; a supplied entity
// is NOT merged field-by-field.
type CalculationPatch struct {
	Landlord      *nk.Landlord   `json:"landlord,omitempty"`
	BillingPeriod *nk.Period     `json:"billingPeriod,omitempty"`
	UsagePeriod   *nk.Period     `json:"usagePeriod,omitempty"`
	Property      *nk.Property   `json:"property,omitempty"`
	Tenant        *nk.Tenant     `json:"tenant,omitempty"`
	Items         *[]nk.CostItem `json:"items,omitempty"`
}

// LandlordPatch merges into the landlord field-by-field.
type LandlordPatch struct {
	Name     *string `json:"name,omitempty"`
	Street   *string `json:"street,omitempty"`
	Zip      *string `json:"zip,omitempty"`
	City     *string `json:"city,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IBAN     *string `json:"iban,omitempty"`
	BankName *string `json:"bankName,omitempty"`
	BIC      *string `json:"bic,omitempty"`
}

// PropertyPatch merges into the property field-by-field.
type PropertyPatch struct {
	Street       *string  `json:"street,omitempty"`
	Zip          *string  `json:"zip,omitempty"`
	City         *string  `json:"city,omitempty"`
	TotalArea    *float64 `json:"totalArea,omitempty"`
	TotalUnits   *int     `json:"totalUnits,omitempty"`
	TotalPersons *int     `json:"totalPersons,omitempty"`
}

// TenantPatch merges into the tenant field-by-field.
type TenantPatch struct {
	Name        *string  `json:"name,omitempty"`
	CurrentArea *float64 `json:"currentArea,omitempty"`
	Persons     *int     `json:"persons,omitempty"`
	Prepayments *float64 `json:"prepayments,omitempty"`
}

// CostItemPatch merges into one cost item. The id is never patched.
type CostItemPatch struct {
	Name             *string              `json:"name,omitempty"`
	Amount           *float64             `json:"amount,omitempty"`
	DistributionType *nk.DistributionType `json:"distributionType,omitempty"`
}

// ApplyTo returns d with p merged in, as SetData would do it.
func (p CalculationPatch) ApplyTo(d nk.CalculationData) nk.CalculationData {
	return applyCalculation(d.Clone(), p)
}

// applyCalculation is the shallow merge behind SetData.
func applyCalculation(d nk.CalculationData, p CalculationPatch) nk.CalculationData {
	if p.Landlord != nil {
		d.Landlord = p.Landlord.Clone()
	}
	if p.BillingPeriod != nil {
		d.BillingPeriod = *p.BillingPeriod
	}
	if p.UsagePeriod != nil {
		d.UsagePeriod = *p.UsagePeriod
	}
	if p.Property != nil {
		d.Property = *p.Property
	}
	if p.Tenant != nil {
		d.Tenant = *p.Tenant
	}
	if p.Items != nil {
		items := make([]nk.CostItem, len(*p.Items))
		copy(items, *p.Items)
		d.Items = items
	}
	return d
}

func applyLandlord(l nk.Landlord, p LandlordPatch) nk.Landlord {
	set(&l.Name, p.Name)
	set(&l.Street, p.Street)
	set(&l.Zip, p.Zip)
	set(&l.City, p.City)
	setOptional(&l.Email, p.Email)
	setOptional(&l.Phone, p.Phone)
	setOptional(&l.IBAN, p.IBAN)
	setOptional(&l.BankName, p.BankName)
	setOptional(&l.BIC, p.BIC)
	return l
}

func applyProperty(pr nk.Property, p PropertyPatch) nk.Property {
	set(&pr.Street, p.Street)
	set(&pr.Zip, p.Zip)
	set(&pr.City, p.City)
	set(&pr.TotalArea, p.TotalArea)
	set(&pr.TotalUnits, p.TotalUnits)
	set(&pr.TotalPersons, p.TotalPersons)
	return pr
}

func applyTenant(t nk.Tenant, p TenantPatch) nk.Tenant {
	set(&t.Name, p.Name)
	set(&t.CurrentArea, p.CurrentArea)
	set(&t.Persons, p.Persons)
	set(&t.Prepayments, p.Prepayments)
	return t
}

func applyCostItem(item nk.CostItem, p CostItemPatch) nk.CostItem {
	set(&item.Name, p.Name)
	set(&item.Amount, p.Amount)
	set(&item.DistributionType, p.DistributionType)
	return item
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// setOptional stores a fresh pointer so the patch never aliases the aggregate.
func setOptional(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}
