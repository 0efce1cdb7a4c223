package nebenkosten

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"nebenkosten/internal/core/apperror"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// schema returns the shared validator configured to report JSON field names.
func schema() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidatePeriod checks that both dates are set and to lies after from.
// On success the normalized period is returned.
func ValidatePeriod(p Period) (Period, error) {
	p = p.Normalize()
	if err := check(&p); err != nil {
		return Period{}, err
	}
	return p, nil
}

// ValidateLandlord checks the landlord's identity and bank data.
func ValidateLandlord(l Landlord) (Landlord, error) {
	l = l.Clone()
	view := l.withoutEmptyOptionals()
	if err := check(&view); err != nil {
		return Landlord{}, err
	}
	return l, nil
}

// withoutEmptyOptionals returns l with optional fields that point to ""
// set to nil. omitempty only skips nil pointers, and "" means "not provided".
func (l Landlord) withoutEmptyOptionals() Landlord {
	for _, f := range []**string{&l.Email, &l.Phone, &l.IBAN, &l.BankName, &l.BIC} {
		if *f != nil && **f == "" {
			*f = nil
		}
	}
	return l
}

// ValidateProperty checks address and building totals.
func ValidateProperty(p Property) (Property, error) {
	if err := check(&p); err != nil {
		return Property{}, err
	}
	return p, nil
}

// ValidateTenant checks the tenant's figures.
func ValidateTenant(t Tenant) (Tenant, error) {
	if err := check(&t); err != nil {
		return Tenant{}, err
	}
	return t, nil
}

// ValidateCostItem checks a single cost item.
func ValidateCostItem(item CostItem) (CostItem, error) {
	if err := check(&item); err != nil {
		return CostItem{}, err
	}
	return item, nil
}

// ValidateCalculation checks the whole aggregate and reports every violation
// of every entity at once. Relationships between entities (tenant area vs.
// property area, usage vs. billing period) are not part of the schema.
func ValidateCalculation(d CalculationData) (CalculationData, error) {
	d = d.Clone()
	d.BillingPeriod = d.BillingPeriod.Normalize()
	d.UsagePeriod = d.UsagePeriod.Normalize()
	view := d
	view.Landlord = d.Landlord.withoutEmptyOptionals()
	if err := check(&view); err != nil {
		return CalculationData{}, err
	}
	return d, nil
}

// check runs the struct tags of v and converts failures into violations.
func check(v any) error {
	err := schema().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewInternal(fmt.Errorf("schema: %w", err))
	}

	violations := make([]apperror.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path, entity := splitNamespace(fe.Namespace())
		violations = append(violations, apperror.Violation{
			Path:    path,
			Rule:    fe.Tag(),
			Message: message(entity, fe),
		})
	}
	return &apperror.ValidationError{Violations: violations}
}

// splitNamespace turns "CalculationData.items[0].amount" into the path
// [items 0 amount] and the entity owning the field (costItem).
func splitNamespace(ns string) ([]string, string) {
	segments := strings.Split(ns, ".")
	entity := ""
	if len(segments) >= 2 {
		entity = entityName(segments[len(segments)-2])
	}

	path := make([]string, 0, len(segments))
	for _, seg := range segments[1:] {
		name, index, ok := strings.Cut(seg, "[")
		path = append(path, name)
		if ok {
			path = append(path, strings.TrimSuffix(index, "]"))
		}
	}
	return path, entity
}

// entityName maps a namespace segment (type or field name) to a message group.
func entityName(seg string) string {
	seg, _, _ = strings.Cut(seg, "[")
	switch strings.ToLower(seg) {
	case "period", "billingperiod", "usageperiod":
		return "period"
	case "costitem", "items":
		return "costItem"
	case "landlord":
		return "landlord"
	case "property":
		return "property"
	case "tenant":
		return "tenant"
	}
	return ""
}
