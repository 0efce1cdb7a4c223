package nebenkosten

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nebenkosten/internal/core/apperror"
	"nebenkosten/internal/core/id"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validLandlord() Landlord {
	return Landlord{
		Name:   "Erika Mustermann",
		Street: "Hauptstraße 1",
		Zip:    "10115",
		City:   "Berlin",
	}
}

func validProperty() Property {
	return Property{
		Street:       "Gartenweg 5",
		Zip:          "10115",
		City:         "Berlin",
		TotalArea:    420.5,
		TotalUnits:   6,
		TotalPersons: 11,
	}
}

func validTenant() Tenant {
	return Tenant{
		Name:        "Max Mieter",
		CurrentArea: 72.3,
		Persons:     2,
		Prepayments: 1800,
	}
}

func validItem() CostItem {
	return CostItem{
		ID:               id.NewString(),
		Name:             "Heizung",
		Amount:           500,
		DistributionType: DistributionArea,
	}
}

func validCalculation() CalculationData {
	d := Default(day(2025, time.March, 1))
	d.Landlord = validLandlord()
	d.Property = validProperty()
	d.Tenant = validTenant()
	d.Items = []CostItem{validItem()}
	return d
}

func requireViolations(t *testing.T, err error) *apperror.ValidationError {
	t.Helper()
	require.Error(t, err)
	verr, ok := apperror.AsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %T", err)
	return verr
}

func TestValidatePeriod(t *testing.T) {
	from := day(2024, time.January, 1)

	tests := []struct {
		name  string
		to    time.Time
		valid bool
	}{
		{"one day later", from.AddDate(0, 0, 1), true},
		{"full year", day(2024, time.December, 31), true},
		{"one nanosecond later", from.Add(time.Nanosecond), true},
		{"same instant", from, false},
		{"before", from.AddDate(0, 0, -1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePeriod(Period{From: from, To: tt.to})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			verr := requireViolations(t, err)
			require.Len(t, verr.Violations, 1)
			assert.Equal(t, []string{"to"}, verr.Violations[0].Path)
			assert.Equal(t, "Das Enddatum muss nach dem Startdatum liegen.", verr.Violations[0].Message)
		})
	}
}

func TestValidatePeriod_MissingDates(t *testing.T) {
	_, err := ValidatePeriod(Period{})
	verr := requireViolations(t, err)

	assert.True(t, verr.Has("from"))
	assert.True(t, verr.Has("to"))
}

func TestValidatePeriod_NormalizesToUTC(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	p := Period{
		From: time.Date(2024, time.January, 1, 0, 0, 0, 0, berlin),
		To:   time.Date(2024, time.December, 31, 0, 0, 0, 0, berlin),
	}

	got, err := ValidatePeriod(p)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.From.Location())
	assert.True(t, got.Equal(p))
}

func TestValidateCostItem_AmountBoundaries(t *testing.T) {
	tests := []struct {
		amount float64
		valid  bool
		rule   string
	}{
		{0.01, true, ""},
		{0.00999, false, "gte"},
		{0, false, "gte"},
		{-5, false, "gte"},
		{1000000, true, ""},
		{1000000.01, false, "lte"},
	}

	for _, tt := range tests {
		item := validItem()
		item.Amount = tt.amount
		_, err := ValidateCostItem(item)
		if tt.valid {
			assert.NoError(t, err, "amount %v", tt.amount)
			continue
		}
		verr := requireViolations(t, err)
		v, ok := verr.For("amount")
		require.True(t, ok, "amount %v", tt.amount)
		assert.Equal(t, tt.rule, v.Rule)
	}
}

func TestValidateCostItem_Fields(t *testing.T) {
	item := CostItem{
		ID:               "not-a-uuid",
		Name:             strings.Repeat("x", 51),
		Amount:           10,
		DistributionType: "FLOOR",
	}

	_, err := ValidateCostItem(item)
	verr := requireViolations(t, err)

	msgs := verr.FieldMessages()
	assert.Equal(t, "Ungültige ID", msgs["id"])
	assert.Equal(t, "Bezeichnung zu lang", msgs["name"])
	assert.Equal(t, "Bitte einen Verteilerschlüssel wählen", msgs["distributionType"])
	assert.NotContains(t, msgs, "amount")
}

func TestValidateLandlord(t *testing.T) {
	t.Run("empty optional strings are accepted", func(t *testing.T) {
		l := validLandlord()
		l.Email = String("")
		l.IBAN = String("")
		l.BIC = String("")
		_, err := ValidateLandlord(l)
		assert.NoError(t, err)
	})

	t.Run("defaults with required fields filled in are accepted", func(t *testing.T) {
		l := Default(day(2025, time.March, 1)).Landlord
		l.Name = "Erika Mustermann"
		l.Street = "Hauptstraße 1"
		l.Zip = "10115"
		l.City = "Berlin"

		got, err := ValidateLandlord(l)
		require.NoError(t, err)
		require.NotNil(t, got.Email)
		assert.Equal(t, "", *got.Email)
	})

	t.Run("absent optional fields are accepted", func(t *testing.T) {
		_, err := ValidateLandlord(validLandlord())
		assert.NoError(t, err)
	})

	t.Run("optional fields are checked when provided", func(t *testing.T) {
		l := validLandlord()
		l.Email = String("keine-mail")
		l.IBAN = String("DE123")
		l.BIC = String("COBADEFFXXXX")
		_, err := ValidateLandlord(l)
		verr := requireViolations(t, err)

		msgs := verr.FieldMessages()
		assert.Equal(t, "Ungültige E-Mail", msgs["email"])
		assert.Equal(t, "IBAN zu kurz", msgs["iban"])
		assert.Equal(t, "BIC zu lang", msgs["bic"])
	})

	t.Run("every violation is reported", func(t *testing.T) {
		_, err := ValidateLandlord(Landlord{Zip: "123"})
		verr := requireViolations(t, err)

		assert.Len(t, verr.Violations, 4)
		assert.Equal(t, "Name des Vermieters ist erforderlich", verr.FieldMessages()["name"])
		assert.Equal(t, "PLZ muss mind. 5 Zeichen haben", verr.FieldMessages()["zip"])
	})

	t.Run("length counts characters not bytes", func(t *testing.T) {
		l := validLandlord()
		l.Street = strings.Repeat("ß", 100)
		_, err := ValidateLandlord(l)
		assert.NoError(t, err)
	})
}

func TestValidateProperty(t *testing.T) {
	p := validProperty()
	p.TotalArea = 0
	p.TotalUnits = 0
	p.TotalPersons = 1001

	_, err := ValidateProperty(p)
	verr := requireViolations(t, err)

	msgs := verr.FieldMessages()
	assert.Equal(t, "Gesamtfläche muss größer als 0 sein", msgs["totalArea"])
	assert.Equal(t, "Anzahl Wohneinheiten muss größer als 0 sein", msgs["totalUnits"])
	assert.Equal(t, "Mehr als 1000 werden nicht unterstützt", msgs["totalPersons"])

	p = validProperty()
	p.TotalPersons = 0
	_, err = ValidateProperty(p)
	assert.NoError(t, err)
}

func TestValidateTenant(t *testing.T) {
	tn := validTenant()
	tn.Persons = 0
	tn.Prepayments = -1
	tn.CurrentArea = 1000001

	_, err := ValidateTenant(tn)
	verr := requireViolations(t, err)

	assert.ElementsMatch(t,
		[]string{"persons", "prepayments", "currentArea"},
		[]string{verr.Violations[0].PathString(), verr.Violations[1].PathString(), verr.Violations[2].PathString()},
	)
}

func TestValidateCalculation_Scenario(t *testing.T) {
	d := Default(day(2025, time.June, 1))
	item := NewCostItem(id.NewString())
	item.Name = "Heizung"
	item.Amount = 500
	item.DistributionType = DistributionArea
	d.Items = append(d.Items, item)

	// Only the item is filled in: landlord, property and tenant still fail.
	_, err := ValidateCalculation(d)
	verr := requireViolations(t, err)
	assert.True(t, verr.Has("landlord", "name"))
	assert.True(t, verr.Has("property", "totalArea"))
	assert.True(t, verr.Has("tenant", "persons"))
	assert.False(t, verr.Has("items", "0", "amount"))

	d.Landlord = validLandlord()
	d.Tenant = validTenant()
	d.Property = validProperty()
	d.Property.TotalArea = 0

	_, err = ValidateCalculation(d)
	verr = requireViolations(t, err)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, []string{"property", "totalArea"}, verr.Violations[0].Path)

	d.Property.TotalArea = 420
	_, err = ValidateCalculation(d)
	assert.NoError(t, err)
}

func TestValidateCalculation_ItemAndPeriodPaths(t *testing.T) {
	d := validCalculation()
	d.Items = append(d.Items, CostItem{ID: id.NewString(), Name: "Wasser", Amount: 0, DistributionType: DistributionPersons})
	d.UsagePeriod.To = d.UsagePeriod.From

	_, err := ValidateCalculation(d)
	verr := requireViolations(t, err)

	assert.True(t, verr.Has("items", "1", "amount"))
	v, ok := verr.For("usagePeriod", "to")
	require.True(t, ok)
	assert.Equal(t, "Das Enddatum muss nach dem Startdatum liegen.", v.Message)
	assert.False(t, verr.Has("billingPeriod", "to"))
}

func TestValidateCalculation_PeriodsAreIndependent(t *testing.T) {
	d := validCalculation()
	d.UsagePeriod = Period{From: day(2019, time.May, 1), To: day(2019, time.June, 1)}

	_, err := ValidateCalculation(d)
	assert.NoError(t, err)
}

func TestValidationError_AppError(t *testing.T) {
	_, err := ValidateTenant(Tenant{})
	verr := requireViolations(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, 400, appErr.HTTPStatus)
	assert.Equal(t, verr.Violations, appErr.Details["violations"])
}

func TestPeriod_UnmarshalJSON_Coercion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		from time.Time
	}{
		{"iso timestamp", `{"from":"2024-01-01T00:00:00.000Z","to":"2024-12-31T00:00:00Z"}`, day(2024, time.January, 1)},
		{"calendar date", `{"from":"2024-01-01","to":"2024-12-31"}`, day(2024, time.January, 1)},
		{"german date", `{"from":"01.01.2024","to":"31.12.2024"}`, day(2024, time.January, 1)},
		{"unix millis", `{"from":1704067200000,"to":1735603200000}`, day(2024, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Period
			require.NoError(t, json.Unmarshal([]byte(tt.in), &p))
			assert.True(t, p.From.Equal(tt.from), "got %v", p.From)

			_, err := ValidatePeriod(p)
			assert.NoError(t, err)
		})
	}

	var p Period
	assert.Error(t, json.Unmarshal([]byte(`{"from":"gestern","to":"heute"}`), &p))
}

func TestParseDate_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"millis beyond js date", `1e20`},
		{"negative millis beyond js date", `-1e20`},
		{"millis at js date limit", `8.64e15`},
		{"millis before year zero", `-62198755200000`},
		{"offset pushes utc before year zero", `"0000-01-01T00:00:00+01:00"`},
		{"nan-like string", `"NaN"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(json.RawMessage(tt.in))
			assert.Error(t, err)
		})
	}

	var p Period
	assert.Error(t, json.Unmarshal([]byte(`{"from":"2024-01-01","to":1e20}`), &p))

	got, err := ParseDate(json.RawMessage(`253402214400000`))
	require.NoError(t, err)
	assert.Equal(t, 9999, got.Year())
}

func TestDefault(t *testing.T) {
	d := Default(day(2026, time.October, 15))

	assert.Equal(t, day(2025, time.January, 1), d.BillingPeriod.From)
	assert.Equal(t, day(2025, time.December, 31), d.BillingPeriod.To)
	assert.Equal(t, d.BillingPeriod, d.UsagePeriod)
	assert.NotNil(t, d.Items)
	assert.Empty(t, d.Items)
	require.NotNil(t, d.Landlord.Email)
	assert.Equal(t, "", *d.Landlord.Email)
	assert.Equal(t, 365, d.BillingPeriod.Days())
}

func TestTotals(t *testing.T) {
	d := validCalculation()
	d.Items = []CostItem{
		{ID: id.NewString(), Name: "Heizung", Amount: 0.1, DistributionType: DistributionArea},
		{ID: id.NewString(), Name: "Wasser", Amount: 0.2, DistributionType: DistributionArea},
		{ID: id.NewString(), Name: "Müll", Amount: 99.99, DistributionType: DistributionUnits},
	}

	totals := d.Totals()
	assert.Equal(t, "0.3", totals.ByDistribution[DistributionArea].String())
	assert.Equal(t, "0", totals.ByDistribution[DistributionPersons].String())
	assert.Equal(t, "100.29", totals.Total.String())
	assert.Equal(t, 3, totals.Items)
}
