package nebenkosten

import (
	"nebenkosten/internal/core/types"
)

// Totals sums the entered cost items. It is a display aid for the form
// footer; apportioning costs to the tenant happens elsewhere.
type Totals struct {
	ByDistribution map[DistributionType]types.Money `json:"byDistribution"`
	Total          types.Money                      `json:"total"`
	Items          int                              `json:"items"`
}

// Totals sums item amounts per distribution key in exact decimal arithmetic,
// rounded to cents.
func (d CalculationData) Totals() Totals {
	sums := make(map[DistributionType]types.Money, 3)
	for _, dt := range DistributionTypes() {
		sums[dt] = types.Zero()
	}

	total := types.Zero()
	for _, item := range d.Items {
		amount := types.NewMoney(item.Amount)
		sums[item.DistributionType] = sums[item.DistributionType].Add(amount)
		total = total.Add(amount)
	}

	for dt, sum := range sums {
		sums[dt] = types.Cents(sum)
	}
	return Totals{
		ByDistribution: sums,
		Total:          types.Cents(total),
		Items:          len(d.Items),
	}
}
