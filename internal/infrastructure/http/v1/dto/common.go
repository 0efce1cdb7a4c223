// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	nk "nebenkosten/internal/domain/nebenkosten"
	"nebenkosten/internal/domain/plausibility"
)

// IDResponse returns the id of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CalculationResponse wraps the aggregate with display totals.
type CalculationResponse struct {
	Data   nk.CalculationData `json:"data"`
	Totals TotalsResponse     `json:"totals"`
}

// TotalsResponse is the JSON form of nk.Totals. Amounts are decimal strings.
type TotalsResponse struct {
	ByDistribution map[nk.DistributionType]string `json:"byDistribution"`
	Total          string                         `json:"total"`
	Items          int                            `json:"items"`
}

// NewCalculationResponse builds the response for d.
func NewCalculationResponse(d nk.CalculationData) CalculationResponse {
	t := d.Totals()
	by := make(map[nk.DistributionType]string, len(t.ByDistribution))
	for k, v := range t.ByDistribution {
		by[k] = v.StringFixed(2)
	}
	return CalculationResponse{
		Data: d,
		Totals: TotalsResponse{
			ByDistribution: by,
			Total:          t.Total.StringFixed(2),
			Items:          t.Items,
		},
	}
}

// ValidationResponse reports a successful validation.
type ValidationResponse struct {
	Valid    bool                   `json:"valid"`
	Value    any                    `json:"value"`
	Warnings []plausibility.Warning `json:"warnings"`
}
