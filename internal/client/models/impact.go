package models

import "github.com/shopspring/decimal"

// ImpactSummary aggregates redistribution results. Estimated is true when
// the figures were computed locally because GET /stats failed.
type ImpactSummary struct {
	CompletedCount int             `json:"completed_count"`
	CollectorCount int             `json:"collector_count"`
	CO2Kg          decimal.Decimal `json:"co2_kg"`
	Estimated      bool            `json:"-"`
}
