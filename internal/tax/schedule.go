// Package tax computes fiscal withholdings for payment-support
// documents: source withholding from a fixed rate schedule and local
// turnover withholding from a per-mille rate.
package tax

import "github.com/shopspring/decimal"

// SourceCategory identifies a professional category in the source
// withholding schedule. Codes are ENGINE-CONSTANTS: they are stored on
// issued documents and must not be renamed or repurposed.
type SourceCategory string

const (
	CategoryFees          SourceCategory = "fees"           // Honorarios
	CategoryFeesDeclarant SourceCategory = "fees_declarant" // Honorarios declarante
	CategoryServices      SourceCategory = "services"       // Servicios
	CategoryServicesDecl  SourceCategory = "services_declarant"
	CategoryRent          SourceCategory = "rent" // Arrendamiento
)

// sourceSchedule is the closed rate schedule. Rates are fractions of the
// gross value.
var sourceSchedule = map[SourceCategory]struct {
	Label string
	Rate  decimal.Decimal
}{
	CategoryFees:          {"Honorarios (10%)", decimal.NewFromFloat(0.10)},
	CategoryFeesDeclarant: {"Honorarios Declarante (11%)", decimal.NewFromFloat(0.11)},
	CategoryServices:      {"Servicios (4%)", decimal.NewFromFloat(0.04)},
	CategoryServicesDecl:  {"Servicios Declarante (6%)", decimal.NewFromFloat(0.06)},
	CategoryRent:          {"Arrendamiento (3.5%)", decimal.NewFromFloat(0.035)},
}

func (c SourceCategory) Valid() bool {
	_, ok := sourceSchedule[c]
	return ok
}

func (c SourceCategory) Label() string {
	return sourceSchedule[c].Label
}

func (c SourceCategory) Rate() decimal.Decimal {
	return sourceSchedule[c].Rate
}

// Categories returns the schedule in a stable order for listings.
func Categories() []SourceCategory {
	return []SourceCategory{
		CategoryFees,
		CategoryFeesDeclarant,
		CategoryServices,
		CategoryServicesDecl,
		CategoryRent,
	}
}

// DefaultLocalPerMille is the canonical local-turnover rate applied when
// the caller enables the withholding without picking a rate.
var DefaultLocalPerMille = decimal.NewFromFloat(9.66)
