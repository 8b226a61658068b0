package tax

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeGross   = errors.New("negative_gross")
	ErrInvalidCategory = errors.New("invalid_source_category")
	ErrInvalidPerMille = errors.New("invalid_per_mille_rate")
)

// LocalSelection enables local turnover withholding. A zero PerMille
// means "use the canonical default rate".
type LocalSelection struct {
	PerMille decimal.Decimal
	City     string
}

// Selection is the caller's withholding choice: either part may be nil.
type Selection struct {
	Source *SourceCategory
	Local  *LocalSelection
}

// Result carries exact (unrounded) amounts. Rounding to whole currency
// units happens only at presentation boundaries.
type Result struct {
	Gross          decimal.Decimal
	WithheldSource decimal.Decimal
	WithheldLocal  decimal.Decimal
	Net            decimal.Decimal

	// NegativeNet flags that withholdings exceeded the gross value. The
	// net is still the exact arithmetic result; policy is the caller's.
	NegativeNet bool
}

var perMilleDivisor = decimal.NewFromInt(1000)

// Compute applies the selected withholdings to gross. Pure and
// deterministic; net = gross - source - local exactly, never clamped.
func Compute(gross decimal.Decimal, sel Selection) (Result, error) {
	if gross.IsNegative() {
		return Result{}, ErrNegativeGross
	}

	res := Result{Gross: gross}

	if sel.Source != nil {
		if !sel.Source.Valid() {
			return Result{}, ErrInvalidCategory
		}
		res.WithheldSource = gross.Mul(sel.Source.Rate())
	}

	if sel.Local != nil {
		perMille := sel.Local.PerMille
		if perMille.IsZero() {
			perMille = DefaultLocalPerMille
		}
		if perMille.IsNegative() {
			return Result{}, ErrInvalidPerMille
		}
		res.WithheldLocal = gross.Mul(perMille).Div(perMilleDivisor)
	}

	res.Net = gross.Sub(res.WithheldSource).Sub(res.WithheldLocal)
	res.NegativeNet = res.Net.IsNegative()
	return res, nil
}
