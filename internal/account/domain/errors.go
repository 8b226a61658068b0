package domain

import "errors"

var (
	ErrNotFound        = errors.New("account_not_found")
	ErrInvalidHandle   = errors.New("invalid_handle")
	ErrInvalidTaxID    = errors.New("invalid_tax_id")
	ErrInvalidPhone    = errors.New("invalid_phone")
	ErrInvalidColor    = errors.New("invalid_brand_color")
	ErrHandleTaken     = errors.New("handle_taken")
	ErrInvalidPassword = errors.New("invalid_password")
)
