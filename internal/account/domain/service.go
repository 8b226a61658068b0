package domain

import "context"

// UpdateLegalRequest carries the issuer's legal data shown on documents.
// TaxID and Phone must be numeric.
type UpdateLegalRequest struct {
	DisplayName  string  `json:"display_name"`
	TaxID        string  `json:"tax_id"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	ContactEmail string  `json:"contact_email"`
	Signature    []byte  `json:"-"`
}

type UpdateBrandingRequest struct {
	BrandColor string `json:"brand_color"`
	Slogan     string `json:"slogan"`
	Logo       []byte `json:"-"`
}

type Service interface {
	Get(ctx context.Context) (*Account, error)
	UpdateLegal(ctx context.Context, req UpdateLegalRequest) (*Account, error)
	UpdateBranding(ctx context.Context, req UpdateBrandingRequest) (*Account, error)
}
