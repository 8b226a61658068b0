package domain

import "errors"

var (
	ErrInvalidGross         = errors.New("invalid_gross_value")
	ErrInvalidDescription   = errors.New("invalid_description")
	ErrInvalidCity          = errors.New("invalid_city")
	ErrInvalidID            = errors.New("invalid_id")
	ErrClientNotFound       = errors.New("client_not_found")
	ErrTargetNotFound       = errors.New("payment_target_not_found")
	ErrDocumentNotFound     = errors.New("document_not_found")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrNoRecipient          = errors.New("no_recipient_email")

	// ErrPersistenceConflict reports a lost race on credit balance or
	// sequence number that survived the single in-service retry.
	ErrPersistenceConflict = errors.New("persistence_conflict")
)
