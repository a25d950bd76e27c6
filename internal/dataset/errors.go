package dataset

import "errors"

var (
	// ErrNotFound is returned when a CNPJ has no rows in the requested table
	ErrNotFound = errors.New("fund not found")

	// ErrUnknownKind is returned for an unsupported dataset kind
	ErrUnknownKind = errors.New("unknown dataset kind")
)
