package domain

import "errors"

// Domain errors. ErrInvalidInput is the root of every validation error, so
// callers can branch on the category with errors.Is.
var (
	ErrNotFound         = errors.New("calculation not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInsufficientData = errors.New("insufficient data")
	ErrStorageCapacity  = errors.New("storage capacity exceeded")
	ErrUnknownState     = errors.New("unknown state code")
	ErrUnknownTaxYear   = errors.New("no tax table for year")
)

// Validation constants
const (
	MaxNameLength = 255
	MaxTagLength  = 64
)
