package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("access denied")
	ErrSelfContact       = errors.New("cannot contact your own listing")
	ErrInvalidAmount     = errors.New("amount must be greater than 0")
	ErrInvalidMargin     = errors.New("margin must be between 0 and 100")
	ErrPricesUnavailable = errors.New("prices are unavailable right now")
	ErrNotConfirmed      = errors.New("request must be confirmed before submission")
	ErrMissingContact    = errors.New("name and contact are required")
)
