package availability

import "errors"

var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidBedCount  = errors.New("invalid bed count")
)
