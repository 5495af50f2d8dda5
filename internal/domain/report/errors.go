package report

import "errors"

var (
	ErrInvalidMonth     = errors.New("month must be formatted as YYYY-MM")
	ErrInvalidDateRange = errors.New("end date must not be before start date")
	ErrRangeTooLarge    = errors.New("report range must not exceed 366 days")
	ErrExportFailed     = errors.New("failed to generate spreadsheet")
)
