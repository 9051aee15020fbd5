package service

import "errors"

// Identity errors
var (
	ErrNotRegistered    = errors.New("user not found. please register first")
	ErrUsernameMismatch = errors.New("username does not match the registered user on this device")
	ErrDeviceMismatch   = errors.New("device mismatch. you must use the registered device")
)

// Session errors
var (
	ErrAlreadyActive = errors.New("user already has an active job")
	ErrLogNotFound   = errors.New("work log not found")
	ErrInvalidState  = errors.New("work log is already checked out")
	ErrOutOfRange    = errors.New("too far from the check-in location to check out")
	ErrForbidden     = errors.New("forbidden: user does not have permission for this action")
)

// Validation errors
var (
	ErrMissingUsername = errors.New("username is required")
	ErrMissingJobName  = errors.New("job name is required")
	ErrMissingLocation = errors.New("location is required")
	ErrInvalidLocation = errors.New("location is out of range")
)

// Report errors
var (
	ErrInvalidPeriod = errors.New("invalid report period")
	ErrNoReportData  = errors.New("no data to export for this month")
)
