package services

import "errors"

// Dashboard service errors
var (
	ErrUnknownChart  = errors.New("unknown chart")
	ErrUnknownFormat = errors.New("unknown export format")
	ErrInvalidRange  = errors.New("from date is after to date")
)
