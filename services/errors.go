package services

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated      = errors.New("admin not authenticated")
	ErrNotFound             = errors.New("shipment not found")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrEmptyTrackingID      = errors.New("please enter a tracking number")
	ErrConfirmationRequired = errors.New("deletion requires operator confirmation")
	ErrCreatedNotFound      = errors.New("created shipment missing from tracking API")
)

// ValidationError lists the form fields that failed validation, by their
// JSON names.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "please fill all required fields: " + strings.Join(e.Fields, ", ")
}
