package booking

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the booking service.
var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomOccupied         = errors.New("room already occupied")
	ErrInvalidRoomID        = errors.New("invalid room id")
	ErrInvalidRoomName      = errors.New("invalid room name")
	ErrInvalidGuestName     = errors.New("invalid guest name")
	ErrInvalidPriceCents    = errors.New("invalid price cents")
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

// ConflictError reports a reservation attempt against an occupied room.
// It unwraps to ErrRoomOccupied and its message names the current guest.
type ConflictError struct {
	RoomID         RoomID
	CurrentGuest   string
	AttemptedGuest string
}

// Error returns the conflict message shown to callers.
func (conflictError *ConflictError) Error() string {
	return fmt.Sprintf("room %s is already reserved by %s", conflictError.RoomID.String(), conflictError.CurrentGuest)
}

// Unwrap returns the occupancy sentinel.
func (conflictError *ConflictError) Unwrap() error {
	return ErrRoomOccupied
}

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
