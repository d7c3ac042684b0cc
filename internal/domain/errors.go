package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrInvalidSeat             = errors.New("invalid seat")
	ErrSelectionLimitExceeded  = errors.New("selection limit exceeded")
	ErrSeatUnavailable         = errors.New("seat unavailable")
	ErrUnknownClass            = errors.New("unknown class")
	ErrInvalidPassengerDetails = errors.New("invalid passenger details")
	ErrInvalidPaymentDetails   = errors.New("invalid payment details")
	ErrNotFound                = errors.New("booking not found")
	ErrAlreadyCancelled        = errors.New("booking already cancelled")

	ErrTrainNotFound      = errors.New("train not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionStage       = errors.New("operation not allowed in current session stage")
	ErrEmptySelection     = errors.New("no seats selected")
	ErrInvalidPax         = errors.New("passenger count must be at least 1")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ErrConflict is the inventory-level name for a seat that is already occupied.
var ErrConflict = ErrSeatUnavailable

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// SeatConflictError reports the seats that were taken by someone else.
// It matches ErrSeatUnavailable and counts as a ConflictError.
type SeatConflictError struct {
	Seats []int
}

func NewSeatConflict(seats []int) SeatConflictError {
	out := append([]int(nil), seats...)
	sort.Ints(out)
	return SeatConflictError{Seats: out}
}

func (e SeatConflictError) Error() string {
	if len(e.Seats) == 0 {
		return ErrSeatUnavailable.Error()
	}
	parts := make([]string, 0, len(e.Seats))
	for _, n := range e.Seats {
		parts = append(parts, strconv.Itoa(n))
	}
	return fmt.Sprintf("%s: %s", ErrSeatUnavailable.Error(), strings.Join(parts, ", "))
}

func (e SeatConflictError) Unwrap() error { return ErrSeatUnavailable }

func (e SeatConflictError) As(target any) bool {
	if t, ok := target.(*ConflictError); ok {
		*t = ConflictError{Resource: "seat", Msg: e.Error(), Err: ErrSeatUnavailable}
		return true
	}
	return false
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// ConflictingSeats extracts the seat list from a seat conflict, if any.
func ConflictingSeats(err error) []int {
	var target SeatConflictError
	if errors.As(err, &target) {
		return target.Seats
	}
	return nil
}
