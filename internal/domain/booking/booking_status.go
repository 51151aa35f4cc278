package booking

import (
	"fmt"
	"strings"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	StatusCanceled BookingStatus = "CANCELED"
)

// Action is a requested change to a booking's status.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// validTransitions defines the state machine for booking status transitions.
// Every status other than WAITING is terminal.
var validTransitions = map[BookingStatus]map[Action]BookingStatus{
	StatusWaiting: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
		ActionCancel:  StatusCanceled,
	},
	StatusApproved: {},
	StatusRejected: {},
	StatusCanceled: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// Apply returns the status reached by applying action, or an invalid state error.
func (s BookingStatus) Apply(action Action) (BookingStatus, error) {
	target, ok := validTransitions[s][action]
	if !ok {
		return s, newAlreadyProcessedError(s, action)
	}
	return target, nil
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// ActionFor maps an approval decision to its action.
func ActionFor(approve bool) Action {
	if approve {
		return ActionApprove
	}
	return ActionReject
}
