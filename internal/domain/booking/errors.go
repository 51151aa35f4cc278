package booking

import (
	"fmt"
	"strconv"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

func newAlreadyProcessedError(current BookingStatus, action Action) *domain.DomainError {
	return &domain.DomainError{
		Kind:    domain.KindInvalidState,
		Code:    domain.CodeAlreadyProcessed,
		Message: fmt.Sprintf("booking is already %s and cannot %s", current, action),
	}
}

func newBookingNotFoundError(id int64) *domain.DomainError {
	return domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
}

func newItemNotFoundError(id int64) *domain.DomainError {
	return domain.NewNotFoundError("Item", strconv.FormatInt(id, 10))
}
