package validation

import (
	"time"

	"github.com/residentdesk/residentdesk/internal/resident"
)

// CreateResidentRequest mirrors the fields needed for create resident validation.
type CreateResidentRequest struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	ApartmentNumber string
	Building        string
	MoveInDate      string
	MoveOutDate     *string
	Status          string
}

// ValidateCreateResidentRequest validates the fields of a create resident request.
func ValidateCreateResidentRequest(req CreateResidentRequest) []FieldError {
	var errs []FieldError

	errs = required(errs, "firstName", req.FirstName)
	errs = maxLength(errs, "firstName", req.FirstName, 100)
	errs = required(errs, "lastName", req.LastName)
	errs = maxLength(errs, "lastName", req.LastName, 100)
	errs = email(errs, "email", req.Email)
	errs = required(errs, "phone", req.Phone)
	errs = required(errs, "apartmentNumber", req.ApartmentNumber)
	errs = required(errs, "building", req.Building)

	var moveIn *time.Time
	if req.MoveInDate == "" {
		errs = append(errs, FieldError{Field: "moveInDate", Message: "moveInDate is required"})
	} else {
		errs, moveIn = date(errs, "moveInDate", req.MoveInDate)
	}

	if req.MoveOutDate != nil && *req.MoveOutDate != "" {
		var moveOut *time.Time
		errs, moveOut = date(errs, "moveOutDate", *req.MoveOutDate)
		errs = moveOutAfterMoveIn(errs, moveIn, moveOut)
	}

	if req.Status != "" && !resident.Status(req.Status).Valid() {
		errs = append(errs, statusError())
	}

	return errs
}

// UpdateResidentRequest mirrors the optional fields of an update resident request.
type UpdateResidentRequest struct {
	FirstName       *string
	LastName        *string
	Email           *string
	Phone           *string
	ApartmentNumber *string
	Building        *string
	MoveInDate      *string
	MoveOutDate     *string
	Status          *string
}

// ValidateUpdateResidentRequest validates the provided fields of an update
// resident request. currentMoveIn and currentMoveOut are the stored dates,
// used when the request changes only one of the two.
func ValidateUpdateResidentRequest(req UpdateResidentRequest, currentMoveIn, currentMoveOut *time.Time) []FieldError {
	var errs []FieldError

	if req.FirstName != nil {
		errs = required(errs, "firstName", *req.FirstName)
		errs = maxLength(errs, "firstName", *req.FirstName, 100)
	}
	if req.LastName != nil {
		errs = required(errs, "lastName", *req.LastName)
		errs = maxLength(errs, "lastName", *req.LastName, 100)
	}
	if req.Email != nil {
		errs = email(errs, "email", *req.Email)
	}
	if req.Phone != nil {
		errs = required(errs, "phone", *req.Phone)
	}
	if req.ApartmentNumber != nil {
		errs = required(errs, "apartmentNumber", *req.ApartmentNumber)
	}
	if req.Building != nil {
		errs = required(errs, "building", *req.Building)
	}

	moveIn, moveOut := currentMoveIn, currentMoveOut
	if req.MoveInDate != nil {
		errs, moveIn = date(errs, "moveInDate", *req.MoveInDate)
	}
	if req.MoveOutDate != nil {
		errs, moveOut = date(errs, "moveOutDate", *req.MoveOutDate)
		errs = moveOutAfterMoveIn(errs, moveIn, moveOut)
	} else if req.MoveInDate != nil && moveIn != nil && moveOut != nil && moveOut.Before(*moveIn) {
		errs = append(errs, FieldError{Field: "moveInDate", Message: "moveInDate must not be after moveOutDate"})
	}

	if req.Status != nil && !resident.Status(*req.Status).Valid() {
		errs = append(errs, statusError())
	}

	return errs
}

// ParseDate parses a calendar date as sent by clients.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func date(errs []FieldError, field, value string) ([]FieldError, *time.Time) {
	t, err := ParseDate(value)
	if err != nil {
		return append(errs, FieldError{Field: field, Message: field + " must be a date in YYYY-MM-DD format"}), nil
	}
	return errs, &t
}

func moveOutAfterMoveIn(errs []FieldError, moveIn, moveOut *time.Time) []FieldError {
	if moveIn != nil && moveOut != nil && moveOut.Before(*moveIn) {
		errs = append(errs, FieldError{Field: "moveOutDate", Message: "moveOutDate must not be before moveInDate"})
	}
	return errs
}

func statusError() FieldError {
	return FieldError{Field: "status", Message: `status must be "active", "inactive" or "pending"`}
}
