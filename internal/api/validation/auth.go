package validation

import "github.com/residentdesk/residentdesk/internal/session"

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	Email    string
	Password string
}

// ValidateLoginRequest validates the fields of a login request.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError
	errs = email(errs, "email", req.Email)
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}
	return errs
}

// ValidateFullName validates a profile display name.
func ValidateFullName(fullName string) []FieldError {
	var errs []FieldError
	errs = required(errs, "fullName", fullName)
	errs = maxLength(errs, "fullName", fullName, 255)
	return errs
}

// CreateAdminRequest mirrors the fields needed for create admin validation.
type CreateAdminRequest struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// ValidateCreateAdminRequest validates the fields of a create admin request.
func ValidateCreateAdminRequest(req CreateAdminRequest) []FieldError {
	var errs []FieldError

	errs = email(errs, "email", req.Email)
	if len(req.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}
	errs = maxLength(errs, "fullName", req.FullName, 255)

	if req.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else if !session.Role(req.Role).Valid() {
		errs = append(errs, FieldError{Field: "role", Message: `role must be "admin" or "super_admin"`})
	}

	return errs
}
