package validation

import "github.com/residentdesk/residentdesk/internal/issue"

// CreateIssueRequest mirrors the fields needed for create issue validation.
type CreateIssueRequest struct {
	Title       string
	Description string
	Priority    string
}

// ValidateCreateIssueRequest validates the fields of a create issue request.
func ValidateCreateIssueRequest(req CreateIssueRequest) []FieldError {
	var errs []FieldError

	errs = required(errs, "title", req.Title)
	errs = maxLength(errs, "title", req.Title, 200)
	errs = required(errs, "description", req.Description)

	if req.Priority == "" {
		errs = append(errs, FieldError{Field: "priority", Message: "priority is required"})
	} else if !issue.Priority(req.Priority).Valid() {
		errs = append(errs, FieldError{Field: "priority", Message: `priority must be "low", "medium" or "high"`})
	}

	return errs
}

// ValidateIssueStatus validates the target status of an issue.
func ValidateIssueStatus(status string) []FieldError {
	if status == "" {
		return []FieldError{{Field: "status", Message: "status is required"}}
	}
	if !issue.Status(status).Valid() {
		return []FieldError{{Field: "status", Message: `status must be "pending", "in-progress" or "resolved"`}}
	}
	return nil
}
