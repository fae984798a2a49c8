package core

import (
	"errors"
	"fmt"
)

// Error codes for every way a personal data request can end without an answer.
const (
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
	CodeCallerNotFound       = "CALLER_NOT_FOUND"
	CodeRoleNotConfigured    = "ROLE_NOT_CONFIGURED"
	CodeClassificationFailed = "CLASSIFICATION_FAILED"
	CodePermissionDenied     = "PERMISSION_DENIED"
	CodeTargetNotFound       = "TARGET_NOT_FOUND"
	CodeFieldNotFound        = "FIELD_NOT_FOUND"
	CodeDocumentNotFound     = "DOCUMENT_NOT_FOUND"
	CodeMissingParameter     = "MISSING_PARAMETER"
)

// GenericRefusal is the reply for both PERMISSION_DENIED and CLASSIFICATION_FAILED.
const GenericRefusal = "I'm sorry, I can't help with that request. Please try rephrasing it."

// Error is a request-scoped failure carrying the text shown to the user.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so the sentinels below work with errors.Is regardless of
// the message or wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrStoreUnavailable     = &Error{Code: CodeStoreUnavailable}
	ErrCallerNotFound       = &Error{Code: CodeCallerNotFound}
	ErrRoleNotConfigured    = &Error{Code: CodeRoleNotConfigured}
	ErrClassificationFailed = &Error{Code: CodeClassificationFailed}
	ErrPermissionDenied     = &Error{Code: CodePermissionDenied}
	ErrTargetNotFound       = &Error{Code: CodeTargetNotFound}
	ErrFieldNotFound        = &Error{Code: CodeFieldNotFound}
	ErrDocumentNotFound     = &Error{Code: CodeDocumentNotFound}
	ErrMissingParameter     = &Error{Code: CodeMissingParameter}
)

func storeUnavailable(err error) error {
	return &Error{
		Code:    CodeStoreUnavailable,
		Message: "I am sorry, but I cannot connect to our database at the moment.",
		Err:     err,
	}
}

func callerNotFound() error {
	return &Error{Code: CodeCallerNotFound, Message: "I'm sorry, I couldn't find your user profile."}
}

func roleNotConfigured(role Role) error {
	return &Error{
		Code:    CodeRoleNotConfigured,
		Message: fmt.Sprintf("I'm sorry, your user role ('%s') is not configured for any actions.", role),
	}
}

func classificationFailed(err error) error {
	return &Error{Code: CodeClassificationFailed, Message: GenericRefusal, Err: err}
}

func permissionDenied(action Action) error {
	return &Error{
		Code:    CodePermissionDenied,
		Message: GenericRefusal,
		Err:     fmt.Errorf("action %q not permitted", action),
	}
}

func targetNotFound(identifier string) error {
	return &Error{
		Code:    CodeTargetNotFound,
		Message: fmt.Sprintf("I could not find a user matching '%s'.", identifier),
	}
}

func fieldNotFound(field, owner string) error {
	return &Error{
		Code:    CodeFieldNotFound,
		Message: fmt.Sprintf("I'm sorry, I couldn't find information about '%s' in %s's records.", field, owner),
	}
}

func documentNotFound(document, owner string) error {
	return &Error{
		Code:    CodeDocumentNotFound,
		Message: fmt.Sprintf("There is no information regarding the document '%s' for %s.", document, owner),
	}
}

func missingParameter(prompt string) error {
	return &Error{Code: CodeMissingParameter, Message: prompt}
}

// UserMessage converts any error into the fixed text shown to the caller.
// Errors that are not *Error get the generic refusal.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return GenericRefusal
}

// ErrorCode returns the code of err, or "INTERNAL" for foreign errors.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}
