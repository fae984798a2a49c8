package app

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidRequest marks input the caller must fix before retrying.
var ErrInvalidRequest = errors.New("invalid request")

// ChatRequest is the input for Chat.
type ChatRequest struct {
	UserID  string
	Message string
}

// AskRequest is the input for Ask.
type AskRequest struct {
	UserID string
	Query  string
}

// validateText trims s and checks it holds between 1 and maxChars characters.
func validateText(field, s string, maxChars int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s must not be empty", ErrInvalidRequest, field)
	}
	if maxChars > 0 && utf8.RuneCountInString(s) > maxChars {
		return "", fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidRequest, field, maxChars)
	}
	return s, nil
}

func validateUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	return userID, nil
}
