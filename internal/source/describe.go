package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/oakwood-commons/propdash/internal/document"
)

// Describe turns a fetch failure into a message fit for an end user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *StatusError
	switch {
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The property service took too long to respond. Try again shortly."
	case errors.Is(err, ErrEmptyQuery):
		return "Enter an address, or both a latitude and a longitude."
	case errors.As(err, &statusErr):
		return describeStatus(statusErr.StatusCode)
	case errors.Is(err, document.ErrInvalidJSON), errors.Is(err, document.ErrEmptyInput):
		return "The property service returned data that could not be read."
	case IsRetryable(err):
		return "The property service could not be reached. Check your connection and try again."
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "Something went wrong."
	}
	return "Something went wrong: " + msg
}

func describeStatus(code int) string {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return "The property service rejected the API key."
	case code == http.StatusNotFound:
		return "No property matched that search."
	case code == http.StatusTooManyRequests:
		return "Too many requests to the property service. Wait a moment and try again."
	case code >= 500:
		return fmt.Sprintf("The property service is unavailable (status %d).", code)
	default:
		return fmt.Sprintf("The property service refused the request (status %d).", code)
	}
}
