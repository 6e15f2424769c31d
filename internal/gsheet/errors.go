package gsheet

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

// IsTransient reports whether a failed call is worth retrying: rate limits,
// server errors and network faults.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
	}

	var nerr net.Error
	return errors.As(err, &nerr) || errors.Is(err, context.DeadlineExceeded)
}
