// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package database

import (
	"errors"
	"io"

	"github.com/ainav/ainav/internal/validation"
)

// ErrStoreUnavailable is returned by BreakerStore while its circuit is open.
var ErrStoreUnavailable = errors.New("message store unavailable")

// ValidationError reports a rejected insert. Callers detect it with errors.As
// and map it to a 400 response.
type ValidationError struct {
	Fields *validation.RequestValidationError
}

func (e *ValidationError) Error() string {
	return "invalid message: " + e.Fields.Error()
}

// APIError converts the failure to the API error shape.
func (e *ValidationError) APIError() *validation.APIError {
	return e.Fields.ToAPIError()
}

// closeQuietly closes a resource in error paths where Close errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
