// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package presence

import (
	"net/http"
	"strings"
)

// UnknownOrigin is used when a request carries no forwarding headers.
const UnknownOrigin = "unknown"

// OriginFromRequest derives a presence id from the first X-Forwarded-For
// hop, then X-Real-IP, else UnknownOrigin.
//
// Clients behind one NAT, and all clients reaching the server without a
// proxy, share an id and therefore count once. The RemoteAddr is ignored
// on purpose so that this stays true.
func OriginFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownOrigin
}
