// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

/*
Package api provides the HTTP layer of the live message wall.

Routes:

  - POST/DELETE/GET /api/v1/presence: register, deregister or read the
    presence count. Bodies are {"count": n}.
  - GET /api/v1/messages?limit=N: recent messages, newest first.
  - POST /api/v1/messages: create a message. 201 with the message, or 400
    with a VALIDATION_FAILED error.
  - GET /api/v1/stream: the Server-Sent Events stream (see package stream).
  - GET /api/v1/health/live, /api/v1/health/ready: probes.
  - GET /metrics: Prometheus exposition.

Successful wall responses are bare JSON so browser and terminal clients can
decode them directly. Errors and health responses use the APIResponse
envelope.

Middleware order: real IP, request ID, panic recovery, CORS, then per-group security
headers, Prometheus metrics and per-IP rate limits (go-chi/httprate). Message
creation carries a stricter limit than reads.
*/
package api
