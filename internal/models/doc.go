// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

/*
Package models defines the wire and storage shapes shared by the server and
the terminal client.

  - Message: one wall entry, returned by GET /api/v1/messages and carried by
    the messages stream event
  - PresenceCount: the body of presence responses and userCount events

JSON field names are camelCase (isAdmin, isPinned, createdAt) to match what
browser clients already consume.
*/
package models
