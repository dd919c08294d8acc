// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package database

import (
	"context"
	"fmt"
)

// created_at is stored as UTC microseconds. The store guarantees uniqueness,
// which is what lets FindSince use a strict "greater than" cursor.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		id         VARCHAR PRIMARY KEY,
		content    VARCHAR NOT NULL,
		author     VARCHAR NOT NULL,
		is_admin   BOOLEAN NOT NULL DEFAULT false,
		is_pinned  BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
