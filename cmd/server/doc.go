// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

/*
Command server runs the AINav live message wall backend.

It serves the presence endpoints, the message history and posting endpoints,
and the server-sent event stream that pushes viewer counts and fresh messages
to every open page.

# Process Tree

	ainav (root)
	├── background-layer
	│   └── presence-sweeper (PRESENCE_TTL > 0)
	└── api-layer
	    └── http-server

# Configuration

Defaults, then an optional YAML file (CONFIG_PATH, ./config.yaml,
/etc/ainav/config.yaml), then environment variables:

	HTTP_PORT=8080
	HTTP_HOST=0.0.0.0
	DUCKDB_PATH=data/ainav.duckdb
	DUCKDB_BREAKER_THRESHOLD=5
	STREAM_PRESENCE_INTERVAL=5s
	STREAM_MESSAGE_INTERVAL=1s
	STREAM_NOTIFY_ENABLED=true
	STREAM_MAX_BATCH=100
	PRESENCE_TTL=0s
	MESSAGES_HISTORY_LIMIT=10
	RATE_LIMIT_REQUESTS=100
	RATE_LIMIT_MESSAGES=10
	CORS_ORIGINS=*
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections, open streams end, and the database is closed.
*/
package main
