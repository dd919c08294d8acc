// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

/*
Package supervisor runs long-lived components under a suture/v4 tree.

	ainav (root)
	├── background-layer
	│   └── presence-sweeper (only when presence TTL is enabled)
	└── api-layer
	    └── http-server

Supervisor events (restarts, backoff, panics) are logged through sutureslog
into the zerolog-backed slog handler from package logging. Services live in
the services subpackage.
*/
package supervisor
