// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// Runner is a component with a blocking, context-aware loop, such as the
// presence sweeper or the danmaku frame loop.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerService adapts a Runner to suture.Service.
//
// A Runner that returns nil before its context ends has nothing left to do
// (e.g. the presence sweeper with TTL disabled) and is not restarted.
type RunnerService struct {
	runner Runner
	name   string
}

// NewRunnerService wraps runner. name defaults to the runner's String()
// when it has one.
func NewRunnerService(runner Runner, name string) *RunnerService {
	if name == "" {
		if s, ok := runner.(fmt.Stringer); ok {
			name = s.String()
		} else {
			name = fmt.Sprintf("%T", runner)
		}
	}
	return &RunnerService{runner: runner, name: name}
}

// Serve implements suture.Service.
func (r *RunnerService) Serve(ctx context.Context) error {
	err := r.runner.Run(ctx)
	if err == nil && ctx.Err() == nil {
		return suture.ErrDoNotRestart
	}
	return err
}

// String identifies the service in supervisor logs.
func (r *RunnerService) String() string {
	return r.name
}
