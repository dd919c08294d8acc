// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ainav/ainav/internal/models"
)

type fakeReader struct {
	err   error
	calls int
}

func (f *fakeReader) FindSince(context.Context, time.Time) ([]models.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.Message{{ID: "m1"}}, nil
}

func (f *fakeReader) Recent(context.Context, int) ([]models.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.Message{{ID: "m1"}}, nil
}

func TestBreakerStore_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{err: errors.New("io error")}
	store := NewBreakerStore(reader, BreakerConfig{Name: "test-open", FailureThreshold: 2, Timeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := store.FindSince(ctx, time.Time{}); err == nil {
			t.Fatal("expected error from failing reader")
		}
	}
	if store.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", store.State())
	}

	_, err := store.Recent(ctx, 10)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	if reader.calls != 2 {
		t.Errorf("open breaker should not reach the reader, calls = %d", reader.calls)
	}
}

func TestBreakerStore_CancellationDoesNotTrip(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{err: context.Canceled}
	store := NewBreakerStore(reader, BreakerConfig{Name: "test-cancel", FailureThreshold: 1, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, _ = store.FindSince(context.Background(), time.Time{})
	}
	if store.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", store.State())
	}
}

func TestBreakerStore_PassesThrough(t *testing.T) {
	t.Parallel()

	store := NewBreakerStore(&fakeReader{}, BreakerConfig{Name: "test-pass", Timeout: time.Minute})
	got, err := store.FindSince(context.Background(), time.Time{})
	if err != nil || len(got) != 1 || got[0].ID != "m1" {
		t.Errorf("FindSince() = %v, %v", got, err)
	}
}
