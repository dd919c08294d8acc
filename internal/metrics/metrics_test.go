// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("find_since", "messages"))

	RecordDBQuery("find_since", "messages", 2*time.Millisecond, nil)
	RecordDBQuery("find_since", "messages", 2*time.Millisecond, errors.New("boom"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("find_since", "messages"))
	if after-before != 1 {
		t.Errorf("expected one error recorded, got %v", after-before)
	}
}

func TestRecordSSEEvent(t *testing.T) {
	before := testutil.ToFloat64(SSEEventsTotal.WithLabelValues("messages"))
	RecordSSEEvent("messages")
	RecordSSEEvent("messages")
	if got := testutil.ToFloat64(SSEEventsTotal.WithLabelValues("messages")) - before; got != 2 {
		t.Errorf("expected 2 events, got %v", got)
	}
}

func TestRecordSSEPollError(t *testing.T) {
	before := testutil.ToFloat64(SSEPollErrors.WithLabelValues("presence"))
	RecordSSEPollError("presence")
	if got := testutil.ToFloat64(SSEPollErrors.WithLabelValues("presence")) - before; got != 1 {
		t.Errorf("expected 1 poll error, got %v", got)
	}
}

func TestRecordNotify(t *testing.T) {
	okBefore := testutil.ToFloat64(NotifyPublished.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(NotifyPublished.WithLabelValues("error"))

	RecordNotify(nil)
	RecordNotify(errors.New("closed"))

	if testutil.ToFloat64(NotifyPublished.WithLabelValues("ok"))-okBefore != 1 {
		t.Error("expected ok counter to increase")
	}
	if testutil.ToFloat64(NotifyPublished.WithLabelValues("error"))-errBefore != 1 {
		t.Error("expected error counter to increase")
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if testutil.ToFloat64(APIActiveRequests) != before+1 {
		t.Error("expected gauge to increase")
	}
	TrackActiveRequest(false)
	if testutil.ToFloat64(APIActiveRequests) != before {
		t.Error("expected gauge to return to baseline")
	}
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("messages", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("messages")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
}
