package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CallLifecycle(t *testing.T) {
	m := New()

	m.CallStarted()
	m.CallStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pendingCalls))

	m.CallFinished("compile-contract", "ok", 3*time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pendingCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("compile-contract", "ok")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CallStarted()
		m.CallFinished("load-contract", "ok", time.Millisecond)
		m.WorkerOperation("load-contract", "ok")
		m.SetupCompleted(time.Second)
		m.PollAttempt()
		m.TransactionResult("sent")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.TransactionResult("sent")
	m.PollAttempt()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `zkapp_orchestrator_transactions_total{result="sent"} 1`)
	assert.Contains(t, string(body), "zkapp_orchestrator_account_poll_attempts_total 1")
}
