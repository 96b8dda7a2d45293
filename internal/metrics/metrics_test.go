package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-formfill/pkg/submission"
)

func TestMetrics_RecordsObservations(t *testing.T) {
	t.Parallel()

	m := New()
	m.ValidationFailed("meetup")
	m.ValidationFailed("meetup")
	m.Submitted("meetup", submission.StateSuccess)
	m.Submitted("meetup", submission.StateFailed)
	m.Submitted("feedback", submission.StateSuccess)
	m.ObserveCall("getPublicForm", 20*time.Millisecond, nil)
	m.ObserveCall("submitFormResponse", time.Second, errors.New("boom"))
	m.ObserveRequest("/form/{formID}", http.StatusOK)

	if got := testutil.ToFloat64(m.ValidationFailures); got != 2 {
		t.Fatalf("validation failures = %v", got)
	}
	if got := testutil.ToFloat64(m.Submissions.WithLabelValues("success")); got != 2 {
		t.Fatalf("successes = %v", got)
	}
	if got := testutil.ToFloat64(m.Submissions.WithLabelValues("failed")); got != 1 {
		t.Fatalf("failures = %v", got)
	}
	if got := testutil.CollectAndCount(m.RemoteCalls); got != 2 {
		t.Fatalf("remote call series = %d", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("/form/{formID}", "200")); got != 1 {
		t.Fatalf("requests = %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.Submitted("meetup", submission.StateSuccess)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `formfill_submissions_total{outcome="success"} 1`) {
		t.Fatalf("expected submissions series in exposition:\n%s", body)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ValidationFailed("meetup")
	m.Submitted("meetup", submission.StateSuccess)
	m.ObserveCall("getPublicForms", time.Millisecond, nil)
	m.ObserveRequest("/", http.StatusOK)
}
