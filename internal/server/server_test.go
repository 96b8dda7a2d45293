package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-formfill/internal/metrics"
	"github.com/goliatone/go-formfill/internal/server"
	"github.com/goliatone/go-formfill/pkg/client"
	"github.com/goliatone/go-formfill/pkg/testsupport"
)

type harness struct {
	server  *server.Server
	memory  *client.MemoryInvoker
	metrics *metrics.Metrics

	mu      sync.Mutex
	domains []string
}

func newHarness(t *testing.T, opts ...server.Option) *harness {
	t.Helper()

	h := &harness{
		memory:  client.NewMemoryInvoker(testsupport.MustCatalog(t)),
		metrics: metrics.New(),
	}
	recording := client.InvokerFunc(func(ctx context.Context, serviceID, action string, payload, out any) error {
		if req, ok := payload.(client.SubmitRequest); ok {
			h.mu.Lock()
			h.domains = append(h.domains, req.Domain)
			h.mu.Unlock()
		}
		return h.memory.Invoke(ctx, serviceID, action, payload, out)
	})
	svc := client.NewService(recording, client.WithCallObserver(h.metrics))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := []server.Option{
		server.WithLogger(logger),
		server.WithMetrics(h.metrics),
		server.WithBasePath("/isa-form"),
	}
	srv, err := server.New(svc, append(base, opts...)...)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	h.server = srv
	return h
}

func (h *harness) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, req)
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, string(body)
}

func (h *harness) get(t *testing.T, target string) (*http.Response, string) {
	t.Helper()
	return h.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func (h *harness) postForm(t *testing.T, target string, values url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(t, req)
}

func (h *harness) postJSON(t *testing.T, target, body string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return h.do(t, req)
}

func expectStatus(t *testing.T, res *http.Response, want int, body string) {
	t.Helper()
	if res.StatusCode != want {
		t.Fatalf("status = %d, want %d\n%s", res.StatusCode, want, body)
	}
}

func assertContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, out)
		}
	}
}

func assertMissing(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(out, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, out)
		}
	}
}

func TestNew_RequiresBackend(t *testing.T) {
	t.Parallel()
	if _, err := server.New(nil); err == nil {
		t.Fatalf("expected error for nil backend")
	}
}

func TestServer_ListAndAssets(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.get(t, "/isa-form/")
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, "Available Forms", "Community Meetup", `href="/isa-form/form/meetup"`, `href="/isa-form/assets/formfill.css"`)

	res, body = h.get(t, "/isa-form/assets/formfill.css")
	expectStatus(t, res, http.StatusOK, body)
	if !strings.Contains(res.Header.Get("Content-Type"), "text/css") {
		t.Fatalf("unexpected asset content type %q", res.Header.Get("Content-Type"))
	}

	res, body = h.get(t, "/healthz")
	expectStatus(t, res, http.StatusOK, body)
}

func TestServer_UnknownForm(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.get(t, "/isa-form/form/missing")
	expectStatus(t, res, http.StatusNotFound, body)
	assertContains(t, body, server.NotFoundTitle, server.NotFoundMessage)
}

func TestServer_RefreshRevealsDependentQuestions(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.get(t, "/isa-form/form/meetup")
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, "Your name", "Will you attend?")
	assertMissing(t, body, "How many guests?", "Dietary needs")

	res, body = h.postForm(t, "/isa-form/form/meetup", url.Values{
		"name":      {"Ada"},
		"attending": {"yes"},
		"_action":   {"refresh"},
	})
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, "How many guests?", "Dietary needs", `value="Ada"`)
	assertMissing(t, body, "This field is required")
	if got := testutil.ToFloat64(h.metrics.ValidationFailures); got != 0 {
		t.Fatalf("refresh must not validate, failures = %v", got)
	}
}

func TestServer_SubmitShowsValidationErrors(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.postForm(t, "/isa-form/form/meetup", url.Values{
		"email":     {"ada@example.com"},
		"name":      {"Ada"},
		"attending": {"yes"},
	})
	expectStatus(t, res, http.StatusUnprocessableEntity, body)
	assertContains(t, body, "This field is required", `value="ada@example.com"`)
	if got := testutil.ToFloat64(h.metrics.ValidationFailures); got != 1 {
		t.Fatalf("validation failures = %v, want 1", got)
	}
}

func TestServer_SubmitVerifyRevoke(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	answers := url.Values{
		"email":     {"ada@example.com"},
		"name":      {"Ada"},
		"attending": {"no"},
	}
	res, body := h.postForm(t, "/isa-form/form/meetup", answers)
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, "Success!", "Thank you for your submission!", `content="3;url=/isa-form/"`)

	if diff := cmp.Diff([]string{"http://example.com"}, h.domains); diff != "" {
		t.Fatalf("submitted domains mismatch (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(h.metrics.Submissions.WithLabelValues("success")); got != 1 {
		t.Fatalf("successful submissions = %v, want 1", got)
	}

	res, body = h.postForm(t, "/isa-form/form/meetup", answers)
	expectStatus(t, res, http.StatusBadGateway, body)
	assertContains(t, body, "Error submitting form: "+client.DuplicateSubmissionMessage)

	token, ok := h.memory.Token("meetup", "ada@example.com")
	if !ok {
		t.Fatalf("expected a verification token")
	}
	link := url.Values{"formId": {"meetup"}, "email": {"ada@example.com"}, "token": {token}}

	res, body = h.get(t, "/isa-form/verify?"+link.Encode())
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, "Community Meetup", "Email: ada@example.com", "Registration Status:", "Pending", "Revoke Participation")

	res, body = h.postForm(t, "/isa-form/verify/revoke", link)
	expectStatus(t, res, http.StatusSeeOther, body)
	if got := res.Header.Get("Location"); got != "/isa-form/" {
		t.Fatalf("revoke redirect = %q", got)
	}

	res, body = h.get(t, "/isa-form/verify?"+link.Encode())
	expectStatus(t, res, http.StatusBadGateway, body)
	assertContains(t, body, "Status Check Error", "No registration matches this link")
}

func TestServer_VerifyMissingParameters(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.get(t, "/isa-form/verify?formId=meetup")
	expectStatus(t, res, http.StatusBadRequest, body)
	assertContains(t, body, "Status Check Error", "Missing required parameters", "Return Home")
}

func TestServer_PublicOriginOverridesRequestHost(t *testing.T) {
	t.Parallel()
	h := newHarness(t, server.WithPublicOrigin("https://forms.example.org/"))

	res, body := h.postForm(t, "/isa-form/form/meetup", url.Values{
		"email":     {"grace@example.com"},
		"name":      {"Grace"},
		"attending": {"no"},
	})
	expectStatus(t, res, http.StatusOK, body)
	if diff := cmp.Diff([]string{"https://forms.example.org"}, h.domains); diff != "" {
		t.Fatalf("submitted domains mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_APIValidate(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.postJSON(t, "/isa-form/api/forms/meetup/validate", `{"responses":{"email":"ada@gmail.com","attending":"yes","allergies":["nuts"]}}`)
	expectStatus(t, res, http.StatusOK, body)

	var got struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			ID string `json:"id"`
		} `json:"errors"`
		VisibleQuestions []string `json:"visibleQuestions"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Valid {
		t.Fatalf("expected invalid result")
	}
	var ids []string
	for _, e := range got.Errors {
		ids = append(ids, e.ID)
	}
	wantErrors := []string{"email", "name", "guests", "diet", "allergyNotes"}
	if diff := cmp.Diff(wantErrors, ids); diff != "" {
		t.Fatalf("error order mismatch (-want +got):\n%s", diff)
	}
	wantVisible := []string{"name", "attending", "guests", "diet", "allergies", "allergyNotes", "age", "referral"}
	if diff := cmp.Diff(wantVisible, got.VisibleQuestions); diff != "" {
		t.Fatalf("visible questions mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_APIRejectsMalformedBodies(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	cases := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{`},
		{name: "missing responses", body: `{}`},
		{name: "unknown field", body: `{"responses":{},"extra":1}`},
		{name: "object answer", body: `{"responses":{"name":{"first":"Ada"}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, body := h.postJSON(t, "/isa-form/api/forms/meetup/responses", tc.body)
			expectStatus(t, res, http.StatusBadRequest, body)
			assertContains(t, body, `"error"`)
		})
	}
	if len(h.domains) != 0 {
		t.Fatalf("malformed bodies must not reach the backend")
	}
}

func TestServer_APISubmit(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.postJSON(t, "/isa-form/api/forms/meetup/responses", `{"responses":{"email":"ada@example.com","name":"Ada","attending":"yes","guests":2,"diet":"vegan"}}`)
	expectStatus(t, res, http.StatusOK, body)

	var got struct {
		Success bool   `json:"success"`
		State   string `json:"state"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := struct {
		Success bool   `json:"success"`
		State   string `json:"state"`
		Message string `json:"message"`
	}{Success: true, State: "success", Message: "Thank you for your submission!"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submit response mismatch (-want +got):\n%s", diff)
	}

	res, body = h.postJSON(t, "/isa-form/api/forms/meetup/responses", `{"responses":{"name":"Ada"}}`)
	expectStatus(t, res, http.StatusUnprocessableEntity, body)
	assertContains(t, body, `"state":"idle"`, `"id":"email"`)
}

func TestServer_APIDescriptionAndForms(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.get(t, "/isa-form/api/openapi.json")
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, `"openapi":"3.0.3"`, `"/api/forms/{formId}/responses"`)

	res, body = h.get(t, "/isa-form/api/forms")
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, `"id":"meetup"`, `"id":"feedback"`)

	res, body = h.get(t, "/isa-form/api/forms/meetup")
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, `"questionId":"attending"`)

	res, body = h.get(t, "/isa-form/api/forms/missing")
	expectStatus(t, res, http.StatusNotFound, body)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.get(t, "/isa-form/")
	res, body := h.get(t, "/metrics")
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, "formfill_http_requests_total", "formfill_remote_call_duration_seconds")
}

func TestServer_WithoutBasePath(t *testing.T) {
	t.Parallel()
	h := newHarness(t, server.WithBasePath(""))

	res, body := h.get(t, "/")
	expectStatus(t, res, http.StatusOK, body)
	assertContains(t, body, `href="/form/meetup"`, `href="/assets/formfill.css"`)

	res, body = h.get(t, "/assets/formfill.css")
	expectStatus(t, res, http.StatusOK, body)
}
