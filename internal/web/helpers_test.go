package web

import (
	"context"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"calcform/internal/calculator"
	"calcform/internal/testutil"

	"github.com/go-chi/chi/v5"
)

// fakeCalculator evaluates requests locally and records them.
type fakeCalculator struct {
	mu       sync.Mutex
	requests []calculator.Request
}

func (f *fakeCalculator) Calculate(_ context.Context, req calculator.Request) calculator.Result {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	switch req.Operation {
	case calculator.OperationAdd:
		return calculator.Success(req.Left + req.Right)
	case calculator.OperationSubtract:
		return calculator.Success(req.Left - req.Right)
	case calculator.OperationMultiply:
		return calculator.Success(req.Left * req.Right)
	case calculator.OperationDivide:
		if req.Right == 0 {
			return calculator.Failure(calculator.KindBusiness, "division by zero")
		}
		return calculator.Success(req.Left / req.Right)
	default:
		return calculator.Failure(calculator.KindProtocol, "request failed: HTTP status 400 (invalid_argument): unsupported operation")
	}
}

func (f *fakeCalculator) calls() []calculator.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]calculator.Request(nil), f.requests...)
}

// gatedCalculator holds every call until release is closed.
type gatedCalculator struct {
	started chan struct{}
	release chan struct{}
}

func newGatedCalculator() *gatedCalculator {
	return &gatedCalculator{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (g *gatedCalculator) Calculate(context.Context, calculator.Request) calculator.Result {
	g.started <- struct{}{}
	<-g.release
	return calculator.Success(42)
}

func newTestRouter(sessions *Sessions) http.Handler {
	r := chi.NewRouter()
	NewHandler(sessions).RegisterRoutes(r)
	return r
}

// browser replays the session cookie like a real user agent.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func (b *browser) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}

	rr := testutil.ExecuteRequest(req, b.handler)
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookie {
			b.cookie = c
		}
	}
	return rr
}

func (b *browser) postForm(values string) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, "/calculate", "application/x-www-form-urlencoded", values)
}

func (b *browser) submitJSON(body string) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, "/api/form/submit", "application/json", body)
}

// pageText returns the rendered page with entities decoded.
func pageText(rr *httptest.ResponseRecorder) string {
	return html.UnescapeString(rr.Body.String())
}

// waitFor polls cond for up to a second.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}
