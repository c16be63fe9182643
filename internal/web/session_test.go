package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAcquireIssuesUUIDCookie(t *testing.T) {
	sessions := NewSessions(&fakeCalculator{}, time.Hour, nil)
	w := httptest.NewRecorder()

	id, c := sessions.Acquire(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, c)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAcquireReplacesUnknownOrMalformedCookie(t *testing.T) {
	sessions := NewSessions(&fakeCalculator{}, time.Hour, nil)

	for _, value := range []string{"not-a-uuid", uuid.NewString()} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: value})

		id, _ := sessions.Acquire(httptest.NewRecorder(), r)
		assert.NotEqual(t, value, id)
	}
	assert.Equal(t, 2, sessions.Len())
}

func TestAcquireReturnsSameFormForSameSession(t *testing.T) {
	sessions := NewSessions(&fakeCalculator{}, time.Hour, nil)
	id, first := sessions.Acquire(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
	w := httptest.NewRecorder()
	again, second := sessions.Acquire(w, r)

	assert.Equal(t, id, again)
	assert.Same(t, first, second)
	assert.Empty(t, w.Result().Cookies(), "an existing session is not re-issued")
}

func TestSweepExpiresIdleForms(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(&fakeCalculator{}, 10*time.Minute, nil)
	sessions.now = func() time.Time { return now }

	stale, _ := sessions.Acquire(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	now = now.Add(8 * time.Minute)
	fresh, _ := sessions.Acquire(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Zero(t, sessions.Sweep(now.Add(time.Minute)))
	assert.Equal(t, 1, sessions.Sweep(now.Add(5*time.Minute)))
	assert.Equal(t, 1, sessions.Len())

	assert.False(t, sessions.Drop(stale))
	assert.True(t, sessions.Drop(fresh))
	assert.Zero(t, sessions.Len())
}

func TestSweepKeepsFormsWithSubmitInFlight(t *testing.T) {
	calc := newGatedCalculator()
	sessions := NewSessions(calc, time.Minute, nil)
	_, c := sessions.Acquire(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Submit(context.Background())
	}()
	<-calc.started

	assert.Zero(t, sessions.Sweep(time.Now().Add(time.Hour)))

	close(calc.release)
	<-done
	assert.Equal(t, 1, sessions.Sweep(time.Now().Add(time.Hour)))
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sessions := NewSessions(&fakeCalculator{}, time.Nanosecond, zap.New(core))
	sessions.Acquire(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- sessions.Run(ctx, time.Millisecond) }()

	waitFor(t, func() bool { return sessions.Len() == 0 })
	cancel()

	require.NoError(t, <-errc)
	assert.Equal(t, 1, logs.FilterMessage("expired idle forms").Len())
}
