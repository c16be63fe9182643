package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"calcform/internal/form"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// SessionCookie carries the id of the browser's form.
const SessionCookie = "calcform_session"

var activeSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "calcform_sessions_active",
		Help: "Number of mounted calculation forms",
	},
)

type session struct {
	form     *form.Controller
	lastSeen time.Time
}

// Sessions maps browser sessions to their mounted form. A form is mounted on
// the first request of a session and unmounted by Drop or by Sweep once it has
// been idle longer than the TTL.
type Sessions struct {
	calc   form.Calculator
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	forms map[string]*session
}

// NewSessions returns an empty registry whose forms submit through calc.
func NewSessions(calc form.Calculator, ttl time.Duration, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		calc:   calc,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		forms:  make(map[string]*session),
	}
}

// Acquire returns the form for the request's session, mounting a new one and
// setting the cookie when the request has no live session.
func (s *Sessions) Acquire(w http.ResponseWriter, r *http.Request) (string, *form.Controller) {
	id := sessionID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.forms[id]; ok {
		sess.lastSeen = s.now()
		return id, sess.form
	}

	id = uuid.NewString()
	sess := &session{
		form:     form.NewController(s.calc, form.WithRenderer(s.renderer(id))),
		lastSeen: s.now(),
	}
	s.forms[id] = sess
	activeSessions.Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug("form mounted", zap.String("session", id))

	return id, sess.form
}

// Drop unmounts the form with the given id. It reports whether one existed.
func (s *Sessions) Drop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[id]; !ok {
		return false
	}
	delete(s.forms, id)
	activeSessions.Dec()
	s.logger.Debug("form unmounted", zap.String("session", id))
	return true
}

// Sweep unmounts every form idle since before now minus the TTL and returns
// how many were removed. Forms with a submit in flight are kept.
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.forms {
		if now.Sub(sess.lastSeen) <= s.ttl || sess.form.State().InFlight {
			continue
		}
		delete(s.forms, id)
		removed++
	}
	if removed > 0 {
		activeSessions.Sub(float64(removed))
		s.logger.Info("expired idle forms", zap.Int("count", removed))
	}
	return removed
}

// Len returns the number of mounted forms.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}

func (s *Sessions) renderer(id string) form.Renderer {
	return func(st form.State) {
		s.logger.Debug("form state",
			zap.String("session", id),
			zap.String("phase", string(st.Phase())),
			zap.Int("submissions", st.Submissions),
		)
	}
}

// sessionID returns the cookie value when it is a well-formed UUID.
func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}
