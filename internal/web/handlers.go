// Package web serves the calculation form: an HTML page for browsers and a
// small JSON API over the same per-session form state.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"calcform/internal/calculator"
	"calcform/internal/form"
	"calcform/internal/handlers"
	"calcform/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/index.html"))

const maxFormBytes = 64 << 10

// Handler serves the form UI for every session in a registry.
type Handler struct {
	sessions *Sessions
}

// NewHandler returns a Handler backed by sessions.
func NewHandler(sessions *Sessions) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes mounts the page and the JSON API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/calculate", h.calculate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/form", h.getForm)
		r.Post("/form/submit", h.submit)
		r.Delete("/session", h.deleteSession)
	})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	_, c := h.sessions.Acquire(w, r)
	h.render(w, r, http.StatusOK, c.State(), "")
}

// calculate handles the HTML form post: submit the edits, re-render. A dropped
// submit leaves the form as it was.
func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	_, c := h.sessions.Acquire(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, c.State(), "invalid form submission")
		return
	}

	left, err := parseOperand(r.PostForm.Get("left"))
	if err != nil {
		h.render(w, r, http.StatusBadRequest, c.State(), "left operand: "+err.Error())
		return
	}
	right, err := parseOperand(r.PostForm.Get("right"))
	if err != nil {
		h.render(w, r, http.StatusBadRequest, c.State(), "right operand: "+err.Error())
		return
	}
	op := c.State().Operation
	if raw := r.PostForm.Get("operation"); raw != "" {
		if op, err = calculator.ParseOperation(raw); err != nil {
			h.render(w, r, http.StatusBadRequest, c.State(), err.Error())
			return
		}
	}

	state, err := c.Submit(submitContext(r),
		form.LeftOperand(left),
		form.RightOperand(right),
		form.SelectOperation(op),
	)
	if errors.Is(err, form.ErrSubmitInFlight) {
		h.render(w, r, http.StatusConflict, c.State(), err.Error())
		return
	}
	h.render(w, r, http.StatusOK, state, "")
}

func (h *Handler) getForm(w http.ResponseWriter, r *http.Request) {
	_, c := h.sessions.Acquire(w, r)
	handlers.WriteJSON(w, http.StatusOK, NewFormView(c.State()))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	_, c := h.sessions.Acquire(w, r)

	var req submitRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	edits, err := req.edits()
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	state, err := c.Submit(submitContext(r), edits...)
	if errors.Is(err, form.ErrSubmitInFlight) {
		handlers.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	handlers.WriteJSON(w, http.StatusOK, NewFormView(state))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if id := sessionID(r); id != "" {
		h.sessions.Drop(id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, s form.State, notice string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, newPageData(s, notice)); err != nil {
		observability.LoggerWithTrace(r.Context()).Error("render form page",
			zap.Error(err),
			zap.String("request_id", observability.RequestIDFromContext(r.Context())),
		)
	}
}

// submitContext detaches the call from the request's cancellation. The trace
// and request id carry over.
func submitContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// parseOperand reads a number input. An empty field counts as zero, the way a
// cleared number input reads in the browser.
func parseOperand(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return v, nil
}
