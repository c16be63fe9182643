package backend

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the Calculate procedure. Method and content type are
// checked by the handler so that rejections carry a Connect error body.
func RegisterRoutes(r chi.Router) {
	r.HandleFunc(Procedure, Calculate)
}
