// Package healthz serves liveness and readiness checks.
package healthz

import (
	"fmt"
	"net/http"
)

type Handler struct {
	check func() error
}

// New returns a handler that always reports healthy.
func New() *Handler {
	return &Handler{}
}

// NewWithCheck returns a handler that reports unhealthy while check returns
// an error.
func NewWithCheck(check func() error) *Handler {
	return &Handler{check: check}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		if err := h.check(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "503 %v", err)
			return
		}
	}
	w.Write([]byte("200 OK"))
}
