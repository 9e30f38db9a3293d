package logging

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

type accessLogHandler struct {
	next http.Handler
}

// NewHandler wraps a handler with access logging. Every request gets an
// X-Request-Id assigned, unless the client already sent one.
func NewHandler(next http.Handler) http.Handler {
	return &accessLogHandler{next: next}
}

func (h *accessLogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
		r.Header.Set(requestIDHeader, id)
	}
	w.Header().Set(requestIDHeader, id)

	start := time.Now()
	lw := &loggingWriter{writer: w}
	h.next.ServeHTTP(lw, r)

	if lw.code == 0 {
		lw.code = http.StatusOK
	}

	LogAccess(&AccessEntry{
		Request:      r,
		StatusCode:   lw.code,
		ResponseSize: lw.bytes,
		Duration:     time.Since(start),
		RequestTime:  start,
		RequestID:    id,
	})
}
