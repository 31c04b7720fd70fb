package middleware

import (
	"net/http"

	"github.com/google/uuid"

	reqctx "github.com/sentimentlab/sentiment-service/internal/pkg/context"
)

// RequestIDHeader is the header carrying the request identifier.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds client-supplied identifiers.
const maxRequestIDLen = 128

// RequestID stores a request identifier in the request context and echoes it
// in the response. A client-supplied X-Request-ID is kept when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), id)))
	})
}

// Chain wraps h with the given middleware. The first middleware is outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
