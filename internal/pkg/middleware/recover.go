package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/sentimentlab/sentiment-service/internal/pkg/errors"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
)

// Recover turns a handler panic into a 500 INTERNAL_ERROR response.
func Recover(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.WithContext(r.Context()).Error("Panic recovered",
						"panic", fmt.Sprint(rec),
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					apperrors.WriteError(w, apperrors.InternalError("panic", nil))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
