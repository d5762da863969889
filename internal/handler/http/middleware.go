package http

import (
	"net/http"
	"strings"

	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
	"github.com/DaniAlencarrr/Athletix/pkg/httputil"
)

// ContentTypeJSON rejects requests that carry a non-JSON body. Bodiless
// requests such as logout pass through.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 && r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{Error: &httputil.ErrorResponse{
					Code:    "UNSUPPORTED_MEDIA_TYPE",
					Message: "Content-Type must be application/json",
				}})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// notFound answers unknown API routes in the error envelope.
func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, r, apperrors.NotFound("route", r.URL.Path), nil)
}
