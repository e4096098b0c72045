package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/angelmondragon/spesa/api/responses"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
)

// Recoverer turns a handler panic into a 500 with the standard error body.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ctx := logg.WithFields(r.Context(), map[string]any{
					"panic": fmt.Sprint(rec),
					"stack": string(debug.Stack()),
				})
				err := pkgerrors.Newf(pkgerrors.CodeInternal, "handler panic on %s %s", r.Method, r.URL.Path)
				logg.Error(ctx, "panic.recovered", err)
				responses.WriteError(ctx, logg, w, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
