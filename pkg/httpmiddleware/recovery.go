package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Recovery converts handler panics into plain 500 responses, logging the
// panic value with a stack trace.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer handlePanic(w, r)
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func handlePanic(w http.ResponseWriter, r *http.Request) {
	rec := recover()
	if rec == nil {
		return
	}
	zctx.From(r.Context()).Error("handler panicked",
		zap.Any("panic", rec),
		zap.Stack("stack"),
	)
	w.Header().Set("Connection", "close")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
