package timeout

import (
	"context"
	"net/http"
	"time"
)

// Timeout caps request handling at the given number of seconds by
// deadline-ing the request context. Handlers that respect their context
// unwind on their own; the connection write then fails fast.
func Timeout(seconds int) func(next http.Handler) http.Handler {
	d := time.Duration(seconds) * time.Second
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
