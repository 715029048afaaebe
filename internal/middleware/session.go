package middleware

import (
	"net/http"

	"github.com/vaughan-dsouza/userposts/internal/store"
)

// Session opens one store session per request and closes it when the
// handler returns, including when it panics.
func Session(st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := st.Session(r.Context())
			defer sess.Close()

			next.ServeHTTP(w, r.WithContext(store.WithSession(r.Context(), sess)))
		})
	}
}
