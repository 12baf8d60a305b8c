package session

import (
	"context"
	"net/http"

	"github.com/sakif/campus-market/internal/apperror"
)

type contextKey struct{}

// errNoProvider is returned whenever the store is requested outside a
// provider scope.
var errNoProvider = apperror.Misconfigured("session store must be used within a session provider")

// NewContext opens a provider scope: descendants of the returned context
// can reach s through FromContext.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the store of the enclosing provider scope. Outside a
// scope it fails with apperror.ErrConfiguration; it never hands back a
// default store.
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || s == nil {
		return nil, errNoProvider
	}
	return s, nil
}

// MustFromContext is FromContext for call sites where a missing provider
// can only be a programming error. It panics with the configuration error.
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}

// Provider is chi-compatible middleware that opens a provider scope for s
// around every request.
func Provider(s *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
		})
	}
}
