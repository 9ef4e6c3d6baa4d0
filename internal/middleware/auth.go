package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

var _ tokenVerifier = (*auth.Client)(nil)

type errorWriter interface {
	WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string)
}

type Middleware struct {
	verifier tokenVerifier
	resp     errorWriter
}

func NewMiddleware(verifier tokenVerifier, resp errorWriter) *Middleware {
	return &Middleware{verifier: verifier, resp: resp}
}

type contextKey string

const UIDKey contextKey = "uid"

// FirebaseAuth verifies the bearer ID token and puts its uid, the owner of
// every widget the request touches, into the context.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idToken, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			m.resp.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "missing or malformed Authorization header")
			return
		}

		token, err := m.verifier.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			logger.FromContext(r.Context()).Warn("rejected id token", "error", err)
			m.resp.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
			return
		}

		_, ctx := logger.With(r.Context(), "uid", token.UID)
		ctx = context.WithValue(ctx, UIDKey, token.UID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}
