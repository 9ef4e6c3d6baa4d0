package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/finance-widgets/pkg/helpers"
)

type fakeVerifier struct {
	uid string
	err error
	got string
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	f.got = idToken
	if f.err != nil {
		return nil, f.err
	}
	return &auth.Token{UID: f.uid}, nil
}

type recordingWriter struct {
	status int
	code   string
}

func (w *recordingWriter) WriteError(rw http.ResponseWriter, _ *http.Request, status int, code, _ string) {
	w.status, w.code = status, code
	rw.WriteHeader(status)
}

func serve(m *Middleware, header string) (uid string, called bool, rr *httptest.ResponseRecorder) {
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		uid = UID(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "/widgets", nil).WithContext(helpers.TestCtx())
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr = httptest.NewRecorder()
	m.FirebaseAuth(next).ServeHTTP(rr, req)
	return uid, called, rr
}

func TestFirebaseAuthSetsUID(t *testing.T) {
	v := &fakeVerifier{uid: "user-1"}
	m := NewMiddleware(v, &recordingWriter{})

	uid, called, _ := serve(m, "bearer tok-123")
	if !called {
		t.Fatalf("expected next handler to run")
	}
	if uid != "user-1" {
		t.Fatalf("uid = %q", uid)
	}
	if v.got != "tok-123" {
		t.Fatalf("verified token = %q", v.got)
	}
}

func TestFirebaseAuthRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"wrong scheme", "Basic abc", nil},
		{"extra parts", "Bearer a b", nil},
		{"bad token", "Bearer tok", errors.New("expired")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &recordingWriter{}
			m := NewMiddleware(&fakeVerifier{uid: "user-1", err: tt.err}, w)

			_, called, rr := serve(m, tt.header)
			if called {
				t.Fatalf("next handler should not run")
			}
			if rr.Code != http.StatusUnauthorized || w.code != "unauthenticated" {
				t.Fatalf("got %d %q", rr.Code, w.code)
			}
		})
	}
}

func TestUIDWithoutAuth(t *testing.T) {
	if got := UID(context.Background()); got != "" {
		t.Fatalf("UID = %q, want empty", got)
	}
}
