package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/buddyup/api"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tok
}

func TestLoggingMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.LoggingMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body: %q", string(b))
	}
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	handler := api.CORSMiddleware(next)

	wOpt := httptest.NewRecorder()
	handler.ServeHTTP(wOpt, httptest.NewRequest(http.MethodOptions, "/cors", nil))
	if wOpt.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS, got %d", wOpt.Code)
	}
	if called {
		t.Fatalf("preflight must not reach the handler")
	}
	if got := wOpt.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header set, got %q", got)
	}

	wGet := httptest.NewRecorder()
	handler.ServeHTTP(wGet, httptest.NewRequest(http.MethodGet, "/cors", nil))
	if wGet.Code != http.StatusOK || !called {
		t.Fatalf("expected GET to pass through, got %d", wGet.Code)
	}
	if got := wGet.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Fatalf("expected Allow-Headers to include Authorization, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	pan := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	w := httptest.NewRecorder()
	api.RecoveryMiddleware(pan).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from panic recovery, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"code":"INTERNAL"`) || strings.Contains(body, "boom") {
		t.Fatalf("unexpected body for recovery: %s", body)
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	w2 := httptest.NewRecorder()
	api.RecoveryMiddleware(ok).ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 for normal path, got %d", w2.Code)
	}
}

func TestJWTAuthMiddlewareWithSecret(t *testing.T) {
	secret := "s3cr3t"
	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = api.UserIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := api.JWTAuthMiddlewareWithSecret(secret)(next)

	future := time.Now().Add(time.Hour).Unix()
	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "MissingHeader", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "EmptyBearer", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "BadToken", authHeader: "Bearer bad.token.here", wantStatus: http.StatusUnauthorized},
		{name: "WrongSecret", authHeader: "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": "u1", "exp": future}), wantStatus: http.StatusUnauthorized},
		{name: "Expired", authHeader: "Bearer " + signToken(t, secret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}), wantStatus: http.StatusUnauthorized},
		{name: "NoSubject", authHeader: "Bearer " + signToken(t, secret, jwt.MapClaims{"email": "a@b.io", "exp": future}), wantStatus: http.StatusUnauthorized},
		{name: "Valid", authHeader: "Bearer " + signToken(t, secret, jwt.MapClaims{"sub": "u1", "email": "a@b.io", "exp": future}), wantStatus: http.StatusOK},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != c.wantStatus {
				t.Fatalf("%s: want %d got %d", c.name, c.wantStatus, w.Code)
			}
			if c.wantStatus == http.StatusOK && gotUser != "u1" {
				t.Fatalf("expected user u1 in context, got %q", gotUser)
			}
		})
	}
}

func TestOptionalJWTMiddleware(t *testing.T) {
	secret := "s3cr3t"
	var gotUser string
	handler := api.OptionalJWTMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = api.UserIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feed-posts", nil))
	if w.Code != http.StatusOK || gotUser != "" {
		t.Fatalf("anonymous: got %d user=%q", w.Code, gotUser)
	}

	req := httptest.NewRequest(http.MethodGet, "/feed-posts", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, secret, jwt.MapClaims{"sub": "u2", "exp": time.Now().Add(time.Hour).Unix()}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK || gotUser != "u2" {
		t.Fatalf("authenticated: got %d user=%q", w.Code, gotUser)
	}

	req = httptest.NewRequest(http.MethodGet, "/feed-posts", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token: expected 401 got %d", w.Code)
	}
}
