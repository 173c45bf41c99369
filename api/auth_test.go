package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garnizeh/buddyup/api"
	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/internal/service"
	"github.com/garnizeh/buddyup/pkg/repository"
	"github.com/garnizeh/buddyup/pkg/repository/mock"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, m *mock.Mocks, id, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{ID: id, Email: email, Name: "Seeded", PasswordHash: string(hash)}
	if err := m.UserRepo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestAuthHandlers(t *testing.T) {
	secret := "testsecret"
	tokenDur := 1 * time.Hour

	tests := []struct {
		name       string
		path       string
		body       any
		prepare    func(t *testing.T, m *mock.Mocks)
		wantStatus int
		checkBody  func(t *testing.T, body []byte)
	}{
		{
			name:       "Register_InvalidJSON",
			path:       "/users/register",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Register_MissingName",
			path:       "/users/register",
			body:       map[string]string{"email": "alice@example.com", "password": "Passw0rd!"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Register_ShortPassword",
			path:       "/users/register",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com", "password": "Pw0"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Register_WeakPassword",
			path:       "/users/register",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com", "password": "password"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Register_BadEmail",
			path:       "/users/register",
			body:       map[string]string{"name": "Alice", "email": "not-an-email", "password": "Passw0rd!"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Register_Success",
			path:       "/users/register",
			body:       map[string]string{"name": "Alice", "email": "Alice@Example.com", "password": "Passw0rd!"},
			wantStatus: http.StatusCreated,
			checkBody: func(t *testing.T, b []byte) {
				var u map[string]any
				if err := json.Unmarshal(b, &u); err != nil {
					t.Fatalf("unmarshal user: %v", err)
				}
				if u["email"] != "alice@example.com" {
					t.Fatalf("expected normalized email, got %v", u["email"])
				}
				if _, leaked := u["passwordHash"]; leaked {
					t.Fatalf("password hash leaked: %s", b)
				}
				if bytes.Contains(b, []byte("Passw0rd")) {
					t.Fatalf("password leaked: %s", b)
				}
			},
		},
		{
			name: "Register_DuplicateEmail",
			path: "/users/register",
			body: map[string]string{"name": "Dup", "email": "dup@example.com", "password": "Passw0rd!"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedUser(t, m, "u-dup", "dup@example.com", "Passw0rd!")
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "Register_DuplicateRace",
			path: "/users/register",
			body: map[string]string{"name": "Dup", "email": "race@example.com", "password": "Passw0rd!"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				m.UserRepo.CreateErr = repository.ErrDuplicate
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "Register_StoreFailure",
			path: "/users/register",
			body: map[string]string{"name": "Err", "email": "err@example.com", "password": "Passw0rd!"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				m.UserRepo.CreateErr = fmt.Errorf("disk full")
			},
			wantStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, b []byte) {
				if bytes.Contains(b, []byte("disk full")) {
					t.Fatalf("internal error leaked: %s", b)
				}
			},
		},
		{
			name:       "Login_InvalidJSON",
			path:       "/auth/login",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Login_MissingPassword",
			path:       "/auth/login",
			body:       map[string]string{"email": "missing@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Login_UnknownUser",
			path:       "/auth/login",
			body:       map[string]string{"email": "missing@example.com", "password": "Passw0rd!"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Login_WrongPassword",
			path: "/auth/login",
			body: map[string]string{"email": "c@example.com", "password": "Wr0ngpass"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedUser(t, m, "u-c", "c@example.com", "Passw0rd!")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Login_Success",
			path: "/auth/login",
			body: map[string]string{"email": "bob@example.com", "password": "Hunter22"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedUser(t, m, "u-bob", "bob@example.com", "Hunter22")
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					AccessToken string `json:"access_token"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal token: %v", err)
				}
				tok, err := jwt.Parse(ar.AccessToken, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil {
					t.Fatalf("invalid token: %v", err)
				}
				claims, ok := tok.Claims.(jwt.MapClaims)
				if !ok {
					t.Fatalf("unexpected claims type %T", tok.Claims)
				}
				if claims["sub"] != "u-bob" || claims["email"] != "bob@example.com" {
					t.Fatalf("unexpected claims: %v", claims)
				}
				if expF, ok := claims["exp"].(float64); !ok || int64(expF) < time.Now().Unix() {
					t.Fatalf("invalid exp claim")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			if tt.prepare != nil {
				tt.prepare(t, mocks)
			}
			users := service.NewUserService(service.Repos{Users: mocks.UserRepo, Profiles: mocks.ProfRepo}, nil).WithHashCost(bcrypt.MinCost)
			handler := api.NewAuthHandler(users, secret, tokenDur)

			var raw []byte
			if s, ok := tt.body.(string); ok {
				raw = []byte(s)
			} else {
				raw, _ = json.Marshal(tt.body)
			}
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(raw))
			w := httptest.NewRecorder()

			switch tt.path {
			case "/users/register":
				handler.Register(w, req)
			case "/auth/login":
				handler.Login(w, req)
			default:
				t.Fatalf("unknown path %s", tt.path)
			}

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("%s: expected status %d got %d body=%s", tt.name, tt.wantStatus, res.StatusCode, string(data))
			}
			if res.StatusCode >= 400 {
				var er struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				}
				if err := json.Unmarshal(data, &er); err != nil || er.Code == "" || er.Message == "" {
					t.Fatalf("expected error body, got %s", data)
				}
			}
			if tt.checkBody != nil {
				tt.checkBody(t, data)
			}
		})
	}
}
