package api

import (
	"net/http"
	"time"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/internal/service"
	"github.com/garnizeh/buddyup/pkg/apperr"
	"github.com/golang-jwt/jwt/v5"
)

type AuthHandler struct {
	users         *service.UserService
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(users *service.UserService, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
}

// Register creates an account and returns the new user.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, "register", &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), service.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, u, http.StatusCreated)
}

// Login checks the credentials and issues an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, "login", &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.issueToken(u)
	if err != nil {
		writeError(w, r, apperr.Internal("sign token", err))
		return
	}

	writeJSON(w, authResponse{AccessToken: token}, http.StatusOK)
}

func (h *AuthHandler) issueToken(u *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}
