package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/example/doc-insight/internal/api/middleware"
	"github.com/example/doc-insight/internal/auth"
	"github.com/example/doc-insight/internal/domain/account"
	"github.com/example/doc-insight/internal/query"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	accountSvc   *account.Service
	jwtService   *auth.JWTService
	queryHandler *query.Handler
}

func NewAuthHandlers(accountSvc *account.Service, jwtService *auth.JWTService, queryHandler *query.Handler) *AuthHandlers {
	return &AuthHandlers{
		accountSvc:   accountSvc,
		jwtService:   jwtService,
		queryHandler: queryHandler,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse represents account data in responses
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func accountResponse(a *account.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

// Register handles account registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, exists := h.queryHandler.FindAccountIDByEmail(req.Email); exists {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	}

	acct, err := h.accountSvc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidEmail), errors.Is(err, account.ErrInvalidName),
			errors.Is(err, auth.ErrPasswordTooShort):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.setAuthCookies(w, acct)
	respondJSON(w, http.StatusCreated, accountResponse(acct))
}

// Login handles account login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	accountID, ok := h.queryHandler.FindAccountIDByEmail(req.Email)
	if !ok {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	acct, err := h.accountSvc.Authenticate(r.Context(), accountID, req.Password)
	if err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	h.setAuthCookies(w, acct)
	respondJSON(w, http.StatusOK, accountResponse(acct))
}

// Refresh exchanges a valid refresh token for a new access token
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		http.Error(w, "Missing refresh token", http.StatusUnauthorized)
		return
	}

	accountID, err := h.jwtService.ValidateRefreshToken(cookie.Value)
	if err != nil {
		http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	acct, err := h.accountSvc.Get(r.Context(), accountID)
	if err != nil || !acct.IsActive {
		http.Error(w, "Account unavailable", http.StatusUnauthorized)
		return
	}

	h.setAuthCookies(w, acct)
	respondJSON(w, http.StatusOK, accountResponse(acct))
}

// Logout clears the auth cookies
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, "access_token")
	clearCookie(w, "refresh_token")
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the authenticated account
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	acct, err := h.accountSvc.Get(r.Context(), claims.AccountID)
	if err != nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, accountResponse(acct))
}

func (h *AuthHandlers) setAuthCookies(w http.ResponseWriter, acct *account.Account) {
	accessToken, accessExpiry, err := h.jwtService.GenerateAccessToken(acct.ID, acct.Email, acct.Role)
	if err != nil {
		return
	}
	refreshToken, refreshExpiry, err := h.jwtService.GenerateRefreshToken(acct.ID)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  accessExpiry,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  refreshExpiry,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/auth/refresh",
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}
