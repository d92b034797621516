package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bozoruz/internal/domain"
	"bozoruz/internal/middleware"
	"bozoruz/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the login request payload.
// The password is accepted but never checked.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        domain.User `json:"user"`
}

// AuthHandler handles the session and profile routes
type AuthHandler struct {
	auth     *service.Auth
	tokens   *service.TokenIssuer
	checkout service.CheckoutService
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *service.Auth, tokens *service.TokenIssuer, checkout service.CheckoutService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		tokens:   tokens,
		checkout: checkout,
		logger:   logger,
	}
}

// RegisterRoutes registers the auth and profile routes. limiter wraps the
// credential endpoints and may be nil.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware, limiter func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter)
			}
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
		})
		r.Get("/session", h.GetSession)
		r.With(authMiddleware).Post("/logout", h.Logout)
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetProfile)
		r.Patch("/", h.UpdateProfile)
		r.Get("/orders", h.ListOrders)
	})
}

// Login handles the mock login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	ok, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondCancelled(w, err)
		return
	}
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.respondWithToken(w, http.StatusOK)
}

// Register handles the mock registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		h.respondCancelled(w, err)
		return
	}

	h.respondWithToken(w, http.StatusCreated)
}

// Logout ends the session; outstanding tokens stop working
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// GetSession returns the current session, authenticated or not
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.auth.Session())
}

// GetProfile returns the logged in user
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.auth.CurrentUser()
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile merges the submitted fields into the logged in user
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.ProfileUpdate
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Profile validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	user, ok := h.auth.UpdateProfile(r.Context(), req)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// ListOrders returns the order history of the logged in user
func (h *AuthHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	orders, err := h.checkout.Orders(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.String("user_id", userID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(*o))
	}
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int) {
	user, ok := h.auth.CurrentUser()
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session was not created")
		return
	}

	token, expiresAt, err := h.tokens.Issue(*user)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.String("user_id", user.ID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	middleware.RespondWithJSON(w, status, AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        *user,
	})
}

func (h *AuthHandler) respondCancelled(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.logger.Debug("Request cancelled during login", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	h.logger.Error("Authentication failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "authentication failed")
}
