package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"linguadrill/internal/security"
	"linguadrill/internal/service"
	"linguadrill/internal/validation"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	authService     *service.AuthService
	practiceService *service.PracticeService
	emailService    *service.EmailService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, practiceService *service.PracticeService, emailService *service.EmailService) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		practiceService: practiceService,
		emailService:    emailService,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Register creates a new account and logs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		var validationErr validation.ValidationError
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondWithError(w, http.StatusConflict, "Email already taken", "", nil)
		case errors.As(err, &validationErr):
			respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Registration failed", "register", err)
		}
		return
	}

	if h.emailService != nil && h.emailService.IsEnabled() {
		if err := h.emailService.SendWelcomeEmail(r.Context(), user.Email, user.Name); err != nil {
			// Registration already succeeded; the welcome email is best effort.
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	h.issueSession(w, r, user.ID)
	respondJSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

// Login authenticates and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	token, expiresAt, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Login failed", "login", err)
		}
		return
	}

	http.SetCookie(w, security.CreateAuthCookie(r, token, expiresAt))
	respondJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteAuthCookie(r))
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

// Progress returns the user's overall statistics
func (h *AuthHandler) Progress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
		return
	}

	overall, err := h.practiceService.OverallStats(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "progress", err)
		return
	}
	respondJSON(w, http.StatusOK, overall)
}

// EmailProgress sends the user a progress summary email
func (h *AuthHandler) EmailProgress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
		return
	}
	if h.emailService == nil || !h.emailService.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Email is not configured", "", nil)
		return
	}

	overall, err := h.practiceService.OverallStats(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "progress", err)
		return
	}

	if err := h.emailService.SendProgressSummaryEmail(r.Context(), user.Email, user.Name, overall); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to send email", "progress email", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, userID string) {
	token, expiresAt, err := h.authService.IssueToken(userID)
	if err != nil {
		// The account exists; the client can still log in explicitly.
		log.Printf("Failed to issue session for user %s: %v", userID, err)
		return
	}
	http.SetCookie(w, security.CreateAuthCookie(r, token, expiresAt))
}
