package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/session"
)

// AdminStore records successful administrator verifications.
type AdminStore interface {
	Upsert(phoneNumber string) (*models.Admin, error)
}

// AuthHandler serves administrator verification and session checks.
// Implements the Handler interface for registration with a Router.
type AuthHandler struct {
	codec  *session.Codec
	policy *session.Policy
	admins AdminStore
	logger *log.Logger
}

// NewAuthHandler creates an AuthHandler with the given codec, policy and store.
func NewAuthHandler(codec *session.Codec, policy *session.Policy, admins AdminStore, logger *log.Logger) *AuthHandler {
	return &AuthHandler{codec: codec, policy: policy, admins: admins, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{
		"POST /auth/verify-admin",
		"POST /auth/verify-session",
	}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/verify-admin":
		h.verifyAdmin(w, r)
	case "/auth/verify-session":
		h.verifySession(w, r)
	default:
		http.NotFound(w, r)
	}
}

type verifyAdminRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type verifyAdminResponse struct {
	Success      bool   `json:"success"`
	IsAdmin      bool   `json:"isAdmin"`
	PhoneNumber  string `json:"phoneNumber"`
	SessionToken string `json:"sessionToken"`
	Message      string `json:"message"`
}

// verifyAdmin checks the phone number against the configured administrator,
// records the verification and issues a session token.
func (h *AuthHandler) verifyAdmin(w http.ResponseWriter, r *http.Request) {
	var req verifyAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "Phone number required")
		return
	}

	if !h.policy.IsAdmin(req.PhoneNumber) {
		writeError(w, http.StatusForbidden, "Phone number not authorized as administrator")
		return
	}

	if _, err := h.admins.Upsert(req.PhoneNumber); err != nil {
		h.logger.Error("failed to record admin verification", "phone", req.PhoneNumber, "error", err)
		writeError(w, http.StatusInternalServerError, "Verification failed")
		return
	}

	token, err := h.codec.Issue(req.PhoneNumber, session.RoleAdmin)
	if err != nil {
		h.logger.Error("failed to issue session token", "error", err)
		writeError(w, http.StatusInternalServerError, "Verification failed")
		return
	}

	writeJSON(w, http.StatusOK, verifyAdminResponse{
		Success:      true,
		IsAdmin:      true,
		PhoneNumber:  req.PhoneNumber,
		SessionToken: token,
		Message:      "Administrator account verified",
	})
}

type verifySessionRequest struct {
	SessionToken string `json:"sessionToken"`
}

type verifySessionResponse struct {
	Valid       bool   `json:"valid"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role,omitempty"`
	Error       string `json:"error,omitempty"`
}

// verifySession reports token validity. Always answers 200: an invalid token
// is a negative result, not a request failure.
func (h *AuthHandler) verifySession(w http.ResponseWriter, r *http.Request) {
	var req verifySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, verifySessionResponse{Valid: false, Error: "Invalid request body"})
		return
	}

	if req.SessionToken == "" {
		writeJSON(w, http.StatusOK, verifySessionResponse{Valid: false, Error: "Token missing"})
		return
	}

	validation := h.codec.Validate(req.SessionToken)
	if !validation.Valid {
		writeJSON(w, http.StatusOK, verifySessionResponse{Valid: false, Error: "Invalid session"})
		return
	}

	writeJSON(w, http.StatusOK, verifySessionResponse{
		Valid:       true,
		PhoneNumber: validation.PhoneNumber,
		Role:        validation.Role,
	})
}
