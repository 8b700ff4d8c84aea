package server

import (
	"net/http"
	"time"
)

// HealthHandler serves the health probe and the API index.
type HealthHandler struct {
	service    string
	version    string
	adminPhone string
}

// NewHealthHandler creates a HealthHandler identifying the service.
func NewHealthHandler(service, version, adminPhone string) *HealthHandler {
	return &HealthHandler{service: service, version: version, adminPhone: adminPhone}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{
		"GET /health",
		"GET /api",
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		h.health(w, r)
	case "/api":
		h.index(w, r)
	default:
		http.NotFound(w, r)
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Service:   h.service,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	})
}

type indexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Admin     string            `json:"admin"`
}

func (h *HealthHandler) index(w http.ResponseWriter, r *http.Request) {
	admin := h.adminPhone
	if admin == "" {
		admin = "not configured"
	}

	writeJSON(w, http.StatusOK, indexResponse{
		Message: "Welcome to the WhatsApp Migration Assistant API",
		Version: h.version,
		Endpoints: map[string]string{
			"health":    "/health",
			"auth":      "/auth/verify-admin",
			"backup":    "/backup/save",
			"migration": "/migration/start",
			"export":    "/export/conversations/{phone}",
		},
		Admin: admin,
	})
}
