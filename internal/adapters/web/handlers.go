package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hr-assistant/internal/app"
	"hr-assistant/internal/config"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	appName   string
	jwtSecret string
	logger    *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, cfg *config.Config, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:       svc,
		appName:   cfg.App.Name,
		jwtSecret: cfg.Auth.JWTSecret,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(cfg.App.AllowedOrigins))

	// ── Public ───────────────────────────────────────────────────────────────
	r.Get("/", h.health)
	r.Get("/api/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB
		r.Use(Timeout(cfg.App.RequestTimeout()))

		r.Post("/api/v1/chat", h.chatMessage)
		r.Get("/api/v1/chat/history", h.chatHistory)
	})

	h.router = r
	return r
}

// health returns service status and the application name.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status  string `json:"status"`
		AppName string `json:"app_name"`
	}
	writeJSON(w, response{Status: "ok", AppName: h.appName})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
