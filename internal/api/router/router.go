package router

import (
	"encoding/json"
	"net/http"

	"tagsense/internal/api/handler"
	"tagsense/internal/api/middleware"
	"tagsense/internal/broadcast"
	"tagsense/internal/cache"
	"tagsense/internal/core/service"
	"tagsense/internal/protocol/localsense"
)

func NewRouter(
	tracking *service.TrackingService,
	client *localsense.Client,
	hub *broadcast.Hub,
	alarms handler.AlarmSender,
	c *cache.Cache,
	apiToken string,
	targetTagID uint32,
) http.Handler {
	// Initialize handlers
	statusHandler := handler.NewStatusHandler(tracking, client, hub, targetTagID)
	zoneHandler := handler.NewZoneHandler(tracking)
	positionHandler := handler.NewPositionHandler(tracking, c)
	tagHandler := handler.NewTagHandler(tracking)
	alertHandler := handler.NewAlertHandler(alarms)
	authMiddleware := middleware.NewAuthMiddleware(apiToken)

	// Create router
	mux := http.NewServeMux()

	// Add middleware chain
	withMiddleware := func(handler http.Handler) http.Handler {
		return middleware.CORSMiddleware(
			middleware.LoggingMiddleware(
				authMiddleware.Authenticate(handler),
			),
		)
	}

	// Root endpoint
	mux.Handle("/", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"service": "tagsense",
			"status":  "ok",
		})
	})))

	// Health check endpoint
	mux.Handle("/health", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})))

	mux.Handle("/api/status", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		statusHandler.GetStatus(w, r)
	})))

	mux.Handle("/api/zones", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		zoneHandler.GetZones(w, r)
	})))

	mux.Handle("/api/positions", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		positionHandler.GetPositions(w, r)
	})))

	mux.Handle("/api/tags/position", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		positionHandler.GetTagPosition(w, r)
	})))

	mux.Handle("/api/tags/list", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		tagHandler.ListTags(w, r)
	})))

	mux.Handle("/api/alerts/test", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			alertHandler.TestAlert(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Dashboard stream. Websocket upgrades carry no Authorization header
	// from browsers, so this endpoint skips the auth middleware.
	mux.Handle("/ws/dashboard", broadcast.ServeWS(hub, tracking.Snapshot))

	return mux
}
