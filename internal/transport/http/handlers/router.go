package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vedran77/linkup/internal/monitoring"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
	"github.com/vedran77/linkup/internal/transport/ws"
)

type Services struct {
	Auth        *service.AuthService
	Profiles    *service.ProfileService
	Hashtags    *service.HashtagService
	Discovery   *service.DiscoveryService
	Connections *service.ConnectionService
	Users       *service.UserService
}

// RouterOptions carries the optional pieces. A nil Metrics disables
// /metrics and request instrumentation; a nil Hub disables /ws and
// real-time connection notifications.
type RouterOptions struct {
	Logger     *slog.Logger
	CORSOrigin string
	Metrics    *monitoring.Metrics
	Hub        *ws.Hub
	WSOrigins  []string
}

func NewRouter(svc Services, opts RouterOptions) http.Handler {
	var notifier ConnectionNotifier
	if opts.Hub != nil {
		notifier = ws.NewHubNotifier(opts.Hub)
	}

	authHandler := NewAuthHandler(svc.Auth)
	profileHandler := NewProfileHandler(svc.Profiles)
	hashtagHandler := NewHashtagHandler(svc.Hashtags)
	discoveryHandler := NewDiscoveryHandler(svc.Discovery)
	connectionHandler := NewConnectionHandler(svc.Connections, notifier)
	userHandler := NewUserHandler(svc.Users)

	auth := middleware.Auth(svc.Auth)
	optional := middleware.OptionalAuth(svc.Auth)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }
	maybe := func(h http.HandlerFunc) http.Handler { return optional(h) }

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Auth
	mux.Handle("GET /api/auth/me", protect(authHandler.Me))
	mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))

	// Profiles
	mux.Handle("GET /api/profiles/me", protect(profileHandler.Me))
	mux.Handle("PUT /api/profiles", protect(profileHandler.Update))
	mux.Handle("DELETE /api/profiles/picture", protect(profileHandler.RemovePicture))

	// Hashtags
	mux.Handle("GET /api/hashtags", maybe(hashtagHandler.List))
	mux.HandleFunc("GET /api/hashtags/category/{category}", hashtagHandler.ByCategory)
	mux.HandleFunc("GET /api/hashtags/popular", hashtagHandler.Popular)
	mux.HandleFunc("GET /api/hashtags/stats", hashtagHandler.Stats)
	mux.HandleFunc("GET /api/hashtags/search", hashtagHandler.Search)

	// Discovery
	mux.Handle("GET /api/discovery", maybe(discoveryHandler.Discover))
	mux.Handle("GET /api/discovery/profile/{id}", maybe(discoveryHandler.GetProfile))

	// Connections
	mux.Handle("POST /api/connections", protect(connectionHandler.Request))
	mux.Handle("PUT /api/connections/{id}", protect(connectionHandler.Respond))
	mux.Handle("GET /api/connections", protect(connectionHandler.List))

	// Users
	mux.Handle("GET /api/users/stats", protect(userHandler.Stats))
	mux.Handle("POST /api/users/deactivate", protect(userHandler.Deactivate))

	// WebSocket
	if opts.Hub != nil {
		mux.Handle("GET /ws", ws.ServeWS(opts.Hub, svc.Auth, opts.WSOrigins))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	var h http.Handler = mux
	if opts.Metrics != nil {
		h = middleware.Metrics(opts.Metrics)(h)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return middleware.Chain(h,
		middleware.RequestID(logger),
		middleware.Recover,
		middleware.CORS(opts.CORSOrigin),
	)
}
