package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/npezzotti/go-hostly/internal/blobstore"
	"github.com/npezzotti/go-hostly/internal/config"
	"github.com/npezzotti/go-hostly/internal/database"
	"github.com/npezzotti/go-hostly/internal/live"
	"github.com/npezzotti/go-hostly/internal/stats"
)

type HostlyApp struct {
	log            *log.Logger
	db             database.MarketplaceRepository
	srv            *http.Server
	hub            *live.Hub
	stats          stats.StatsProvider
	blobs          blobstore.Store
	limiter        *limiterPool
	signingKey     []byte
	allowedOrigins []string
}

func NewHostlyApp(
	mux *http.ServeMux,
	logger *log.Logger,
	hub *live.Hub,
	db database.MarketplaceRepository,
	st stats.StatsProvider,
	blobs blobstore.Store,
	cfg *config.Config,
) *HostlyApp {
	s := &HostlyApp{
		log:            logger,
		db:             db,
		hub:            hub,
		stats:          st,
		blobs:          blobs,
		limiter:        newLimiterPool(cfg.MessageRate, cfg.MessageBurst),
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)

	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.HandleFunc("GET /api/auth/logout", s.authMiddleware(s.logout))

	mux.HandleFunc("GET /api/users/{username}", s.authMiddleware(s.getUser))

	mux.HandleFunc("GET /api/listings", s.findListings)
	mux.HandleFunc("GET /api/listings/search", s.searchListings)
	mux.HandleFunc("GET /api/listings/{id}", s.getListing)
	mux.HandleFunc("POST /api/listings", s.authMiddleware(s.createListing))
	mux.HandleFunc("PATCH /api/listings/{id}", s.authMiddleware(s.updateListing))
	mux.HandleFunc("DELETE /api/listings/{id}", s.authMiddleware(s.deleteListing))

	mux.HandleFunc("POST /api/threads", s.authMiddleware(s.createThread))
	mux.HandleFunc("GET /api/threads/{userId}", s.authMiddleware(s.getAllThreads))
	mux.HandleFunc("GET /api/threads/{userId}/hosting", s.authMiddleware(s.getHostingThreads))
	mux.HandleFunc("GET /api/threads/{userId}/guesting", s.authMiddleware(s.getGuestingThreads))

	mux.HandleFunc("POST /api/messages", s.authMiddleware(s.createMessage))
	mux.HandleFunc("GET /api/messages/threads/{threadId}", s.authMiddleware(s.getThreadMessages))
	mux.HandleFunc("GET /api/messages/conversations/{userId}", s.authMiddleware(s.getConversation))

	mux.HandleFunc("GET /ws", s.authMiddleware(s.serveWs))

	if local, ok := blobs.(*blobstore.LocalStore); ok {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Dir()))))
	}

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.ExposedHeaders([]string{requestIdHeader}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(s.requestId(h))

	s.srv = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return s
}

func (s *HostlyApp) Start() error {
	s.log.Printf("starting server on %s\n", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *HostlyApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	defer s.limiter.Shutdown()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
