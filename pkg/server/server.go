package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/vrtour/pkg/cache"
	"github.com/matzehuels/vrtour/pkg/errors"
	"github.com/matzehuels/vrtour/pkg/tour"
)

const (
	// GraphTTL is how long rendered room graphs stay cached.
	GraphTTL = time.Hour

	maxBodySize     = 64 << 10
	shutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	// Store serves rooms and receives hotspot edits. Required.
	Store tour.Store

	// Feed, when set, backs GET /api/events. Edits must go through it to be
	// published, so pass the same Feed as Store.
	Feed *tour.Feed

	// Cache keeps rendered room graphs. Defaults to a NullCache.
	Cache cache.Cache

	Logger *log.Logger
}

// Server is the hotspot edit server.
type Server struct {
	store    tour.Store
	feed     *tour.Feed
	cache    cache.Cache
	keyer    cache.Keyer
	logger   *log.Logger
	upgrader websocket.Upgrader
	router   chi.Router
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := &Server{
		store:  opts.Store,
		feed:   opts.Feed,
		cache:  opts.Cache,
		keyer:  cache.NewDefaultKeyer(),
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", s.handleListRooms)
		r.Route("/rooms/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRoom)
			r.Post("/hotspots", s.handleAddHotspot)
			r.Put("/hotspots/{index}", s.handleUpdateHotspot)
			r.Delete("/hotspots/{index}", s.handleDeleteHotspot)
		})
		r.Get("/graph.svg", s.handleGraph)
		r.Get("/events", s.handleEvents)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

// errorBody is the JSON body of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}
