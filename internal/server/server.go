package server

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/koifit/internal/metrics"
	"github.com/claude/koifit/internal/models"
	"github.com/go-chi/chi/v5"
)

// Workouts is the workout service the handlers drive.
type Workouts interface {
	ListDays(ctx context.Context) ([]models.Day, error)
	ActiveSession(ctx context.Context) (*models.ActiveSession, error)
	Start(ctx context.Context, dayID int64) (models.Session, error)
	View(ctx context.Context, sessionID int64) (*models.SessionDetail, error)
	Finish(ctx context.Context, sessionID int64) error
	Save(ctx context.Context, sessionID, sessionExerciseID int64, patch models.SavePatch) error
	Previous(ctx context.Context, slotID, exerciseID int64) (*models.PreviousAttempt, error)
}

// Renderer turns a named view and its data into markup.
type Renderer interface {
	Render(w io.Writer, view string, data any) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc     Workouts
	views   Renderer
	assets  fs.FS
	metrics *metrics.Manager
	log     *slog.Logger
	router  chi.Router
}

// New creates a new Server with all routes configured. m may be nil, in
// which case nothing is measured and /metrics is not served.
func New(svc Workouts, views Renderer, assets fs.FS, m *metrics.Manager, log *slog.Logger) *Server {
	s := &Server{
		svc:     svc,
		views:   views,
		assets:  assets,
		metrics: m,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// HTML pages and the actions they post to
	s.router.Get("/", s.handleIndex)
	s.router.Get("/days", s.handleDays)
	s.router.Post("/sessions/start/{day_id}", s.handleStart)
	s.router.Get("/sessions/{session_id}", s.handleSession)
	s.router.Post("/sessions/{session_id}/exercises/{session_exercise_id}/save", s.handleSave)
	s.router.Post("/sessions/{session_id}/finish", s.handleFinish)
	s.router.Get("/health", s.handleHealth)

	// JSON API
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/days", s.handleAPIDays)
		r.Get("/sessions/active", s.handleAPIActive)
		r.Post("/sessions/start/{day_id}", s.handleAPIStart)
		r.Get("/sessions/{session_id}", s.handleAPISession)
		r.Get("/slots/{slot_id}/previous", s.handleAPIPrevious)
	})

	// Static files
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(s.assets)))
	s.router.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/assets/favicon.svg", http.StatusMovedPermanently)
	})
}

// SetMCP mounts a Model Context Protocol handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}
