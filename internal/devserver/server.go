// Package devserver is an in-memory implementation of the learning platform
// API. It backs `stylequiz devserver` for local play and the end-to-end
// tests of the gateway client. Adaptive selection is a simple step policy.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/stylequiz/internal/logging"
)

// Config configures the server.
type Config struct {
	// Secret signs tokens. Anything works for local use.
	Secret   string
	TokenTTL time.Duration

	// TestLength is the number of questions in one adaptive test. Tests
	// also end early when a subject runs out of questions.
	TestLength int

	AllowedOrigins []string

	// LegacyPayloads sends question options as a single JSON-encoded string
	// and includes correct_answer, as older platform builds did.
	LegacyPayloads bool

	// BcryptCost is lowered in tests.
	BcryptCost int
}

// DefaultConfig returns settings for local play.
func DefaultConfig() Config {
	return Config{
		Secret:         "stylequiz-dev-secret",
		TokenTTL:       8 * time.Hour,
		TestLength:     5,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		BcryptCost:     bcrypt.DefaultCost,
	}
}

// Server holds all platform state in memory.
type Server struct {
	cfg      Config
	bank     *Bank
	accounts *accounts
	tokens   tokens
	log      *logging.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*testSession
	history  map[string][]testRecord // by user id
}

// Option configures a Server.
type Option func(*Server)

// WithBank replaces DefaultBank.
func WithBank(b *Bank) Option {
	return func(s *Server) { s.bank = b }
}

// WithLogger sets the request logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New returns a Server with cfg.
func New(cfg Config, opts ...Option) *Server {
	if cfg.TestLength <= 0 {
		cfg.TestLength = DefaultConfig().TestLength
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	s := &Server{
		cfg:      cfg,
		accounts: newAccounts(cfg.BcryptCost),
		tokens:   tokens{secret: []byte(cfg.Secret), ttl: cfg.TokenTTL, issuer: "stylequiz-devserver"},
		log:      logging.Nop(),
		now:      time.Now,
		sessions: make(map[string]*testSession),
		history:  make(map[string][]testRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bank == nil {
		s.bank = DefaultBank()
	}
	return s
}

// Bank returns the server's question bank.
func (s *Server) Bank() *Bank { return s.bank }

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLog, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireAuth)
		pr.Get("/profile", s.handleProfile)

		pr.Get("/vark/questions", s.handleVarkQuestions)
		pr.Post("/vark/submit", s.handleVarkSubmit)
		pr.Get("/vark/result", s.handleVarkResult)

		pr.Get("/test/subjects", s.handleSubjects)
		pr.Post("/test/start", s.handleStart)
		pr.Post("/test/submit-answer", s.handleSubmitAnswer)

		pr.Get("/results", s.handleResults)

		pr.With(requireRole("teacher")).Post("/questions", s.handleCreateQuestion)
		pr.With(requireRole("teacher")).Get("/teacher/students", s.handleStudents)
	})
	return r
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		ctx := logging.ContextWithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		s.log.InfoContext(ctx, "request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"latency_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			fail(w, http.StatusUnauthorized, errMissingAuth)
			return
		}
		claims, err := s.tokens.parse(strings.TrimPrefix(h, "Bearer "), s.now())
		if err != nil {
			fail(w, http.StatusUnauthorized, errBadToken)
			return
		}
		if _, ok := s.accounts.get(claims.UserID); !ok {
			fail(w, http.StatusUnauthorized, errBadToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c := claimsFrom(r.Context()); c == nil || c.Role != role {
				fail(w, http.StatusForbidden, errors.New("this action needs a "+role+" account"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, envelope{Success: false, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return errors.New("request body must be valid JSON")
	}
	return nil
}
