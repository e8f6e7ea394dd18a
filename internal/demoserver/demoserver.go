// Package demoserver wires the invite protocol end to end behind a
// small chi-routed HTTP surface: creating conversations and invites
// on a creator identity, joining them from a second identity, and
// delivering the resulting DM into the creator's middleware engine.
// It exists to drive the invite protocol end to end over a real (if
// in-process) substrate rather than unit-testing packages in
// isolation; it is not part of the invite protocol itself.
package demoserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/xmtplabs/convos-node-sdk/internal/audit"
	"github.com/xmtplabs/convos-node-sdk/internal/config"
	"github.com/xmtplabs/convos-node-sdk/internal/groupwrap"
	"github.com/xmtplabs/convos-node-sdk/internal/logutil"
	"github.com/xmtplabs/convos-node-sdk/internal/middleware"
	"github.com/xmtplabs/convos-node-sdk/internal/substrate/fake"
)

// Server holds the two in-process identities the demo wires together
// and the HTTP surface driving them.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	creator *fake.Agent
	joiner  *fake.Agent
	engine  *middleware.Engine
	audit   *audit.MemoryLog

	groups map[string]*groupwrap.Group
}

// New constructs a Server for cfg, with a creator identity driven by
// cfg's private key and a second, joiner identity.
func New(cfg *config.Config, logger *slog.Logger, creatorInboxID, joinerInboxID string) *Server {
	logger = logutil.NoopIfNil(logger)
	creator := fake.NewAgent(creatorInboxID)
	joiner := fake.NewAgent(joinerInboxID)
	auditLog := audit.NewMemoryLog()

	engine := middleware.NewEngine(creatorInboxID, cfg.CreatorPrivateKey, creator.Conversations(), creator.Contacts(), middleware.Options{
		Logger: logger,
		Audit:  auditLog,
	})
	engine.On(func(ctx context.Context, event *middleware.InviteEvent) {
		if err := event.Accept(); err != nil {
			logger.Error("failed to accept join request", "error", err, "joiner_inbox_id", event.JoinerInboxID)
		}
	})

	return &Server{
		cfg:     cfg,
		logger:  logger,
		creator: creator,
		joiner:  joiner,
		engine:  engine,
		audit:   auditLog,
		groups:  make(map[string]*groupwrap.Group),
	}
}

// Router builds the chi router exposing the demo's HTTP surface.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Post("/conversations", s.handleCreateConversation)
	r.Post("/conversations/{id}/invite", s.handleCreateInvite)
	r.Post("/join", s.handleJoin)
	r.Post("/deliver", s.handleDeliver)
	r.Get("/audit", s.handleAudit)

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
