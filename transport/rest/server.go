package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
)

type sessionService interface {
	CreateMatch(ctx context.Context, playerID, preferredRole string, vsBot bool) (*entity.Match, error)
	JoinMatch(ctx context.Context, matchID, playerID string) (*entity.Match, error)
	GetMatch(ctx context.Context, matchID string) (*entity.Match, error)
	SubmitMove(ctx context.Context, matchID string, move entity.Move, playerID string) (*entity.Match, error)
}

type statsService interface {
	GetStats(ctx context.Context, playerID string) (*entity.PlayerStats, error)
}

type Server struct {
	logger  *slog.Logger
	session sessionService
	stats   statsService
}

func New(logger *slog.Logger, session sessionService, stats statsService) *Server {
	return &Server{
		logger:  logger,
		session: session,
		stats:   stats,
	}
}

func (that *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", that.handlePing)
	mux.HandleFunc("POST /api/matches", that.handleCreateMatch)
	mux.HandleFunc("GET /api/matches/{id}", that.handleGetMatch)
	mux.HandleFunc("POST /api/matches/{id}/join", that.handleJoinMatch)
	mux.HandleFunc("POST /api/matches/{id}/move", that.handleSubmitMove)
	mux.HandleFunc("GET /api/stats/{playerId}", that.handleGetStats)

	return mux
}

// Start - starts the REST server.
func (that *Server) Start(port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
