package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
	"github.com/rocketscienceinc/aadupuli-backend/internal/service"
)

type sessionService interface {
	SubmitMove(ctx context.Context, matchID string, move entity.Move, playerID string) (*entity.Match, error)
	Subscribe(matchID string, sub service.Subscriber) (*entity.Match, error)
	Unsubscribe(matchID string, sub service.Subscriber)
	PlayerDisconnected(matchID, playerID string)
	PlayerReconnected(matchID, playerID string)
}

type matchmakingService interface {
	Enqueue(ctx context.Context, playerID, role string) (*service.Ticket, error)
	Cancel(ticket *service.Ticket)
}

type Server struct {
	logger *slog.Logger

	session     sessionService
	matchmaking matchmakingService

	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, session sessionService, matchmaking matchmakingService) *Server {
	return &Server{
		logger:      logger,
		session:     session,
		matchmaking: matchmaking,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		that.handleMatchSocket(ctx, w, r)
	})
	mux.HandleFunc("GET /ws/matchmaking", func(w http.ResponseWriter, r *http.Request) {
		that.handleMatchmakingSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// handleMatchSocket streams a full snapshot to the viewer on every state
// change of one match. A viewer identifying as a bound player also gets
// the disconnect-to-forfeit watch and may submit moves over the socket.
func (that *Server) handleMatchSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")
	playerID := r.URL.Query().Get("playerId")

	log := that.logger.With("method", "handleMatchSocket", "matchID", matchID, "playerID", playerID)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	cl := newClient(conn)
	go cl.writePump()
	defer cl.close()

	sub := make(service.Subscriber, sendBuffer)

	snapshot, err := that.session.Subscribe(matchID, sub)
	if err != nil {
		that.sendError(cl, err)
		return
	}

	defer that.session.Unsubscribe(matchID, sub)

	if playerID != "" {
		that.session.PlayerReconnected(matchID, playerID)
		defer that.session.PlayerDisconnected(matchID, playerID)
	}

	that.sendSnapshot(cl, snapshot)

	go func() {
		for {
			select {
			case snap := <-sub:
				that.sendSnapshot(cl, snap)
			case <-cl.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	that.readMatchMessages(ctx, cl, matchID, playerID, log)
}

// readMatchMessages drains inbound frames until the peer goes away,
// applying any match:turn submissions on behalf of the identified player.
func (that *Server) readMatchMessages(ctx context.Context, cl *client, matchID, playerID string, log *slog.Logger) {
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}

		var message Message
		if err = json.Unmarshal(frame, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		if message.Action != actionMatchTurn {
			continue
		}

		var payload turnPayload
		if err = json.Unmarshal(message.Payload, &payload); err != nil || payload.ToNode == nil {
			that.sendError(cl, fmt.Errorf("malformed turn payload"))
			continue
		}

		move := entity.Move{
			Player:   payload.Player,
			FromNode: payload.FromNode,
			ToNode:   *payload.ToNode,
		}

		// The snapshot reaches this viewer through the subscription,
		// so only failures need a direct reply.
		if _, err = that.session.SubmitMove(ctx, matchID, move, playerID); err != nil {
			that.sendError(cl, err)
		}
	}
}

// handleMatchmakingSocket parks the connection until the player is paired,
// then delivers the matchId once. Closing the socket cancels the ticket.
func (that *Server) handleMatchmakingSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	role := r.URL.Query().Get("role")
	if role == "" {
		role = service.RoleAny
	}

	log := that.logger.With("method", "handleMatchmakingSocket", "playerID", playerID, "role", role)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	cl := newClient(conn)
	go cl.writePump()
	defer cl.close()

	ticket, err := that.matchmaking.Enqueue(ctx, playerID, role)
	if err != nil {
		that.sendError(cl, err)
		return
	}

	// Reads only detect the peer going away; matchmaking clients have
	// nothing to say.
	go func() {
		for {
			if _, _, readErr := cl.conn.ReadMessage(); readErr != nil {
				cl.close()
				return
			}
		}
	}()

	select {
	case matchID := <-ticket.Found:
		frame, encodeErr := encodeMessage(actionMatchFound, matchFoundPayload{MatchID: matchID})
		if encodeErr != nil {
			log.Error("failed to encode match found", "error", encodeErr)
			return
		}
		cl.enqueue(frame)
		log.Info("match found delivered", "matchID", matchID)

		// Give the write pump a moment to flush before the defer
		// closes the connection.
		time.Sleep(100 * time.Millisecond)
	case <-cl.done:
		that.matchmaking.Cancel(ticket)
	case <-ctx.Done():
		that.matchmaking.Cancel(ticket)
	}
}

func (that *Server) sendSnapshot(cl *client, match *entity.Match) {
	frame, err := encodeSnapshot(match)
	if err != nil {
		that.logger.Error("failed to encode snapshot", "error", err)
		return
	}

	cl.enqueue(frame)
}

func (that *Server) sendError(cl *client, err error) {
	frame, encodeErr := encodeMessage(actionError, errorPayload{Error: err.Error()})
	if encodeErr != nil {
		that.logger.Error("failed to encode error", "error", encodeErr)
		return
	}

	cl.enqueue(frame)
}
