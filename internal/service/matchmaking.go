package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/aadupuli-backend/internal/apperror"
	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
	"github.com/rocketscienceinc/aadupuli-backend/internal/pkg"
)

// RoleAny marks a waiter who takes whichever side completes a pair.
const RoleAny = "ANY"

// Ticket is one waiting player. Found delivers the matchId exactly once
// when a pair is made; a canceled ticket never fires.
type Ticket struct {
	ID         string
	PlayerID   string
	Role       string
	EnqueuedAt time.Time
	Found      chan string
}

type MatchmakingService interface {
	Enqueue(ctx context.Context, playerID, role string) (*Ticket, error)
	Cancel(ticket *Ticket)
}

type matchmakingService struct {
	logger  *slog.Logger
	session SessionService

	mu      sync.Mutex
	waiting []*Ticket
}

func NewMatchmakingService(logger *slog.Logger, session SessionService) MatchmakingService {
	return &matchmakingService{
		logger:  logger,
		session: session,
	}
}

// Enqueue either pairs the player with the earliest compatible waiter or
// parks them in the queue. Pairing, enqueue and cancel all run under one
// lock so the first-enqueued-first-paired order cannot be violated.
func (that *matchmakingService) Enqueue(ctx context.Context, playerID, role string) (*Ticket, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", apperror.ErrValidation)
	}
	if role != entity.RoleTiger && role != entity.RoleGoat && role != RoleAny {
		return nil, fmt.Errorf("%w: unknown role %q", apperror.ErrValidation, role)
	}

	ticket := &Ticket{
		ID:         pkg.GenerateNewSessionID(),
		PlayerID:   playerID,
		Role:       role,
		EnqueuedAt: time.Now(),
		Found:      make(chan string, 1),
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for i, waiter := range that.waiting {
		if !compatible(waiter, ticket) {
			continue
		}

		that.waiting = append(that.waiting[:i], that.waiting[i+1:]...)

		if err := that.pair(ctx, waiter, ticket); err != nil {
			// The waiter keeps their place at the head of the queue.
			that.waiting = append([]*Ticket{waiter}, that.waiting...)
			return nil, err
		}

		return ticket, nil
	}

	that.waiting = append(that.waiting, ticket)
	that.logger.Info("player enqueued", "playerID", playerID, "role", role)

	return ticket, nil
}

// Cancel removes the ticket from the queue. No notification fires for it.
func (that *matchmakingService) Cancel(ticket *Ticket) {
	if ticket == nil {
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for i, waiter := range that.waiting {
		if waiter.ID == ticket.ID {
			that.waiting = append(that.waiting[:i], that.waiting[i+1:]...)
			return
		}
	}
}

func (that *matchmakingService) pair(ctx context.Context, first, second *Ticket) error {
	tigerID, goatID := resolveRoles(first, second)

	match, err := that.session.CreateMatchForPair(ctx, tigerID, goatID)
	if err != nil {
		return fmt.Errorf("failed to create match for pair: %w", err)
	}

	first.Found <- match.ID
	second.Found <- match.ID

	that.logger.Info("players paired", "matchID", match.ID, "tiger", tigerID, "goat", goatID)

	return nil
}

// compatible reports whether two waiters can share a match: different
// players with complementary roles, where ANY matches anything.
func compatible(a, b *Ticket) bool {
	if a.PlayerID == b.PlayerID {
		return false
	}
	if a.Role == RoleAny || b.Role == RoleAny {
		return true
	}
	return a.Role != b.Role
}

// resolveRoles assigns sides for a pair. Explicit requests win; when both
// waiters are role-agnostic the earlier one gets the tigers.
func resolveRoles(first, second *Ticket) (tigerID, goatID string) {
	switch {
	case first.Role == entity.RoleTiger:
		return first.PlayerID, second.PlayerID
	case first.Role == entity.RoleGoat:
		return second.PlayerID, first.PlayerID
	case second.Role == entity.RoleTiger:
		return second.PlayerID, first.PlayerID
	case second.Role == entity.RoleGoat:
		return first.PlayerID, second.PlayerID
	default:
		return first.PlayerID, second.PlayerID
	}
}
