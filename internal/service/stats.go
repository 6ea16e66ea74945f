package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
)

// BotPlayerID is the identity bound to the AI-driven role of a vs-AI
// match. It never accumulates statistics.
const BotPlayerID = "AI"

type StatsService interface {
	RecordResult(ctx context.Context, match *entity.Match)
	GetStats(ctx context.Context, playerID string) (*entity.PlayerStats, error)
}

type statsRepo interface {
	IncrementFields(ctx context.Context, playerID string, fields []string) error
	GetByID(ctx context.Context, playerID string) (*entity.PlayerStats, error)
}

type statsService struct {
	logger *slog.Logger

	statsRepo statsRepo
}

func NewStatsService(logger *slog.Logger, statsRepo statsRepo) StatsService {
	return &statsService{
		logger:    logger,
		statsRepo: statsRepo,
	}
}

// RecordResult consumes one terminal match and bumps the counters of every
// bound human player. Failures are logged, never surfaced: statistics must
// not interfere with finishing a game.
func (that *statsService) RecordResult(ctx context.Context, match *entity.Match) {
	log := that.logger.With("method", "RecordResult", "matchID", match.ID)

	if !match.IsFinished() {
		return
	}

	for _, role := range []string{entity.RoleTiger, entity.RoleGoat} {
		playerID := match.PlayerOf(role)
		if playerID == "" || playerID == BotPlayerID {
			continue
		}

		fields := statsFields(role, match.Winner)
		if err := that.statsRepo.IncrementFields(ctx, playerID, fields); err != nil {
			log.Error("failed to record result", "playerID", playerID, "error", err)
		}
	}
}

func (that *statsService) GetStats(ctx context.Context, playerID string) (*entity.PlayerStats, error) {
	stats, err := that.statsRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

// statsFields returns the hash fields to bump for one role given the match
// winner: the total counter plus the role-specific one, e.g. a goat loss
// bumps total_losses and goat_losses.
func statsFields(role, winner string) []string {
	var suffix string
	switch winner {
	case "":
		suffix = "draws"
	case role:
		suffix = "wins"
	default:
		suffix = "losses"
	}

	return []string{"total_" + suffix, strings.ToLower(role) + "_" + suffix}
}
