package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
)

// StatsRepository keeps per-player win/loss/draw counters in a Redis hash
// per player, one field per counter.
type StatsRepository interface {
	IncrementFields(ctx context.Context, playerID string, fields []string) error
	GetByID(ctx context.Context, playerID string) (*entity.PlayerStats, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

func (that *dbStats) IncrementFields(ctx context.Context, playerID string, fields []string) error {
	statsKey := "stats:" + playerID

	pipe := that.client.Pipeline()
	for _, field := range fields {
		pipe.HIncrBy(ctx, statsKey, field, 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment stats: %w", err)
	}

	return nil
}

func (that *dbStats) GetByID(ctx context.Context, playerID string) (*entity.PlayerStats, error) {
	statsKey := "stats:" + playerID

	values, err := that.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats by ID: %w", err)
	}

	counter := func(field string) int {
		n, _ := strconv.Atoi(values[field])
		return n
	}

	// A player with no recorded games gets all-zero counters.
	return &entity.PlayerStats{
		TotalWins:   counter("total_wins"),
		TotalLosses: counter("total_losses"),
		TotalDraws:  counter("total_draws"),
		TigerWins:   counter("tiger_wins"),
		TigerLosses: counter("tiger_losses"),
		TigerDraws:  counter("tiger_draws"),
		GoatWins:    counter("goat_wins"),
		GoatLosses:  counter("goat_losses"),
		GoatDraws:   counter("goat_draws"),
	}, nil
}
