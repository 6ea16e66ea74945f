package service

import (
	"errors"
	"math"
	"math/rand"

	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

const (
	botSearchDepth = 2

	winScore       = 10000
	captureWeight  = 100
	mobilityWeight = 10
)

// BotService picks moves for the AI-driven side of a vs-AI match using a
// shallow minimax over the rules engine: captured goats are material,
// tiger mobility is positional.
type BotService interface {
	ChooseMove(match *entity.Match) (entity.Move, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

func (that *botService) ChooseMove(match *entity.Match) (entity.Move, error) {
	player := match.ActivePlayer

	moves := entity.LegalMoves(match.Board, player, match.Phase)
	if len(moves) == 0 {
		return entity.Move{}, ErrNoAvailableMoves
	}

	// Shuffling breaks ties between equal lines so the bot does not
	// repeat the same opening every game.
	rand.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})

	bestScore := math.Inf(-1)
	bestMove := moves[0]

	for _, move := range moves {
		next := match.Clone()
		if err := next.ApplyMove(move); err != nil {
			continue
		}

		score := that.minimax(next, botSearchDepth-1, false, player)
		if score > bestScore {
			bestScore = score
			bestMove = move
		}
	}

	return bestMove, nil
}

func (that *botService) minimax(match *entity.Match, depth int, maximizing bool, botPlayer string) float64 {
	if depth == 0 || match.IsFinished() {
		return evaluate(match, botPlayer)
	}

	moves := entity.LegalMoves(match.Board, match.ActivePlayer, match.Phase)
	if len(moves) == 0 {
		return evaluate(match, botPlayer)
	}

	best := math.Inf(-1)
	if !maximizing {
		best = math.Inf(1)
	}

	for _, move := range moves {
		next := match.Clone()
		if err := next.ApplyMove(move); err != nil {
			continue
		}

		score := that.minimax(next, depth-1, !maximizing, botPlayer)
		if maximizing {
			best = math.Max(best, score)
		} else {
			best = math.Min(best, score)
		}
	}

	return best
}

func evaluate(match *entity.Match, botPlayer string) float64 {
	if match.IsFinished() && match.Winner != "" {
		if match.Winner == botPlayer {
			return winScore
		}
		return -winScore
	}

	score := float64(match.GoatsKilled * captureWeight)
	score += float64(len(entity.LegalTigerMoves(match.Board)) * mobilityWeight)

	if botPlayer == entity.RoleGoat {
		score = -score
	}

	return score
}
