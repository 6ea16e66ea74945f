package entity

import (
	"fmt"

	"github.com/rocketscienceinc/aadupuli-backend/internal/apperror"
)

const (
	RoleTiger = "TIGER"
	RoleGoat  = "GOAT"

	PhasePlacement = "PLACEMENT"
	PhaseMovement  = "MOVEMENT"
	PhaseGameOver  = "GAME_OVER"
)

// Move is a single action by one side. A nil FromNode means a goat
// placement, otherwise the piece at FromNode relocates to ToNode.
type Move struct {
	Player   string `json:"player"`
	FromNode *int   `json:"from_node"`
	ToNode   int    `json:"to_node"`
}

func PlaceMove(player string, to int) Move {
	return Move{Player: player, ToNode: to}
}

func PieceMove(player string, from, to int) Move {
	return Move{Player: player, FromNode: &from, ToNode: to}
}

func (that Move) IsPlacement() bool {
	return that.FromNode == nil
}

func (that Move) Equal(other Move) bool {
	if that.Player != other.Player || that.ToNode != other.ToNode {
		return false
	}
	if that.IsPlacement() != other.IsPlacement() {
		return false
	}
	return that.IsPlacement() || *that.FromNode == *other.FromNode
}

// LegalPlacements returns a goat placement for every empty node.
func LegalPlacements(board Board) []Move {
	var moves []Move
	for node, cell := range board {
		if cell == CellEmpty {
			moves = append(moves, PlaceMove(RoleGoat, node))
		}
	}
	return moves
}

// LegalTigerMoves returns every tiger step to an adjacent empty node and
// every jump over a goat onto an empty landing node. Tigers move the same
// way in both phases.
func LegalTigerMoves(board Board) []Move {
	var moves []Move
	for node, cell := range board {
		if cell != CellTiger {
			continue
		}

		for _, neighbor := range Neighbors(node) {
			if board[neighbor] == CellEmpty {
				moves = append(moves, PieceMove(RoleTiger, node, neighbor))
			}
		}

		for _, jump := range JumpsFrom(node) {
			if board[jump.Over] == CellGoat && board[jump.Land] == CellEmpty {
				moves = append(moves, PieceMove(RoleTiger, node, jump.Land))
			}
		}
	}
	return moves
}

// LegalGoatMoves returns every goat step to an adjacent empty node.
// Goats never jump.
func LegalGoatMoves(board Board) []Move {
	var moves []Move
	for node, cell := range board {
		if cell != CellGoat {
			continue
		}

		for _, neighbor := range Neighbors(node) {
			if board[neighbor] == CellEmpty {
				moves = append(moves, PieceMove(RoleGoat, node, neighbor))
			}
		}
	}
	return moves
}

// LegalMoves returns the full legal set for one side in the given phase.
// During placement goats may only place; tigers always move and jump.
func LegalMoves(board Board, player, phase string) []Move {
	if player == RoleTiger {
		return LegalTigerMoves(board)
	}

	if phase == PhasePlacement {
		return LegalPlacements(board)
	}

	return LegalGoatMoves(board)
}

// ApplyToBoard applies a move to a board copy and reports whether a goat
// was captured. The move must be present in the legal set for its player
// and phase, otherwise ErrInvalidMove is returned and the input board is
// unchanged.
func ApplyToBoard(board Board, move Move, phase string) (Board, bool, error) {
	if !IsValidNode(move.ToNode) || (!move.IsPlacement() && !IsValidNode(*move.FromNode)) {
		return board, false, fmt.Errorf("%w: node out of range", apperror.ErrInvalidMove)
	}

	if !moveInSet(LegalMoves(board, move.Player, phase), move) {
		return board, false, apperror.ErrInvalidMove
	}

	if move.IsPlacement() {
		board[move.ToNode] = CellGoat
		return board, false, nil
	}

	from := *move.FromNode

	if move.Player == RoleTiger {
		for _, jump := range JumpsFrom(from) {
			if jump.Land != move.ToNode || board[jump.Over] != CellGoat {
				continue
			}

			board[from] = CellEmpty
			board[jump.Over] = CellEmpty
			board[move.ToNode] = CellTiger
			return board, true, nil
		}
	}

	board[move.ToNode] = board[from]
	board[from] = CellEmpty

	return board, false, nil
}

func moveInSet(moves []Move, move Move) bool {
	for _, m := range moves {
		if m.Equal(move) {
			return true
		}
	}
	return false
}
