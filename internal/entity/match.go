package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/aadupuli-backend/internal/apperror"
)

const (
	DefaultVariant = "3T-15G-23N"

	CaptureTarget = 5

	WinCaptureLimit = "CAPTURE_LIMIT"
	WinStalemate    = "STALEMATE"
	WinRepetition   = "REPETITION"
	WinForfeit      = "FORFEIT"
	WinDisconnected = "OPPONENT_DISCONNECTED"
)

// RepetitionRule configures the threefold-style repetition check. Winner
// may be empty, in which case a repeated position ends the match as a draw.
type RepetitionRule struct {
	Threshold int
	Winner    string
}

func DefaultRepetitionRule() RepetitionRule {
	return RepetitionRule{Threshold: 3}
}

// Match is the authoritative state of one game. It is mutated only through
// ApplyMove and Forfeit; callers are responsible for serializing access.
type Match struct {
	ID            string   `json:"matchId"`
	Variant       string   `json:"variant"`
	TurnIndex     int      `json:"turnIndex"`
	ActivePlayer  string   `json:"activePlayer"`
	Phase         string   `json:"phase"`
	Board         Board    `json:"board"`
	GoatsInHand   int      `json:"goatsInHand"`
	GoatsKilled   int      `json:"goatsKilled"`
	History       []string `json:"history"`
	Winner        string   `json:"winner"`
	WinReason     string   `json:"winReason"`
	TigerPlayerID string   `json:"tigerPlayerId"`
	GoatPlayerID  string   `json:"goatPlayerId"`

	Repetition RepetitionRule `json:"-"`

	seenPositions map[string]int
}

// NewMatch returns a match in the opening position: goats place first.
func NewMatch(id, variant string) *Match {
	match := &Match{
		ID:           id,
		Variant:      variant,
		ActivePlayer: RoleGoat,
		Phase:        PhasePlacement,
		Board:        NewBoard(),
		GoatsInHand:  TotalGoats,
		History:      []string{},
		Repetition:   DefaultRepetitionRule(),
	}

	match.seenPositions = map[string]int{match.positionSignature(): 1}

	return match
}

// ApplyMove validates and commits one move. On any error the match is
// left untouched.
func (that *Match) ApplyMove(move Move) error {
	if that.IsFinished() {
		return apperror.ErrGameOver
	}

	if move.Player != that.ActivePlayer {
		return apperror.ErrNotYourTurn
	}

	newBoard, captured, err := ApplyToBoard(that.Board, move, that.Phase)
	if err != nil {
		return err
	}

	that.Board = newBoard
	if captured {
		that.GoatsKilled++
	}
	if move.IsPlacement() {
		that.GoatsInHand--
	}
	that.History = append(that.History, notation(move, captured))

	if that.GoatsKilled >= CaptureTarget {
		that.finish(RoleTiger, WinCaptureLimit)
		return nil
	}

	if that.Phase == PhasePlacement && that.GoatsInHand == 0 {
		that.Phase = PhaseMovement
	}

	that.ActivePlayer = opponentOf(move.Player)
	that.TurnIndex++

	if len(LegalMoves(that.Board, that.ActivePlayer, that.Phase)) == 0 {
		that.finish(move.Player, WinStalemate)
		return nil
	}

	signature := that.positionSignature()
	if that.seenPositions == nil {
		that.seenPositions = make(map[string]int)
	}
	that.seenPositions[signature]++
	if that.Repetition.Threshold > 0 && that.seenPositions[signature] >= that.Repetition.Threshold {
		that.finish(that.Repetition.Winner, WinRepetition)
	}

	return nil
}

// Forfeit ends the match in favor of the opponent of the forfeiting role.
// It is a no-op on an already finished match.
func (that *Match) Forfeit(loser, reason string) {
	if that.IsFinished() {
		return
	}

	that.finish(opponentOf(loser), reason)
}

func (that *Match) finish(winner, reason string) {
	that.Phase = PhaseGameOver
	that.Winner = winner
	that.WinReason = reason
	that.ActivePlayer = ""
}

func (that *Match) IsFinished() bool {
	return that.Phase == PhaseGameOver
}

// BindRole attaches a player identity to a role. Rebinding the same
// identity is allowed so that reconnects stay idempotent.
func (that *Match) BindRole(role, playerID string) error {
	switch role {
	case RoleTiger:
		if that.TigerPlayerID != "" && that.TigerPlayerID != playerID {
			return apperror.ErrRoleTaken
		}
		that.TigerPlayerID = playerID
	case RoleGoat:
		if that.GoatPlayerID != "" && that.GoatPlayerID != playerID {
			return apperror.ErrRoleTaken
		}
		that.GoatPlayerID = playerID
	default:
		return fmt.Errorf("%w: unknown role %q", apperror.ErrValidation, role)
	}

	return nil
}

// RoleOf returns the role bound to the identity, or "" for spectators.
func (that *Match) RoleOf(playerID string) string {
	if playerID == "" {
		return ""
	}

	switch playerID {
	case that.TigerPlayerID:
		return RoleTiger
	case that.GoatPlayerID:
		return RoleGoat
	}

	return ""
}

// PlayerOf returns the identity bound to a role, or "" if unbound.
func (that *Match) PlayerOf(role string) string {
	if role == RoleTiger {
		return that.TigerPlayerID
	}
	return that.GoatPlayerID
}

// Clone returns a deep copy. Snapshots handed to subscribers and to the
// AI must not alias the authoritative state.
func (that *Match) Clone() *Match {
	clone := *that

	clone.History = append([]string(nil), that.History...)

	clone.seenPositions = make(map[string]int, len(that.seenPositions))
	for signature, count := range that.seenPositions {
		clone.seenPositions[signature] = count
	}

	return &clone
}

func (that *Match) positionSignature() string {
	return strings.Join(that.Board[:], "") + "|" + that.ActivePlayer
}

func opponentOf(role string) string {
	if role == RoleTiger {
		return RoleGoat
	}
	return RoleTiger
}

// notation renders a move for the history log: "G+8" for a placement,
// "T0-9" for a step, "T0x9" for a capture.
func notation(move Move, captured bool) string {
	initial := "G"
	if move.Player == RoleTiger {
		initial = "T"
	}

	if move.IsPlacement() {
		return fmt.Sprintf("%s+%d", initial, move.ToNode)
	}

	separator := "-"
	if captured {
		separator = "x"
	}

	return fmt.Sprintf("%s%d%s%d", initial, *move.FromNode, separator, move.ToNode)
}
