package entity

import (
	"testing"

	"github.com/rocketscienceinc/aadupuli-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatch(t *testing.T) {
	// Given: a fresh match
	match := NewMatch("m1", DefaultVariant)

	// Then: goats open the placement phase with a full hand
	assert.Equal(t, PhasePlacement, match.Phase)
	assert.Equal(t, RoleGoat, match.ActivePlayer)
	assert.Equal(t, TotalGoats, match.GoatsInHand)
	assert.Equal(t, 0, match.GoatsKilled)
	assert.Equal(t, 0, match.TurnIndex)
	assert.Empty(t, match.History)
	assert.Equal(t, NewBoard(), match.Board)
}

func TestMatch_ApplyMove(t *testing.T) {
	t.Run("Goat placement commits and passes the turn", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)

		err := match.ApplyMove(PlaceMove(RoleGoat, 8))

		require.NoError(t, err)
		assert.Equal(t, CellGoat, match.Board[8])
		assert.Equal(t, TotalGoats-1, match.GoatsInHand)
		assert.Equal(t, RoleTiger, match.ActivePlayer)
		assert.Equal(t, 1, match.TurnIndex)
		assert.Equal(t, []string{"G+8"}, match.History)
	})

	t.Run("Out of turn move is rejected without mutation", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)
		before := match.Clone()

		err := match.ApplyMove(PieceMove(RoleTiger, 0, 4))

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, before.Board, match.Board)
		assert.Equal(t, before.TurnIndex, match.TurnIndex)
	})

	t.Run("Illegal move is rejected without mutation", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)
		before := match.Clone()

		// Node 0 holds a tiger, goats cannot place there.
		err := match.ApplyMove(PlaceMove(RoleGoat, 0))

		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, before.Board, match.Board)
		assert.Equal(t, before.History, match.History)
	})

	t.Run("Tiger may move during placement", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)
		require.NoError(t, match.ApplyMove(PlaceMove(RoleGoat, 20)))

		err := match.ApplyMove(PieceMove(RoleTiger, 0, 4))

		require.NoError(t, err)
		assert.Equal(t, CellTiger, match.Board[4])
		assert.Equal(t, PhasePlacement, match.Phase)
		assert.Equal(t, RoleGoat, match.ActivePlayer)
	})

	t.Run("Placing the last goat starts the movement phase", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)
		match.Phase = PhasePlacement
		match.GoatsInHand = 1
		match.ActivePlayer = RoleGoat

		err := match.ApplyMove(PlaceMove(RoleGoat, 22))

		require.NoError(t, err)
		assert.Equal(t, PhaseMovement, match.Phase)
		assert.Equal(t, 0, match.GoatsInHand)
		assert.Equal(t, RoleTiger, match.ActivePlayer)
	})

	t.Run("Tiger jump captures and records notation", func(t *testing.T) {
		// Given: movement phase, tiger on 0, goat on 3, landing 9 empty
		match := NewMatch("m1", DefaultVariant)
		match.Phase = PhaseMovement
		match.GoatsInHand = 0
		match.ActivePlayer = RoleTiger
		match.Board[1] = CellEmpty
		match.Board[2] = CellEmpty
		match.Board[3] = CellGoat
		match.Board[22] = CellGoat

		err := match.ApplyMove(PieceMove(RoleTiger, 0, 9))

		require.NoError(t, err)
		assert.Equal(t, CellEmpty, match.Board[0])
		assert.Equal(t, CellEmpty, match.Board[3])
		assert.Equal(t, CellTiger, match.Board[9])
		assert.Equal(t, 1, match.GoatsKilled)
		assert.Equal(t, "T0x9", match.History[len(match.History)-1])
	})

	t.Run("Fifth capture ends the match for the tigers", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)
		match.Phase = PhaseMovement
		match.GoatsInHand = 0
		match.GoatsKilled = 4
		match.ActivePlayer = RoleTiger
		match.Board[1] = CellEmpty
		match.Board[2] = CellEmpty
		match.Board[3] = CellGoat
		match.Board[22] = CellGoat

		err := match.ApplyMove(PieceMove(RoleTiger, 0, 9))

		require.NoError(t, err)
		assert.Equal(t, PhaseGameOver, match.Phase)
		assert.Equal(t, RoleTiger, match.Winner)
		assert.Equal(t, WinCaptureLimit, match.WinReason)
		assert.Empty(t, match.ActivePlayer)

		// And: the finished match refuses further moves
		err = match.ApplyMove(PieceMove(RoleGoat, 22, 21))
		require.ErrorIs(t, err, apperror.ErrGameOver)
	})

	t.Run("Capture limit wins even when the opponent is also stuck", func(t *testing.T) {
		// Given: the jump to 14 both makes the fifth capture and seals
		// the remaining goats on 13 and 19
		match := NewMatch("m1", DefaultVariant)
		match.Phase = PhaseMovement
		match.GoatsInHand = 0
		match.GoatsKilled = 4
		match.ActivePlayer = RoleTiger
		match.Board = boardFrom(map[int]string{
			7: CellTiger, 20: CellTiger, 16: CellTiger,
			13: CellGoat, 19: CellGoat, 15: CellGoat,
		})

		err := match.ApplyMove(PieceMove(RoleTiger, 16, 14))

		require.NoError(t, err)
		assert.Equal(t, RoleTiger, match.Winner)
		assert.Equal(t, WinCaptureLimit, match.WinReason, "capture limit takes precedence over stalemate")
	})

	t.Run("Immobilized tigers lose by stalemate", func(t *testing.T) {
		// Given: tigers on 13, 19 and 22, goats one move away from
		// sealing every step and jump
		match := NewMatch("m1", DefaultVariant)
		match.Phase = PhaseMovement
		match.GoatsInHand = 0
		match.ActivePlayer = RoleGoat
		match.Board = boardFrom(map[int]string{
			13: CellTiger, 19: CellTiger, 22: CellTiger,
			1: CellGoat, 2: CellGoat, 3: CellGoat, 4: CellGoat, 5: CellGoat,
			7: CellGoat, 8: CellGoat, 9: CellGoat, 10: CellGoat, 11: CellGoat,
			14: CellGoat, 16: CellGoat, 17: CellGoat, 20: CellGoat, 21: CellGoat,
		})

		// When: the goat on 16 closes the last gap at 15
		err := match.ApplyMove(PieceMove(RoleGoat, 16, 15))

		require.NoError(t, err)
		assert.Equal(t, PhaseGameOver, match.Phase)
		assert.Equal(t, RoleGoat, match.Winner)
		assert.Equal(t, WinStalemate, match.WinReason)
	})

	t.Run("Immobilized goats lose by stalemate", func(t *testing.T) {
		// Given: two goats whose only gap at 14 is about to be filled
		match := NewMatch("m1", DefaultVariant)
		match.Phase = PhaseMovement
		match.GoatsInHand = 0
		match.ActivePlayer = RoleTiger
		match.Board = boardFrom(map[int]string{
			7: CellTiger, 20: CellTiger, 15: CellTiger,
			13: CellGoat, 19: CellGoat,
		})

		err := match.ApplyMove(PieceMove(RoleTiger, 15, 14))

		require.NoError(t, err)
		assert.Equal(t, RoleTiger, match.Winner)
		assert.Equal(t, WinStalemate, match.WinReason)
	})

	t.Run("Repeated position ends the match per the configured rule", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)
		match.Phase = PhaseMovement
		match.GoatsInHand = 0
		match.ActivePlayer = RoleTiger
		match.Repetition = RepetitionRule{Threshold: 3, Winner: RoleGoat}
		match.Board = boardFrom(map[int]string{
			0: CellTiger, 1: CellTiger, 2: CellTiger,
			22: CellGoat,
		})

		shuffle := []Move{
			PieceMove(RoleTiger, 0, 4),
			PieceMove(RoleGoat, 22, 21),
			PieceMove(RoleTiger, 4, 0),
			PieceMove(RoleGoat, 21, 22),
		}

		for i := 0; !match.IsFinished(); i++ {
			require.Less(t, i, 12, "repetition must trigger within three cycles")
			require.NoError(t, match.ApplyMove(shuffle[i%len(shuffle)]))
		}

		assert.Equal(t, WinRepetition, match.WinReason)
		assert.Equal(t, RoleGoat, match.Winner)
	})
}

func TestMatch_Forfeit(t *testing.T) {
	t.Run("Forfeit awards the opponent", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)

		match.Forfeit(RoleGoat, WinDisconnected)

		assert.Equal(t, PhaseGameOver, match.Phase)
		assert.Equal(t, RoleTiger, match.Winner)
		assert.Equal(t, WinDisconnected, match.WinReason)
	})

	t.Run("Forfeit on a finished match is a no-op", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)
		match.Forfeit(RoleGoat, WinForfeit)

		match.Forfeit(RoleTiger, WinForfeit)

		assert.Equal(t, RoleTiger, match.Winner)
		assert.Equal(t, WinForfeit, match.WinReason)
	})
}

func TestMatch_Roles(t *testing.T) {
	t.Run("BindRole and RoleOf", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)

		require.NoError(t, match.BindRole(RoleTiger, "alice"))
		require.NoError(t, match.BindRole(RoleGoat, "bob"))

		assert.Equal(t, RoleTiger, match.RoleOf("alice"))
		assert.Equal(t, RoleGoat, match.RoleOf("bob"))
		assert.Empty(t, match.RoleOf("mallory"))
	})

	t.Run("Occupied role rejects a different identity", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)
		require.NoError(t, match.BindRole(RoleTiger, "alice"))

		err := match.BindRole(RoleTiger, "bob")

		require.ErrorIs(t, err, apperror.ErrRoleTaken)
	})

	t.Run("Rebinding the same identity is idempotent", func(t *testing.T) {
		match := NewMatch("m1", DefaultVariant)
		require.NoError(t, match.BindRole(RoleTiger, "alice"))

		require.NoError(t, match.BindRole(RoleTiger, "alice"))
	})
}

func TestMatch_Clone(t *testing.T) {
	match := NewMatch("m1", DefaultVariant)
	require.NoError(t, match.ApplyMove(PlaceMove(RoleGoat, 8)))

	clone := match.Clone()
	require.NoError(t, clone.ApplyMove(PieceMove(RoleTiger, 0, 4)))

	// The original must not observe the clone's move.
	assert.Equal(t, CellTiger, match.Board[0])
	assert.Len(t, match.History, 1)
	assert.Len(t, clone.History, 2)
}

// boardFrom builds an otherwise empty board from a node to cell map.
func boardFrom(cells map[int]string) Board {
	var board Board
	for i := range board {
		board[i] = CellEmpty
	}
	for node, cell := range cells {
		board[node] = cell
	}
	return board
}
