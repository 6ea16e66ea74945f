package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardTopology(t *testing.T) {
	t.Run("Adjacency is symmetric", func(t *testing.T) {
		for node := 0; node < BoardSize; node++ {
			for _, neighbor := range Neighbors(node) {
				assert.Contains(t, Neighbors(neighbor), node, "edge %d-%d has no reverse", node, neighbor)
			}
		}
	})

	t.Run("Every node is on the board", func(t *testing.T) {
		for node := 0; node < BoardSize; node++ {
			require.NotEmpty(t, Neighbors(node), "node %d is isolated", node)
			for _, neighbor := range Neighbors(node) {
				assert.True(t, IsValidNode(neighbor))
			}
		}
	})

	t.Run("Jump triples are chains of edges", func(t *testing.T) {
		for node := 0; node < BoardSize; node++ {
			for _, jump := range JumpsFrom(node) {
				assert.Contains(t, Neighbors(node), jump.Over)
				assert.Contains(t, Neighbors(jump.Over), jump.Land)
				assert.NotEqual(t, node, jump.Land)
			}
		}
	})

	t.Run("Fan line gives the 0 over 3 to 9 jump", func(t *testing.T) {
		assert.Contains(t, JumpsFrom(0), Jump{Over: 3, Land: 9})
		assert.Contains(t, JumpsFrom(9), Jump{Over: 3, Land: 0})
	})

	t.Run("No jump across the fan apex between rows", func(t *testing.T) {
		// 2 and 3 are both adjacent to 0 but not collinear through it.
		assert.NotContains(t, JumpsFrom(2), Jump{Over: 0, Land: 3})
	})
}

func TestNewBoard(t *testing.T) {
	// Given: the opening position
	board := NewBoard()

	// Then: three tigers on the apex triangle, the rest empty
	assert.Equal(t, CellTiger, board[0])
	assert.Equal(t, CellTiger, board[1])
	assert.Equal(t, CellTiger, board[2])
	assert.Equal(t, 3, board.CountCells(CellTiger))
	assert.Equal(t, 0, board.CountCells(CellGoat))
	assert.Equal(t, BoardSize-3, board.CountCells(CellEmpty))
}
