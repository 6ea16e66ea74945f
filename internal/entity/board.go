package entity

import "fmt"

const (
	BoardSize  = 23
	TotalGoats = 15

	CellEmpty = "E"
	CellTiger = "T"
	CellGoat  = "G"
)

// adjacencyMap describes the 23-node fan board. Every edge is listed from
// both endpoints.
var adjacencyMap = map[int][]int{
	0:  {2, 3, 4, 5},
	1:  {2, 7},
	2:  {0, 1, 3, 8},
	3:  {0, 2, 4, 9},
	4:  {0, 3, 5, 10},
	5:  {0, 4, 6, 11},
	6:  {5, 12},
	7:  {1, 8, 13},
	8:  {2, 7, 9, 14},
	9:  {3, 8, 10, 15},
	10: {4, 9, 11, 16},
	11: {5, 10, 12, 17},
	12: {6, 11, 18},
	13: {7, 14},
	14: {8, 13, 15, 19},
	15: {9, 14, 16, 20},
	16: {10, 15, 17, 21},
	17: {11, 16, 18, 22},
	18: {12, 17},
	19: {14, 20},
	20: {15, 19, 21},
	21: {16, 20, 22},
	22: {17, 21},
}

// jumpLines are the straight lines of the board. A tiger jump is any three
// consecutive nodes along one of them, in either direction.
var jumpLines = [][]int{
	{1, 2, 3, 4, 5, 6},
	{7, 8, 9, 10, 11, 12},
	{13, 14, 15, 16, 17, 18},
	{19, 20, 21, 22},
	{1, 7, 13},
	{0, 2, 8, 14, 19},
	{0, 3, 9, 15, 20},
	{0, 4, 10, 16, 21},
	{0, 5, 11, 17, 22},
	{6, 12, 18},
}

// Jump is a capture option from some start node: the goat to jump over and
// the empty node to land on.
type Jump struct {
	Over int
	Land int
}

var jumpTable = mustBuildJumpTable()

// mustBuildJumpTable scans every jump line in both directions and records
// each (start, over, land) triple. The board data is static, so a broken
// line or an asymmetric edge is a programming error.
func mustBuildJumpTable() map[int][]Jump {
	for node, neighbors := range adjacencyMap {
		for _, neighbor := range neighbors {
			if !contains(adjacencyMap[neighbor], node) {
				panic(fmt.Sprintf("adjacency is not symmetric: %d-%d", node, neighbor))
			}
		}
	}

	table := make(map[int][]Jump, BoardSize)

	for _, line := range jumpLines {
		for i := 0; i+2 < len(line); i++ {
			addJumpTriple(table, line[i], line[i+1], line[i+2])
			addJumpTriple(table, line[i+2], line[i+1], line[i])
		}
	}

	return table
}

func addJumpTriple(table map[int][]Jump, start, over, land int) {
	if start == over || over == land || start == land {
		panic(fmt.Sprintf("jump triple nodes are not distinct: %d-%d-%d", start, over, land))
	}

	if !contains(adjacencyMap[start], over) || !contains(adjacencyMap[over], land) {
		panic(fmt.Sprintf("jump triple is not a chain of edges: %d-%d-%d", start, over, land))
	}

	for _, jump := range table[start] {
		if jump.Over == over && jump.Land == land {
			return
		}
	}

	table[start] = append(table[start], Jump{Over: over, Land: land})
}

func contains(nodes []int, node int) bool {
	for _, n := range nodes {
		if n == node {
			return true
		}
	}
	return false
}

// Neighbors returns the nodes adjacent to the given node.
func Neighbors(node int) []int {
	return adjacencyMap[node]
}

// JumpsFrom returns every capture option starting at the given node,
// regardless of occupancy.
func JumpsFrom(node int) []Jump {
	return jumpTable[node]
}

// IsValidNode reports whether node is on the board.
func IsValidNode(node int) bool {
	return node >= 0 && node < BoardSize
}

// Board is the occupancy of the 23 nodes, "T", "G" or "E".
type Board [BoardSize]string

// NewBoard returns the opening position: three tigers on the apex
// triangle, every other node empty.
func NewBoard() Board {
	var board Board
	for i := range board {
		board[i] = CellEmpty
	}

	board[0] = CellTiger
	board[1] = CellTiger
	board[2] = CellTiger

	return board
}

func (that *Board) CountCells(cell string) int {
	count := 0
	for _, c := range that {
		if c == cell {
			count++
		}
	}
	return count
}
