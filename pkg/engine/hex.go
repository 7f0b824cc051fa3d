package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is an odd-row offset coordinate on the hex battle map.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// LandID returns the canonical land identifier for a position.
// Land IDs are always "{row}-{col}".
func (p Position) LandID() string {
	return fmt.Sprintf("%d-%d", p.Row, p.Col)
}

// ParseLandID parses a "{row}-{col}" land identifier.
func ParseLandID(id string) (Position, bool) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 {
		return Position{}, false
	}
	row, err := strconv.Atoi(parts[0])
	if err != nil {
		return Position{}, false
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return Position{}, false
	}
	return Position{Row: row, Col: col}, true
}

// hexNeighborOffsets returns the six neighbor offsets for a row.
// Odd rows are shifted right by half a hex, so their diagonal
// neighbors lean the other way than even rows'.
func hexNeighborOffsets(row int) [6][2]int {
	if row%2 == 0 {
		return [6][2]int{
			{0, -1}, {0, 1},
			{-1, -1}, {-1, 0},
			{1, -1}, {1, 0},
		}
	}
	return [6][2]int{
		{0, -1}, {0, 1},
		{-1, 0}, {-1, 1},
		{1, 0}, {1, 1},
	}
}

// Neighbors returns the in-bounds hex neighbors of p on map m.
func (m *BattleMap) Neighbors(p Position) []Position {
	var out []Position
	for _, off := range hexNeighborOffsets(p.Row) {
		n := Position{Row: p.Row + off[0], Col: p.Col + off[1]}
		if m.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// RowWidth returns the number of columns in a row. Odd rows are one
// hex shorter so the map edges stay even.
func (m *BattleMap) RowWidth(row int) int {
	if row%2 == 1 {
		return m.Cols - 1
	}
	return m.Cols
}

// InBounds reports whether p lies on the map.
func (m *BattleMap) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < m.Rows && p.Col >= 0 && p.Col < m.RowWidth(p.Row)
}

// ShortestPath returns the shortest hex path from src to dst (inclusive
// of both endpoints), found by breadth-first search. Returns nil when
// no path exists or either endpoint is off the map.
func (m *BattleMap) ShortestPath(src, dst Position) []Position {
	if !m.InBounds(src) || !m.InBounds(dst) {
		return nil
	}
	if src == dst {
		return []Position{src}
	}

	prev := map[Position]Position{src: src}
	queue := []Position{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range m.Neighbors(cur) {
			if _, seen := prev[n]; seen {
				continue
			}
			prev[n] = cur
			if n == dst {
				return rebuildPath(prev, src, dst)
			}
			queue = append(queue, n)
		}
	}
	return nil
}

func rebuildPath(prev map[Position]Position, src, dst Position) []Position {
	var rev []Position
	for cur := dst; cur != src; cur = prev[cur] {
		rev = append(rev, cur)
	}
	rev = append(rev, src)
	path := make([]Position, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

// Distance returns the hex distance between two positions, or -1 when
// no path connects them.
func (m *BattleMap) Distance(src, dst Position) int {
	path := m.ShortestPath(src, dst)
	if path == nil {
		return -1
	}
	return len(path) - 1
}

// LandsInRadius returns the IDs of all lands within the given hex
// radius of center, including center itself.
func (m *BattleMap) LandsInRadius(center Position, radius int) []string {
	if !m.InBounds(center) {
		return nil
	}
	dist := map[Position]int{center: 0}
	queue := []Position{center}
	ids := []string{center.LandID()}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] >= radius {
			continue
		}
		for _, n := range m.Neighbors(cur) {
			if _, seen := dist[n]; seen {
				continue
			}
			dist[n] = dist[cur] + 1
			ids = append(ids, n.LandID())
			queue = append(queue, n)
		}
	}
	return ids
}
