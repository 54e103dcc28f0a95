package grid

// Tile is the content of one grid cell.
type Tile uint8

const (
	Empty Tile = iota
	PlayerStart
	Treasure
)

const (
	// Size is the edge length of the reference layout.
	Size = 7
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is indexed as [row][column], i.e. [Y][X].
type Grid [][]Tile

// Layout is the result of scanning a grid once for the player start and the
// treasure count.
type Layout struct {
	Start     Position
	HasStart  bool
	Treasures int
}

var referenceTreasures = []Position{
	{X: 4, Y: 1},
	{X: 2, Y: 2},
	{X: 6, Y: 3},
	{X: 1, Y: 4},
	{X: 4, Y: 5},
}

var referenceStart = Position{X: 3, Y: 6}

// Build returns a freshly allocated copy of the reference layout: a 7x7 area
// with five treasures and the player starting on the bottom row.
func Build() Grid {
	g := New(Size, Size)
	for _, p := range referenceTreasures {
		g.Set(p, Treasure)
	}
	g.Set(referenceStart, PlayerStart)
	return g
}

// New returns an empty grid with the given number of rows and columns.
func New(rows, columns int) Grid {
	g := make(Grid, rows)
	for y := range g {
		g[y] = make([]Tile, columns)
	}
	return g
}

func (g Grid) Rows() int {
	return len(g)
}

func (g Grid) Columns() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

func (g Grid) Contains(p Position) bool {
	return p.Y >= 0 && p.Y < g.Rows() && p.X >= 0 && p.X < g.Columns()
}

func (g Grid) At(p Position) Tile {
	return g[p.Y][p.X]
}

func (g Grid) Set(p Position, t Tile) {
	g[p.Y][p.X] = t
}

// Clone deep-copies every row so treasure pickups never leak back into the
// source grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = append([]Tile(nil), row...)
	}
	return out
}

// Survey scans the grid row by row. When several start tiles exist the last
// one scanned wins.
func Survey(g Grid) Layout {
	var layout Layout
	for y, row := range g {
		for x, tile := range row {
			switch tile {
			case PlayerStart:
				layout.Start = Position{X: x, Y: y}
				layout.HasStart = true
			case Treasure:
				layout.Treasures++
			}
		}
	}
	return layout
}
