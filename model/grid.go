package model

import (
	"crypto/md5"
	"fmt"

	"github.com/pkg/errors"
)

const (
	// MaxDims is the highest supported dimensionality
	MaxDims = 3

	// MaxCells caps size^dims so a bad config cannot exhaust memory
	MaxCells = 1 << 24

	historyDepth = 5
)

// ErrOutOfBounds is returned for any coordinate outside [0, size) on some axis
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// Coord is a grid coordinate. Axes at or above the grid's dimensionality must be 0.
type Coord [MaxDims]int

// C2 builds a 2D coordinate
func C2(x, y int) Coord { return Coord{x, y, 0} }

// C3 builds a 3D coordinate
func C3(x, y, z int) Coord { return Coord{x, y, z} }

// Add returns the component-wise sum of c and d
func (c Coord) Add(d Coord) Coord {
	return Coord{c[0] + d[0], c[1] + d[1], c[2] + d[2]}
}

// Buffer holds one generation of liveness and colour, indexed linearly
type Buffer struct {
	alive []bool
	color []Faction
}

func newBuffer(n int) Buffer {
	return Buffer{alive: make([]bool, n), color: make([]Faction, n)}
}

// Len returns the number of cells in the buffer
func (b *Buffer) Len() int { return len(b.alive) }

// At returns the liveness and colour stored at index i
func (b *Buffer) At(i int) (bool, Faction) { return b.alive[i], b.color[i] }

// Alive returns the liveness stored at index i
func (b *Buffer) Alive(i int) bool { return b.alive[i] }

// Put stores a cell; a dead cell is always written as Neutral
func (b *Buffer) Put(i int, alive bool, color Faction) {
	if !alive {
		color = Neutral
	}
	b.alive[i] = alive
	b.color[i] = color
}

func (b *Buffer) clear() {
	clear(b.alive)
	clear(b.color)
}

// Grid is the automaton state: an active generation plus a scratch buffer the
// next generation is written into before Swap.
type Grid struct {
	dims    int
	size    int
	buffers [2]Buffer
	active  int
	history []string // recent generation hashes for cycle detection
}

// NewGrid creates an empty grid of the given dimensionality and edge length
func NewGrid(dims, size int) (*Grid, error) {
	if err := ValidateShape(dims, size); err != nil {
		return nil, errors.Wrap(err, "[NewGrid]")
	}
	g := &Grid{}
	g.Reset(dims, size)
	return g, nil
}

// ValidateShape checks dims and size without allocating a grid
func ValidateShape(dims, size int) error {
	if dims < 2 || dims > MaxDims {
		return errors.Errorf("dimensions must be 2 or 3, got %d", dims)
	}
	if size <= 0 {
		return errors.Errorf("size must be positive, got %d", size)
	}
	n := 1
	for range dims {
		n *= size
		if n > MaxCells {
			return errors.Errorf("size %d^%d exceeds %d cells", size, dims, MaxCells)
		}
	}
	return nil
}

// Dimensions returns the number of spatial axes
func (g *Grid) Dimensions() int { return g.dims }

// Size returns the extent along every axis
func (g *Grid) Size() int { return g.size }

// Len returns the total number of cells
func (g *Grid) Len() int { return g.buffers[g.active].Len() }

// Current returns the active generation
func (g *Grid) Current() *Buffer { return &g.buffers[g.active] }

// Next returns the scratch buffer that Swap promotes
func (g *Grid) Next() *Buffer { return &g.buffers[1-g.active] }

// Swap exchanges the active and scratch buffers
func (g *Grid) Swap() { g.active = 1 - g.active }

// Reset resizes the grid and clears both buffers. The shape is assumed valid.
func (g *Grid) Reset(dims, size int) {
	n := 1
	for range dims {
		n *= size
	}
	g.dims = dims
	g.size = size
	g.active = 0
	g.history = nil
	for i := range g.buffers {
		if g.buffers[i].Len() != n {
			g.buffers[i] = newBuffer(n)
		} else {
			g.buffers[i].clear()
		}
	}
}

// Clear kills every cell in both buffers
func (g *Grid) Clear() {
	for i := range g.buffers {
		g.buffers[i].clear()
	}
	g.history = nil
}

// CopyFrom makes g an independent copy of src's active generation
func (g *Grid) CopyFrom(src *Grid) {
	if g.dims != src.dims || g.size != src.size {
		g.Reset(src.dims, src.size)
	}
	cur := g.Current()
	from := src.Current()
	copy(cur.alive, from.alive)
	copy(cur.color, from.color)
	g.history = append(g.history[:0], src.history...)
}

// InBounds reports whether every axis of c is inside the grid
func (g *Grid) InBounds(c Coord) bool {
	for axis, v := range c {
		if axis >= g.dims {
			if v != 0 {
				return false
			}
			continue
		}
		if v < 0 || v >= g.size {
			return false
		}
	}
	return true
}

// Index converts a coordinate to its linear buffer index
func (g *Grid) Index(c Coord) (int, error) {
	if !g.InBounds(c) {
		return 0, errors.Wrapf(ErrOutOfBounds, "%v in %d^%d grid", c, g.size, g.dims)
	}
	return g.index(c), nil
}

func (g *Grid) index(c Coord) int {
	idx := 0
	for axis := g.dims - 1; axis >= 0; axis-- {
		idx = idx*g.size + c[axis]
	}
	return idx
}

// Coord converts a linear index back to a coordinate
func (g *Grid) Coord(idx int) Coord {
	var c Coord
	for axis := range g.dims {
		c[axis] = idx % g.size
		idx /= g.size
	}
	return c
}

// IsAlive returns the liveness of the cell at c
func (g *Grid) IsAlive(c Coord) (bool, error) {
	idx, err := g.Index(c)
	if err != nil {
		return false, errors.Wrap(err, "[Grid.IsAlive]")
	}
	return g.Current().alive[idx], nil
}

// ColorAt returns the owner of the cell at c
func (g *Grid) ColorAt(c Coord) (Faction, error) {
	idx, err := g.Index(c)
	if err != nil {
		return Neutral, errors.Wrap(err, "[Grid.ColorAt]")
	}
	return g.Current().color[idx], nil
}

// Set writes a cell in the active generation
func (g *Grid) Set(c Coord, alive bool, color Faction) error {
	idx, err := g.Index(c)
	if err != nil {
		return errors.Wrap(err, "[Grid.Set]")
	}
	g.Current().Put(idx, alive, color)
	return nil
}

// CountByFaction tallies live cells per playable faction
func (g *Grid) CountByFaction() (s Scores) {
	cur := g.Current()
	for i, alive := range cur.alive {
		if !alive {
			continue
		}
		switch cur.color[i] {
		case Red:
			s.Red++
		case Blue:
			s.Blue++
		}
	}
	return
}

// Population returns the number of live cells, owned or not
func (g *Grid) Population() (count int) {
	for _, alive := range g.Current().alive {
		if alive {
			count++
		}
	}
	return
}

// Hash returns an MD5 digest of the active generation's liveness and colour
func (g *Grid) Hash() string {
	h := md5.New()
	cur := g.Current()
	buf := make([]byte, len(cur.alive))
	for i, alive := range cur.alive {
		if alive {
			buf[i] = 1 + byte(cur.color[i])
		}
	}
	h.Write(buf)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// UpdateHistory records the current generation and keeps the last few
func (g *Grid) UpdateHistory() {
	g.history = append(g.history, g.Hash())
	if len(g.history) > historyDepth {
		g.history = g.history[1:]
	}
}

// IsStagnant reports whether the current generation repeats one of the
// previous three recorded ones (still life or a period 2 or 3 cycle).
func (g *Grid) IsStagnant() bool {
	if len(g.history) < 3 {
		return false
	}

	current := g.Hash()
	for back := 1; back <= 3; back++ {
		if g.history[len(g.history)-back] == current {
			return true
		}
	}
	return false
}
