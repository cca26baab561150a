package engine

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/faction-gol/model"
	"github.com/sheikhrachel/faction-gol/rules"
)

// ErrDimensionMismatch is returned when a grid's arity differs from the engine's
var ErrDimensionMismatch = errors.New("grid dimensionality does not match engine")

// Engine advances a grid one generation at a time. It is dimension-agnostic:
// the Moore offsets and the rule are fixed at construction.
type Engine struct {
	dims    int
	rule    rules.Rule
	offsets []model.Coord
	workers int
	bounded bool
}

// Option configures an Engine
type Option func(*Engine)

// WithWorkers evaluates bands of the grid concurrently. n <= 0 uses one
// worker per CPU; n == 1 is sequential.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		e.workers = n
	}
}

// WithBounded restricts evaluation to the live region plus a one cell margin.
// It is ignored for rules that can give birth with zero neighbours.
func WithBounded() Option {
	return func(e *Engine) { e.bounded = true }
}

// New builds an engine for grids of the given dimensionality
func New(dims int, rule rules.Rule, opts ...Option) (*Engine, error) {
	if dims < 2 || dims > model.MaxDims {
		return nil, errors.Errorf("[engine.New] dimensions must be 2 or 3, got %d", dims)
	}
	offsets := MooreOffsets(dims)
	if err := rule.Validate(len(offsets)); err != nil {
		return nil, errors.Wrapf(err, "[engine.New] rule %s", rule)
	}

	e := &Engine{dims: dims, rule: rule, offsets: offsets, workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// MooreOffsets lists every offset in {-1,0,1}^dims except the origin
func MooreOffsets(dims int) []model.Coord {
	var (
		total   = 1
		offsets []model.Coord
	)
	for range dims {
		total *= 3
	}
	for i := range total {
		var (
			d    model.Coord
			rest = i
			zero = true
		)
		for axis := range dims {
			d[axis] = rest%3 - 1
			rest /= 3
			if d[axis] != 0 {
				zero = false
			}
		}
		if !zero {
			offsets = append(offsets, d)
		}
	}
	return offsets
}

// Dimensions returns the arity of grids this engine steps
func (e *Engine) Dimensions() int { return e.dims }

// Rule returns the configured survival/birth rule
func (e *Engine) Rule() rules.Rule { return e.rule }

// Neighbors returns the Moore neighbourhood size (8 or 26)
func (e *Engine) Neighbors() int { return len(e.offsets) }

// tally counts live neighbours of c in the active generation and how many of
// them each faction owns. Out-of-bounds positions count as dead.
func (e *Engine) tally(g *model.Grid, cur *model.Buffer, c model.Coord) (n, red, blue int) {
	size := g.Size()
	for _, d := range e.offsets {
		nc := c.Add(d)
		inside := true
		for axis := range e.dims {
			if nc[axis] < 0 || nc[axis] >= size {
				inside = false
				break
			}
		}
		if !inside {
			continue
		}

		idx, _ := g.Index(nc)
		alive, color := cur.At(idx)
		if !alive {
			continue
		}
		n++
		switch color {
		case model.Red:
			red++
		case model.Blue:
			blue++
		}
	}
	return
}

// CountLiveNeighbors returns the number of live cells in c's Moore
// neighbourhood. c itself is never counted.
func (e *Engine) CountLiveNeighbors(g *model.Grid, c model.Coord) int {
	n, _, _ := e.tally(g, g.Current(), c)
	return n
}

// MajorityColor returns the faction owning more of c's live neighbours,
// Neutral on a tie.
func (e *Engine) MajorityColor(g *model.Grid, c model.Coord) model.Faction {
	_, red, blue := e.tally(g, g.Current(), c)
	return rules.MajorityColor(red, blue)
}

// evaluate writes the next state of the cell at idx into the scratch buffer
func (e *Engine) evaluate(g *model.Grid, cur, next *model.Buffer, idx int) {
	c := g.Coord(idx)
	n, red, blue := e.tally(g, cur, c)
	alive := e.rule.Next(cur.Alive(idx), n)
	color := model.Neutral
	if alive {
		color = rules.MajorityColor(red, blue)
	}
	next.Put(idx, alive, color)
}

// Step computes the next generation into the scratch buffer and swaps it in.
// Every cell reads only the previous generation, so traversal order and the
// worker count never change the result.
func (e *Engine) Step(g *model.Grid) error {
	if g.Dimensions() != e.dims {
		return errors.Wrapf(ErrDimensionMismatch, "[Engine.Step] engine %dD, grid %dD", e.dims, g.Dimensions())
	}

	var err error
	switch {
	case e.bounded && !e.rule.Birth.Has(0):
		e.stepBounded(g)
	case e.workers > 1:
		err = e.stepParallel(g)
	default:
		e.stepRange(g, 0, g.Len())
	}
	if err != nil {
		return errors.Wrap(err, "[Engine.Step]")
	}

	g.Swap()
	return nil
}

func (e *Engine) stepRange(g *model.Grid, lo, hi int) {
	cur, next := g.Current(), g.Next()
	for idx := lo; idx < hi; idx++ {
		e.evaluate(g, cur, next, idx)
	}
}

// stepParallel splits the outermost axis into bands, one per worker. Bands
// write disjoint scratch indices.
func (e *Engine) stepParallel(g *model.Grid) error {
	var (
		eg            errgroup.Group
		size          = g.Size()
		slab          = g.Len() / size
		numWorkers    = min(e.workers, size)
		layersPerBand = (size + numWorkers - 1) / numWorkers // Ceiling division
	)

	for i := range numWorkers {
		var (
			startLayer = i * layersPerBand
			endLayer   = min(startLayer+layersPerBand, size)
		)
		if startLayer >= size {
			break
		}

		eg.Go(func() error {
			e.stepRange(g, startLayer*slab, endLayer*slab)
			return nil
		})
	}

	return eg.Wait()
}

// stepBounded clears the scratch buffer and evaluates only the bounding box
// of live cells grown by one on every axis; nothing outside it can be born.
func (e *Engine) stepBounded(g *model.Grid) {
	cur, next := g.Current(), g.Next()
	for idx := range next.Len() {
		next.Put(idx, false, model.Neutral)
	}

	lo, hi, ok := activeBounds(g)
	if !ok {
		return
	}
	for axis := range e.dims {
		lo[axis] = max(0, lo[axis]-1)
		hi[axis] = min(g.Size()-1, hi[axis]+1)
	}

	c := lo
	for {
		idx, _ := g.Index(c)
		e.evaluate(g, cur, next, idx)

		axis := 0
		for ; axis < e.dims; axis++ {
			if c[axis] < hi[axis] {
				c[axis]++
				break
			}
			c[axis] = lo[axis]
		}
		if axis == e.dims {
			return
		}
	}
}

// activeBounds returns the per-axis bounding box of live cells
func activeBounds(g *model.Grid) (lo, hi model.Coord, ok bool) {
	cur := g.Current()
	for idx := range cur.Len() {
		if !cur.Alive(idx) {
			continue
		}
		c := g.Coord(idx)
		if !ok {
			lo, hi, ok = c, c, true
			continue
		}
		for axis := range g.Dimensions() {
			lo[axis] = min(lo[axis], c[axis])
			hi[axis] = max(hi[axis], c[axis])
		}
	}
	return
}
