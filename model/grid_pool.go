package model

import "sync"

// GridPool recycles snapshot grids so observers do not allocate every tick
type GridPool struct {
	pool sync.Pool
}

func NewGridPool() *GridPool {
	return &GridPool{
		pool: sync.Pool{
			New: func() interface{} {
				return &Grid{}
			},
		},
	}
}

// Snapshot retrieves a pooled grid holding a copy of src's active generation
func (p *GridPool) Snapshot(src *Grid) *Grid {
	g := p.pool.Get().(*Grid)
	g.CopyFrom(src)
	return g
}

// Put returns a grid to the pool
func (p *GridPool) Put(g *Grid) {
	if g == nil {
		return
	}
	g.history = nil
	p.pool.Put(g)
}
