package pattern

import (
	"github.com/pkg/errors"

	"github.com/sheikhrachel/faction-gol/model"
)

// Placement reports the outcome of a successful Place
type Placement struct {
	Pattern string
	Origin  model.Coord
	Faction model.Faction
	Written int // cells set alive
	Clipped int // offsets that fell outside the grid
}

// Placer stamps patterns from a table onto grids
type Placer struct {
	table *Table
}

// NewPlacer creates a placer over the given table
func NewPlacer(table *Table) *Placer {
	return &Placer{table: table}
}

// Table returns the pattern table used by the placer
func (p *Placer) Table() *Table { return p.table }

// Place stamps the named pattern onto the active generation of g with its
// zero offset at origin. Covered cells become alive and owned by faction
// whatever they held before; offsets outside the grid are skipped. Nothing is
// written when an error is returned.
func (p *Placer) Place(g *model.Grid, name string, origin model.Coord, faction model.Faction) (Placement, error) {
	if !faction.Playable() {
		return Placement{}, errors.Wrapf(ErrInvalidFaction, "[Placer.Place] %s", faction)
	}
	pat, ok := p.table.Get(name)
	if !ok {
		return Placement{}, errors.Wrapf(ErrUnknownPattern, "[Placer.Place] %q", name)
	}
	if g.Dimensions() != p.table.Dimensions() {
		return Placement{}, errors.Wrapf(ErrDimensionMismatch, "[Placer.Place] %dD pattern, %dD grid",
			p.table.Dimensions(), g.Dimensions())
	}

	res := Placement{Pattern: name, Origin: origin, Faction: faction}
	cur := g.Current()
	for _, d := range pat.Offsets {
		idx, err := g.Index(origin.Add(d))
		if err != nil {
			res.Clipped++
			continue
		}
		cur.Put(idx, true, faction)
		res.Written++
	}
	return res, nil
}
