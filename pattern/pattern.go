package pattern

import (
	"slices"
	"sort"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/faction-gol/model"
)

var (
	// ErrUnknownPattern is returned when a name is not in the table
	ErrUnknownPattern = errors.New("unknown pattern")

	// ErrInvalidFaction is returned when placing for Neutral or an undeclared faction
	ErrInvalidFaction = errors.New("invalid faction")

	// ErrDimensionMismatch is returned when pattern and grid arity differ
	ErrDimensionMismatch = errors.New("pattern dimensionality does not match grid")
)

// Pattern is a named set of offsets relative to a placement origin
type Pattern struct {
	Name    string
	Offsets []model.Coord
}

// Table maps pattern names to patterns of a single dimensionality
type Table struct {
	dims     int
	patterns map[string]Pattern
}

// NewTable creates an empty table for patterns of the given arity
func NewTable(dims int) *Table {
	return &Table{dims: dims, patterns: make(map[string]Pattern)}
}

// Dimensions returns the arity every pattern in the table has
func (t *Table) Dimensions() int { return t.dims }

// Add registers a pattern, replacing any pattern of the same name. Offsets
// must leave every axis at or above the table's arity at 0.
func (t *Table) Add(name string, offsets ...model.Coord) error {
	if name == "" {
		return errors.New("[Table.Add] empty pattern name")
	}
	if len(offsets) == 0 {
		return errors.Errorf("[Table.Add] pattern %q has no offsets", name)
	}
	for _, d := range offsets {
		for axis := t.dims; axis < model.MaxDims; axis++ {
			if d[axis] != 0 {
				return errors.Wrapf(ErrDimensionMismatch, "[Table.Add] pattern %q offset %v in %dD table", name, d, t.dims)
			}
		}
	}
	t.patterns[name] = Pattern{Name: name, Offsets: slices.Clone(offsets)}
	return nil
}

// AddInts registers a pattern given as integer tuples, e.g. from JSON config.
// Each tuple must have exactly the table's arity.
func (t *Table) AddInts(name string, tuples [][]int) error {
	offsets := make([]model.Coord, 0, len(tuples))
	for _, tuple := range tuples {
		if len(tuple) != t.dims {
			return errors.Wrapf(ErrDimensionMismatch, "[Table.AddInts] pattern %q offset %v in %dD table", name, tuple, t.dims)
		}
		var d model.Coord
		copy(d[:], tuple)
		offsets = append(offsets, d)
	}
	return t.Add(name, offsets...)
}

// Get looks a pattern up by name
func (t *Table) Get(name string) (Pattern, bool) {
	p, ok := t.patterns[name]
	return p, ok
}

// Names returns the registered pattern names in sorted order
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.patterns))
	for name := range t.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns the built-in patterns for the given arity
func Defaults(dims int) *Table {
	t := NewTable(dims)
	// Built-in offsets are all valid for 2D and 3D tables.
	_ = t.Add("glider", model.C2(0, 1), model.C2(1, 0), model.C2(1, 1), model.C2(1, 2))
	_ = t.Add("oscillator", model.C2(0, 0), model.C2(0, 1), model.C2(1, 0), model.C2(1, 1))
	if dims == 3 {
		_ = t.Add("cube",
			model.C3(0, 0, 0), model.C3(1, 0, 0), model.C3(0, 1, 0), model.C3(1, 1, 0),
			model.C3(0, 0, 1), model.C3(1, 0, 1), model.C3(0, 1, 1), model.C3(1, 1, 1),
		)
	}
	return t
}
