package engine

import (
	"slices"
	"testing"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/faction-gol/model"
	"github.com/sheikhrachel/faction-gol/rules"
)

func mustGrid(t *testing.T, dims, size int) *model.Grid {
	t.Helper()
	g, err := model.NewGrid(dims, size)
	if err != nil {
		t.Fatalf("NewGrid(%d, %d): %v", dims, size, err)
	}
	return g
}

func mustEngine(t *testing.T, dims int, rule rules.Rule, opts ...Option) *Engine {
	t.Helper()
	e, err := New(dims, rule, opts...)
	if err != nil {
		t.Fatalf("New(%d, %s): %v", dims, rule, err)
	}
	return e
}

func set(t *testing.T, g *model.Grid, color model.Faction, cells ...model.Coord) {
	t.Helper()
	for _, c := range cells {
		if err := g.Set(c, true, color); err != nil {
			t.Fatalf("Set(%v): %v", c, err)
		}
	}
}

// expectCells checks every cell against the expected live cells and colours
func expectCells(t *testing.T, g *model.Grid, want map[model.Coord]model.Faction) {
	t.Helper()
	for idx := range g.Len() {
		c := g.Coord(idx)
		alive, _ := g.IsAlive(c)
		color, _ := g.ColorAt(c)
		wantColor, wantAlive := want[c]
		if alive != wantAlive {
			t.Fatalf("cell %v alive=%v, expected %v", c, alive, wantAlive)
		}
		if alive && color != wantColor {
			t.Fatalf("cell %v color=%s, expected %s", c, color, wantColor)
		}
	}
}

func checkDeadIsNeutral(t *testing.T, g *model.Grid) {
	t.Helper()
	cur := g.Current()
	for idx := range cur.Len() {
		alive, color := cur.At(idx)
		if !alive && color != model.Neutral {
			t.Fatalf("dead cell %v has color %s", g.Coord(idx), color)
		}
		if !color.Valid() {
			t.Fatalf("cell %v has undeclared color %d", g.Coord(idx), color)
		}
	}
}

func TestMooreOffsets(t *testing.T) {
	for dims, want := range map[int]int{2: 8, 3: 26} {
		offsets := MooreOffsets(dims)
		if len(offsets) != want {
			t.Fatalf("%dD offsets = %d, want %d", dims, len(offsets), want)
		}
		for _, d := range offsets {
			if d == (model.Coord{}) {
				t.Fatalf("%dD offsets include the origin", dims)
			}
			for axis := dims; axis < model.MaxDims; axis++ {
				if d[axis] != 0 {
					t.Fatalf("%dD offset %v uses axis %d", dims, d, axis)
				}
			}
		}
	}
}

func TestNewRejectsBadRule(t *testing.T) {
	if _, err := New(2, rules.Rule{Survive: rules.Counts(2)}); !errors.Is(err, rules.ErrInvalidRule) {
		t.Fatalf("empty birth set: err = %v", err)
	}
	if _, err := New(2, rules.Life3D); err != nil {
		t.Fatalf("B5/S4-6 fits 8 neighbours: %v", err)
	}
	if _, err := New(2, rules.Rule{Birth: rules.Counts(20), Survive: rules.Counts(2)}); !errors.Is(err, rules.ErrInvalidRule) {
		t.Fatalf("count beyond 8 neighbours: err = %v", err)
	}
	if _, err := New(4, rules.Conway2D); err == nil {
		t.Fatal("4D engine accepted")
	}
}

func TestCountLiveNeighborsSingleCell(t *testing.T) {
	cases := []struct {
		dims   int
		rule   rules.Rule
		center model.Coord
	}{
		{2, rules.Conway2D, model.C2(2, 2)},
		{3, rules.Life3D, model.C3(2, 2, 2)},
	}
	for _, tc := range cases {
		g := mustGrid(t, tc.dims, 5)
		e := mustEngine(t, tc.dims, tc.rule)
		set(t, g, model.Red, tc.center)

		if n := e.CountLiveNeighbors(g, tc.center); n != 0 {
			t.Fatalf("%dD center counts %d neighbours, want 0", tc.dims, n)
		}
		ones := 0
		for idx := range g.Len() {
			c := g.Coord(idx)
			if c == tc.center {
				continue
			}
			want := 0
			if isNeighbor(c, tc.center, tc.dims) {
				want = 1
				ones++
			}
			if n := e.CountLiveNeighbors(g, c); n != want {
				t.Fatalf("%dD cell %v counts %d, want %d", tc.dims, c, n, want)
			}
		}
		if ones != e.Neighbors() {
			t.Fatalf("%dD: %d cells see the center, want %d", tc.dims, ones, e.Neighbors())
		}
	}
}

func isNeighbor(a, b model.Coord, dims int) bool {
	for axis := range dims {
		if d := a[axis] - b[axis]; d < -1 || d > 1 {
			return false
		}
	}
	return a != b
}

func TestNoWraparound(t *testing.T) {
	g := mustGrid(t, 2, 5)
	e := mustEngine(t, 2, rules.Conway2D)
	set(t, g, model.Blue, model.C2(0, 0))

	for _, c := range []model.Coord{model.C2(4, 4), model.C2(4, 0), model.C2(0, 4)} {
		if n := e.CountLiveNeighbors(g, c); n != 0 {
			t.Fatalf("cell %v sees %d neighbours across the edge", c, n)
		}
	}
	if n := e.CountLiveNeighbors(g, model.C2(1, 1)); n != 1 {
		t.Fatalf("corner neighbour count = %d, want 1", n)
	}
}

func TestBlockStillLife(t *testing.T) {
	g := mustGrid(t, 2, 6)
	e := mustEngine(t, 2, rules.Conway2D)
	block := []model.Coord{model.C2(1, 1), model.C2(2, 1), model.C2(1, 2), model.C2(2, 2)}
	set(t, g, model.Blue, block...)

	want := map[model.Coord]model.Faction{}
	for _, c := range block {
		want[c] = model.Blue
	}
	for range 3 {
		if err := e.Step(g); err != nil {
			t.Fatal(err)
		}
		expectCells(t, g, want)
	}
}

func TestBlinkerOscillation(t *testing.T) {
	g := mustGrid(t, 2, 5)
	e := mustEngine(t, 2, rules.Conway2D)
	set(t, g, model.Red, model.C2(2, 1), model.C2(2, 2), model.C2(2, 3))

	if err := e.Step(g); err != nil {
		t.Fatal(err)
	}
	expectCells(t, g, map[model.Coord]model.Faction{
		model.C2(1, 2): model.Red,
		model.C2(2, 2): model.Red,
		model.C2(3, 2): model.Red,
	})

	if err := e.Step(g); err != nil {
		t.Fatal(err)
	}
	expectCells(t, g, map[model.Coord]model.Faction{
		model.C2(2, 1): model.Red,
		model.C2(2, 2): model.Red,
		model.C2(2, 3): model.Red,
	})
}

func TestMajorityWinsBirth(t *testing.T) {
	g := mustGrid(t, 2, 5)
	e := mustEngine(t, 2, rules.Conway2D)
	set(t, g, model.Red, model.C2(1, 1), model.C2(3, 1))
	set(t, g, model.Blue, model.C2(2, 3))

	if c := e.MajorityColor(g, model.C2(2, 2)); c != model.Red {
		t.Fatalf("MajorityColor = %s, want red", c)
	}
	if err := e.Step(g); err != nil {
		t.Fatal(err)
	}
	if color, _ := g.ColorAt(model.C2(2, 2)); color != model.Red {
		t.Fatalf("born cell color = %s, want red", color)
	}
}

func TestTieIsNeutral(t *testing.T) {
	// B2 so that one red and one blue neighbour are enough for a birth.
	rule := rules.Rule{Birth: rules.Counts(2), Survive: rules.Counts(2, 3)}
	g := mustGrid(t, 2, 5)
	e := mustEngine(t, 2, rule)
	set(t, g, model.Red, model.C2(1, 2))
	set(t, g, model.Blue, model.C2(3, 2))

	if err := e.Step(g); err != nil {
		t.Fatal(err)
	}
	expectCells(t, g, map[model.Coord]model.Faction{
		model.C2(2, 1): model.Neutral,
		model.C2(2, 2): model.Neutral,
		model.C2(2, 3): model.Neutral,
	})
	checkDeadIsNeutral(t, g)
}

func TestIsolated3DCellDies(t *testing.T) {
	g := mustGrid(t, 3, 5)
	e := mustEngine(t, 3, rules.Life3D)
	set(t, g, model.Red, model.C3(2, 2, 2))
	// Three neighbours: still below the survive set.
	set(t, g, model.Red, model.C3(1, 2, 2), model.C3(3, 2, 2), model.C3(2, 1, 2))

	if n := e.CountLiveNeighbors(g, model.C3(2, 2, 2)); n != 3 {
		t.Fatalf("neighbour count = %d, want 3", n)
	}
	if err := e.Step(g); err != nil {
		t.Fatal(err)
	}
	if alive, _ := g.IsAlive(model.C3(2, 2, 2)); alive {
		t.Fatal("cell with 3 of 26 neighbours survived")
	}
	checkDeadIsNeutral(t, g)
}

func Test3DBirthTakesMajority(t *testing.T) {
	g := mustGrid(t, 3, 5)
	e := mustEngine(t, 3, rules.Life3D)
	center := model.C3(2, 2, 2)
	set(t, g, model.Blue, model.C3(1, 2, 2), model.C3(3, 2, 2), model.C3(2, 1, 2))
	set(t, g, model.Red, model.C3(2, 3, 2), model.C3(2, 2, 1))

	if n := e.CountLiveNeighbors(g, center); n != 5 {
		t.Fatalf("neighbour count = %d, want 5", n)
	}
	if err := e.Step(g); err != nil {
		t.Fatal(err)
	}
	alive, _ := g.IsAlive(center)
	color, _ := g.ColorAt(center)
	if !alive || color != model.Blue {
		t.Fatalf("center = (%v, %s), want (true, blue)", alive, color)
	}
	checkDeadIsNeutral(t, g)
}

func TestStepDimensionMismatch(t *testing.T) {
	g := mustGrid(t, 3, 4)
	e := mustEngine(t, 2, rules.Conway2D)
	if err := e.Step(g); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestStepDeterministic(t *testing.T) {
	for _, dims := range []int{2, 3} {
		a := mustGrid(t, dims, 12)
		a.Randomize(42, 0.3)
		b := mustGrid(t, dims, 12)
		b.CopyFrom(a)

		e := mustEngine(t, dims, rules.Default(dims))
		for range 5 {
			if err := e.Step(a); err != nil {
				t.Fatal(err)
			}
			if err := e.Step(b); err != nil {
				t.Fatal(err)
			}
			if a.Hash() != b.Hash() {
				t.Fatalf("%dD copies diverged", dims)
			}
		}
	}
}

func TestTraversalModesAgree(t *testing.T) {
	for _, dims := range []int{2, 3} {
		size := 24
		if dims == 3 {
			size = 10
		}
		seq := mustGrid(t, dims, size)
		seq.Randomize(99, 0.35)
		par := mustGrid(t, dims, size)
		par.CopyFrom(seq)
		bnd := mustGrid(t, dims, size)
		bnd.CopyFrom(seq)

		rule := rules.Default(dims)
		engines := []*Engine{
			mustEngine(t, dims, rule),
			mustEngine(t, dims, rule, WithWorkers(4)),
			mustEngine(t, dims, rule, WithBounded()),
		}
		grids := []*model.Grid{seq, par, bnd}

		for gen := range 8 {
			for i, e := range engines {
				if err := e.Step(grids[i]); err != nil {
					t.Fatal(err)
				}
				checkDeadIsNeutral(t, grids[i])
			}
			for i := 1; i < len(grids); i++ {
				if grids[i].Hash() != seq.Hash() {
					t.Fatalf("%dD generation %d: traversal %d differs from sequential", dims, gen+1, i)
				}
			}
		}
	}
}

func TestBoundedStepOnEmptyGrid(t *testing.T) {
	g := mustGrid(t, 2, 4)
	e := mustEngine(t, 2, rules.Conway2D, WithBounded())
	// Stale scratch contents must not leak into the next generation.
	g.Next().Put(0, true, model.Red)
	if err := e.Step(g); err != nil {
		t.Fatal(err)
	}
	if g.Population() != 0 {
		t.Fatalf("population = %d, want 0", g.Population())
	}
}

func TestStepSwapsInsteadOfAllocating(t *testing.T) {
	g := mustGrid(t, 2, 5)
	e := mustEngine(t, 2, rules.Conway2D)
	before := []*model.Buffer{g.Current(), g.Next()}
	if err := e.Step(g); err != nil {
		t.Fatal(err)
	}
	after := []*model.Buffer{g.Next(), g.Current()}
	if !slices.Equal(before, after) {
		t.Fatal("step should exchange the two existing buffers")
	}
}
