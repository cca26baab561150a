package session

import (
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/faction-gol/engine"
	"github.com/sheikhrachel/faction-gol/model"
	"github.com/sheikhrachel/faction-gol/pattern"
	"github.com/sheikhrachel/faction-gol/utils"
)

var (
	// ErrNoFaction is returned by Place before a faction is chosen
	ErrNoFaction = errors.New("no faction chosen")

	// ErrNoPattern is returned by Place before a pattern is selected
	ErrNoPattern = errors.New("no pattern selected")

	// ErrCoolingDown is returned by Place while the previous placement's cooldown runs
	ErrCoolingDown = errors.New("placement is cooling down")
)

// Report summarises the generation produced by a tick
type Report struct {
	Generation int
	Scores     model.Scores
	Population int
	Stagnant   bool
	Cooldown   int // ticks until the next placement is allowed
}

// Session owns one grid with the engine and placer that act on it, plus the
// participant state that gates placements. Its methods are not safe for
// concurrent use; Run serialises access for concurrent callers.
type Session struct {
	cfg    utils.Config
	grid   *model.Grid
	engine *engine.Engine
	placer *pattern.Placer
	pool   *model.GridPool
	stats  *utils.Stats

	faction    model.Faction
	selected   string
	cooldown   int
	generation int
	lastTick   time.Time

	events  chan func(*Session)
	stopped chan struct{}
}

// New builds a session from a validated config
func New(cfg utils.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "[session.New]")
	}

	grid, err := model.NewGrid(cfg.Dimensions, cfg.Size)
	if err != nil {
		return nil, errors.Wrap(err, "[session.New]")
	}
	if cfg.RandomDensity > 0 {
		grid.Randomize(cfg.Seed, cfg.RandomDensity)
	}

	rule, err := cfg.ParsedRule()
	if err != nil {
		return nil, errors.Wrap(err, "[session.New]")
	}
	var opts []engine.Option
	if cfg.UseParallel {
		opts = append(opts, engine.WithWorkers(cfg.Workers))
	}
	if cfg.UseBoundedGrid {
		opts = append(opts, engine.WithBounded())
	}
	eng, err := engine.New(cfg.Dimensions, rule, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "[session.New]")
	}

	table := pattern.Defaults(cfg.Dimensions)
	for name, tuples := range cfg.Patterns {
		if err = table.AddInts(name, tuples); err != nil {
			return nil, errors.Wrap(err, "[session.New]")
		}
	}

	return &Session{
		cfg:      cfg,
		grid:     grid,
		engine:   eng,
		placer:   pattern.NewPlacer(table),
		pool:     model.NewGridPool(),
		stats:    utils.NewStats(),
		lastTick: time.Now(),
		events:   make(chan func(*Session)),
		stopped:  make(chan struct{}),
	}, nil
}

func (s *Session) Config() utils.Config { return s.cfg }
func (s *Session) Grid() *model.Grid { return s.grid }
func (s *Session) Engine() *engine.Engine { return s.engine }
func (s *Session) Placer() *pattern.Placer { return s.placer }
func (s *Session) Stats() *utils.Stats { return s.stats }
func (s *Session) Generation() int { return s.generation }
func (s *Session) Faction() model.Faction { return s.faction }
func (s *Session) Pattern() string { return s.selected }
func (s *Session) Cooldown() int { return s.cooldown }
func (s *Session) Scores() model.Scores { return s.grid.CountByFaction() }

// ChooseFaction sets the participant's faction
func (s *Session) ChooseFaction(f model.Faction) error {
	if !f.Playable() {
		return errors.Wrapf(pattern.ErrInvalidFaction, "[Session.ChooseFaction] %s", f)
	}
	s.faction = f
	return nil
}

// SelectPattern sets the pattern used by Place
func (s *Session) SelectPattern(name string) error {
	if _, ok := s.placer.Table().Get(name); !ok {
		return errors.Wrapf(pattern.ErrUnknownPattern, "[Session.SelectPattern] %q", name)
	}
	s.selected = name
	return nil
}

// Place stamps the selected pattern for the chosen faction at origin and arms
// the cooldown. It must not be called while a Tick is in flight.
func (s *Session) Place(origin model.Coord) (pattern.Placement, error) {
	switch {
	case s.faction == model.Neutral:
		return pattern.Placement{}, errors.Wrap(ErrNoFaction, "[Session.Place]")
	case s.selected == "":
		return pattern.Placement{}, errors.Wrap(ErrNoPattern, "[Session.Place]")
	case s.cooldown > 0:
		return pattern.Placement{}, errors.Wrapf(ErrCoolingDown, "[Session.Place] %d ticks left", s.cooldown)
	}

	res, err := s.placer.Place(s.grid, s.selected, origin, s.faction)
	if err != nil {
		return res, errors.Wrap(err, "[Session.Place]")
	}
	s.cooldown = s.cfg.CooldownTicks
	s.stats.Placements++
	return res, nil
}

// Tick advances the grid one generation and updates session bookkeeping
func (s *Session) Tick() (Report, error) {
	start := time.Now()
	if err := s.engine.Step(s.grid); err != nil {
		return Report{}, errors.Wrap(err, "[Session.Tick]")
	}
	s.generation++
	if s.cooldown > 0 {
		s.cooldown--
	}

	// Compare against earlier generations before recording this one.
	stagnant := s.grid.IsStagnant()
	s.grid.UpdateHistory()

	var (
		scores     = s.grid.CountByFaction()
		population = s.grid.Population()
	)
	s.stats.Update(s.generation, population, scores, start.Sub(s.lastTick))
	s.lastTick = start

	return Report{
		Generation: s.generation,
		Scores:     scores,
		Population: population,
		Stagnant:   stagnant,
		Cooldown:   s.cooldown,
	}, nil
}

// Snapshot returns a pooled copy of the current generation. Pass it to
// Release when done.
func (s *Session) Snapshot() *model.Grid {
	return s.pool.Snapshot(s.grid)
}

// Release returns a snapshot to the pool
func (s *Session) Release(g *model.Grid) {
	s.pool.Put(g)
}
