package rules

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/faction-gol/model"
)

// MaxNeighbors is the largest Moore neighbourhood a rule can refer to (3D)
const MaxNeighbors = 26

// ErrInvalidRule is returned for unparseable or unusable rules
var ErrInvalidRule = errors.New("invalid rule")

// CountSet is a set of neighbour counts in [0, MaxNeighbors]
type CountSet uint32

// Counts builds a set from individual counts
func Counts(ns ...int) CountSet {
	var s CountSet
	for _, n := range ns {
		s = s.With(n)
	}
	return s
}

// Range builds the set [lo, hi]
func Range(lo, hi int) CountSet {
	var s CountSet
	for n := lo; n <= hi; n++ {
		s = s.With(n)
	}
	return s
}

// With returns s plus n; counts outside [0, MaxNeighbors] are ignored
func (s CountSet) With(n int) CountSet {
	if n < 0 || n > MaxNeighbors {
		return s
	}
	return s | 1<<uint(n)
}

// Has reports whether n is in the set
func (s CountSet) Has(n int) bool {
	return n >= 0 && n <= MaxNeighbors && s&(1<<uint(n)) != 0
}

// Empty reports whether the set has no members
func (s CountSet) Empty() bool { return s == 0 }

// Max returns the largest member, -1 when empty
func (s CountSet) Max() int {
	return bits.Len32(uint32(s)) - 1
}

// String renders members in ascending order, collapsing runs into lo-hi
func (s CountSet) String() string {
	var parts []string
	for n := 0; n <= MaxNeighbors; n++ {
		if !s.Has(n) {
			continue
		}
		hi := n
		for s.Has(hi + 1) {
			hi++
		}
		if hi > n+1 {
			parts = append(parts, strconv.Itoa(n)+"-"+strconv.Itoa(hi))
		} else {
			parts = append(parts, strconv.Itoa(n))
			if hi == n+1 {
				parts = append(parts, strconv.Itoa(hi))
			}
		}
		n = hi
	}
	// A lone multi-digit count would read back as separate digits.
	if len(parts) == 1 && s.Max() >= 10 && !strings.Contains(parts[0], "-") {
		return parts[0] + "-" + parts[0]
	}
	return strings.Join(parts, ",")
}

/*
Rule is a survival/birth rule.

A live cell survives iff its live neighbour count is in Survive; a dead cell is
born iff its count is in Birth.
*/
type Rule struct {
	Birth   CountSet
	Survive CountSet
}

var (
	// Conway2D is the standard B3/S23 rule for the 8-cell neighbourhood
	Conway2D = Rule{Birth: Counts(3), Survive: Counts(2, 3)}

	// Life3D is B5/S4-6 for the 26-cell neighbourhood
	Life3D = Rule{Birth: Counts(5), Survive: Range(4, 6)}
)

// Default returns the rule used for the given dimensionality
func Default(dims int) Rule {
	if dims == 3 {
		return Life3D
	}
	return Conway2D
}

// Next returns the next liveness of a cell with n live neighbours
func (r Rule) Next(alive bool, n int) bool {
	if alive {
		return r.Survive.Has(n)
	}
	return r.Birth.Has(n)
}

// Validate checks that both sets are non-empty and fit a neighbourhood of
// the given size.
func (r Rule) Validate(neighbors int) error {
	if r.Birth.Empty() {
		return errors.Wrap(ErrInvalidRule, "empty birth set")
	}
	if r.Survive.Empty() {
		return errors.Wrap(ErrInvalidRule, "empty survive set")
	}
	if m := max(r.Birth.Max(), r.Survive.Max()); m > neighbors {
		return errors.Wrapf(ErrInvalidRule, "count %d exceeds %d neighbours", m, neighbors)
	}
	return nil
}

// String renders the rule in B/S notation, e.g. "B3/S2,3" or "B5/S4-6"
func (r Rule) String() string {
	return "B" + r.Birth.String() + "/S" + r.Survive.String()
}

/*
ParseRule parses B/S notation.

Each list is either classic single-digit notation ("B3/S23") or, when it
contains a comma or dash, a comma separated list of counts and lo-hi ranges
("B5/S4-6", "B5,6/S4,10-12"). The halves may appear in either order and are
case-insensitive.
*/
func ParseRule(s string) (Rule, error) {
	var (
		r            Rule
		seenB, seenS bool
	)
	halves := strings.Split(strings.TrimSpace(s), "/")
	if len(halves) != 2 {
		return Rule{}, errors.Wrapf(ErrInvalidRule, "[ParseRule] %q: want B.../S...", s)
	}

	for _, half := range halves {
		half = strings.TrimSpace(half)
		if half == "" {
			return Rule{}, errors.Wrapf(ErrInvalidRule, "[ParseRule] %q: empty half", s)
		}
		set, err := parseCounts(half[1:])
		if err != nil {
			return Rule{}, errors.Wrapf(err, "[ParseRule] %q", s)
		}
		switch half[0] {
		case 'B', 'b':
			if seenB {
				return Rule{}, errors.Wrapf(ErrInvalidRule, "[ParseRule] %q: duplicate B", s)
			}
			seenB, r.Birth = true, set
		case 'S', 's':
			if seenS {
				return Rule{}, errors.Wrapf(ErrInvalidRule, "[ParseRule] %q: duplicate S", s)
			}
			seenS, r.Survive = true, set
		default:
			return Rule{}, errors.Wrapf(ErrInvalidRule, "[ParseRule] %q: unknown prefix %q", s, half[0])
		}
	}
	return r, nil
}

func parseCounts(list string) (CountSet, error) {
	var set CountSet
	if list == "" {
		return set, nil
	}

	if !strings.ContainsAny(list, ",-") {
		for _, ch := range list {
			if ch < '0' || ch > '9' {
				return 0, errors.Wrapf(ErrInvalidRule, "bad count %q", ch)
			}
			set = set.With(int(ch - '0'))
		}
		return set, nil
	}

	for _, item := range strings.Split(list, ",") {
		lo, hi, isRange := strings.Cut(strings.TrimSpace(item), "-")
		a, err := parseCount(lo)
		if err != nil {
			return 0, err
		}
		b := a
		if isRange {
			if b, err = parseCount(hi); err != nil {
				return 0, err
			}
			if b < a {
				return 0, errors.Wrapf(ErrInvalidRule, "descending range %q", item)
			}
		}
		set |= Range(a, b)
	}
	return set, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > MaxNeighbors {
		return 0, errors.Wrapf(ErrInvalidRule, "bad count %q", s)
	}
	return n, nil
}

// MajorityColor picks the owner of a live cell from its live red and blue
// neighbour counts; an exact tie leaves the cell Neutral.
func MajorityColor(red, blue int) model.Faction {
	return model.Scores{Red: red, Blue: blue}.Leader()
}
