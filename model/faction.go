package model

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Faction tags the owner of a cell. The zero value is Neutral.
type Faction uint8

const (
	Neutral Faction = iota
	Red
	Blue
)

var factionNames = [...]string{
	Neutral: "neutral",
	Red:     "red",
	Blue:    "blue",
}

// String returns the lowercase faction name
func (f Faction) String() string {
	if int(f) < len(factionNames) {
		return factionNames[f]
	}
	return "faction(" + strconv.Itoa(int(f)) + ")"
}

// Valid reports whether f is one of the declared factions
func (f Faction) Valid() bool {
	return f <= Blue
}

// Playable reports whether f may own a placed cell
func (f Faction) Playable() bool {
	return f == Red || f == Blue
}

// Opponent returns the opposing playable faction, Neutral for Neutral
func (f Faction) Opponent() Faction {
	switch f {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		return Neutral
	}
}

// ParseFaction maps a name such as "red" or "Blue" to its Faction
func ParseFaction(s string) (Faction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range factionNames {
		if n == name {
			return Faction(i), nil
		}
	}
	return Neutral, errors.Errorf("[ParseFaction] unknown faction: %q", s)
}

// Scores holds the live-cell count owned by each playable faction
type Scores struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// Leader returns the faction with more cells, Neutral on a tie
func (s Scores) Leader() Faction {
	switch {
	case s.Red > s.Blue:
		return Red
	case s.Blue > s.Red:
		return Blue
	default:
		return Neutral
	}
}
