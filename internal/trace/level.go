package trace

import (
	"fmt"
	"strings"
)

// Level selects which scopes are recorded.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError records nothing while running; the ring is still dumped
	// when a command panics.
	LevelError
	LevelPhase  // ScopeDriver and ScopePass
	LevelDetail // up to ScopeCluster
	LevelDebug  // everything
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by Level.String, in any case.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are recorded at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeCluster
	case LevelDebug:
		return true
	default:
		return false
	}
}
