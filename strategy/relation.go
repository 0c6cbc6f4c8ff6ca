package strategy

import (
	"fmt"
	"strings"
)

// Relation is a spatial predicate between a query shape and indexed shapes.
type Relation uint8

const (
	// Intersects matches indexed shapes sharing a point with the query.
	Intersects Relation = iota + 1
	// Disjoint matches indexed shapes sharing no point with the query.
	Disjoint
	// Contains matches indexed shapes lying inside the query.
	Contains
	// Within matches indexed shapes covering the query.
	Within
)

// Relations lists the supported relations.
var Relations = []Relation{Intersects, Disjoint, Contains, Within}

func (r Relation) String() string {
	switch r {
	case Intersects:
		return "intersects"
	case Disjoint:
		return "disjoint"
	case Contains:
		return "contains"
	case Within:
		return "within"
	default:
		return fmt.Sprintf("relation(%d)", uint8(r))
	}
}

// Valid reports whether r is a supported relation.
func (r Relation) Valid() bool {
	return r >= Intersects && r <= Within
}

// ParseRelation parses a relation name.
func ParseRelation(s string) (Relation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, r := range Relations {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedRelation, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Relation) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRelation, uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Relation) UnmarshalText(text []byte) error {
	v, err := ParseRelation(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
