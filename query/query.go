// Package query defines the boolean term queries compiled by the prefix tree strategy and
// executed by a term index.
package query

import (
	"slices"
	"strconv"
	"strings"
)

// Query is a node of the query tree. Queries are immutable.
type Query interface {
	String() string
	isQuery()
}

// Term matches documents indexed with exactly this term.
type Term struct {
	Term string
}

// Terms matches documents indexed with any of the terms.
type Terms struct {
	Terms []string
}

// Prefix matches documents indexed with any term starting with Prefix.
type Prefix struct {
	Prefix string
}

// And matches documents matching every clause.
type And struct {
	Clauses []Query
}

// Or matches documents matching at least one clause.
type Or struct {
	Clauses []Query
}

// AndNot matches documents matching Must and not matching Not.
type AndNot struct {
	Must Query
	Not  Query
}

// MatchAll matches every document.
type MatchAll struct{}

// MatchNone matches no document.
type MatchNone struct{}

func (Term) isQuery()      {}
func (Terms) isQuery()     {}
func (Prefix) isQuery()    {}
func (And) isQuery()       {}
func (Or) isQuery()        {}
func (AndNot) isQuery()    {}
func (MatchAll) isQuery()  {}
func (MatchNone) isQuery() {}

// NewTerms returns a Terms query over the sorted, de-duplicated terms. A single term
// collapses to Term and no terms to MatchNone.
func NewTerms(terms ...string) Query {
	ts := slices.Clone(terms)
	slices.Sort(ts)
	ts = slices.Compact(ts)
	switch len(ts) {
	case 0:
		return MatchNone{}
	case 1:
		return Term{Term: ts[0]}
	default:
		return Terms{Terms: ts}
	}
}

// NewOr builds a disjunction, dropping MatchNone clauses.
func NewOr(clauses ...Query) Query {
	out := make([]Query, 0, len(clauses))
	for _, c := range clauses {
		switch c.(type) {
		case MatchNone:
			continue
		case MatchAll:
			return MatchAll{}
		}
		out = append(out, c)
	}
	switch len(out) {
	case 0:
		return MatchNone{}
	case 1:
		return out[0]
	default:
		return Or{Clauses: out}
	}
}

// NewAnd builds a conjunction, dropping MatchAll clauses. An empty conjunction matches
// everything.
func NewAnd(clauses ...Query) Query {
	out := make([]Query, 0, len(clauses))
	for _, c := range clauses {
		switch c.(type) {
		case MatchAll:
			continue
		case MatchNone:
			return MatchNone{}
		}
		out = append(out, c)
	}
	switch len(out) {
	case 0:
		return MatchAll{}
	case 1:
		return out[0]
	default:
		return And{Clauses: out}
	}
}

// NewAndNot builds a difference.
func NewAndNot(must, not Query) Query {
	switch {
	case isNone(must):
		return MatchNone{}
	case isNone(not):
		return must
	case isAll(not):
		return MatchNone{}
	default:
		return AndNot{Must: must, Not: not}
	}
}

func isNone(q Query) bool {
	_, ok := q.(MatchNone)
	return ok
}

func isAll(q Query) bool {
	_, ok := q.(MatchAll)
	return ok
}

func (q Term) String() string    { return "term(" + strconv.Quote(q.Term) + ")" }
func (q Prefix) String() string  { return "prefix(" + strconv.Quote(q.Prefix) + ")" }
func (MatchAll) String() string  { return "all()" }
func (MatchNone) String() string { return "none()" }

func (q Terms) String() string {
	quoted := make([]string, len(q.Terms))
	for i, t := range q.Terms {
		quoted[i] = strconv.Quote(t)
	}
	return "terms(" + strings.Join(quoted, ", ") + ")"
}

func (q And) String() string { return join("and", q.Clauses) }
func (q Or) String() string  { return join("or", q.Clauses) }

func (q AndNot) String() string {
	return "andnot(" + q.Must.String() + ", " + q.Not.String() + ")"
}

func join(op string, clauses []Query) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return op + "(" + strings.Join(parts, ", ") + ")"
}
