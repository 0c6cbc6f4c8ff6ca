package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders(t *testing.T) {
	t.Run("Terms", func(t *testing.T) {
		assert.Equal(t, MatchNone{}, NewTerms())
		assert.Equal(t, Term{Term: "a"}, NewTerms("a", "a"))
		assert.Equal(t, Terms{Terms: []string{"a", "b"}}, NewTerms("b", "a", "b"))
	})

	t.Run("Or", func(t *testing.T) {
		assert.Equal(t, MatchNone{}, NewOr())
		assert.Equal(t, MatchNone{}, NewOr(MatchNone{}, MatchNone{}))
		assert.Equal(t, Prefix{Prefix: "p"}, NewOr(MatchNone{}, Prefix{Prefix: "p"}))
		assert.Equal(t, MatchAll{}, NewOr(Prefix{Prefix: "p"}, MatchAll{}))
		assert.Len(t, NewOr(Term{Term: "a"}, Prefix{Prefix: "p"}).(Or).Clauses, 2)
	})

	t.Run("And", func(t *testing.T) {
		assert.Equal(t, MatchAll{}, NewAnd())
		assert.Equal(t, MatchNone{}, NewAnd(Term{Term: "a"}, MatchNone{}))
		assert.Equal(t, Term{Term: "a"}, NewAnd(MatchAll{}, Term{Term: "a"}))
	})

	t.Run("AndNot", func(t *testing.T) {
		a := Term{Term: "a"}
		assert.Equal(t, a, NewAndNot(a, MatchNone{}))
		assert.Equal(t, MatchNone{}, NewAndNot(MatchNone{}, a))
		assert.Equal(t, MatchNone{}, NewAndNot(a, MatchAll{}))
		assert.Equal(t, AndNot{Must: a, Not: Prefix{Prefix: "b"}}, NewAndNot(a, Prefix{Prefix: "b"}))
	})
}

func TestString(t *testing.T) {
	q := NewAndNot(Term{Term: "shape"}, NewOr(Prefix{Prefix: "shape/7"}, NewTerms("shape/4+", "shape/4*")))
	assert.Equal(t, `andnot(term("shape"), or(prefix("shape/7"), terms("shape/4*", "shape/4+")))`, q.String())
}

func TestDescribe(t *testing.T) {
	q := NewAnd(
		NewOr(Prefix{Prefix: "a"}, NewTerms("b", "c")),
		Term{Term: "d"},
	)
	assert.Equal(t, Stats{Nodes: 5, Terms: 3, Prefixes: 1}, Describe(q))
}

func TestTree(t *testing.T) {
	q := NewAndNot(Term{Term: "shape"}, NewOr(Prefix{Prefix: "shape/7"}, MatchAll{}))
	data, err := json.Marshal(Tree(NewAndNot(Term{Term: "shape"}, NewOr(Prefix{Prefix: "shape/7"}, Term{Term: "x"}))))
	require.NoError(t, err)
	assert.JSONEq(t, `{"and_not":{"must":{"term":"shape"},"not":{"or":[{"prefix":"shape/7"},{"term":"x"}]}}}`, string(data))

	assert.Equal(t, map[string]any{"match_none": map[string]any{}}, Tree(q))
}
