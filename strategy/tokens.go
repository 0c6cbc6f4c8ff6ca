package strategy

import (
	"github.com/hupe1980/geoprefix/shape"
	"github.com/hupe1980/geoprefix/tree"
)

// Token is an indexed cell token.
type Token struct {
	Value string `json:"token"`
	// Leaf marks cells fully covered by the shape.
	Leaf bool `json:"leaf"`
	// Terminal marks cells emitted by decomposition, as opposed to their ancestors.
	Terminal bool `json:"terminal"`
}

// TokenSet is the indexed form of a shape.
type TokenSet struct {
	Level  int     `json:"level"`
	Tokens []Token `json:"tokens"`
}

// Values returns the token strings.
func (ts TokenSet) Values() []string {
	out := make([]string, len(ts.Tokens))
	for i, t := range ts.Tokens {
		out[i] = t.Value
	}
	return out
}

// Leaves returns the tokens of fully covered cells.
func (ts TokenSet) Leaves() []string {
	var out []string
	for _, t := range ts.Tokens {
		if t.Leaf {
			out = append(out, t.Value)
		}
	}
	return out
}

// Tokens returns the token set of sh: every cell of its covering plus all ancestors, each
// once, ancestors before descendants.
func (s *Strategy) Tokens(sh shape.Shape, opts ...CallOption) (TokenSet, error) {
	cov, err := s.decompose(sh, opts)
	if err != nil {
		return TokenSet{}, err
	}
	return tokenSet(cov), nil
}

func tokenSet(cov *tree.Covering) TokenSet {
	ts := TokenSet{Level: cov.Level, Tokens: make([]Token, 0, len(cov.Cells)*2)}
	seen := make(map[string]struct{}, len(cov.Cells)*2)
	for _, c := range cov.Cells {
		for _, a := range c.Ancestors() {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			ts.Tokens = append(ts.Tokens, Token{Value: a})
		}
		seen[c.Token] = struct{}{}
		ts.Tokens = append(ts.Tokens, Token{Value: c.Token, Leaf: c.Leaf, Terminal: true})
	}
	return ts
}

// Terms returns the index terms for sh, starting with the presence term.
func (s *Strategy) Terms(sh shape.Shape, opts ...CallOption) ([]string, error) {
	ts, err := s.Tokens(sh, opts...)
	if err != nil {
		return nil, err
	}
	return s.TermsOf(ts), nil
}

// TermsOf encodes a token set as index terms.
func (s *Strategy) TermsOf(ts TokenSet) []string {
	out := make([]string, 0, len(ts.Tokens)+len(ts.Tokens)/2+1)
	out = append(out, s.PresenceTerm())
	for _, t := range ts.Tokens {
		out = append(out, s.CellTerm(t.Value))
		switch {
		case t.Leaf:
			out = append(out, s.leafTerm(t.Value))
		case t.Terminal:
			out = append(out, s.edgeTerm(t.Value))
		}
	}
	return out
}
