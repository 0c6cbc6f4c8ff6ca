package strategy

import (
	"fmt"

	"github.com/hupe1980/geoprefix/query"
	"github.com/hupe1980/geoprefix/shape"
	"github.com/hupe1980/geoprefix/tree"
)

// Query compiles "query shape rel indexed shape" into a term query over the field.
func (s *Strategy) Query(rel Relation, sh shape.Shape, opts ...CallOption) (query.Query, error) {
	switch rel {
	case Intersects:
		cov, err := s.decompose(sh, opts)
		if err != nil {
			return nil, err
		}
		return s.intersects(cov.Cells), nil
	case Disjoint:
		cov, err := s.decompose(sh, opts)
		if err != nil {
			return nil, err
		}
		return query.NewAndNot(query.Term{Term: s.PresenceTerm()}, s.intersects(cov.Cells)), nil
	case Contains:
		cov, err := s.decompose(sh, opts, tree.CollectOutside())
		if err != nil {
			return nil, err
		}
		excluded := make([]tree.Cell, 0, len(cov.Outside)+len(cov.Cells))
		excluded = append(excluded, cov.Outside...)
		excluded = append(excluded, cov.Boundary()...)
		return query.NewAndNot(s.intersects(cov.Cells), s.intersects(excluded)), nil
	case Within:
		cov, err := s.decompose(sh, opts)
		if err != nil {
			return nil, err
		}
		return s.within(cov), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedRelation, rel)
	}
}

// intersects matches documents with a token inside one of cells, or a leaf or edge term
// on one of their ancestors.
func (s *Strategy) intersects(cells []tree.Cell) query.Query {
	if len(cells) == 0 {
		return query.MatchNone{}
	}
	clauses := make([]query.Query, 0, len(cells)+1)
	seen := make(map[string]struct{})
	var parents []string
	for _, c := range cells {
		clauses = append(clauses, query.Prefix{Prefix: s.CellTerm(c.Token)})
		for _, a := range c.Ancestors() {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			parents = append(parents, s.leafTerm(a), s.edgeTerm(a))
		}
	}
	return query.NewOr(append(clauses, query.NewTerms(parents...))...)
}

// within requires a document leaf on or above every leaf of the query and an
// intersection with every boundary cell.
func (s *Strategy) within(cov *tree.Covering) query.Query {
	if len(cov.Cells) == 0 {
		return query.MatchNone{}
	}
	clauses := make([]query.Query, 0, len(cov.Cells))
	for _, c := range cov.Cells {
		if !c.Leaf {
			clauses = append(clauses, s.intersects([]tree.Cell{c}))
			continue
		}
		terms := []string{s.leafTerm(c.Token)}
		for _, a := range c.Ancestors() {
			terms = append(terms, s.leafTerm(a))
		}
		clauses = append(clauses, query.NewTerms(terms...))
	}
	return query.NewAnd(clauses...)
}
