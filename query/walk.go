package query

// Walk calls fn for q and every nested query, depth first. Returning false skips the
// children of the current node.
func Walk(q Query, fn func(Query) bool) {
	if !fn(q) {
		return
	}
	switch v := q.(type) {
	case And:
		for _, c := range v.Clauses {
			Walk(c, fn)
		}
	case Or:
		for _, c := range v.Clauses {
			Walk(c, fn)
		}
	case AndNot:
		Walk(v.Must, fn)
		Walk(v.Not, fn)
	}
}

// Stats summarizes the size of a query.
type Stats struct {
	Nodes    int `json:"nodes"`
	Terms    int `json:"terms"`
	Prefixes int `json:"prefixes"`
}

// Describe returns the size of q.
func Describe(q Query) Stats {
	var s Stats
	Walk(q, func(n Query) bool {
		s.Nodes++
		switch v := n.(type) {
		case Term:
			s.Terms++
		case Terms:
			s.Terms += len(v.Terms)
		case Prefix:
			s.Prefixes++
		}
		return true
	})
	return s
}

// Tree converts q into nested maps and slices for JSON rendering.
func Tree(q Query) map[string]any {
	switch v := q.(type) {
	case Term:
		return map[string]any{"term": v.Term}
	case Terms:
		return map[string]any{"terms": v.Terms}
	case Prefix:
		return map[string]any{"prefix": v.Prefix}
	case And:
		return map[string]any{"and": trees(v.Clauses)}
	case Or:
		return map[string]any{"or": trees(v.Clauses)}
	case AndNot:
		return map[string]any{"and_not": map[string]any{"must": Tree(v.Must), "not": Tree(v.Not)}}
	case MatchAll:
		return map[string]any{"match_all": map[string]any{}}
	default:
		return map[string]any{"match_none": map[string]any{}}
	}
}

func trees(qs []Query) []any {
	out := make([]any, len(qs))
	for i, q := range qs {
		out[i] = Tree(q)
	}
	return out
}
