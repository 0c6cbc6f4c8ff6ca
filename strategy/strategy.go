package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/geoprefix/shape"
	"github.com/hupe1980/geoprefix/tree"
)

const (
	// Separator joins the field name and a cell token.
	Separator = "/"
	// LeafMarker suffixes the term of a cell fully covered by the shape.
	LeafMarker = "+"
	// EdgeMarker suffixes the term of a cell where refinement stopped.
	EdgeMarker = "*"
)

var (
	// ErrInvalidField is returned for an empty field name or one containing the separator.
	ErrInvalidField = errors.New("strategy: invalid field")

	// ErrUnsupportedRelation is returned for relations the strategy cannot compile.
	ErrUnsupportedRelation = errors.New("strategy: unsupported relation")

	// ErrNilTree is returned when no prefix tree is configured.
	ErrNilTree = errors.New("strategy: nil prefix tree")
)

// Option configures a Strategy.
type Option func(*Strategy)

// WithDistErrPct sets the default distance error fraction.
func WithDistErrPct(pct float64) Option {
	return func(s *Strategy) {
		s.distErrPct = pct
	}
}

// Strategy indexes shapes as prefix tree terms and compiles relation queries over them.
// It is immutable and safe for concurrent use.
type Strategy struct {
	field      string
	tree       tree.SpatialPrefixTree
	distErrPct float64
}

// New creates a strategy for field backed by t.
func New(field string, t tree.SpatialPrefixTree, opts ...Option) (*Strategy, error) {
	s := &Strategy{
		field:      field,
		tree:       t,
		distErrPct: tree.DefaultDistErrPct,
	}
	for _, opt := range opts {
		opt(s)
	}

	if field == "" || strings.Contains(field, Separator) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	if t == nil {
		return nil, ErrNilTree
	}
	if err := tree.CheckDistErrPct(s.distErrPct); err != nil {
		return nil, err
	}
	return s, nil
}

// Field returns the indexed field name.
func (s *Strategy) Field() string { return s.field }

// Tree returns the prefix tree.
func (s *Strategy) Tree() tree.SpatialPrefixTree { return s.tree }

// DistErrPct returns the default distance error fraction.
func (s *Strategy) DistErrPct() float64 { return s.distErrPct }

// PresenceTerm returns the term every indexed document carries.
func (s *Strategy) PresenceTerm() string { return s.field }

// CellTerm returns the plain term of a cell token.
func (s *Strategy) CellTerm(token string) string { return s.field + Separator + token }

func (s *Strategy) leafTerm(token string) string { return s.CellTerm(token) + LeafMarker }
func (s *Strategy) edgeTerm(token string) string { return s.CellTerm(token) + EdgeMarker }

type callOptions struct {
	distErrPct float64
	level      int
}

// CallOption overrides strategy defaults for a single call.
type CallOption func(*callOptions)

// WithPrecision overrides the distance error fraction.
func WithPrecision(pct float64) CallOption {
	return func(o *callOptions) {
		o.distErrPct = pct
	}
}

// WithDetailLevel fixes the detail level, bypassing the precision computation.
func WithDetailLevel(level int) CallOption {
	return func(o *callOptions) {
		o.level = level
	}
}

// DetailLevel returns the level boundary cells of sh are refined to.
func (s *Strategy) DetailLevel(sh shape.Shape, opts ...CallOption) (int, error) {
	o := callOptions{distErrPct: s.distErrPct}
	for _, opt := range opts {
		opt(&o)
	}
	if o.level != 0 {
		if o.level < 1 || o.level > s.tree.MaxLevels() {
			return 0, fmt.Errorf("%w: %d not in [1, %d]", tree.ErrInvalidLevel, o.level, s.tree.MaxLevels())
		}
		return o.level, nil
	}
	return tree.LevelForPrecision(s.tree, sh, o.distErrPct)
}

func (s *Strategy) decompose(sh shape.Shape, opts []CallOption, dopts ...tree.DecomposeOption) (*tree.Covering, error) {
	if sh == nil {
		return nil, fmt.Errorf("%w: nil shape", shape.ErrUnsupportedGeometry)
	}
	level, err := s.DetailLevel(sh, opts...)
	if err != nil {
		return nil, err
	}
	return tree.Decompose(s.tree, sh, level, dopts...)
}
