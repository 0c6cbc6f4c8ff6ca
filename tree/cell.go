package tree

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r2"
)

// Cell is a node of a spatial prefix tree.
type Cell struct {
	// Token names the cell; the root has an empty token.
	Token string
	// Level is the depth of the cell, equal to len(Token).
	Level int
	// Bounds is the region covered by the cell.
	Bounds r2.Rect
	// Leaf is set by decomposition when the shape covers the whole cell.
	Leaf bool
}

// IsRoot reports whether c is the root cell.
func (c Cell) IsRoot() bool { return c.Level == 0 }

// IsAncestorOf reports whether c is a strict ancestor of o.
func (c Cell) IsAncestorOf(o Cell) bool {
	return len(c.Token) < len(o.Token) && strings.HasPrefix(o.Token, c.Token)
}

// Ancestors returns the tokens of the strict non-root ancestors of c, shallowest first.
func (c Cell) Ancestors() []string {
	return AncestorTokens(c.Token)
}

func (c Cell) String() string {
	if c.Leaf {
		return fmt.Sprintf("%s+ (L%d)", c.Token, c.Level)
	}
	return fmt.Sprintf("%s (L%d)", c.Token, c.Level)
}

// AncestorTokens returns the strict non-empty prefixes of token, shortest first.
func AncestorTokens(token string) []string {
	if len(token) < 2 {
		return nil
	}
	out := make([]string, 0, len(token)-1)
	for i := 1; i < len(token); i++ {
		out = append(out, token[:i])
	}
	return out
}
