package sqlast

import (
	"fmt"
	"strings"
)

// ParseJoinClause parses a single SMQ join element, e.g.
// "JOIN orders ON customers.customer_id = orders.customer_id", into a
// *Join fragment whose Left/Right are bare *Table references named after
// the semantic model they refer to (not yet resolved to a physical
// table — that happens later, in the composer's FROM-rewrite pass). The
// right-hand model is the one named after JOIN; the left-hand model is
// inferred from whichever table qualifier in the ON predicate is not
// the right-hand model. Only one join element is accepted per
// spec.md's single-join-clause constraint.
func ParseJoinClause(sql string) (*Join, error) {
	sql = strings.TrimSpace(sql)
	p := NewParser(sql)

	kind := JoinInner
	switch p.token.Type {
	case TokenLeft:
		kind = JoinLeft
		p.nextToken()
		p.match(TokenOuter)
	case TokenRight:
		kind = JoinRight
		p.nextToken()
		p.match(TokenOuter)
	case TokenFull:
		kind = JoinFull
		p.nextToken()
		p.match(TokenOuter)
	case TokenInner:
		p.nextToken()
	}
	if !p.expect(TokenJoin) {
		return nil, fmt.Errorf("join clause must start with JOIN: %q", sql)
	}
	if !p.check(TokenIdent) {
		return nil, fmt.Errorf("expected table name after JOIN")
	}
	rightModel := p.token.Literal
	p.nextToken()

	if !p.expect(TokenOn) {
		return nil, fmt.Errorf("join clause requires ON: %q", sql)
	}

	on := p.parseAnd()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	if p.token.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected trailing token %q in join clause", p.token.Literal)
	}

	leftModel := ""
	for _, pair := range ColumnPairs(on) {
		for _, c := range pair {
			if c.Table != "" && c.Table != rightModel {
				leftModel = c.Table
			}
		}
	}
	if leftModel == "" {
		return nil, fmt.Errorf("could not infer left-hand model from join ON clause: %q", sql)
	}

	// All join-planner-synthesized joins are LEFT JOIN; a user-supplied
	// join keeps whatever kind was written (default INNER).
	return &Join{
		Left:  &Table{Name: leftModel},
		Right: &Table{Name: rightModel},
		On:    on,
		Kind:  kind,
	}, nil
}

// ColumnPairs walks a join ON expression and returns every pair of
// columns compared by an '=' BinaryOp, which is how composite join keys
// are represented (a.k1 = b.k1 AND a.k2 = b.k2).
func ColumnPairs(on Expr) [][2]*Column {
	var pairs [][2]*Column
	Walk(on, func(n Node) bool {
		if bop, ok := n.(*BinaryOp); ok && bop.Op == "=" {
			lc, lok := bop.LHS.(*Column)
			rc, rok := bop.RHS.(*Column)
			if lok && rok {
				pairs = append(pairs, [2]*Column{lc, rc})
			}
		}
		return true
	})
	return pairs
}
