package sqlast

// Visitor is called once per node during a Walk. Returning false prunes
// the children of the current node from traversal.
type Visitor func(n Node) bool

// Walk performs a top-down traversal of n, calling visit on every node
// reachable from it (including n itself). Document order is preserved:
// a SELECT list is visited left to right, FROM before WHERE before
// GROUP BY before ORDER BY.
func Walk(n Node, visit Visitor) {
	if n == nil || isNilNode(n) {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range children(n) {
		Walk(child, visit)
	}
}

// FindAll returns every node reachable from n for which pred returns
// true, in document order.
func FindAll(n Node, pred func(Node) bool) []Node {
	var out []Node
	Walk(n, func(cur Node) bool {
		if pred(cur) {
			out = append(out, cur)
		}
		return true
	})
	return out
}

// children returns the direct descendants of n in document order. It is
// what Walk (and so FindAll) traverses; TransformExpr has its own
// per-node switch and does not use it.
func children(n Node) []Node {
	switch v := n.(type) {
	case *Alias:
		return []Node{v.Inner}
	case *Func:
		out := make([]Node, 0, len(v.Args)+2)
		for _, a := range v.Args {
			out = append(out, a)
		}
		if v.Window != nil {
			for _, p := range v.Window.PartitionBy {
				out = append(out, p)
			}
			for _, o := range v.Window.OrderBy {
				out = append(out, o)
			}
		}
		return out
	case *BinaryOp:
		return []Node{v.LHS, v.RHS}
	case *Predicate:
		out := make([]Node, 0, len(v.Operands))
		for _, o := range v.Operands {
			out = append(out, o)
		}
		return out
	case *Case:
		out := make([]Node, 0, len(v.Whens)*2+1)
		for _, w := range v.Whens {
			out = append(out, w.Cond, w.Result)
		}
		if v.Else != nil {
			out = append(out, v.Else)
		}
		return out
	case *Subquery:
		return []Node{v.Select}
	case *Order:
		return []Node{v.Expr}
	case *Join:
		out := []Node{v.Left, v.Right}
		if v.On != nil {
			out = append(out, v.On)
		}
		return out
	case *Select:
		out := make([]Node, 0, len(v.List)+len(v.GroupBy)+len(v.OrderBy)+4)
		for _, e := range v.List {
			out = append(out, e)
		}
		if v.From != nil {
			out = append(out, v.From)
		}
		if v.Where != nil {
			out = append(out, v.Where)
		}
		for _, g := range v.GroupBy {
			out = append(out, g)
		}
		if v.Having != nil {
			out = append(out, v.Having)
		}
		if v.Qualify != nil {
			out = append(out, v.Qualify)
		}
		for _, o := range v.OrderBy {
			out = append(out, o)
		}
		return out
	case *With:
		out := make([]Node, 0, len(v.CTEs)+1)
		for _, c := range v.CTEs {
			out = append(out, c.Query)
		}
		if v.Query != nil {
			out = append(out, v.Query)
		}
		return out
	default:
		// Identifier, Column, Literal, Table: leaf nodes.
		return nil
	}
}

// isNilNode reports whether n holds a typed nil pointer, which Walk
// should treat the same as an untyped nil.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Alias:
		return v == nil
	case *Func:
		return v == nil
	case *BinaryOp:
		return v == nil
	case *Predicate:
		return v == nil
	case *Case:
		return v == nil
	case *Subquery:
		return v == nil
	case *Order:
		return v == nil
	case *Join:
		return v == nil
	case *Select:
		return v == nil
	case *With:
		return v == nil
	case *Column:
		return v == nil
	case *Literal:
		return v == nil
	case *Identifier:
		return v == nil
	case *Table:
		return v == nil
	default:
		return false
	}
}

// ExprTransform rewrites an expression node, returning the replacement
// (which may be the same node unchanged).
type ExprTransform func(e Expr) Expr

// TransformExpr applies fn bottom-up: children are rewritten first, then
// fn is applied to the (possibly already-rewritten) node itself. It
// returns a new tree; the input is never mutated in place beyond
// replacing child pointers in newly allocated parent nodes.
func TransformExpr(e Expr, fn ExprTransform) Expr {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *Alias:
		inner := TransformExpr(v.Inner, fn)
		return fn(&Alias{Inner: inner, Name: v.Name})
	case *Func:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = TransformExpr(a, fn)
		}
		var win *WindowSpec
		if v.Window != nil {
			win = &WindowSpec{OrderBy: v.Window.OrderBy}
			win.PartitionBy = make([]Expr, len(v.Window.PartitionBy))
			for i, p := range v.Window.PartitionBy {
				win.PartitionBy[i] = TransformExpr(p, fn)
			}
		}
		return fn(&Func{Name: v.Name, Kind: v.Kind, Args: args, Window: win})
	case *BinaryOp:
		return fn(&BinaryOp{Op: v.Op, LHS: TransformExpr(v.LHS, fn), RHS: TransformExpr(v.RHS, fn)})
	case *Predicate:
		ops := make([]Expr, len(v.Operands))
		for i, o := range v.Operands {
			ops[i] = TransformExpr(o, fn)
		}
		return fn(&Predicate{Op: v.Op, Operands: ops, Negated: v.Negated})
	case *Case:
		whens := make([]WhenClause, len(v.Whens))
		for i, w := range v.Whens {
			whens[i] = WhenClause{Cond: TransformExpr(w.Cond, fn), Result: TransformExpr(w.Result, fn)}
		}
		var els Expr
		if v.Else != nil {
			els = TransformExpr(v.Else, fn)
		}
		return fn(&Case{Whens: whens, Else: els})
	case *Subquery:
		return fn(v)
	default:
		return fn(v)
	}
}
