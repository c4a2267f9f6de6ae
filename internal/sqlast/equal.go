package sqlast

// Equal reports whether a and b are structurally identical expressions.
// This is the authoritative equality used for per-layer list dedup; it
// never compares serialized SQL text. Anonymous function calls are
// compared by name and arguments only, and subqueries by identity.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case *Identifier:
		bv, ok := b.(*Identifier)
		return ok && av.Name == bv.Name
	case *Column:
		bv, ok := b.(*Column)
		return ok && av.Table == bv.Table && av.Name == bv.Name
	case *Literal:
		bv, ok := b.(*Literal)
		return ok && av.Kind == bv.Kind && av.Value == bv.Value
	case *Alias:
		bv, ok := b.(*Alias)
		return ok && av.Name == bv.Name && Equal(av.Inner, bv.Inner)
	case *Func:
		bv, ok := b.(*Func)
		if !ok || av.Name != bv.Name || av.Kind != bv.Kind || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		if av.Kind == FuncAnonymous {
			// No structural identity beyond name+args; rendered form is
			// already captured by the args comparison above. Anonymous
			// calls dedup purely on (name, args) equality, which is the
			// only secondary signal this equality function admits.
			return true
		}
		return equalWindow(av.Window, bv.Window)
	case *BinaryOp:
		bv, ok := b.(*BinaryOp)
		return ok && av.Op == bv.Op && Equal(av.LHS, bv.LHS) && Equal(av.RHS, bv.RHS)
	case *Predicate:
		bv, ok := b.(*Predicate)
		if !ok || av.Op != bv.Op || av.Negated != bv.Negated || len(av.Operands) != len(bv.Operands) {
			return false
		}
		for i := range av.Operands {
			if !Equal(av.Operands[i], bv.Operands[i]) {
				return false
			}
		}
		return true
	case *Case:
		bv, ok := b.(*Case)
		if !ok || len(av.Whens) != len(bv.Whens) {
			return false
		}
		for i := range av.Whens {
			if !Equal(av.Whens[i].Cond, bv.Whens[i].Cond) || !Equal(av.Whens[i].Result, bv.Whens[i].Result) {
				return false
			}
		}
		return Equal(av.Else, bv.Else)
	case *Subquery:
		bv, ok := b.(*Subquery)
		return ok && av.Alias == bv.Alias && av.Select == bv.Select // identity: subqueries are never structurally deduped
	case *Table:
		bv, ok := b.(*Table)
		return ok && av.Database == bv.Database && av.Schema == bv.Schema && av.Name == bv.Name && av.Alias == bv.Alias
	case *Order:
		bv, ok := b.(*Order)
		return ok && av.Desc == bv.Desc && Equal(av.Expr, bv.Expr)
	default:
		return false
	}
}

func equalWindow(a, b *WindowSpec) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a.PartitionBy) != len(b.PartitionBy) || len(a.OrderBy) != len(b.OrderBy) {
		return false
	}
	for i := range a.PartitionBy {
		if !Equal(a.PartitionBy[i], b.PartitionBy[i]) {
			return false
		}
	}
	for i := range a.OrderBy {
		if !Equal(a.OrderBy[i], b.OrderBy[i]) {
			return false
		}
	}
	return true
}

// NameOf returns the output name of an expression for name-based dedup:
// an Alias's declared name, a bare Column's name, a bare Identifier's
// name, or "" if the expression carries no name.
func NameOf(e Expr) string {
	switch v := e.(type) {
	case *Alias:
		return v.Name
	case *Column:
		return v.Name
	case *Identifier:
		return v.Name
	default:
		return ""
	}
}

// AppendUnique appends e to list unless an element already equal to it
// (by structural equality) or sharing its output name is present,
// matching the per-layer append-dedup rule: dedup by structural
// equality (Equal) and by output name (NameOf, which covers aliases).
func AppendUnique(list []Expr, e Expr) []Expr {
	name := NameOf(e)
	for _, existing := range list {
		if Equal(existing, e) {
			return list
		}
		if name != "" && NameOf(existing) == name {
			return list
		}
	}
	return append(list, e)
}
