package sqlast

// Constructors for the small, frequently-built node shapes. These exist
// so callers in smqparse and compose build nodes the same way
// everywhere rather than hand-writing struct literals with field order
// that could drift.

func NewIdentifier(name string) *Identifier { return &Identifier{Name: name} }

func NewColumn(table, name string) *Column { return &Column{Table: table, Name: name} }

func NewAlias(inner Expr, name string) *Alias { return &Alias{Inner: inner, Name: name} }

func NewNumberLiteral(v string) *Literal { return &Literal{Kind: LiteralNumber, Value: v} }

func NewStringLiteral(v string) *Literal { return &Literal{Kind: LiteralString, Value: v} }

func NewAggregate(name string, args ...Expr) *Func {
	return &Func{Name: name, Kind: FuncAggregate, Args: args}
}

func NewScalar(name string, args ...Expr) *Func {
	return &Func{Name: name, Kind: FuncScalar, Args: args}
}

func NewBinaryOp(op string, lhs, rhs Expr) *BinaryOp {
	return &BinaryOp{Op: op, LHS: lhs, RHS: rhs}
}

func NewAnd(operands ...Expr) *Predicate {
	return &Predicate{Op: PredAnd, Operands: operands}
}
