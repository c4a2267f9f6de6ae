package sqlast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders n as flat (non-pretty-printed) SQL text for the given
// dialect. It accepts *With, *Select, or any Expr.
func Format(d Dialect, n Node) string {
	f := &formatter{dialect: d}
	f.formatNode(n)
	return strings.TrimSpace(f.buf.String())
}

// FormatExpr renders a standalone expression.
func FormatExpr(d Dialect, e Expr) string {
	f := &formatter{dialect: d}
	f.formatExpr(e)
	return strings.TrimSpace(f.buf.String())
}

type formatter struct {
	buf     strings.Builder
	dialect Dialect
}

func (f *formatter) write(s string)    { f.buf.WriteString(s) }
func (f *formatter) space()            { f.buf.WriteByte(' ') }
func (f *formatter) writeIdent(s string) { f.write(QuoteIdent(f.dialect, s)) }

func (f *formatter) commaSep(n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		if i > 0 {
			f.write(", ")
		}
		fn(i)
	}
}

func (f *formatter) formatNode(n Node) {
	switch v := n.(type) {
	case *With:
		f.formatWith(v)
	case *Select:
		f.formatSelect(v)
	case Expr:
		f.formatExpr(v)
	default:
		f.write(fmt.Sprintf("/* unformattable %T */", n))
	}
}

func (f *formatter) formatWith(w *With) {
	if len(w.CTEs) > 0 {
		f.write("WITH ")
		f.commaSep(len(w.CTEs), func(i int) {
			cte := w.CTEs[i]
			f.writeIdent(cte.Name)
			f.write(" AS (")
			f.formatSelect(cte.Query)
			f.write(")")
		})
		f.space()
	}
	f.formatSelect(w.Query)
}

func (f *formatter) formatSelect(s *Select) {
	f.write("SELECT ")
	if len(s.List) == 0 {
		f.write("*")
	} else {
		f.commaSep(len(s.List), func(i int) { f.formatExpr(s.List[i]) })
	}
	if s.From != nil {
		f.write(" FROM ")
		f.formatTableExpr(s.From)
	}
	if s.Where != nil {
		f.write(" WHERE ")
		f.formatExpr(s.Where)
	}
	if len(s.GroupBy) > 0 {
		f.write(" GROUP BY ")
		f.commaSep(len(s.GroupBy), func(i int) { f.formatExpr(s.GroupBy[i]) })
	}
	if s.Having != nil {
		f.write(" HAVING ")
		f.formatExpr(s.Having)
	}
	if s.Qualify != nil {
		f.write(" QUALIFY ")
		f.formatExpr(s.Qualify)
	}
	if len(s.OrderBy) > 0 {
		f.write(" ORDER BY ")
		f.commaSep(len(s.OrderBy), func(i int) {
			f.formatExpr(s.OrderBy[i].Expr)
			if s.OrderBy[i].Desc {
				f.write(" DESC")
			}
		})
	}
	if s.Limit != nil {
		f.write(" LIMIT ")
		f.write(strconv.Itoa(*s.Limit))
	}
}

func (f *formatter) formatTableExpr(t TableExpr) {
	switch v := t.(type) {
	case *Table:
		parts := make([]string, 0, 3)
		if v.Database != "" {
			parts = append(parts, QuoteIdent(f.dialect, v.Database))
		}
		if v.Schema != "" {
			parts = append(parts, QuoteIdent(f.dialect, v.Schema))
		}
		parts = append(parts, QuoteIdent(f.dialect, v.Name))
		f.write(strings.Join(parts, "."))
		if v.Alias != "" {
			f.write(" AS ")
			f.writeIdent(v.Alias)
		}
	case *Join:
		f.formatTableExpr(v.Left)
		f.space()
		f.write(v.Kind.String())
		f.space()
		f.formatTableExpr(v.Right)
		if v.On != nil {
			f.write(" ON ")
			f.formatExpr(v.On)
		}
	case *Subquery:
		f.write("(")
		f.formatSelect(v.Select)
		f.write(")")
		if v.Alias != "" {
			f.write(" AS ")
			f.writeIdent(v.Alias)
		}
	case *Select:
		f.write("(")
		f.formatSelect(v)
		f.write(")")
	default:
		f.write(fmt.Sprintf("/* unformattable table expr %T */", t))
	}
}

func (f *formatter) formatExpr(e Expr) {
	switch v := e.(type) {
	case nil:
		return
	case *Identifier:
		f.write(v.Name)
	case *Column:
		if v.Table != "" {
			f.writeIdent(v.Table)
			f.write(".")
		}
		f.writeIdent(v.Name)
	case *Literal:
		f.formatLiteral(v)
	case *Alias:
		f.formatExpr(v.Inner)
		f.write(" AS ")
		f.writeIdent(v.Name)
	case *Func:
		f.formatFunc(v)
	case *BinaryOp:
		f.write("(")
		f.formatExpr(v.LHS)
		f.space()
		f.write(v.Op)
		f.space()
		f.formatExpr(v.RHS)
		f.write(")")
	case *Predicate:
		f.formatPredicate(v)
	case *Case:
		f.formatCase(v)
	case *Subquery:
		f.write("(")
		f.formatSelect(v.Select)
		f.write(")")
	default:
		f.write(fmt.Sprintf("/* unformattable expr %T */", e))
	}
}

func (f *formatter) formatLiteral(l *Literal) {
	switch l.Kind {
	case LiteralString:
		f.write("'" + strings.ReplaceAll(l.Value, "'", "''") + "'")
	case LiteralNull:
		f.write("NULL")
	case LiteralBool:
		f.write(strings.ToUpper(l.Value))
	default:
		f.write(l.Value)
	}
}

func (f *formatter) formatFunc(fn *Func) {
	f.write(fn.Name)
	f.write("(")
	f.commaSep(len(fn.Args), func(i int) { f.formatExpr(fn.Args[i]) })
	f.write(")")
	if fn.Kind == FuncWindow && fn.Window != nil {
		f.write(" OVER (")
		wrote := false
		if len(fn.Window.PartitionBy) > 0 {
			f.write("PARTITION BY ")
			f.commaSep(len(fn.Window.PartitionBy), func(i int) { f.formatExpr(fn.Window.PartitionBy[i]) })
			wrote = true
		}
		if len(fn.Window.OrderBy) > 0 {
			if wrote {
				f.space()
			}
			f.write("ORDER BY ")
			f.commaSep(len(fn.Window.OrderBy), func(i int) {
				f.formatExpr(fn.Window.OrderBy[i].Expr)
				if fn.Window.OrderBy[i].Desc {
					f.write(" DESC")
				}
			})
		}
		f.write(")")
	}
}

func (f *formatter) formatPredicate(p *Predicate) {
	switch p.Op {
	case PredAnd, PredOr:
		sep := " AND "
		if p.Op == PredOr {
			sep = " OR "
		}
		f.write("(")
		for i, o := range p.Operands {
			if i > 0 {
				f.write(sep)
			}
			f.formatExpr(o)
		}
		f.write(")")
	case PredNot:
		f.write("NOT (")
		if len(p.Operands) > 0 {
			f.formatExpr(p.Operands[0])
		}
		f.write(")")
	case PredIn:
		f.formatExpr(p.Operands[0])
		if p.Negated {
			f.write(" NOT IN (")
		} else {
			f.write(" IN (")
		}
		f.commaSep(len(p.Operands)-1, func(i int) { f.formatExpr(p.Operands[i+1]) })
		f.write(")")
	case PredBetween:
		f.formatExpr(p.Operands[0])
		if p.Negated {
			f.write(" NOT BETWEEN ")
		} else {
			f.write(" BETWEEN ")
		}
		f.formatExpr(p.Operands[1])
		f.write(" AND ")
		f.formatExpr(p.Operands[2])
	case PredLike:
		f.formatExpr(p.Operands[0])
		if p.Negated {
			f.write(" NOT LIKE ")
		} else {
			f.write(" LIKE ")
		}
		f.formatExpr(p.Operands[1])
	case PredIs:
		f.formatExpr(p.Operands[0])
		if p.Negated {
			f.write(" IS NOT ")
		} else {
			f.write(" IS ")
		}
		f.formatExpr(p.Operands[1])
	}
}

func (f *formatter) formatCase(c *Case) {
	f.write("CASE")
	for _, w := range c.Whens {
		f.write(" WHEN ")
		f.formatExpr(w.Cond)
		f.write(" THEN ")
		f.formatExpr(w.Result)
	}
	if c.Else != nil {
		f.write(" ELSE ")
		f.formatExpr(c.Else)
	}
	f.write(" END")
}
