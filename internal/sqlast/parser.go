package sqlast

import (
	"fmt"
	"strings"
)

// Parser parses the expression/predicate/join-clause grammar with a
// 3-token lookahead, matching the lookahead depth SQL function-call
// disambiguation needs (name, '(', first-arg-or-')').
type Parser struct {
	lexer  *Lexer
	token  Token
	peek   Token
	peek2  Token
	errors []error
}

func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

func (p *Parser) check(t TokenType) bool     { return p.token.Type == t }
func (p *Parser) checkPeek(t TokenType) bool { return p.peek.Type == t }

func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("unexpected token %q", p.token.Literal))
	return false
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Errorf("parse error: %s", msg))
}

// ParseExpr parses a full expression (including top-level AND/OR) from
// sql, returning an error on trailing input or a syntax error.
func ParseExpr(sql string) (Expr, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, fmt.Errorf("empty expression")
	}
	p := NewParser(sql)
	e := p.parseOr()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	if p.token.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected trailing token %q", p.token.Literal)
	}
	return e, nil
}

// precedence climbing: or -> and -> not -> comparison -> additive -> multiplicative -> unary -> primary

func (p *Parser) parseOr() Expr {
	left := p.parseAnd()
	for p.match(TokenOr) {
		right := p.parseAnd()
		left = &Predicate{Op: PredOr, Operands: []Expr{left, right}}
	}
	return left
}

func (p *Parser) parseAnd() Expr {
	left := p.parseNot()
	for p.match(TokenAnd) {
		right := p.parseNot()
		left = &Predicate{Op: PredAnd, Operands: []Expr{left, right}}
	}
	return left
}

func (p *Parser) parseNot() Expr {
	if p.match(TokenNot) {
		inner := p.parseNot()
		return &Predicate{Op: PredNot, Operands: []Expr{inner}}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() Expr {
	left := p.parseAdditive()
	switch p.token.Type {
	case TokenEq, TokenNeq, TokenLt, TokenLe, TokenGt, TokenGe:
		op := p.token.Literal
		p.nextToken()
		right := p.parseAdditive()
		return &BinaryOp{Op: op, LHS: left, RHS: right}
	case TokenIs:
		p.nextToken()
		neg := p.match(TokenNot)
		if p.match(TokenNull) {
			return &Predicate{Op: PredIs, Operands: []Expr{left, &Literal{Kind: LiteralNull, Value: "NULL"}}, Negated: neg}
		}
		if p.match(TokenTrue) {
			return &Predicate{Op: PredIs, Operands: []Expr{left, &Literal{Kind: LiteralBool, Value: "TRUE"}}, Negated: neg}
		}
		if p.match(TokenFalse) {
			return &Predicate{Op: PredIs, Operands: []Expr{left, &Literal{Kind: LiteralBool, Value: "FALSE"}}, Negated: neg}
		}
		p.addError("expected NULL/TRUE/FALSE after IS")
		return left
	case TokenNot:
		// NOT IN / NOT BETWEEN / NOT LIKE
		p.nextToken()
		return p.parseNegatedPredicate(left)
	case TokenIn:
		p.nextToken()
		return p.parseIn(left, false)
	case TokenBetween:
		p.nextToken()
		return p.parseBetween(left, false)
	case TokenLike:
		p.nextToken()
		return p.parseLike(left, false)
	}
	return left
}

func (p *Parser) parseNegatedPredicate(left Expr) Expr {
	switch p.token.Type {
	case TokenIn:
		p.nextToken()
		return p.parseIn(left, true)
	case TokenBetween:
		p.nextToken()
		return p.parseBetween(left, true)
	case TokenLike:
		p.nextToken()
		return p.parseLike(left, true)
	}
	p.addError("expected IN/BETWEEN/LIKE after NOT")
	return left
}

func (p *Parser) parseIn(left Expr, negated bool) Expr {
	operands := []Expr{left}
	p.expect(TokenLParen)
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		operands = append(operands, p.parseAdditive())
		if !p.match(TokenComma) {
			break
		}
	}
	p.expect(TokenRParen)
	return &Predicate{Op: PredIn, Operands: operands, Negated: negated}
}

func (p *Parser) parseBetween(left Expr, negated bool) Expr {
	low := p.parseAdditive()
	p.expect(TokenAnd)
	high := p.parseAdditive()
	return &Predicate{Op: PredBetween, Operands: []Expr{left, low, high}, Negated: negated}
}

func (p *Parser) parseLike(left Expr, negated bool) Expr {
	pattern := p.parseAdditive()
	return &Predicate{Op: PredLike, Operands: []Expr{left, pattern}, Negated: negated}
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for p.check(TokenPlus) || p.check(TokenMinus) {
		op := p.token.Literal
		p.nextToken()
		right := p.parseMultiplicative()
		left = &BinaryOp{Op: op, LHS: left, RHS: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for p.check(TokenStar) || p.check(TokenSlash) || p.check(TokenPercent) {
		op := p.token.Literal
		p.nextToken()
		right := p.parseUnary()
		left = &BinaryOp{Op: op, LHS: left, RHS: right}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	if p.check(TokenMinus) {
		p.nextToken()
		operand := p.parseUnary()
		return &BinaryOp{Op: "-", LHS: &Literal{Kind: LiteralNumber, Value: "0"}, RHS: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Expr {
	switch p.token.Type {
	case TokenNumber:
		lit := &Literal{Kind: LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit
	case TokenString:
		lit := &Literal{Kind: LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit
	case TokenTrue:
		p.nextToken()
		return &Literal{Kind: LiteralBool, Value: "TRUE"}
	case TokenFalse:
		p.nextToken()
		return &Literal{Kind: LiteralBool, Value: "FALSE"}
	case TokenNull:
		p.nextToken()
		return &Literal{Kind: LiteralNull, Value: "NULL"}
	case TokenLParen:
		p.nextToken()
		e := p.parseOr()
		p.expect(TokenRParen)
		return e
	case TokenCase:
		return p.parseCase()
	case TokenIdent:
		return p.parseIdentOrCallOrColumn()
	}
	p.addError(fmt.Sprintf("unexpected token %q in expression", p.token.Literal))
	p.nextToken()
	return &Identifier{Name: ""}
}

func (p *Parser) parseCase() Expr {
	p.expect(TokenCase)
	c := &Case{}
	for p.check(TokenWhen) {
		p.nextToken()
		cond := p.parseOr()
		p.expect(TokenThen)
		result := p.parseAdditive()
		c.Whens = append(c.Whens, WhenClause{Cond: cond, Result: result})
	}
	if p.match(TokenElse) {
		c.Else = p.parseAdditive()
	}
	p.expect(TokenEnd)
	return c
}

// parseIdentOrCallOrColumn disambiguates NAME, NAME(args...), and
// TABLE.COLUMN using the 3-token lookahead.
func (p *Parser) parseIdentOrCallOrColumn() Expr {
	first := p.token.Literal
	p.nextToken()

	if p.check(TokenDot) {
		p.nextToken()
		if !p.check(TokenIdent) {
			p.addError("expected identifier after '.'")
			return &Column{Table: first}
		}
		col := p.token.Literal
		p.nextToken()
		return &Column{Table: first, Name: col}
	}

	if p.check(TokenLParen) {
		return p.parseCallArgs(first)
	}

	return &Identifier{Name: first}
}

func (p *Parser) parseCallArgs(name string) Expr {
	p.expect(TokenLParen)
	fn := &Func{Name: name, Kind: classifyFunc(name)}
	if p.check(TokenStar) {
		p.nextToken()
		fn.Args = []Expr{&Identifier{Name: "*"}}
	} else {
		p.match(TokenDistinct)
		for !p.check(TokenRParen) && !p.check(TokenEOF) {
			fn.Args = append(fn.Args, p.parseOr())
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.expect(TokenRParen)
	if p.match(TokenOver) {
		fn.Kind = FuncWindow
		fn.Window = p.parseWindowSpec()
	}
	return fn
}

func (p *Parser) parseWindowSpec() *WindowSpec {
	w := &WindowSpec{}
	p.expect(TokenLParen)
	if p.match(TokenPartition) {
		p.expect(TokenBy)
		for {
			w.PartitionBy = append(w.PartitionBy, p.parseAdditive())
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if p.match(TokenOrder) {
		p.expect(TokenBy)
		for {
			e := p.parseAdditive()
			desc := false
			if p.match(TokenDesc) {
				desc = true
			} else {
				p.match(TokenAsc)
			}
			w.OrderBy = append(w.OrderBy, &Order{Expr: e, Desc: desc})
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.expect(TokenRParen)
	return w
}

var aggregateFuncNames = map[string]bool{
	"SUM": true, "COUNT": true, "AVG": true, "MIN": true, "MAX": true,
	"AVERAGE": true,
}

var scalarFuncNames = map[string]bool{
	"COALESCE": true, "UPPER": true, "LOWER": true, "CONCAT": true,
	"ROUND": true, "CAST": true, "SUBSTR": true, "TRIM": true,
	"DATE_TRUNC": true, "EXTRACT": true, "ABS": true,
}

var windowFuncNames = map[string]bool{
	"ROW_NUMBER": true, "RANK": true, "DENSE_RANK": true, "LAG": true,
	"LEAD": true, "NTILE": true, "FIRST_VALUE": true, "LAST_VALUE": true,
}

// classifyFunc returns the default classification for a function name,
// used until a later pipeline pass reclassifies it (e.g. an anonymous
// call later recognized as an aggregate synonym).
func classifyFunc(name string) FuncKind {
	upper := strings.ToUpper(name)
	if aggregateFuncNames[upper] {
		return FuncAggregate
	}
	if windowFuncNames[upper] {
		return FuncWindow
	}
	if scalarFuncNames[upper] {
		return FuncScalar
	}
	return FuncAnonymous
}
