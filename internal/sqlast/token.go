package sqlast

// TokenType enumerates lexical token kinds for the expression/predicate
// grammar used by SMQ textual fields and join clauses.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal
	TokenIdent
	TokenNumber
	TokenString

	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent

	TokenEq
	TokenNeq
	TokenLt
	TokenLe
	TokenGt
	TokenGe

	TokenLParen
	TokenRParen
	TokenComma
	TokenDot

	// Keywords
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenBetween
	TokenLike
	TokenIs
	TokenNull
	TokenTrue
	TokenFalse
	TokenCase
	TokenWhen
	TokenThen
	TokenElse
	TokenEnd
	TokenAs
	TokenDistinct
	TokenOver
	TokenPartition
	TokenBy
	TokenOrder
	TokenAsc
	TokenDesc
	TokenJoin
	TokenLeft
	TokenRight
	TokenInner
	TokenFull
	TokenOuter
	TokenOn
	TokenFrom
)

var keywords = map[string]TokenType{
	"AND": TokenAnd, "OR": TokenOr, "NOT": TokenNot, "IN": TokenIn,
	"BETWEEN": TokenBetween, "LIKE": TokenLike, "IS": TokenIs,
	"NULL": TokenNull, "TRUE": TokenTrue, "FALSE": TokenFalse,
	"CASE": TokenCase, "WHEN": TokenWhen, "THEN": TokenThen,
	"ELSE": TokenElse, "END": TokenEnd, "AS": TokenAs,
	"DISTINCT": TokenDistinct, "OVER": TokenOver, "PARTITION": TokenPartition,
	"BY": TokenBy, "ORDER": TokenOrder, "ASC": TokenAsc, "DESC": TokenDesc,
	"JOIN": TokenJoin, "LEFT": TokenLeft, "RIGHT": TokenRight,
	"INNER": TokenInner, "FULL": TokenFull, "OUTER": TokenOuter,
	"ON": TokenOn, "FROM": TokenFrom,
}

// Token is one lexical unit together with its literal text.
type Token struct {
	Type    TokenType
	Literal string
}
