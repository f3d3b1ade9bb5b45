package sexpr

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// TokenKind distinguishes parentheses from symbols.
type TokenKind uint8

const (
	Open TokenKind = iota
	Close
	Symbol
)

func (k TokenKind) String() string {
	switch k {
	case Open:
		return "("
	case Close:
		return ")"
	default:
		return "symbol"
	}
}

// Token is a single lexical element of an expression line.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

var sexprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Open", Pattern: `\(`},
	{Name: "Close", Pattern: `\)`},
	{Name: "Symbol", Pattern: `[^()\s]+`},
	{Name: "whitespace", Pattern: `\s+`},
})

var (
	openType   = sexprLexer.Symbols()["Open"]
	closeType  = sexprLexer.Symbols()["Close"]
	symbolType = sexprLexer.Symbols()["Symbol"]
)

// Tokenize splits a line on parentheses and runs of whitespace.
// Symbols are returned verbatim, so "name:type" stays a single token.
func Tokenize(line string) ([]Token, error) {
	lex, err := sexprLexer.LexString("", line)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, &ParseError{Offset: offsetOf(err), Reason: err.Error()}
	}

	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		var kind TokenKind
		switch t.Type {
		case openType:
			kind = Open
		case closeType:
			kind = Close
		case symbolType:
			kind = Symbol
		default:
			// whitespace and EOF
			continue
		}
		tokens = append(tokens, Token{Kind: kind, Text: t.Value, Offset: t.Pos.Offset})
	}
	return tokens, nil
}

func offsetOf(err error) int {
	if perr, ok := err.(*lexer.Error); ok {
		return perr.Pos.Offset
	}
	return 0
}
