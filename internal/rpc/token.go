package rpc

import "strconv"

// TokenKind discriminates the token variants in a decoded body.
type TokenKind int

const (
	KindString TokenKind = iota
	KindInteger
	KindFloat
	KindIdentifier
)

func (k TokenKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "identifier"
	}
}

// Token is one element of the serialized stream. Text always holds the
// source text; the numeric fields are only valid for their kind.
type Token struct {
	Kind  TokenKind
	Text  string
	Int   int64
	Float float64
	Pos   int
}

// IsInt reports whether the token is an integer with the given value.
func (t Token) IsInt(v int64) bool {
	return t.Kind == KindInteger && t.Int == v
}

func intToken(text string, pos int) (Token, bool) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, false
	}

	return Token{Kind: KindInteger, Text: text, Int: v, Pos: pos}, true
}

func floatToken(text string, pos int) (Token, bool) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, false
	}

	return Token{Kind: KindFloat, Text: text, Float: v, Pos: pos}, true
}
