// Package rpc models the comma-separated, string-table-prefixed
// serialization the dispatch servlet speaks, and builds request bodies
// for the known remote methods.
//
// A body is `N,"s1",...,"sN",t1,t2,...`: an integer count, N quoted
// string-table entries, then a positional token stream that references
// table entries by 1-based index. There is no published schema; the
// builders and parsers reproduce observed token layouts.
package rpc

import (
	"errors"
	"fmt"
	"strings"
)

// Envelope markers found in the first string-table entry.
const (
	RequestMarker   = "RequeteBWT"
	ResponseMarker  = "ReponseBWT"
	ExceptionMarker = "ExceptionBWT"
)

var (
	ErrEmptyBody    = errors.New("rpc: empty body")
	ErrNoTableCount = errors.New("rpc: body does not start with a string table count")
	ErrUnterminated = errors.New("rpc: unterminated string token")
	ErrBadEscape    = errors.New("rpc: unsupported escape sequence")
	ErrNegativeCount = errors.New("rpc: negative string table count")
)

// Message is a read-only view over a decoded body.
type Message struct {
	StringTable []string // 1-based lookup via GetString
	DataTokens  []Token
	Raw         string
}

// Tokenize parses a decoded body into its string table and data-token
// stream. The string table stops at the first non-string token even if
// fewer than the declared count were consumed; remaining tokens become
// data tokens.
func Tokenize(text string) (*Message, error) {
	tokens, err := scan(text)
	if err != nil {
		return nil, err
	}

	if len(tokens) == 0 {
		return nil, ErrEmptyBody
	}

	head := tokens[0]
	if head.Kind != KindInteger {
		return nil, ErrNoTableCount
	}

	if head.Int < 0 {
		return nil, ErrNegativeCount
	}

	count := int(head.Int)

	msg := &Message{Raw: text}

	rest := tokens[1:]
	for len(msg.StringTable) < count && len(rest) > 0 && rest[0].Kind == KindString {
		msg.StringTable = append(msg.StringTable, rest[0].Text)
		rest = rest[1:]
	}

	msg.DataTokens = rest

	return msg, nil
}

// GetString returns the 1-based string table entry, or "" when the
// index is out of range.
func (m *Message) GetString(i int) string {
	if i < 1 || i > len(m.StringTable) {
		return ""
	}

	return m.StringTable[i-1]
}

// IsRequest reports whether the envelope class marks a request.
func (m *Message) IsRequest() bool {
	return strings.Contains(m.GetString(1), RequestMarker)
}

// IsResponse reports whether the envelope class marks a response.
func (m *Message) IsResponse() bool {
	return strings.Contains(m.GetString(1), ResponseMarker)
}

// ResponseType is the response payload class, by convention the third
// string-table entry.
func (m *Message) ResponseType() string {
	return m.GetString(3)
}

// HasException reports whether the body carries the server-side
// exception marker. This commonly signals a missing bootstrap step, not
// a hard fault.
func (m *Message) HasException() bool {
	for _, s := range m.StringTable {
		if strings.Contains(s, ExceptionMarker) {
			return true
		}
	}

	return false
}

// StringIndex returns the 1-based index of the first string-table entry
// containing sub, or 0 if absent.
func (m *Message) StringIndex(sub string) int {
	for i, s := range m.StringTable {
		if strings.Contains(s, sub) {
			return i + 1
		}
	}

	return 0
}

func scan(text string) ([]Token, error) {
	var tokens []Token

	i := 0
	for i < len(text) {
		c := text[i]

		if c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}

		if c == '"' {
			tok, next, err := scanString(text, i)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, tok)
			i = next

			continue
		}

		start := i
		for i < len(text) && !isSeparator(text[i]) {
			i++
		}

		tokens = append(tokens, classify(text[start:i], start))
	}

	return tokens, nil
}

func isSeparator(c byte) bool {
	return c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func scanString(text string, start int) (Token, int, error) {
	var b strings.Builder

	i := start + 1
	for i < len(text) {
		c := text[i]

		switch c {
		case '"':
			return Token{Kind: KindString, Text: b.String(), Pos: start}, i + 1, nil
		case '\\':
			if i+1 >= len(text) {
				return Token{}, 0, ErrUnterminated
			}

			i++
			switch text[i] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				return Token{}, 0, fmt.Errorf("%w: \\%c", ErrBadEscape, text[i])
			}
		default:
			b.WriteByte(c)
		}

		i++
	}

	return Token{}, 0, ErrUnterminated
}

func classify(text string, pos int) Token {
	if tok, ok := intToken(text, pos); ok {
		return tok
	}

	if tok, ok := floatToken(text, pos); ok {
		return tok
	}

	return Token{Kind: KindIdentifier, Text: text, Pos: pos}
}
