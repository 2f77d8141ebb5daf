// Package tokenize implements the RFC-2616 §2.2 token grammar scan used to
// split a header value into separator characters and the text runs between
// them. Grounded on original_source/http/src/server/http1/types/tokens.rs's
// TokenIterator/Seperator/Text, reworked from raw-pointer Text slices (the
// source avoids copying by holding a pointer+length into the original
// buffer) into ordinary Go byte slices, since a slice header already
// borrows its backing array without unsafe code.
package tokenize

import "fmt"

// Separator is the closed set of RFC-2616 tspecials this tokenizer
// recognizes as breaking a token run.
type Separator byte

const (
	OpenParenthesis Separator = iota
	CloseParenthesis
	OpenAngleBracket
	CloseAngleBracket
	OpenCurlyBracket
	CloseCurlyBracket
	OpenSquareBracket
	CloseSquareBracket
	At
	Comma
	DoubleQuote
	QuestionMark
	Equals
	Colon
	Semicolon
	ForwardSlash
	BackSlash
)

var separatorBytes = map[byte]Separator{
	'(':  OpenParenthesis,
	')':  CloseParenthesis,
	'<':  OpenAngleBracket,
	'>':  CloseAngleBracket,
	'{':  OpenCurlyBracket,
	'}':  CloseCurlyBracket,
	'[':  OpenSquareBracket,
	']':  CloseSquareBracket,
	'@':  At,
	',':  Comma,
	'"':  DoubleQuote,
	'?':  QuestionMark,
	'=':  Equals,
	':':  Colon,
	';':  Semicolon,
	'/':  ForwardSlash,
	'\\': BackSlash,
}

// separatorFromByte reports the Separator c represents, if any.
func separatorFromByte(c byte) (Separator, bool) {
	s, ok := separatorBytes[c]
	return s, ok
}

// Byte renders s back to its character.
func (s Separator) Byte() byte {
	for b, sep := range separatorBytes {
		if sep == s {
			return b
		}
	}
	return 0
}

func (s Separator) String() string {
	return string(s.Byte())
}

// isPrintable reports whether b falls in the source's accepted token range
// (32..126 inclusive); anything outside it terminates the current run the
// same way a separator does, without itself becoming a Token.
func isPrintable(b byte) bool {
	return b >= 32 && b <= 126
}

// Kind distinguishes the two Token variants.
type Kind int

const (
	KindText Kind = iota
	KindSeparator
)

// Token is the tagged union the source calls Tokens: either a recognized
// Separator or a Text run between separators/non-printable bytes.
type Token struct {
	Kind Kind
	Sep  Separator
	Text []byte
}

// IsSeparator reports whether this token is a Separator.
func (t Token) IsSeparator() bool { return t.Kind == KindSeparator }

// IsText reports whether this token is a Text run.
func (t Token) IsText() bool { return t.Kind == KindText }

// ErrMismatch reports a Separator token that did not match what was
// expected.
type ErrMismatch struct{ Expected, Actual Separator }

func (e *ErrMismatch) Error() string {
	return fmt.Sprintf("expected separator %q but instead found %q", e.Expected, e.Actual)
}

// ErrNotSeparator reports a Text token where a Separator was expected.
type ErrNotSeparator struct {
	Expected *Separator
	Actual   []byte
}

func (e *ErrNotSeparator) Error() string {
	if e.Expected == nil {
		return fmt.Sprintf("expected separator but instead found %q", e.Actual)
	}
	return fmt.Sprintf("expected separator %q but instead found %q", *e.Expected, e.Actual)
}

// ErrNotText reports a Separator token where Text was expected.
type ErrNotText struct {
	Name   string
	Actual Separator
}

func (e *ErrNotText) Error() string {
	name := e.Name
	if name == "" {
		name = "text"
	}
	return fmt.Sprintf("expected %s but instead found %q", name, e.Actual)
}

// ExpectSeparator returns the token's Separator, optionally checking it
// against expect. A nil expect accepts any Separator.
func (t Token) ExpectSeparator(expect *Separator) (Separator, error) {
	if t.Kind != KindSeparator {
		return 0, &ErrNotSeparator{Expected: expect, Actual: t.Text}
	}
	if expect != nil && *expect != t.Sep {
		return 0, &ErrMismatch{Expected: *expect, Actual: t.Sep}
	}
	return t.Sep, nil
}

// ExpectText returns the token's Text, erroring with name in the message
// if this token is actually a Separator.
func (t Token) ExpectText(name string) ([]byte, error) {
	if t.Kind != KindText {
		return nil, &ErrNotText{Name: name, Actual: t.Sep}
	}
	return t.Text, nil
}

// TokenIterator yields Separator and Text tokens over data. Any byte
// outside 32..126 ends the current text run, which is emitted as a Text
// token; the byte itself is skipped and never becomes a token.
type TokenIterator struct {
	data      []byte
	index     int
	textStart int
	backlog   []Token
}

// NewTokenIterator creates an iterator over data.
func NewTokenIterator(data []byte) *TokenIterator {
	return &TokenIterator{data: data, backlog: make([]Token, 0, max(1, len(data)/2))}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (t *TokenIterator) takeText() ([]byte, bool) {
	if t.textStart < t.index {
		text := t.data[t.textStart:t.index]
		t.textStart = t.index
		return text, true
	}
	return nil, false
}

func (t *TokenIterator) popBacklog() (Token, bool) {
	if len(t.backlog) == 0 {
		return Token{}, false
	}
	tok := t.backlog[0]
	t.backlog = t.backlog[1:]
	return tok, true
}

// Next returns the next Token, or ok=false once exhausted.
func (t *TokenIterator) Next() (Token, bool) {
	if tok, ok := t.popBacklog(); ok {
		return tok, true
	}

	for t.index < len(t.data) {
		b := t.data[t.index]

		var text []byte
		var hasText bool
		if !isPrintable(b) {
			text, hasText = t.takeText()
			t.index++
			t.textStart = t.index
		} else if sep, isSep := separatorFromByte(b); isSep {
			t.backlog = append(t.backlog, Token{Kind: KindSeparator, Sep: sep})
			text, hasText = t.takeText()
			t.index++
			t.textStart = t.index
		} else {
			// Ordinary byte: extend the current run without closing it.
			t.index++
			continue
		}

		if hasText {
			return Token{Kind: KindText, Text: text}, true
		}
		if tok, ok := t.popBacklog(); ok {
			return tok, true
		}
	}

	if text, ok := t.takeText(); ok {
		return Token{Kind: KindText, Text: text}, true
	}
	return Token{}, false
}

// All drains the iterator into a slice, for call sites that want to look
// ahead rather than consume token-by-token.
func All(data []byte) []Token {
	it := NewTokenIterator(data)
	var out []Token
	for {
		tok, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}
