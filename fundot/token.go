package fundot

import "fmt"

// Token is one atom produced by the tokenizer. Width counts the source
// runes it spans, quotes included for strings.
type Token struct {
	Value Value
	Pos   Position
	Width int
}

// covers reports whether the 1-based line and column fall inside t.
func (t Token) covers(line, column int) bool {
	return t.Pos.Line == line && column >= t.Pos.Column && column < t.Pos.Column+max(t.Width, 1)
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %s", t.Pos.Line, t.Pos.Column, t.Value.Kind(), t.Value.String())
}

// Position identifies a rune in the source. Line and Column are 1-based;
// Offset is the byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

const (
	delimLParen   = "("
	delimRParen   = ")"
	delimLBracket = "["
	delimRBracket = "]"
	delimLBrace   = "{"
	delimRBrace   = "}"
	delimComma    = ","
	delimColon    = ":"
)

func isDelimiter(tok Token, name string) bool {
	return tok.Value.IsSymbol(name)
}

// TokenAt returns the atom of src covering the 1-based line and column.
// It reports false when src does not tokenize or nothing is there.
func TokenAt(src string, line, column int) (Token, bool) {
	tokens, err := Tokenize(src)
	if err != nil {
		return Token{}, false
	}
	for _, tok := range tokens {
		if tok.covers(line, column) {
			return tok, true
		}
	}
	return Token{}, false
}
