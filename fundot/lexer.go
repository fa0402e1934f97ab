package fundot

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	input string

	offset int
	line   int
	column int

	buf      strings.Builder
	bufPos   Position
	bufDigit bool

	tokens []Token
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1, column: 1}
}

// Tokenize scans src into atoms. Punctuation other than '_' always forms
// a one-character Symbol; everything else accumulates until a delimiter.
func Tokenize(src string) ([]Token, error) {
	return newLexer(src).run()
}

func (l *lexer) run() ([]Token, error) {
	for !l.atEOF() {
		pos := l.position()
		r := l.readRune()
		switch {
		case r == '"':
			if err := l.flush(); err != nil {
				return nil, err
			}
			text, err := l.readString(pos)
			if err != nil {
				return nil, err
			}
			l.emit(NewString(text), pos, l.runesSince(pos))
		case unicode.IsSpace(r):
			if err := l.flush(); err != nil {
				return nil, err
			}
		case r == '.' && l.bufDigit:
			l.buf.WriteRune(r)
		case r == '-' && l.buf.Len() == 0 && isDigit(l.peekRune()):
			l.start(pos, true)
			l.buf.WriteRune(r)
		case isPunct(r):
			if err := l.flush(); err != nil {
				return nil, err
			}
			l.emit(NewSymbol(string(r)), pos, 1)
		default:
			if l.buf.Len() == 0 {
				l.start(pos, isDigit(r))
			}
			l.buf.WriteRune(r)
		}
	}
	if err := l.flush(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) atEOF() bool {
	return l.offset >= len(l.input)
}

func (l *lexer) position() Position {
	return Position{Offset: l.offset, Line: l.line, Column: l.column}
}

func (l *lexer) readRune() rune {
	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += w
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *lexer) peekRune() rune {
	if l.atEOF() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

// runesSince counts the runes read since pos.
func (l *lexer) runesSince(pos Position) int {
	return utf8.RuneCountInString(l.input[pos.Offset:l.offset])
}

func (l *lexer) start(pos Position, numeric bool) {
	l.bufPos = pos
	l.bufDigit = numeric
}

func (l *lexer) emit(v Value, pos Position, width int) {
	l.tokens = append(l.tokens, Token{Value: v, Pos: pos, Width: width})
}

func (l *lexer) flush() error {
	if l.buf.Len() == 0 {
		return nil
	}
	word := l.buf.String()
	l.buf.Reset()
	numeric := l.bufDigit
	l.bufDigit = false
	width := utf8.RuneCountInString(word)

	if numeric {
		v, ok := parseNumber(word)
		if !ok {
			return newParseError(InvalidNumericLiteral, l.bufPos, width, l.input, "invalid numeric literal "+strconv.Quote(word))
		}
		l.emit(v, l.bufPos, width)
		return nil
	}
	switch word {
	case "null":
		l.emit(NewNull(), l.bufPos, width)
	case "true":
		l.emit(NewBool(true), l.bufPos, width)
	case "false":
		l.emit(NewBool(false), l.bufPos, width)
	default:
		l.emit(NewSymbol(word), l.bufPos, width)
	}
	return nil
}

func (l *lexer) readString(open Position) (string, error) {
	var sb strings.Builder
	for {
		if l.atEOF() {
			return "", newParseError(UnterminatedString, open, l.runesSince(open), l.input, "unterminated string literal")
		}
		pos := l.position()
		r := l.readRune()
		switch r {
		case '"':
			return sb.String(), nil
		case '\\':
			if l.atEOF() {
				return "", newParseError(UnterminatedString, open, l.runesSince(open), l.input, "unterminated string literal")
			}
			esc := l.readRune()
			switch esc {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			default:
				return "", newParseError(InvalidEscape, pos, 2, l.input, "invalid escape \\"+string(esc))
			}
		default:
			sb.WriteRune(r)
		}
	}
}

// parseNumber accepts plain decimal integers, falling back to float for
// values outside int64 and for fractional or exponent forms.
func parseNumber(word string) (Value, bool) {
	if !isDecimalLiteral(word) {
		return Value{}, false
	}
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return NewInt(i), true
	}
	f, err := strconv.ParseFloat(word, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, false
	}
	return NewFloat(f), true
}

// isDecimalLiteral reports whether word is an optional '-', ASCII digits
// with at most one '.', and an optional unsigned e/E exponent. strconv alone
// would also take underscores and hex.
func isDecimalLiteral(word string) bool {
	s := strings.TrimPrefix(word, "-")
	mantissa := s
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa = s[:i]
		if !isDigits(s[i+1:]) {
			return false
		}
	}
	whole, frac, hasDot := strings.Cut(mantissa, ".")
	if !isDigits(whole) {
		return false
	}
	return !hasDot || frac == "" || isDigits(frac)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isDigit starts a numeric token. Any Unicode number qualifies, so "½x"
// fails as a numeric literal rather than reading as a symbol.
func isDigit(r rune) bool {
	return unicode.IsNumber(r)
}

func isPunct(r rune) bool {
	if r == '_' || r > unicode.MaxASCII {
		return false
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
