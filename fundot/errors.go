package fundot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	UnterminatedString ErrorKind = iota + 1
	InvalidEscape
	InvalidNumericLiteral
	UnbalancedDelimiter
	MalformedVectorElement
	MalformedMapPair
	UnexpectedEOF
	DepthExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string"
	case InvalidEscape:
		return "invalid escape"
	case InvalidNumericLiteral:
		return "invalid numeric literal"
	case UnbalancedDelimiter:
		return "unbalanced delimiter"
	case MalformedVectorElement:
		return "malformed vector element"
	case MalformedMapPair:
		return "malformed map pair"
	case UnexpectedEOF:
		return "unexpected end of input"
	case DepthExceeded:
		return "nesting too deep"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Sentinels for errors.Is against a *ParseError of the same kind.
var (
	ErrUnterminatedString     = &ParseError{Kind: UnterminatedString}
	ErrInvalidEscape          = &ParseError{Kind: InvalidEscape}
	ErrInvalidNumericLiteral  = &ParseError{Kind: InvalidNumericLiteral}
	ErrUnbalancedDelimiter    = &ParseError{Kind: UnbalancedDelimiter}
	ErrMalformedVectorElement = &ParseError{Kind: MalformedVectorElement}
	ErrMalformedMapPair       = &ParseError{Kind: MalformedMapPair}
	ErrUnexpectedEOF          = &ParseError{Kind: UnexpectedEOF}
	ErrDepthExceeded          = &ParseError{Kind: DepthExceeded}
)

// ParseError locates a failure at the atom (or bracketed segment) that
// caused it. Width is the number of runes it spans from Pos.
type ParseError struct {
	Kind  ErrorKind
	Pos   Position
	Width int
	Msg   string

	source string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Pos.Line > 0 {
		fmt.Fprintf(&b, "parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, msg)
	} else {
		fmt.Fprintf(&b, "parse error: %s", msg)
	}
	if frame := codeFrame(e.source, e.Pos, e.Width); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

func newParseError(kind ErrorKind, pos Position, width int, source, msg string) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Width: max(width, 1), Msg: msg, source: source}
}

func asParseError(err error) *ParseError {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr
	}
	return &ParseError{Msg: err.Error(), Width: 1}
}

// EvalErrorKind classifies failures raised in strict mode.
type EvalErrorKind int

const (
	UnboundSymbol EvalErrorKind = iota + 1
	NotCallable
)

func (k EvalErrorKind) String() string {
	switch k {
	case UnboundSymbol:
		return "unbound symbol"
	case NotCallable:
		return "not callable"
	default:
		return fmt.Sprintf("eval error kind %d", int(k))
	}
}

type EvalError struct {
	Kind  EvalErrorKind
	Value Value
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("eval error: %s: %s", e.Kind, e.Value.String())
}
