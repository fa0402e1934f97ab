package fundot

import "fmt"

// DefaultMaxDepth bounds bracket nesting when ParseOptions leaves it unset.
const DefaultMaxDepth = 1000

type ParseOptions struct {
	// MaxDepth limits nested brackets; zero means DefaultMaxDepth.
	MaxDepth int
}

type parser struct {
	source string
	tokens []Token
	pos    int

	depth    int
	maxDepth int

	// When recovering, malformed segments are recorded and skipped.
	recovering bool
	recovered  []*ParseError
}

func newParser(source string, tokens []Token, opts ParseOptions) *parser {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &parser{source: source, tokens: tokens, maxDepth: opts.MaxDepth}
}

// Parse reads the first form of src. Atoms after it are ignored.
func Parse(src string) (Value, error) {
	return ParseWithOptions(src, ParseOptions{})
}

func ParseWithOptions(src string, opts ParseOptions) (Value, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return Value{}, err
	}
	return newParser(src, tokens, opts).parseForm()
}

// ParseAll reads every top-level form of src in order.
func ParseAll(src string, opts ParseOptions) ([]Value, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := newParser(src, tokens, opts)
	var forms []Value
	for !p.done() {
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// Diagnose reads every form of src and reports all the problems it finds.
// Malformed vector elements and map pairs are skipped and reading goes on;
// a tokenizer error, an unclosed bracket or the depth limit ends the scan.
// It returns nil when src reads cleanly.
func Diagnose(src string, opts ParseOptions) []*ParseError {
	tokens, err := Tokenize(src)
	if err != nil {
		return []*ParseError{asParseError(err)}
	}
	p := newParser(src, tokens, opts)
	p.recovering = true
	for !p.done() {
		if _, err := p.parseForm(); err != nil {
			p.recovered = append(p.recovered, asParseError(err))
			break
		}
	}
	return p.recovered
}

func (p *parser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *parser) endPosition() Position {
	if len(p.tokens) == 0 {
		return Position{Line: 1, Column: 1}
	}
	return p.tokens[len(p.tokens)-1].Pos
}

func (p *parser) parseForm() (Value, error) {
	if p.done() {
		return Value{}, newParseError(UnexpectedEOF, p.endPosition(), 1, p.source, "expected a form, got end of input")
	}
	tok := p.peek()
	switch {
	case isDelimiter(tok, delimLParen):
		return p.nested(tok, p.parseList)
	case isDelimiter(tok, delimLBracket):
		return p.nested(tok, p.parseVector)
	case isDelimiter(tok, delimLBrace):
		return p.nested(tok, p.parseMap)
	default:
		return p.next().Value, nil
	}
}

func (p *parser) nested(open Token, parse func(Token) (Value, error)) (Value, error) {
	if p.depth >= p.maxDepth {
		return Value{}, newParseError(DepthExceeded, open.Pos, open.Width, p.source, fmt.Sprintf("nesting exceeds %d levels", p.maxDepth))
	}
	p.depth++
	defer func() { p.depth-- }()
	p.next()
	return parse(open)
}

// collect parses forms until stop matches the next atom, leaving that atom
// unconsumed. Running out of atoms is an unbalanced delimiter.
func (p *parser) collect(open Token, stop func(Token) bool) ([]Value, error) {
	items := []Value{}
	for !p.done() {
		if stop(p.peek()) {
			return items, nil
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return nil, p.unclosed(open)
}

func (p *parser) unclosed(open Token) error {
	return newParseError(UnbalancedDelimiter, open.Pos, open.Width, p.source, fmt.Sprintf("unclosed %s", open.Value.Text()))
}

// malformed fails with err, or records it and returns nil when recovering.
func (p *parser) malformed(err *ParseError) error {
	if !p.recovering {
		return err
	}
	p.recovered = append(p.recovered, err)
	return nil
}

// segmentError spans the atoms from tokens[start] up to the cursor. An
// empty segment is reported at the atom that ended it.
func (p *parser) segmentError(kind ErrorKind, start int, msg string) *ParseError {
	if start >= p.pos {
		tok := p.tokens[min(start, len(p.tokens)-1)]
		return newParseError(kind, tok.Pos, tok.Width, p.source, msg)
	}
	first, last := p.tokens[start], p.tokens[p.pos-1]
	width := first.Width
	if last.Pos.Line == first.Pos.Line {
		width = last.Pos.Column + last.Width - first.Pos.Column
	}
	return newParseError(kind, first.Pos, width, p.source, msg)
}
