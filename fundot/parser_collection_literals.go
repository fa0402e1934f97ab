package fundot

import "fmt"

func (p *parser) parseList(open Token) (Value, error) {
	items, err := p.collect(open, func(tok Token) bool {
		return isDelimiter(tok, delimRParen)
	})
	if err != nil {
		return Value{}, err
	}
	p.next()
	return NewList(items), nil
}

// parseVector reads comma separated elements. A comma directly before an
// element is skipped, so "[,1]" reads as "[1]"; empty segments elsewhere
// are rejected.
func (p *parser) parseVector(open Token) (Value, error) {
	items := []Value{}
	stop := func(tok Token) bool {
		return isDelimiter(tok, delimComma) || isDelimiter(tok, delimRBracket)
	}
	for !p.done() {
		if isDelimiter(p.peek(), delimRBracket) {
			p.next()
			return NewVector(items), nil
		}
		if isDelimiter(p.peek(), delimComma) {
			p.next()
		}
		start := p.pos
		segment, err := p.collect(open, stop)
		if err != nil {
			return Value{}, err
		}
		if len(segment) != 1 {
			problem := fmt.Sprintf("vector element must be one value, got %d", len(segment))
			if err := p.malformed(p.segmentError(MalformedVectorElement, start, problem)); err != nil {
				return Value{}, err
			}
			continue
		}
		items = append(items, segment[0])
	}
	return Value{}, p.unclosed(open)
}

// parseMap reads comma separated "key : value" segments. Later keys replace
// earlier equal ones.
func (p *parser) parseMap(open Token) (Value, error) {
	m := newMap()
	stop := func(tok Token) bool {
		return isDelimiter(tok, delimComma) || isDelimiter(tok, delimRBrace)
	}
	for !p.done() {
		if isDelimiter(p.peek(), delimRBrace) {
			p.next()
			return NewMap(m), nil
		}
		if isDelimiter(p.peek(), delimComma) {
			p.next()
		}
		start := p.pos
		segment, err := p.collect(open, stop)
		if err != nil {
			return Value{}, err
		}
		if problem := pairProblem(segment); problem != "" {
			if err := p.malformed(p.segmentError(MalformedMapPair, start, problem)); err != nil {
				return Value{}, err
			}
			continue
		}
		m.Set(segment[0], segment[2])
	}
	return Value{}, p.unclosed(open)
}

func pairProblem(segment []Value) string {
	if len(segment) != 3 {
		return fmt.Sprintf("map entry must be key: value, got %d items", len(segment))
	}
	if !segment[1].IsSymbol(delimColon) {
		return fmt.Sprintf("map entry must separate key and value with ':', got %s", segment[1].String())
	}
	return ""
}
