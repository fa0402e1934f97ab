package fundot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindList:
		return "list"
	case KindVector:
		return "vector"
	case KindMap:
		return "map"
	case KindHandle:
		return "handle"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String renders the display form. Map entries appear in unspecified order;
// use Canonical for stable output.
func (v Value) String() string {
	var p printer
	p.write(v)
	return p.b.String()
}

// ErrNoReadableForm is returned by Canonical for values the reader cannot
// produce: handles and non-finite floats.
var ErrNoReadableForm = errors.New("value has no readable form")

// Canonical renders v so that reading the result yields an equal value of
// the same kinds: map entries are sorted by their rendered keys and floats
// always keep a '.' or an exponent.
func Canonical(v Value) (string, error) {
	p := printer{canonical: true}
	p.write(v)
	if p.err != nil {
		return "", p.err
	}
	return p.b.String(), nil
}

type printer struct {
	b         strings.Builder
	canonical bool
	err       error
}

func (p *printer) fail(v Value) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s %s", ErrNoReadableForm, v.kind, v.String())
	}
}

func (p *printer) write(v Value) {
	switch v.kind {
	case KindNull:
		p.b.WriteString("null")
	case KindBool:
		p.b.WriteString(strconv.FormatBool(v.data.(bool)))
	case KindInt:
		p.b.WriteString(strconv.FormatInt(v.data.(int64), 10))
	case KindFloat:
		p.writeFloat(v)
	case KindString:
		p.b.WriteString(quoteString(v.data.(string)))
	case KindSymbol:
		p.b.WriteString(v.data.(string))
	case KindList:
		p.writeItems("(", " ", ")", v.data.([]Value))
	case KindVector:
		p.writeItems("[", ", ", "]", v.data.([]Value))
	case KindMap:
		p.writeMap(v.data.(*Map))
	case KindHandle:
		if p.canonical {
			p.fail(v)
		}
		fmt.Fprintf(&p.b, "<handle %s>", v.data.(*Handle).Name)
	default:
		fmt.Fprintf(&p.b, "<%v>", v.kind)
	}
}

func (p *printer) writeFloat(v Value) {
	f := v.data.(float64)
	switch {
	case math.IsNaN(f):
		p.b.WriteString("NaN")
	case math.IsInf(f, 1):
		p.b.WriteString("inf")
	case math.IsInf(f, -1):
		p.b.WriteString("-inf")
	case !p.canonical:
		p.b.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	case math.Abs(f) >= 1e21:
		// '+' would read as a symbol of its own.
		p.b.WriteString(strings.Replace(strconv.FormatFloat(f, 'e', -1, 64), "e+", "e", 1))
	default:
		text := strconv.FormatFloat(f, 'f', -1, 64)
		p.b.WriteString(text)
		if !strings.ContainsRune(text, '.') {
			p.b.WriteString(".0")
		}
	}
	if p.canonical && (math.IsNaN(f) || math.IsInf(f, 0)) {
		p.fail(v)
	}
}

func (p *printer) writeItems(left, sep, right string, items []Value) {
	p.b.WriteString(left)
	for i, item := range items {
		if i > 0 {
			p.b.WriteString(sep)
		}
		p.write(item)
	}
	p.b.WriteString(right)
}

func (p *printer) writeMap(m *Map) {
	entries := m.Entries()
	parts := make([]string, len(entries))
	for i, e := range entries {
		part := printer{canonical: p.canonical}
		part.write(e.Key)
		part.b.WriteString(": ")
		part.write(e.Value)
		if part.err != nil && p.err == nil {
			p.err = part.err
		}
		parts[i] = part.b.String()
	}
	if p.canonical {
		sort.Strings(parts)
	}
	p.b.WriteString("{")
	p.b.WriteString(strings.Join(parts, ", "))
	p.b.WriteString("}")
}

func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Equal compares across numeric kinds and treats null as equal to false.
// Collections compare structurally and only against the same kind.
func (v Value) Equal(other Value) bool {
	switch {
	case v.kind == KindInt && other.kind == KindFloat:
		return float64(v.data.(int64)) == other.data.(float64)
	case v.kind == KindFloat && other.kind == KindInt:
		return v.data.(float64) == float64(other.data.(int64))
	case v.kind == KindNull && other.kind == KindBool:
		return !other.data.(bool)
	case v.kind == KindBool && other.kind == KindNull:
		return !v.data.(bool)
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.data.(bool) == other.data.(bool)
	case KindInt:
		return v.data.(int64) == other.data.(int64)
	case KindFloat:
		return v.data.(float64) == other.data.(float64)
	case KindString, KindSymbol:
		return v.data.(string) == other.data.(string)
	case KindList, KindVector:
		return equalItems(v.data.([]Value), other.data.([]Value))
	case KindMap:
		return v.data.(*Map).equal(other.data.(*Map))
	case KindHandle:
		return v.data.(*Handle) == other.data.(*Handle)
	default:
		return false
	}
}

func equalItems(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// constantHash is shared by every kind without a content hash.
const constantHash uint64 = 0

// Hash keys integers, strings and symbols by content. All other kinds
// collide on one constant so any Value can key a Map without a canonical
// float or collection hash.
func (v Value) Hash() uint64 {
	h := fnv.New64a()
	switch v.kind {
	case KindInt:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v.data.(int64)))
		_, _ = h.Write(buf[:])
	case KindString, KindSymbol:
		_, _ = h.Write([]byte(v.data.(string)))
	default:
		return constantHash
	}
	return h.Sum64()
}
