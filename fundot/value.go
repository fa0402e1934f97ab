package fundot

type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSymbol
	KindList
	KindVector
	KindMap
	KindHandle
)

// Value is an immutable tagged union. Collections share their backing
// storage between copies; nothing mutates them after construction.
type Value struct {
	kind ValueKind
	data any
}

// HandleFunc is the uniform call protocol for host primitives. It receives
// the call form: the evaluated handle followed by the unevaluated arguments.
type HandleFunc func(call Value) Value

// Handle is an opaque capability wrapping a host primitive.
type Handle struct {
	Name string
	Fn   HandleFunc
}

// Call invokes the wrapped primitive.
func (h *Handle) Call(call Value) Value {
	if h == nil || h.Fn == nil {
		return NewNull()
	}
	return h.Fn(call)
}
