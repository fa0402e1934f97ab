package fundot

func NewNull() Value              { return Value{kind: KindNull} }
func NewBool(b bool) Value        { return Value{kind: KindBool, data: b} }
func NewInt(i int64) Value        { return Value{kind: KindInt, data: i} }
func NewFloat(f float64) Value    { return Value{kind: KindFloat, data: f} }
func NewString(s string) Value    { return Value{kind: KindString, data: s} }
func NewSymbol(name string) Value { return Value{kind: KindSymbol, data: name} }
func NewList(items []Value) Value {
	return Value{kind: KindList, data: items}
}
func NewVector(items []Value) Value {
	return Value{kind: KindVector, data: items}
}
func NewMap(m *Map) Value {
	if m == nil {
		m = newMap()
	}
	return Value{kind: KindMap, data: m}
}

func NewHandle(name string, fn HandleFunc) Value {
	return Value{kind: KindHandle, data: &Handle{Name: name, Fn: fn}}
}
