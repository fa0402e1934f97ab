package fundot

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() bool {
	if v.kind == KindBool {
		return v.data.(bool)
	}
	return false
}

func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.data.(int64)
	case KindFloat:
		return int64(v.data.(float64))
	default:
		return 0
	}
}

func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.data.(float64)
	case KindInt:
		return float64(v.data.(int64))
	default:
		return 0
	}
}

// Text returns the contents of a String or the name of a Symbol.
func (v Value) Text() string {
	if v.kind != KindString && v.kind != KindSymbol {
		return ""
	}
	return v.data.(string)
}

// Items returns the elements of a List or Vector. Callers must not modify
// the returned slice.
func (v Value) Items() []Value {
	if v.kind != KindList && v.kind != KindVector {
		return nil
	}
	return v.data.([]Value)
}

func (v Value) Map() *Map {
	if v.kind != KindMap {
		return nil
	}
	return v.data.(*Map)
}

func (v Value) Handle() *Handle {
	if v.kind != KindHandle {
		return nil
	}
	return v.data.(*Handle)
}

// IsSymbol reports whether v is the Symbol with the given name.
func (v Value) IsSymbol(name string) bool {
	return v.kind == KindSymbol && v.data.(string) == name
}
