package fundot

func standardBuiltins(exit func(int)) map[string]HandleFunc {
	return map[string]HandleFunc{
		"quit": builtinQuit(exit),
		"get":  builtinGet,
	}
}

// builtinQuit ends the host process. It only returns when exit does, as
// with a host-supplied hook.
func builtinQuit(exit func(int)) HandleFunc {
	return func(Value) Value {
		exit(0)
		return NewNull()
	}
}

// builtinGet indexes a vector by integer or looks up a map key. The
// container and key are taken as written, without evaluation.
func builtinGet(call Value) Value {
	args := call.Items()
	if len(args) < 3 {
		return NewNull()
	}
	container, key := args[1], args[2]
	switch container.Kind() {
	case KindVector:
		if key.Kind() != KindInt {
			return NewNull()
		}
		items := container.Items()
		idx := key.Int()
		if idx < 0 || idx >= int64(len(items)) {
			return NewNull()
		}
		return items[idx]
	case KindMap:
		if v, ok := container.Map().Get(key); ok {
			return v
		}
		return NewNull()
	default:
		return NewNull()
	}
}
