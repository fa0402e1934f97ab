package fundot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
)

// Mode selects how the evaluator treats unbound symbols and non-callable
// call heads.
type Mode int

const (
	// ModePermissive lets unbound symbols evaluate to themselves and calls
	// on non-handles evaluate to null.
	ModePermissive Mode = iota
	// ModeStrict reports both as *EvalError.
	ModeStrict
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	default:
		return "permissive"
	}
}

// ParseMode maps "strict" or "permissive" (or "") to a Mode.
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "", "permissive":
		return ModePermissive, true
	case "strict":
		return ModeStrict, true
	default:
		return ModePermissive, false
	}
}

// Config controls evaluator construction.
type Config struct {
	Mode Mode

	// Exit terminates the host for the quit primitive. Defaults to os.Exit.
	Exit func(code int)

	// Builtins adds host primitives to the global table, replacing the
	// standard ones of the same name.
	Builtins map[string]HandleFunc

	Logger *slog.Logger
}

// Evaluator resolves symbols against a global table fixed at construction.
// It holds no mutable state and may be shared between goroutines.
type Evaluator struct {
	mode    Mode
	globals map[string]Value
	logger  *slog.Logger
}

func NewEvaluator(cfg Config) *Evaluator {
	if cfg.Exit == nil {
		cfg.Exit = os.Exit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	globals := make(map[string]Value)
	for name, fn := range standardBuiltins(cfg.Exit) {
		globals[name] = NewHandle(name, fn)
	}
	for name, fn := range cfg.Builtins {
		globals[name] = NewHandle(name, fn)
	}

	return &Evaluator{mode: cfg.Mode, globals: globals, logger: cfg.Logger}
}

func (e *Evaluator) Mode() Mode { return e.mode }

// Lookup returns the global bound to name.
func (e *Evaluator) Lookup(name string) (Value, bool) {
	v, ok := e.globals[name]
	return v, ok
}

// Names lists the bound globals in sorted order.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.globals))
	for name := range e.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Eval evaluates v. Errors are only returned in ModeStrict.
func (e *Evaluator) Eval(v Value) (Value, error) {
	switch v.kind {
	case KindSymbol:
		return e.evalSymbol(v)
	case KindList:
		return e.evalList(v.data.([]Value))
	default:
		return v, nil
	}
}

func (e *Evaluator) evalSymbol(sym Value) (Value, error) {
	if bound, ok := e.globals[sym.Text()]; ok {
		return bound, nil
	}
	if e.mode == ModeStrict {
		return Value{}, &EvalError{Kind: UnboundSymbol, Value: sym}
	}
	return sym, nil
}

func (e *Evaluator) evalList(items []Value) (Value, error) {
	if len(items) == 0 {
		return NewNull(), nil
	}
	head, err := e.Eval(items[0])
	if err != nil {
		return Value{}, err
	}
	handle := head.Handle()
	if handle == nil {
		if e.mode == ModeStrict {
			return Value{}, &EvalError{Kind: NotCallable, Value: head}
		}
		return NewNull(), nil
	}

	call := make([]Value, 0, len(items))
	call = append(call, head)
	call = append(call, items[1:]...)
	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "call",
		slog.String("handle", handle.Name),
		slog.Int("args", len(items)-1),
	)
	return handle.Call(NewList(call)), nil
}
