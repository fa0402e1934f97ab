// Package fundot reads and evaluates a small textual value notation. The
// notation covers:
//   - Atoms: null, true, false, integers, floats, double-quoted strings and
//     symbols. Every ASCII punctuation character except `_` is a symbol of
//     its own.
//   - Lists `(a b c)`, vectors `[a, b, c]` and maps `{k: v, k2: v2}`, nested
//     to any depth up to ParseOptions.MaxDepth.
//
// An Evaluator resolves symbols against a fixed table of host primitives
// (`get`, `quit`) and dispatches list forms whose head is a handle. The
// handle receives the call form with its arguments unevaluated.
package fundot
