/*
Package host implements the boundary between the Go toolchain and the
Python runtime a compiled Hissp program targets: the four operations of
spec.md §4.8 (eval, import_module, make_env, repr), exposed as Bridge.

There are two implementations: PyBridge, which shells a python3
subprocess, and NullBridge, whose MakeEnv returns an empty environment
and whose other operations all return an error; it supports compiling
programs that never invoke a read-time `.#` or a macro.
*/
package host

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/hisspgo/hissp/ir"
)

// tracer traces with key 'hissp.host'.
func tracer() tracing.Trace {
	return tracing.Select("hissp.host")
}

// Module is a handle returned by Bridge.ImportModule: enough to resolve
// an attribute chain (including a `_macro_` namespace) against it.
type Module struct {
	Name string
	// Attrs holds attribute names known to exist on the module, as
	// reported by the host interpreter at import time. Macro lookup
	// (spec.md §4.5) consults only HasMacro, not Attrs.
	Attrs map[string]bool
	// HasMacroNS reports whether the module itself defines a `_macro_`
	// attribute.
	HasMacroNS bool
	// MacroAttrs holds the names defined under the module's `_macro_`,
	// when HasMacroNS is true.
	MacroAttrs map[string]bool
}

// HasAttr reports whether name is a known attribute of the module.
func (m Module) HasAttr(name string) bool {
	return m.Attrs != nil && m.Attrs[name]
}

// HasMacro reports whether name is defined under the module's `_macro_`.
func (m Module) HasMacro(name string) bool {
	return m.HasMacroNS && m.MacroAttrs != nil && m.MacroAttrs[name]
}

// Bridge is the exactly-four-operation contract the core pipeline uses
// to reach the host interpreter (spec.md §4.8). The core never calls
// anything else on the host.
type Bridge interface {
	// Eval evaluates source (already-compiled Python) in env's namespace
	// and returns the result as an IR node — used by `.#` and by macro
	// invocation (macro bodies are compiled Python, evaluated here).
	Eval(source string, env *ir.Environment) (ir.Node, error)
	// ImportModule resolves a dotted module path, used to satisfy
	// qualified Fragment and macro-namespace lookups across modules.
	ImportModule(dotted string) (Module, error)
	// MakeEnv produces a fresh namespace for moduleName, pre-populated
	// with that module's own `_macro_` attribute when present.
	MakeEnv(moduleName string) *ir.Environment
	// Repr renders v the way the host's own repr/print would; cmd/hisspl
	// uses it to print evaluation results.
	Repr(v any) (string, error)
}

// BridgeError reports a failure at the host boundary: a Python
// exception, a malformed response frame, or an unreachable subprocess.
type BridgeError struct {
	Op  string // "eval", "import_module", "make_env", "repr"
	Msg string
	Err error
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("host bridge %s: %s", e.Op, e.Msg)
}

func (e *BridgeError) Unwrap() error { return e.Err }
