/*
Package macro implements the macroexpander (spec.md §4.5): outside-in
rewriting of macro-form Tuples, driven by the four head-resolution rules
plus the `QzMaybe_` deferred-macro fallback.

A macro call has no span of its own in this IR (ir.Node carries no
source position once the reader has produced it — see ir.Node's doc),
so ExpansionError.At is always the zero Span; the macro name in the
error message is what actually locates the failure for a user.
*/
package macro

import (
	"strings"
	"sync"

	"github.com/cnf/structhash"
	"github.com/npillmayer/schuko/tracing"

	"github.com/hisspgo/hissp/compiler"
	"github.com/hisspgo/hissp/host"
	"github.com/hisspgo/hissp/ir"
)

// tracer traces with key 'hissp.macro'.
func tracer() tracing.Trace {
	return tracing.Select("hissp.macro")
}

// bodyCache memoizes the compiled-source text of a macro invocation's
// quoted argument list, keyed by a structural hash of the argument list.
// Expand creates a fresh cache for each top-level form, so identical
// argument lists are compiled once per form expanded (spec.md §9: "cache
// already-compiled macro bodies keyed by their IR identity").
type bodyCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newBodyCache() *bodyCache {
	return &bodyCache{entries: make(map[string]string)}
}

func (c *bodyCache) compiledArgs(args []ir.Node, env *ir.Environment) (string, error) {
	key, err := structhash.Hash(struct{ Form string }{Form: argsKey(args)}, 1)
	if err != nil {
		// structhash only fails on an un-hashable type; a struct holding
		// one string can't produce one, so fall straight through
		// uncached rather than treat this as a real error.
		return compileQuotedArgs(args, env)
	}
	c.mu.Lock()
	cached, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}
	src, err := compileQuotedArgs(args, env)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.entries[key] = src
	c.mu.Unlock()
	return src, nil
}

func argsKey(args []ir.Node) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.String())
		b.WriteByte(0)
	}
	return b.String()
}

func compileQuotedArgs(args []ir.Node, env *ir.Environment) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		src, err := compiler.Compile(ir.NewTuple(ir.NewFragment("quote"), a), env)
		if err != nil {
			return "", err
		}
		parts[i] = src
	}
	return strings.Join(parts, ", "), nil
}

// Expand applies the macroexpander to node, recursively, outside-in
// (spec.md §4.5). bridge backs cross-module macro lookup (rules 1 and
// 4); pass host.NullBridge{} for a program that only ever uses macros
// local to its own namespace.
func Expand(node ir.Node, env *ir.Environment, bridge host.Bridge) (ir.Node, error) {
	if bridge == nil {
		bridge = host.NullBridge{}
	}
	return expand(node, env, bridge, newBodyCache())
}

func expand(node ir.Node, env *ir.Environment, bridge host.Bridge, cache *bodyCache) (ir.Node, error) {
	t, ok := node.(*ir.Tuple)
	if !ok || t.Len() == 0 {
		return node, nil
	}
	head, headIsFragment := t.Head().(ir.Fragment)
	if headIsFragment && head.Kind != ir.FragModuleHandle {
		switch head.Text {
		case "quote":
			// Quoted data is never macro-expanded or recursed into.
			return t, nil
		case ir.TemplateHead:
			return expandTemplateData(t, env, bridge, cache)
		case "lambda":
			return expandLambda(t, env, bridge, cache)
		}
	}
	if headIsFragment {
		callableSrc, isMacro, rewrittenHead, err := resolveMacro(head, env, bridge)
		if err != nil {
			return nil, err
		}
		if isMacro {
			result, err := invokeMacro(callableSrc, t.Tail().Children(), env, bridge, cache)
			if err != nil {
				return nil, &ExpansionError{Macro: callableSrc, Cause: err}
			}
			tracer().Debugf("macro.Expand: %s => %s", t, result)
			return expand(result, env, bridge, cache)
		}
		if rewrittenHead.Text != head.Text {
			t = t.WithChildren(append([]ir.Node{rewrittenHead}, t.Tail().Children()...))
		}
	}
	children := make([]ir.Node, t.Len())
	for i, c := range t.Children() {
		ec, err := expand(c, env, bridge, cache)
		if err != nil {
			return nil, err
		}
		children[i] = ec
	}
	return ir.NewTuple(children...), nil
}

// expandTemplateData walks a quasiquote's wrapped result (ir.TemplateHead,
// see template.go and compiler/template.go): everything in it is quoted
// tuple/symbol data except at an ir.TemplateEscapeHead pair, the one
// place an unquote left ordinary code, which is macro-expanded like any
// other form before the template is compiled.
func expandTemplateData(node ir.Node, env *ir.Environment, bridge host.Bridge, cache *bodyCache) (ir.Node, error) {
	t, ok := node.(*ir.Tuple)
	if !ok {
		return node, nil
	}
	if payload, ok := ir.TemplateEscape(t); ok {
		expanded, err := expand(payload, env, bridge, cache)
		if err != nil {
			return nil, err
		}
		return ir.NewTuple(t.Head(), expanded), nil
	}
	children := make([]ir.Node, t.Len())
	for i, c := range t.Children() {
		ec, err := expandTemplateData(c, env, bridge, cache)
		if err != nil {
			return nil, err
		}
		children[i] = ec
	}
	return ir.NewTuple(children...), nil
}

// expandLambda recurses into a lambda's body only, leaving its
// parameter-tuple head untouched (parameter names are not forms to be
// macro-expanded, spec.md §4.7).
func expandLambda(t *ir.Tuple, env *ir.Environment, bridge host.Bridge, cache *bodyCache) (ir.Node, error) {
	children := t.Tail().Children()
	if len(children) == 0 {
		return t, nil
	}
	out := make([]ir.Node, 0, len(children)+1)
	out = append(out, t.Head(), children[0])
	for _, b := range children[1:] {
		eb, err := expand(b, env, bridge, cache)
		if err != nil {
			return nil, err
		}
		out = append(out, eb)
	}
	return ir.NewTuple(out...), nil
}

// resolveMacro applies the four head-resolution rules of spec.md §4.5 to
// a Tuple's head Fragment. It returns the fully-qualified callable
// source text when head names a macro; otherwise isMacro is false and
// rewrittenHead is either head unchanged, or (for an unresolved
// `module..QzMaybe_.name` head) rewritten to the plain `module..name`
// call form the spec mandates as the non-macro fallback.
func resolveMacro(head ir.Fragment, env *ir.Environment, bridge host.Bridge) (callableSrc string, isMacro bool, rewrittenHead ir.Fragment, err error) {
	text := head.Text
	if idx := strings.Index(text, ".."); idx >= 0 {
		module, rest := text[:idx], text[idx+2:]
		if name, ok := strings.CutPrefix(rest, "QzMaybe_."); ok {
			mod, merr := bridge.ImportModule(module)
			if merr != nil {
				// Can't confirm against a running host (e.g. pure mode);
				// fall back to the plain call per rule (4)'s "absent" case.
				return "", false, ir.NewFragment(module + ".." + name), nil
			}
			if mod.HasMacro(name) {
				return module + ".._macro_." + name, true, head, nil
			}
			return "", false, ir.NewFragment(module + ".." + name), nil
		}
		// Rule 1: fully qualified, final segment under module's _macro_.
		mod, merr := bridge.ImportModule(module)
		if merr != nil {
			return "", false, head, nil
		}
		if mod.HasMacro(rest) {
			return module + ".._macro_." + rest, true, head, nil
		}
		return "", false, head, nil
	}
	if name, ok := strings.CutPrefix(text, "_macro_."); ok {
		// Rule 2: relative to the current compilation namespace.
		if env != nil && env.FindMacro(name) != nil {
			return env.Name + ".._macro_." + name, true, head, nil
		}
		return "", false, head, nil
	}
	// Rule 3: unqualified, reachable under the current namespace's _macro_.
	if env != nil && env.FindMacro(text) != nil {
		return env.Name + ".._macro_." + text, true, head, nil
	}
	return "", false, head, nil
}

// invokeMacro evaluates callableSrc through the host bridge, passing
// args as unevaluated quoted IR (spec.md §4.5: "its unevaluated
// argument IR nodes as actual arguments").
func invokeMacro(callableSrc string, args []ir.Node, env *ir.Environment, bridge host.Bridge, cache *bodyCache) (ir.Node, error) {
	argSrc, err := cache.compiledArgs(args, env)
	if err != nil {
		return nil, err
	}
	call := callableSrc + "(" + argSrc + ")"
	result, err := bridge.Eval(call, env)
	if err != nil {
		return nil, err
	}
	return result, nil
}
