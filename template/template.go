/*
Package template implements quasiquote processing (spec.md §4.6): the
tree-rewrite a backtick tag applies to its argument before the reader
hands the result back up — auto-qualification of bare symbols, `$#`
gensym renaming, and `,`/`,@` unquote/splice.

Scope note (recorded in DESIGN.md): spec.md's splice describes a
runtime operation ("the argument must evaluate to an iterable and is
spliced"), which in full generality requires the template to compile to
a tuple-construction call evaluated by the host at macro-expansion time.
This implementation covers the template-authoring-time case that
dominates real macro bodies: a `,@` target that is itself a literal
tuple (most commonly another quasiquote or a quoted list) is flattened
into the parent at Quasiquote time; a `,@` target that is some other
kind of node is reported as a TemplateError rather than silently
mishandled. A genuinely dynamic splice (e.g. splicing a function's
return value) is out of scope for this pass.

Quasiquote's result is always wrapped as `(ir.TemplateHead processed)`
(ir.TemplateEscapeHead marking the one escape hatch within processed,
left by an unquote): the compiler renders everything in processed as
quoted tuple/symbol data except at an escape, where it compiles and
evaluates the wrapped payload as ordinary code — the "make-tuple
primitive" spec.md §4.6 describes. See compiler/template.go.
*/
package template

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/hisspgo/hissp/ir"
)

// tracer traces with key 'hissp.template'.
func tracer() tracing.Trace {
	return tracing.Select("hissp.template")
}

// qqState accumulates gensym renamings for one top-level Quasiquote
// call, so repeated `$#name` occurrences within one template receive
// the same renaming (spec.md §3 invariant 4, §8 property 5).
type qqState struct {
	seen map[string]int
}

// Quasiquote processes node as the argument of a backtick tag: bare
// Fragments are auto-qualified against env, `$#name` occurrences are
// renamed consistently, and `,`/`,@` markers are resolved.
func Quasiquote(node ir.Node, env *ir.Environment) (ir.Node, error) {
	st := &qqState{seen: make(map[string]int)}
	result, err := qq(node, env, st)
	if err != nil {
		return nil, err
	}
	wrapped := ir.NewTuple(ir.NewFragment(ir.TemplateHead), result)
	tracer().Debugf("template.Quasiquote: %s => %s", node, wrapped)
	return wrapped, nil
}

func qq(node ir.Node, env *ir.Environment, st *qqState) (ir.Node, error) {
	t, isTuple := node.(*ir.Tuple)
	if isTuple {
		if base, ok := isGensym(t); ok {
			return ir.NewFragment(gensymName(base, env, st)), nil
		}
		if payload, ok := isUnquote(t); ok {
			return ir.NewTuple(ir.NewFragment(ir.TemplateEscapeHead), payload), nil
		}
		if _, ok := isSplice(t); ok {
			return nil, &TemplateError{Msg: "splice (,@) is not valid outside of a tuple position"}
		}
		return qqTuple(t, env, st)
	}
	if frag, ok := node.(ir.Fragment); ok {
		return qualify(frag, env), nil
	}
	return node, nil
}

func qqTuple(t *ir.Tuple, env *ir.Environment, st *qqState) (ir.Node, error) {
	var children []ir.Node
	for _, c := range t.Children() {
		if payload, ok := isSplice(c); ok {
			sub, ok := payload.(*ir.Tuple)
			if !ok {
				return nil, &TemplateError{Msg: ",@ target must be a literal tuple at template-construction time, got " + fmt.Sprintf("%T", payload)}
			}
			for _, sc := range sub.Children() {
				processed, err := qq(sc, env, st)
				if err != nil {
					return nil, err
				}
				children = append(children, processed)
			}
			continue
		}
		processed, err := qq(c, env, st)
		if err != nil {
			return nil, err
		}
		children = append(children, processed)
	}
	return ir.NewTuple(children...), nil
}

func gensymName(base string, env *ir.Environment, st *qqState) string {
	n, ok := st.seen[base]
	if !ok {
		n = env.NextGensym()
		st.seen[base] = n
	}
	return fmt.Sprintf("%s_QzNo%d_", base, n)
}

// qualify auto-qualifies a bare symbol Fragment against env's namespace
// (spec.md §4.6), a no-op for control words, module handles, and
// already-qualified names (the idempotence invariant, spec.md §3
// invariant 5). A Fragment reachable as a macro is qualified via the
// `module..QzMaybe_.name` deferred form instead (spec.md §4.5 rule 4).
func qualify(frag ir.Fragment, env *ir.Environment) ir.Node {
	if frag.Kind == ir.FragControlWord || frag.Kind == ir.FragModuleHandle {
		return frag
	}
	if strings.Contains(frag.Text, "..") {
		return frag
	}
	if env == nil {
		return frag
	}
	if env.FindMacro(frag.Text) != nil {
		return ir.NewFragment(env.Name + "..QzMaybe_." + frag.Text)
	}
	return ir.NewFragment(env.Name + ".." + frag.Text)
}
