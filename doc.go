/*
Package hissp implements the reader and macro-expanding compiler for
Hissp: a Lisp that compiles to a small, functional subset of Python.

The pipeline runs leaves-first across the module's sub-packages:

■ munge: a bidirectional mapping between surface identifiers (with
arbitrary punctuation) and host-legal Python identifiers.

■ lex: a tokenizer turning Lissp source text into a lazy sequence of
typed lexemes.

■ ir: the in-memory Hissp intermediate representation — tuples, two
flavors of string atom, and other self-evaluating atoms — plus the
Environment/Symbol/Operator namespace types shared by the macroexpander
and the template engine.

■ reader: parses lexemes into Hissp IR, dispatching reader-macro tags
and tracking the per-invocation gensym counter.

■ template: implements quasiquote, including auto-qualification of bare
symbols and `$#` gensym renaming.

■ macro: resolves head-position names against a module's `_macro_`
namespace and expands macro forms outside-in.

■ compiler: translates fully macro-expanded Hissp IR into Python source
text.

■ host: the narrow interface the core uses to evaluate emitted Python
and resolve imports; a real implementation shells a Python interpreter,
and a null implementation supports compiling programs that never read-time
evaluate anything.

This package itself holds only the types shared across all of the above:
source spans and the base error-reporting contract.
*/
package hissp
