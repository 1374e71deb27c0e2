package compiler

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"

	"github.com/hisspgo/hissp/ir"
)

// emitOpaque emits a Foreign atom (spec.md §4.7, §9). No pack example
// wires a Go↔Python pickle writer with a grounded API, so this path
// never serializes f.Value for Python's consumption itself: when the
// host bridge (which alone ran the value through the real Python
// interpreter at `.#` inject time) furnished a reconstruction
// expression, that PySource is emitted verbatim. Otherwise, the value
// has no host-legal representation at all and compilation fails.
func emitOpaque(e *emitter, f ir.Foreign) error {
	if f.PySource != "" {
		e.writeString(f.PySource)
		return nil
	}
	return &CompileError{
		Kind: UnrepresentableAtom,
		Msg:  fmt.Sprintf("foreign value %s has no host-furnished Python reconstruction (%s)", f.String(), debugGob(f.Value)),
	}
}

// debugGob best-effort gob-encodes v to a base64 string purely for the
// CompileError message — a debugging aid, never sent to the host as
// executable Python (see the opaque-serialization note in DESIGN.md).
func debugGob(v any) string {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return "unencodable"
	}
	return "gob:" + base64.StdEncoding.EncodeToString(buf.Bytes())
}
