package host

import "github.com/hisspgo/hissp/ir"

// NullBridge implements Bridge by returning an error from Eval,
// ImportModule and Repr; MakeEnv returns a fresh empty environment with
// no parent. It is the "pure
// mode" choice (spec.md §9 Open Question 2): compiling a program that
// never uses `.#`, never calls a macro, and never references a
// cross-module `_macro_` works fine against NullBridge, since none of
// those features ever reach the Bridge.
type NullBridge struct{}

var _ Bridge = NullBridge{}

func (NullBridge) Eval(source string, env *ir.Environment) (ir.Node, error) {
	return nil, &BridgeError{Op: "eval", Msg: "no host bridge configured (pure mode)"}
}

func (NullBridge) ImportModule(dotted string) (Module, error) {
	return Module{}, &BridgeError{Op: "import_module", Msg: "no host bridge configured (pure mode)"}
}

func (NullBridge) MakeEnv(moduleName string) *ir.Environment {
	return ir.NewEnvironment(moduleName, nil)
}

func (NullBridge) Repr(v any) (string, error) {
	return "", &BridgeError{Op: "repr", Msg: "no host bridge configured (pure mode)"}
}
