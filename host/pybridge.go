package host

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/hisspgo/hissp/ir"
)

// driverScript is a minimal Python REPL-as-a-coprocess: it reads one
// JSON request per line from stdin and writes one JSON response per
// line to stdout, per the request/response frame shape PyBridge speaks.
const driverScript = `
import sys, json, importlib

_envs = {}

def _env(name):
    if name not in _envs:
        ns = {"__name__": name}
        try:
            mod = importlib.import_module(name)
            ns.update(vars(mod))
        except Exception:
            pass
        _envs[name] = ns
    return _envs[name]

for line in sys.stdin:
    line = line.strip()
    if not line:
        continue
    req = json.loads(line)
    op = req.get("op")
    try:
        if op == "eval":
            ns = _env(req.get("env", "__main__"))
            result = eval(compile(req["source"], "<hissp>", "eval"), ns)
            sys.stdout.write(json.dumps({"ok": True, "result": result}) + "\n")
        elif op == "import_module":
            mod = importlib.import_module(req["dotted"])
            attrs = {a: True for a in dir(mod)}
            macro_ns = getattr(mod, "_macro_", None)
            macro_attrs = {a: True for a in dir(macro_ns)} if macro_ns is not None else {}
            sys.stdout.write(json.dumps({
                "ok": True,
                "attrs": attrs,
                "has_macro_ns": macro_ns is not None,
                "macro_attrs": macro_attrs,
            }) + "\n")
        elif op == "make_env":
            _env(req["module"])
            sys.stdout.write(json.dumps({"ok": True}) + "\n")
        elif op == "repr":
            ns = _env(req.get("env", "__main__"))
            result = eval(compile(req["source"], "<hissp>", "eval"), ns)
            sys.stdout.write(json.dumps({"ok": True, "result": repr(result)}) + "\n")
        else:
            sys.stdout.write(json.dumps({"ok": False, "error": "unknown op " + str(op)}) + "\n")
    except Exception as exc:
        sys.stdout.write(json.dumps({"ok": False, "error": str(exc)}) + "\n")
    sys.stdout.flush()
`

// PyBridge implements Bridge by shelling a long-lived python3 subprocess
// and exchanging newline-delimited JSON request/response frames over its
// stdin/stdout, modeled structurally on schuko's pluggable-backend
// pattern: one narrow interface, one concrete "real" implementation
// selected at construction.
type PyBridge struct {
	mu  sync.Mutex
	cmd *exec.Cmd
	in  io.WriteCloser
	out *bufio.Scanner
}

var _ Bridge = (*PyBridge)(nil)

// NewPyBridge starts the python3 coprocess. pythonExe is the
// interpreter to exec ("python3" if empty).
func NewPyBridge(pythonExe string) (*PyBridge, error) {
	if pythonExe == "" {
		pythonExe = "python3"
	}
	cmd := exec.Command(pythonExe, "-u", "-c", driverScript)
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, &BridgeError{Op: "make_env", Msg: "starting python3", Err: err}
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &BridgeError{Op: "make_env", Msg: "starting python3", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &BridgeError{Op: "make_env", Msg: "starting python3", Err: err}
	}
	tracer().Infof("host.PyBridge: started %s coprocess", pythonExe)
	return &PyBridge{cmd: cmd, in: in, out: bufio.NewScanner(out)}, nil
}

// Close terminates the coprocess.
func (b *PyBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.in.Close()
	return b.cmd.Wait()
}

func (b *PyBridge) roundTrip(req map[string]any) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	enc, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := b.in.Write(append(enc, '\n')); err != nil {
		return nil, err
	}
	if !b.out.Scan() {
		if err := b.out.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("host bridge: python3 coprocess closed stdout")
	}
	var resp map[string]any
	if err := json.Unmarshal(b.out.Bytes(), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (b *PyBridge) Eval(source string, env *ir.Environment) (ir.Node, error) {
	envName := "__main__"
	if env != nil {
		envName = env.Name
	}
	resp, err := b.roundTrip(map[string]any{"op": "eval", "source": source, "env": envName})
	if err != nil {
		return nil, &BridgeError{Op: "eval", Msg: err.Error(), Err: err}
	}
	if ok, _ := resp["ok"].(bool); !ok {
		return nil, &BridgeError{Op: "eval", Msg: fmt.Sprint(resp["error"])}
	}
	return jsonToNode(resp["result"]), nil
}

func (b *PyBridge) ImportModule(dotted string) (Module, error) {
	resp, err := b.roundTrip(map[string]any{"op": "import_module", "dotted": dotted})
	if err != nil {
		return Module{}, &BridgeError{Op: "import_module", Msg: err.Error(), Err: err}
	}
	if ok, _ := resp["ok"].(bool); !ok {
		return Module{}, &BridgeError{Op: "import_module", Msg: fmt.Sprint(resp["error"])}
	}
	mod := Module{Name: dotted, Attrs: boolSet(resp["attrs"])}
	if hasNS, _ := resp["has_macro_ns"].(bool); hasNS {
		mod.HasMacroNS = true
		mod.MacroAttrs = boolSet(resp["macro_attrs"])
	}
	return mod, nil
}

func (b *PyBridge) MakeEnv(moduleName string) *ir.Environment {
	_, _ = b.roundTrip(map[string]any{"op": "make_env", "module": moduleName})
	return ir.NewEnvironment(moduleName, nil)
}

func (b *PyBridge) Repr(v any) (string, error) {
	src, ok := v.(string)
	if !ok {
		src = fmt.Sprint(v)
	}
	resp, err := b.roundTrip(map[string]any{"op": "repr", "source": src})
	if err != nil {
		return "", &BridgeError{Op: "repr", Msg: err.Error(), Err: err}
	}
	if ok, _ := resp["ok"].(bool); !ok {
		return "", &BridgeError{Op: "repr", Msg: fmt.Sprint(resp["error"])}
	}
	s, _ := resp["result"].(string)
	return s, nil
}

func boolSet(v any) map[string]bool {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// jsonToNode converts a JSON-decoded Python value (string, float64, bool,
// nil, or []any for a list) into an ir.Node: scalars become
// SelfEvaluating, lists become Tuples (the shape a macro's return value
// takes when crossing back over the bridge as a Hissp form).
func jsonToNode(v any) ir.Node {
	switch val := v.(type) {
	case nil:
		return ir.SelfEvaluating{Value: nil, Source: "None"}
	case bool:
		src := "False"
		if val {
			src = "True"
		}
		return ir.SelfEvaluating{Value: val, Source: src}
	case float64:
		return ir.SelfEvaluating{Value: val, Source: strconv.FormatFloat(val, 'g', -1, 64)}
	case string:
		return ir.StringLiteral{Text: strconv.Quote(val)}
	case []any:
		children := make([]ir.Node, len(val))
		for i, c := range val {
			children[i] = jsonToNode(c)
		}
		return ir.NewTuple(children...)
	default:
		return ir.Foreign{Value: v, Repr: fmt.Sprint(v)}
	}
}
