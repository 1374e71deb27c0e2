/*
hisspl is a line-oriented REPL for the core read→expand→compile→eval
pipeline, for interactive manual testing. It is not part of the core
contract (spec.md §1's Non-goals exclude a CLI/REPL surface); the core
packages (reader, macro, compiler, host) do not import it.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/hisspgo/hissp/compiler"
	"github.com/hisspgo/hissp/host"
	"github.com/hisspgo/hissp/ir"
	"github.com/hisspgo/hissp/macro"
	"github.com/hisspgo/hissp/reader"
)

func tracer() tracing.Trace {
	return tracing.Select("hissp.hisspl")
}

func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	initf := flag.String("init", "", "Initial .lissp file to load before the prompt")
	module := flag.String("module", "__main__", "Compilation namespace for read forms")
	pythonExe := flag.String("python", "python3", "Python executable backing the host bridge")
	pure := flag.Bool("pure", false, "Run without a host bridge (rejects .# and macro calls)")
	flag.Parse()
	tracer().SetTraceLevel(traceLevel(*tlevel))
	pterm.Info.Println("Welcome to hisspl")

	bridge := makeBridge(*pure, *pythonExe)
	env := bridge.MakeEnv(*module)

	repl, err := readline.New("hissp> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()

	intp := &Intp{env: env, bridge: bridge, repl: repl}
	intp.loadInitFile(*initf)
	tracer().Infof("Quit with <ctrl>D")
	intp.REPL()
}

func makeBridge(pure bool, pythonExe string) host.Bridge {
	if pure {
		return host.NullBridge{}
	}
	b, err := host.NewPyBridge(pythonExe)
	if err != nil {
		pterm.Error.Println("could not start python bridge, falling back to pure mode: " + err.Error())
		return host.NullBridge{}
	}
	return b
}

func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp holds one REPL session's state: the compilation namespace, the
// bridge forms are evaluated through, and any input buffered across
// lines while waiting for an unbalanced tuple to close.
type Intp struct {
	env     *ir.Environment
	bridge  host.Bridge
	repl    *readline.Instance
	pending string
}

func (intp *Intp) loadInitFile(filename string) {
	if filename == "" {
		return
	}
	f, err := os.Open(filename)
	if err != nil {
		tracer().Errorf("unable to open init file: %s", filename)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var buf strings.Builder
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		tracer().Errorf("error reading init file: %s", err.Error())
		return
	}
	if _, err := intp.evalSource(buf.String()); err != nil {
		tracer().Errorf("init file %s: %s", filename, err.Error())
	}
}

// REPL starts interactive mode: each line is appended to any buffered,
// still-unbalanced input; a read failure of UnbalancedDelimiter prompts
// for a continuation line instead of reporting an error.
func (intp *Intp) REPL() {
	for {
		prompt := "hissp> "
		if intp.pending != "" {
			prompt = "  ...> "
		}
		intp.repl.SetPrompt(prompt)
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF (ctrl-D) or io.ErrUnexpectedEOF (ctrl-C)
			break
		}
		intp.pending += line + "\n"
		if strings.TrimSpace(intp.pending) == "" {
			intp.pending = ""
			continue
		}
		results, err := intp.evalSource(intp.pending)
		if err != nil {
			if unbalanced(err) {
				continue // wait for a continuation line
			}
			pterm.Error.Println(err.Error())
			intp.pending = ""
			continue
		}
		intp.pending = ""
		for _, r := range results {
			pterm.Info.Println(r)
		}
	}
	fmt.Println("Good bye!")
}

func unbalanced(err error) bool {
	pe, ok := err.(*reader.ParseError)
	return ok && pe.Kind == reader.UnbalancedDelimiter
}

// evalSource runs every form in src through read, expand, compile, and
// eval in turn, returning each result's host repr.
func (intp *Intp) evalSource(src string) ([]string, error) {
	seq, err := reader.Read(src, intp.env, intp.bridge)
	if err != nil {
		return nil, err
	}
	var out []string
	for {
		node, err := seq.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		expanded, err := macro.Expand(node, intp.env, intp.bridge)
		if err != nil {
			return out, err
		}
		pySrc, err := compiler.Compile(expanded, intp.env)
		if err != nil {
			return out, err
		}
		tracer().Debugf("compiled: %s", pySrc)
		result, err := intp.bridge.Eval(pySrc, intp.env)
		if err != nil {
			return out, err
		}
		repr, err := intp.bridge.Repr(result)
		if err != nil {
			repr = result.String()
		}
		out = append(out, repr)
	}
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
