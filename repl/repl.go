package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/VitalyAnkh/rune/lisp"
	"github.com/VitalyAnkh/rune/parser"
	"github.com/chzyer/readline"
)

// RunRepl drives an interactive session over env and cx.  Each line is
// parsed and evaluated form by form with results printed to stdout.  Input
// that stops mid expression switches to a continuation prompt and is
// retried together with the following line; an interrupt discards the
// buffered input.  RunRepl returns nil on a clean EOF.
func RunRepl(env *lisp.Environment, cx *lisp.Arena, prompt, history string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      prompt,
		HistoryFile: history,
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	contPrompt := strings.Repeat(" ", len(prompt)) // prompt had better be ascii...

	var buf []byte
	for {
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			buf = nil
			rl.SetPrompt(prompt)
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(buf) != 0 {
			buf = append(buf, '\n')
			line = append(buf, line...)
			buf = nil
			rl.SetPrompt(prompt)
		}
		if len(line) == 0 {
			continue
		}
		vs, err := parser.ParseAll(cx, env.Table(), line)
		if errors.Is(err, parser.ErrPartial) {
			buf = append([]byte(nil), line...)
			rl.SetPrompt(contPrompt)
			continue
		}
		if err != nil {
			errln(env, err)
			continue
		}
		evalForms(env, cx, vs)
		vs.Release()
	}
}

// evalForms evaluates parsed forms in order and prints each result.  The
// first error stops the line and prints with its backtrace.
func evalForms(env *lisp.Environment, cx *lisp.Arena, vs *lisp.RootVec) {
	for i := 0; i < vs.Len(); i++ {
		v, err := lisp.Eval(vs.At(i), env, cx)
		if err != nil {
			printError(env, err)
			return
		}
		fmt.Println(lisp.FormatString(v, env.Table()))
	}
}

func printError(env *lisp.Environment, err error) {
	errln(env, err)
	var e *lisp.EvalError
	if errors.As(err, &e) && e.Stack != nil {
		e.Stack.DebugPrint(env.Stderr)
	}
}

func errln(env *lisp.Environment, v ...interface{}) {
	fmt.Fprintln(env.Stderr, v...)
}
