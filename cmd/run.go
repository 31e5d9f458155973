package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/VitalyAnkh/rune/lisp"
	"github.com/VitalyAnkh/rune/parser"
	"github.com/spf13/cobra"
)

var (
	runExpression bool
	runPrint      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run lisp code",
	Long:  `Run lisp code supplied via the command line or files.`,
	Run: func(cmd *cobra.Command, args []string) {
		exprs, err := runReadExpressions(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		env, cx := newRuntime()
		for i := range exprs {
			if err := runEval(env, cx, exprs[i]); err != nil {
				printError(err)
				os.Exit(1)
			}
		}
	},
}

// runEval loads text through the constant parse path, so quoted structure
// in program source is frozen before evaluation, and evaluates each form.
func runEval(env *lisp.Environment, cx *lisp.Arena, text []byte) error {
	vs, err := parser.ParseConst(cx, env.Table(), text)
	if err != nil {
		return err
	}
	defer vs.Release()
	for i := 0; i < vs.Len(); i++ {
		v, err := lisp.Eval(vs.At(i), env, cx)
		if err != nil {
			return err
		}
		if runPrint {
			fmt.Println(lisp.FormatString(v, env.Table()))
		}
	}
	return nil
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, err)
	var e *lisp.EvalError
	if errors.As(err, &e) && e.Stack != nil {
		e.Stack.DebugPrint(os.Stderr)
	}
}

func runReadExpressions(args []string) ([][]byte, error) {
	exprs := make([][]byte, len(args))
	if runExpression {
		for i := range args {
			exprs[i] = []byte(args[i])
		}
		return exprs, nil
	}
	for i, path := range args {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		exprs[i] = b
	}
	return exprs, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Here flags for the run command are defined
	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
}
