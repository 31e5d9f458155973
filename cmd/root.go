package cmd

import (
	"fmt"
	"os"

	"github.com/VitalyAnkh/rune/lisp"
	"github.com/spf13/cobra"
)

var gcThreshold int

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rune",
	Short: "A garbage collected lisp evaluation core",
	Long: `rune evaluates a small emacs flavored lisp on a mark/sweep collected
heap.  Code runs from files or command line expressions with the run
subcommand, or interactively with the repl subcommand.`,
}

// Execute runs the root command.  This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRuntime builds the environment and arena shared by the run and repl
// subcommands.
func newRuntime() (*lisp.Environment, *lisp.Arena) {
	env := lisp.NewEnvironment()
	env.AddBuiltins()
	cx := lisp.NewArena()
	cx.SetCollectThreshold(gcThreshold)
	return env, cx
}

func init() {
	rootCmd.PersistentFlags().IntVar(&gcThreshold, "gc-threshold", lisp.DefaultCollectThreshold,
		"Allocations between garbage collection passes")
}
