package cmd

import (
	"fmt"
	"os"

	"github.com/VitalyAnkh/rune/repl"
	"github.com/spf13/cobra"
)

var replHistory string

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long:  `Read, evaluate and print expressions until EOF.`,
	Run: func(cmd *cobra.Command, args []string) {
		env, cx := newRuntime()
		if err := repl.RunRepl(env, cx, "rune> ", replHistory); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringVar(&replHistory, "history", "",
		"Path to a readline history file")
}
