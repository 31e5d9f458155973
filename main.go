package main

import "github.com/VitalyAnkh/rune/cmd"

func main() {
	cmd.Execute()
}
