// Command gwringctl is a small demo harness for gwring: it drives a
// ring through the closed demo opcode registry (OpNop, OpSleep,
// OpHTTPGet) and prints the resulting completions. It is not part of
// the ring's public contract — just a way to watch the submission and
// completion path move from the outside.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/gnuweeb/gwring/handlers"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gwringctl",
		Short: "Demo harness for the gwring submission/completion ring",
	}

	rootCmd.AddCommand(newDemoCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
