// Command rv32i is the CLI driver for the RV32I simulator: it loads
// an ELF binary, runs it to completion, and can disassemble a binary
// without executing it.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rv32i",
		Short: "rv32i runs and disassembles RV32I ELF binaries",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newDisasmCmd())
	return root
}
