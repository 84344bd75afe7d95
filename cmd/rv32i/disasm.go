package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bassosimone/rv32i/pkg/vm"
)

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <elf-file>",
		Short: "decode and print instructions from the entry point, up to the end-of-program sentinel or the end of memory, without executing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disasmELF(args[0])
		},
	}
	return cmd
}

func disasmELF(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rv32i: %w", err)
	}

	// Memory large enough to hold the binary; disasm never executes,
	// so there is no need to size it for the program's real footprint.
	cpu := vm.NewCPU(len(data) + (1 << 20))
	if err := cpu.LoadELF(data); err != nil {
		return fmt.Errorf("rv32i: %w", err)
	}

	pc := cpu.PC.Address()
	for {
		word, err := cpu.Mem.ReadU32(pc)
		if err != nil {
			return fmt.Errorf("rv32i: %w", err)
		}
		if _, decodeErr := vm.Decode(word); decodeErr == vm.ErrEndOfProgram {
			break
		}
		fmt.Printf("0x%08x: 0x%08x  %s\n", pc, word, vm.Disassemble(word))
		pc += 4
		if int(pc) >= cpu.Mem.Len() {
			break
		}
	}
	return nil
}
