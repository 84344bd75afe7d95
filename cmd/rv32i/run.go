package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/bassosimone/rv32i/internal/config"
	"github.com/bassosimone/rv32i/pkg/tty"
	"github.com/bassosimone/rv32i/pkg/vm"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		memSize    uint
		cycles     uint64
		verbose    bool
		debug      bool
		ttyEnabled bool
		ttyNetwork bool
		ttyAddr    uint32
	)

	cmd := &cobra.Command{
		Use:   "run <elf-file>",
		Short: "load an ELF binary and run it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mem") {
				cfg.Execution.MemorySize = memSize
			}
			if cmd.Flags().Changed("cycles") {
				cfg.Execution.CycleBudget = cycles
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Execution.Verbose = verbose
			}
			if cmd.Flags().Changed("debug") {
				cfg.Execution.Debug = debug
			}
			if cmd.Flags().Changed("tty") {
				cfg.TTY.Enabled = ttyEnabled
			}
			if cmd.Flags().Changed("tty-net") {
				cfg.TTY.Network = ttyNetwork
			}
			if cmd.Flags().Changed("tty-addr") && ttyAddr != 0 {
				cfg.TTY.Address = ttyAddr
			}
			return runELF(cmd.Context(), args[0], cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	cmd.Flags().UintVar(&memSize, "mem", 0, "memory size in bytes")
	cmd.Flags().Uint64Var(&cycles, "cycles", 0, "cycle budget (0 = unbounded)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace every cycle")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "pause before every instruction")
	cmd.Flags().BoolVar(&ttyEnabled, "tty", false, "interpret stores to the TTY address as output")
	cmd.Flags().BoolVar(&ttyNetwork, "tty-net", false, "accept a TCP console instead of writing to stdout")
	cmd.Flags().Uint32Var(&ttyAddr, "tty-addr", 0, "TTY output address (0 = use configured default)")

	return cmd
}

func runELF(ctx context.Context, path string, cfg *config.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rv32i: %w", err)
	}

	cpu := vm.NewCPU(int(cfg.Execution.MemorySize))
	if err := cpu.LoadELF(data); err != nil {
		return fmt.Errorf("rv32i: %w", err)
	}

	sink, err := newTTYSink(cfg)
	if err != nil {
		return fmt.Errorf("rv32i: %w", err)
	}
	defer sink.Close()

	reader := bufio.NewReader(os.Stdin)

	var n uint64
	for cfg.Execution.CycleBudget == 0 || n < cfg.Execution.CycleBudget {
		if err := ctx.Err(); err != nil {
			log.Printf("rv32i: run cancelled at cycle %d: %s", n, err)
			return fmt.Errorf("rv32i: %w", err)
		}

		pc := cpu.PC.Address()
		if cfg.Execution.Verbose {
			word, _ := cpu.Mem.ReadU32(pc)
			log.Printf("rv32i: %s", cpu)
			log.Printf("rv32i: 0x%08x: %s", word, vm.Disassemble(word))
		}
		if cfg.Execution.Debug {
			log.Printf("rv32i: paused at pc=0x%08x, press enter to continue...", pc)
			reader.ReadString('\n')
		}

		err := cpu.Cycle()
		if err != nil {
			if errors.Is(err, vm.ErrEndOfProgram) {
				log.Printf("rv32i: program ended at pc=0x%08x", pc)
				return nil
			}
			if cfg.Trace.DumpMemoryOnFault {
				log.Printf("rv32i: fault at pc=0x%08x, memory around fault:\n%s", pc, faultDump(cpu, pc))
			}
			return fmt.Errorf("rv32i: %w", err)
		}

		if err := sink.Observe(cpu.LastStore); err != nil {
			return fmt.Errorf("rv32i: tty: %w", err)
		}

		n++
	}
	log.Printf("rv32i: stopped after %d cycles (budget exhausted)", n)
	return nil
}

// faultDump renders a bounded window of memory around pc, clamped to
// the CPU's actual memory extent, for the verbose/trace dump-on-fault
// path (§4.3/§10.1).
func faultDump(cpu *vm.CPU, pc uint32) string {
	const span = 64
	from := pc
	if from > span {
		from -= span
	} else {
		from = 0
	}
	to := pc + span
	if int(to) > cpu.Mem.Len() {
		to = uint32(cpu.Mem.Len())
	}
	return cpu.Mem.Dump(from, to)
}

func newTTYSink(cfg *config.Config) (tty.TTY, error) {
	if !cfg.TTY.Enabled {
		return tty.NewStdoutTTY(tty.Config{Address: cfg.TTY.Address}, discardWriter{}), nil
	}
	if cfg.TTY.Network {
		return tty.AcceptConn(tty.Config{Address: cfg.TTY.Address})
	}
	return tty.NewStdoutTTY(tty.Config{Address: cfg.TTY.Address}, os.Stdout), nil
}

// discardWriter is used when the TTY convention is disabled entirely,
// so Observe still has a harmless sink to write to (stores to the
// configured address still reach it and are dropped; this keeps
// construction uniform rather than making TTY an *optional* field
// elsewhere).
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
