package main

import (
	"fmt"
	"os"

	"github.com/NethermindEth/cairo-vm-go/pkg/parsers/starknet"
	"github.com/NethermindEth/cairo-vm-go/pkg/runners/zero"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] != "run" {
		return fmt.Errorf("usage: cairo-vm run [flags] <program.json>")
	}

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	entrypoint := flags.String("entrypoint", "main", "name of the function to run")
	tracePath := flags.String("trace", "", "path to write the relocated execution trace")
	memoryPath := flags.String("memory", "", "path to write the relocated memory")
	proofmode := flags.Bool("proofmode", false, "run in proof mode")
	maxsteps := flags.Uint64("maxsteps", 1_000_000, "maximum number of steps to run")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	positional := flags.Args()
	if len(positional) != 1 {
		return fmt.Errorf("usage: cairo-vm run [flags] <program.json>")
	}

	content, err := os.ReadFile(positional[0])
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	rawProgram, err := starknet.Load(content)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	program, err := zero.LoadProgram(rawProgram)
	if err != nil {
		return fmt.Errorf("compiling program: %w", err)
	}

	runner, err := zero.NewRunner(program, *proofmode, *maxsteps)
	if err != nil {
		return fmt.Errorf("initializing runner: %w", err)
	}

	runner.SetEntrypoint(*entrypoint)

	if err := runner.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	trace, memory, err := runner.BuildProof()
	if err != nil {
		return fmt.Errorf("building execution artifacts: %w", err)
	}

	if *tracePath != "" {
		if err := os.WriteFile(*tracePath, trace, 0o644); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	if *memoryPath != "" {
		if err := os.WriteFile(*memoryPath, memory, 0o644); err != nil {
			return fmt.Errorf("writing memory: %w", err)
		}
	}
	return nil
}
