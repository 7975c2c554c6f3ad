package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Environment bundles the process streams for testability.
type Environment struct {
	Stdout *os.File
	Stderr *os.File
}

func main() {
	env := &Environment{Stdout: os.Stdout, Stderr: os.Stderr}
	os.Exit(realMain(os.Args, env))
}

func realMain(args []string, env *Environment) int {
	if len(args) > 1 {
		switch args[1] {
		case "doctor":
			return runDoctorCmd(args[2:], env)
		case "version", "--version":
			fmt.Fprintf(env.Stdout, "nb2pdf %s\n", Version)
			return ExitSuccess
		case "help", "--help", "-h":
			printUsage(env.Stdout)
			return ExitSuccess
		}
	}

	flags, inputs, err := parseConvertFlags(args[1:])
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if flags.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	if err := runConvert(flags, inputs, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
