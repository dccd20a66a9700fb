package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/nativeformat/fixture"
	"github.com/wippyai/nativeformat/loader"
	"github.com/wippyai/nativeformat/metadata/writer"
	"github.com/wippyai/nativeformat/rooting"
)

type command struct {
	run   func(args []string) error
	usage string
}

var commands = map[string]command{
	"build": {runBuild, "build -in scopes.yaml -out blob.bin"},
	"dump":  {runDump, "dump -in blob.bin|scopes.yaml [-scope name] [-i]"},
	"canon": {runCanon, "canon -in blob.bin|scopes.yaml -type name|-method name [-kind specific|universal|any]"},
	"root":  {runRoot, "root -in blob.bin|scopes.yaml [-kind specific|universal] [-workers n]"},
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: nfdump [-v] <command> [flags]")
	for _, name := range []string{"build", "dump", "canon", "root"} {
		fmt.Fprintln(os.Stderr, "       nfdump "+commands[name].usage)
	}
}

func main() {
	verbose := flag.Bool("v", false, "Development logging to stderr")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		usage()
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		installLogger(log)
	}

	if err := cmd.run(flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func installLogger(log *zap.Logger) {
	writer.SetLogger(log.Named("writer"))
	fixture.SetLogger(log.Named("fixture"))
	loader.SetLogger(log.Named("loader"))
	rooting.SetLogger(log.Named("rooting"))
}
