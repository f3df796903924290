// Command driftfilter is the GPS drift filter's CLI, in the shape of the
// teacher's cmd/radar.go: a small set of flag.FlagSet subcommands sharing
// one binary, one version flag, and the standard library's bare "log".
package main

import (
	"fmt"
	"os"

	"github.com/arcfix-nav/driftfilter/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "filter":
		runFilter(os.Args[2:])
	case "simulate":
		runSimulate(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "report":
		runReport(os.Args[2:])
	case "version", "-version", "--version":
		fmt.Printf("driftfilter %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "driftfilter: unknown subcommand %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: driftfilter <command> [flags]

commands:
  filter    batch-process a trajectory file through the drift detector
  simulate  corrupt a clean baseline trajectory with synthetic anomalies
  serve     run the HTTP dashboard, gRPC stream server, and serial reader
  report    render an HTML/PNG report from a stored trajectory
  version   print version information and exit`)
}
