package main

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/kaspanet/scriptfuzz/domain/verification"
	"github.com/kaspanet/scriptfuzz/domain/verification/btcdconsensus"
)

// exitCodeNotFound is returned when no fixture could be read.
var exitCodeNotFound = int(syscall.ENOENT)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run verifies a single fixture and prints the library's status to stdout.
// It returns 0 once a status was printed.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args)
	if err != nil {
		fmt.Fprintf(stderr, "error parsing command-line arguments: %s\n", err)
		return exitCodeNotFound
	}

	library := btcdconsensus.New(btcdconsensus.DefaultSigCacheSize)
	outcome, err := verification.VerifyFixtureFile(library, cfg.Positional.FixturePath)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return exitCodeNotFound
	}

	fmt.Fprintf(stdout, "%d\n", outcome.Status)
	return 0
}
