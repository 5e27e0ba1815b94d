package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaspanet/scriptfuzz/domain/detect"
	"github.com/kaspanet/scriptfuzz/domain/verification/btcdconsensus"
	"github.com/kaspanet/scriptfuzz/infrastructure/logger"
	"golang.org/x/term"
)

func main() {
	cfg, err := parseConfig()
	if err != nil {
		printErrorAndExit(fmt.Sprintf("error parsing command-line arguments: %s", err))
	}
	err = cfg.InitLog(appName)
	if err != nil {
		printErrorAndExit(fmt.Sprintf("error initializing the logger: %s", err))
	}

	library := btcdconsensus.New(btcdconsensus.DefaultSigCacheSize)
	left, err := detect.NewChecker(cfg.Left, library)
	if err != nil {
		exit(fmt.Sprintf("error creating the left checker: %s", err))
	}
	right, err := detect.NewChecker(cfg.Right, library)
	if err != nil {
		exit(fmt.Sprintf("error creating the right checker: %s", err))
	}

	runner := &detect.Runner{
		Left:        left,
		Right:       right,
		Workers:     cfg.Workers,
		MismatchDir: cfg.MismatchDir,
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		runner.OnProgress = printProgress
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := runner.Run(ctx, cfg.DataDir)
	if err != nil {
		exit(fmt.Sprintf("error comparing fixtures: %+v", err))
	}

	fmt.Printf("%d fixtures, %d matched, %d mismatched\n", report.Total, report.Matched, len(report.Mismatches))
	for _, mismatch := range report.Mismatches {
		fmt.Printf("%s: %q != %q\n", mismatch.Fixture, mismatch.Left, mismatch.Right)
	}

	logger.BackendLog.Close()
	if len(report.Mismatches) > 0 {
		os.Exit(1)
	}
}

func printProgress(done, total int) {
	fmt.Printf("\r%d/%d", done, total)
	if done == total {
		fmt.Println()
	}
}

func exit(message string) {
	log.Criticalf("%s", message)
	logger.BackendLog.Close()
	os.Exit(1)
}

func printErrorAndExit(message string) {
	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(1)
}
