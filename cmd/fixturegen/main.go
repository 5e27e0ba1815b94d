package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaspanet/scriptfuzz/domain/fixturegen"
	"github.com/kaspanet/scriptfuzz/domain/verification"
	"github.com/kaspanet/scriptfuzz/infrastructure/logger"
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
	defer logger.BackendLog.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Infof("Generating %s fixtures with flags %s and seed %d into %s",
		cfg.mode, verification.FlagsString(cfg.ActiveFlags), seed, cfg.DataDir)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	generator := fixturegen.New(cfg.mode, cfg.ActiveFlags, seed)
	written, err := generator.Run(ctx, cfg.DataDir, cfg.Count)
	if err != nil {
		log.Errorf("Generation failed after %d fixtures: %+v", written, err)
		logger.BackendLog.Close()
		os.Exit(1)
	}
	log.Infof("Wrote %d fixtures", written)
}

func printErrorAndExit(message string) {
	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(1)
}
