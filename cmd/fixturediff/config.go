package main

import (
	"runtime"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/scriptfuzz/domain/detect"
	"github.com/kaspanet/scriptfuzz/infrastructure/config"
	"github.com/pkg/errors"
)

const appName = "fixturediff"

type configFlags struct {
	DataDir     string `long:"datadir" description:"Directory holding the fixtures to compare" required:"true"`
	Left        string `long:"left" description:"Command verifying a fixture, or 'builtin' for the in-process library"`
	Right       string `long:"right" description:"Command verifying a fixture, or 'builtin' for the in-process library" required:"true"`
	Workers     int    `short:"w" long:"workers" description:"Number of fixtures to compare concurrently"`
	MismatchDir string `long:"mismatchdir" description:"Directory to copy mismatching fixtures to"`
	config.LogFlags
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		Left:    detect.BuiltinCommand,
		Workers: runtime.NumCPU(),
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	parser.Usage = "[OPTIONS]\n\nEvery fixture is passed as the last argument to both commands. " +
		"The fixture is a mismatch if their trimmed standard output differs."
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	if cfg.Workers < 1 {
		return nil, errors.Errorf("--workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.Left == cfg.Right {
		return nil, errors.New("--left and --right must be different commands")
	}
	return cfg, nil
}
