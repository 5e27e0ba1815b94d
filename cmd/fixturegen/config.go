package main

import (
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/scriptfuzz/domain/fixturegen"
	"github.com/kaspanet/scriptfuzz/infrastructure/config"
	"github.com/pkg/errors"
)

const appName = "fixturegen"

var (
	defaultMode    = string(fixturegen.ModeVerify)
	defaultDataDir = filepath.Join("test-fuzz", "data")
)

type configFlags struct {
	Mode    string `short:"m" long:"mode" description:"Kind of scripts to generate {verify, less}"`
	DataDir string `long:"datadir" description:"Directory to write fixtures to"`
	Count   uint64 `short:"n" long:"count" description:"Number of fixtures to generate, 0 to run until interrupted"`
	Seed    int64  `long:"seed" description:"Seed of the random generator, defaults to the current time"`
	config.ScriptFlagsConfig
	config.LogFlags

	mode fixturegen.Mode
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		Mode:    defaultMode,
		DataDir: defaultDataDir,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	cfg.mode, err = fixturegen.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		return nil, errors.New("--datadir can not be empty")
	}

	err = cfg.ResolveScriptFlags(parser)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
