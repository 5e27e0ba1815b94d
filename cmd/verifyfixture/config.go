package main

import (
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type configFlags struct {
	Positional struct {
		FixturePath string `positional-arg-name:"fixture"`
	} `positional-args:"yes"`
}

// parseConfig takes every argument as positional, so a fixture path starting
// with a dash is still a path.
func parseConfig(args []string) (*configFlags, error) {
	cfg := &configFlags{}
	parser := flags.NewParser(cfg, flags.PassDoubleDash)
	remainingArgs, err := parser.ParseArgs(append([]string{"--"}, args...))
	if err != nil {
		return nil, err
	}

	if cfg.Positional.FixturePath == "" {
		return nil, errors.New("a fixture path is required")
	}
	if len(remainingArgs) > 0 {
		return nil, errors.Errorf("unexpected arguments %v", remainingArgs)
	}
	return cfg, nil
}
