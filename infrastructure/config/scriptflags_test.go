package config

import (
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/scriptfuzz/domain/verification"
)

type testConfig struct {
	ScriptFlagsConfig
}

func resolve(args ...string) (*testConfig, error) {
	cfg := &testConfig{}
	parser := flags.NewParser(cfg, flags.None)
	_, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.ResolveScriptFlags(parser)
}

func TestResolveScriptFlags(t *testing.T) {
	tests := []struct {
		args          []string
		expectedFlags uint32
	}{
		{args: nil, expectedFlags: verification.MandatoryVerifyFlags},
		{args: []string{"--mandatory"}, expectedFlags: verification.MandatoryVerifyFlags},
		{args: []string{"--standard"}, expectedFlags: verification.StandardVerifyFlags},
		{args: []string{"--flags=0"}, expectedFlags: verification.FlagsVerifyNone},
		{args: []string{"--flags=65537"}, expectedFlags: verification.FlagsVerifyP2SH | verification.FlagsEnableSigHashForkID},
	}

	for _, test := range tests {
		cfg, err := resolve(test.args...)
		if err != nil {
			t.Errorf("%v: unexpected error: %s", test.args, err)
			continue
		}
		if cfg.ActiveFlags != test.expectedFlags {
			t.Errorf("%v: expected flags %s, got %s", test.args,
				verification.FlagsString(test.expectedFlags), verification.FlagsString(cfg.ActiveFlags))
		}
	}
}

func TestResolveScriptFlagsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--standard", "--mandatory"},
		{"--standard", "--flags=1"},
		{"--flags=1048576"},
	} {
		_, err := resolve(args...)
		if err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}
