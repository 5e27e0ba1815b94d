package main

import (
	"testing"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		args         []string
		expectedPath string
	}{
		{args: []string{"fixture"}, expectedPath: "fixture"},
		{args: []string{"-fixture"}, expectedPath: "-fixture"},
		{args: []string{"--verbose"}, expectedPath: "--verbose"},
		{args: []string{"-"}, expectedPath: "-"},
	}
	for _, test := range tests {
		cfg, err := parseConfig(test.args)
		if err != nil {
			t.Errorf("%v: parseConfig: %s", test.args, err)
			continue
		}
		if cfg.Positional.FixturePath != test.expectedPath {
			t.Errorf("%v: expected path %q, got %q", test.args, test.expectedPath, cfg.Positional.FixturePath)
		}
	}
}

func TestParseConfigErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{""},
		{"--verbose", "fixture"},
		{"first", "second"},
	} {
		_, err := parseConfig(args)
		if err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}
