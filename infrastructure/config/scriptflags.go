package config

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/scriptfuzz/domain/verification"
	"github.com/pkg/errors"
)

// ScriptFlagsConfig holds the verification flags selection shared by the
// fuzzing tools.
type ScriptFlagsConfig struct {
	Mandatory     bool   `long:"mandatory" description:"Verify with the mandatory flags (the default)"`
	Standard      bool   `long:"standard" description:"Verify with the standard flags"`
	ExplicitFlags uint32 `long:"flags" description:"Verify with an explicit flags bit-set"`

	ActiveFlags uint32
}

// ResolveScriptFlags sets ActiveFlags from the command line. It returns an
// error if more than one flags selection was made.
func (scriptFlagsConfig *ScriptFlagsConfig) ResolveScriptFlags(parser *flags.Parser) error {
	scriptFlagsConfig.ActiveFlags = verification.MandatoryVerifyFlags
	numSelections := 0

	if scriptFlagsConfig.Mandatory {
		numSelections++
	}
	if scriptFlagsConfig.Standard {
		numSelections++
		scriptFlagsConfig.ActiveFlags = verification.StandardVerifyFlags
	}
	if option := parser.FindOptionByLongName("flags"); option != nil && option.IsSet() {
		numSelections++
		scriptFlagsConfig.ActiveFlags = scriptFlagsConfig.ExplicitFlags
	}

	if numSelections > 1 {
		err := errors.New("Only one of --mandatory, --standard and --flags can be used")
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return err
	}
	if scriptFlagsConfig.ActiveFlags&^verification.FlagsVerifyAll != 0 {
		return errors.Errorf("Flags %s contain bits unknown to the consensus library",
			verification.FlagsString(scriptFlagsConfig.ActiveFlags))
	}
	return nil
}
