package verification

import (
	"github.com/kaspanet/scriptfuzz/domain/fixture"
)

// PlaceholderAmount is passed to the amount-aware entry point. Fixtures carry
// no spent output amount.
const PlaceholderAmount int64 = 0

// ConsensusLibrary is the external script verification library. Both entry
// points return a nonzero status if the script of input inputIndex of tx
// correctly spends scriptPubKey under flags, and an ErrorCode explaining a
// zero status that was not caused by script evaluation itself.
type ConsensusLibrary interface {
	VerifyScript(scriptPubKey []byte, tx []byte, inputIndex uint32, flags uint32) (int, ErrorCode)
	VerifyScriptWithAmount(scriptPubKey []byte, amount int64, tx []byte, inputIndex uint32,
		flags uint32) (int, ErrorCode)
}

// Outcome is the result of a single call into the consensus library.
type Outcome struct {
	EntryPoint string
	Amount     int64
	Status     int
	Err        ErrorCode
}

// EntryPoint is a way of handing a fixture to the consensus library.
type EntryPoint interface {
	Name() string
	Verify(fixture *fixture.Fixture, flags uint32) Outcome
}

type scriptEntryPoint struct {
	library ConsensusLibrary
}

func (e *scriptEntryPoint) Name() string {
	return "VerifyScript"
}

func (e *scriptEntryPoint) Verify(fixture *fixture.Fixture, flags uint32) Outcome {
	status, errorCode := e.library.VerifyScript(fixture.ScriptPubKey, fixture.Transaction, fixture.InputIndex, flags)
	return Outcome{
		EntryPoint: e.Name(),
		Status:     status,
		Err:        errorCode,
	}
}

type amountEntryPoint struct {
	library ConsensusLibrary
	amount  int64
}

func (e *amountEntryPoint) Name() string {
	return "VerifyScriptWithAmount"
}

func (e *amountEntryPoint) Verify(fixture *fixture.Fixture, flags uint32) Outcome {
	status, errorCode := e.library.VerifyScriptWithAmount(fixture.ScriptPubKey, e.amount, fixture.Transaction,
		fixture.InputIndex, flags)
	return Outcome{
		EntryPoint: e.Name(),
		Amount:     e.amount,
		Status:     status,
		Err:        errorCode,
	}
}

// SelectEntryPoint returns the amount-aware entry point, fed with
// PlaceholderAmount, if RequiresAmount(flags), and the amount-less one
// otherwise.
func SelectEntryPoint(library ConsensusLibrary, flags uint32) EntryPoint {
	if RequiresAmount(flags) {
		return &amountEntryPoint{library: library, amount: PlaceholderAmount}
	}
	return &scriptEntryPoint{library: library}
}

// Dispatch verifies fixture through exactly one entry point of library,
// selected by the fixture's flags. The library's error code is passed
// through untouched.
func Dispatch(library ConsensusLibrary, fixture *fixture.Fixture) Outcome {
	entryPoint := SelectEntryPoint(library, fixture.Flags)
	outcome := entryPoint.Verify(fixture, fixture.Flags)
	log.Debugf("%s with flags %s returned status %d (%s)",
		outcome.EntryPoint, FlagsString(fixture.Flags), outcome.Status, outcome.Err)
	return outcome
}

// VerifyFixtureFile reads the fixture stored at path and dispatches it to
// library. No verification happens if the fixture can not be read.
func VerifyFixtureFile(library ConsensusLibrary, path string) (Outcome, error) {
	f, err := fixture.ReadFixture(path)
	if err != nil {
		return Outcome{}, err
	}
	return Dispatch(library, f), nil
}
