// Package btcdconsensus implements the consensus library interface on top of
// btcd's script engine.
package btcdconsensus

import (
	"bytes"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/kaspanet/scriptfuzz/domain/verification"
)

// DefaultSigCacheSize is the number of signature verifications a Library
// created by New remembers.
const DefaultSigCacheSize = 50000

// flagMapping translates consensus library flags into btcd script flags. The
// fork identifier flag only changes signature hashing, which btcd does not
// implement, so it has no entry.
var flagMapping = []struct {
	flag        uint32
	scriptFlags txscript.ScriptFlags
}{
	{verification.FlagsVerifyP2SH, txscript.ScriptBip16},
	{verification.FlagsVerifyDERSig, txscript.ScriptVerifyDERSignatures},
	{verification.FlagsVerifyNullDummy, txscript.ScriptStrictMultiSig},
	{verification.FlagsVerifyCheckLockTimeVerify, txscript.ScriptVerifyCheckLockTimeVerify},
	{verification.FlagsVerifyCheckSequenceVerify, txscript.ScriptVerifyCheckSequenceVerify},
	{verification.FlagsVerifyWitnessDeprecated, txscript.ScriptVerifyWitness},
}

// ScriptFlags returns the btcd script flags matching flags.
func ScriptFlags(flags uint32) txscript.ScriptFlags {
	var scriptFlags txscript.ScriptFlags
	for _, mapping := range flagMapping {
		if flags&mapping.flag != 0 {
			scriptFlags |= mapping.scriptFlags
		}
	}
	return scriptFlags
}

// Library verifies scripts with btcd's txscript engine. It is safe for
// concurrent use.
type Library struct {
	sigCache *txscript.SigCache
}

// New returns a Library remembering up to sigCacheSize signature
// verifications.
func New(sigCacheSize uint) *Library {
	return &Library{sigCache: txscript.NewSigCache(sigCacheSize)}
}

// VerifyScript implements verification.ConsensusLibrary. Flags that make
// signature hashes commit to the spent amount are refused with
// ErrAmountRequired.
func (l *Library) VerifyScript(scriptPubKey []byte, tx []byte, inputIndex uint32,
	flags uint32) (int, verification.ErrorCode) {

	if verification.RequiresAmount(flags) {
		return 0, verification.ErrAmountRequired
	}
	return l.verify(scriptPubKey, 0, tx, inputIndex, flags)
}

// VerifyScriptWithAmount implements verification.ConsensusLibrary.
func (l *Library) VerifyScriptWithAmount(scriptPubKey []byte, amount int64, tx []byte, inputIndex uint32,
	flags uint32) (int, verification.ErrorCode) {

	return l.verify(scriptPubKey, amount, tx, inputIndex, flags)
}

func (l *Library) verify(scriptPubKey []byte, amount int64, tx []byte, inputIndex uint32,
	flags uint32) (int, verification.ErrorCode) {

	if flags&^verification.FlagsVerifyAll != 0 {
		return 0, verification.ErrInvalidFlags
	}

	msgTx := &wire.MsgTx{}
	err := msgTx.Deserialize(bytes.NewReader(tx))
	if err != nil {
		log.Tracef("Failed to deserialize %d transaction bytes: %s", len(tx), err)
		return 0, verification.ErrTxDeserialize
	}
	if uint64(inputIndex) >= uint64(len(msgTx.TxIn)) {
		return 0, verification.ErrTxIndex
	}
	if msgTx.SerializeSize() != len(tx) {
		return 0, verification.ErrTxSizeMismatch
	}

	prevOutFetcher := txscript.NewCannedPrevOutputFetcher(scriptPubKey, amount)
	hashCache := txscript.NewTxSigHashes(msgTx, prevOutFetcher)
	vm, err := txscript.NewEngine(scriptPubKey, msgTx, int(inputIndex), ScriptFlags(flags), l.sigCache,
		hashCache, amount, prevOutFetcher)
	if err != nil {
		if txscript.IsErrorCode(err, txscript.ErrInvalidFlags) {
			return 0, verification.ErrInvalidFlags
		}
		log.Tracef("Failed to create engine for input %d of %s: %s", inputIndex, msgTx.TxHash(), err)
		return 0, verification.ErrOK
	}

	err = vm.Execute()
	if err != nil {
		log.Tracef("Input %d of %s failed verification: %s", inputIndex, msgTx.TxHash(), err)
		return 0, verification.ErrOK
	}
	return 1, verification.ErrOK
}
