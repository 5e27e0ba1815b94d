package verification

import (
	"fmt"
	"strings"
)

// Script verification flags as laid out by the consensus library interface.
const (
	FlagsVerifyNone                uint32 = 0
	FlagsVerifyP2SH                uint32 = 1 << 0  // evaluate P2SH (BIP16) subscripts
	FlagsVerifyDERSig              uint32 = 1 << 2  // enforce strict DER (BIP66) compliance
	FlagsVerifyNullDummy           uint32 = 1 << 4  // enforce NULLDUMMY (BIP147)
	FlagsVerifyCheckLockTimeVerify uint32 = 1 << 9  // enable CHECKLOCKTIMEVERIFY (BIP65)
	FlagsVerifyCheckSequenceVerify uint32 = 1 << 10 // enable CHECKSEQUENCEVERIFY (BIP112)
	FlagsVerifyWitnessDeprecated   uint32 = 1 << 11 // enable WITNESS (BIP141)
	FlagsEnableSigHashForkID       uint32 = 1 << 16 // signature hashes commit to the fork identifier

	// FlagsVerifyAll is the set of every flag the consensus library accepts.
	FlagsVerifyAll = FlagsVerifyP2SH | FlagsVerifyDERSig | FlagsVerifyNullDummy |
		FlagsVerifyCheckLockTimeVerify | FlagsVerifyCheckSequenceVerify |
		FlagsVerifyWitnessDeprecated | FlagsEnableSigHashForkID
)

// MandatoryVerifyFlags are the flags every block is verified with.
const MandatoryVerifyFlags = FlagsVerifyP2SH

// StandardVerifyFlags are the flags transactions are verified with before
// being relayed.
const StandardVerifyFlags = MandatoryVerifyFlags | FlagsVerifyDERSig | FlagsVerifyNullDummy |
	FlagsVerifyCheckLockTimeVerify | FlagsVerifyCheckSequenceVerify

var flagNames = []struct {
	flag uint32
	name string
}{
	{FlagsVerifyP2SH, "P2SH"},
	{FlagsVerifyDERSig, "DERSIG"},
	{FlagsVerifyNullDummy, "NULLDUMMY"},
	{FlagsVerifyCheckLockTimeVerify, "CHECKLOCKTIMEVERIFY"},
	{FlagsVerifyCheckSequenceVerify, "CHECKSEQUENCEVERIFY"},
	{FlagsVerifyWitnessDeprecated, "WITNESS"},
	{FlagsEnableSigHashForkID, "SIGHASH_FORKID"},
}

// RequiresAmount returns true if flags select rules whose signature hashes
// commit to the amount of the spent output, which makes the amount-aware
// entry point mandatory.
func RequiresAmount(flags uint32) bool {
	return flags&FlagsEnableSigHashForkID != 0 || flags&FlagsVerifyWitnessDeprecated != 0
}

// FlagsString returns a human readable representation of flags, e.g.
// "P2SH|DERSIG". Unknown bits are rendered in hex.
func FlagsString(flags uint32) string {
	if flags == FlagsVerifyNone {
		return "NONE"
	}
	var names []string
	remaining := flags
	for _, flagName := range flagNames {
		if flags&flagName.flag != 0 {
			names = append(names, flagName.name)
			remaining &^= flagName.flag
		}
	}
	if remaining != 0 {
		names = append(names, fmt.Sprintf("0x%x", remaining))
	}
	return strings.Join(names, "|")
}
