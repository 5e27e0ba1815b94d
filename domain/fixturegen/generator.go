// Package fixturegen produces random script verification fixtures.
package fixturegen

import (
	"bytes"
	"math/rand"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/kaspanet/scriptfuzz/domain/fixture"
	"github.com/pkg/errors"
)

// Mode selects the kind of scripts a Generator produces.
type Mode string

const (
	// ModeVerify pairs a random push-only input script with random output
	// script bytes.
	ModeVerify Mode = "verify"

	// ModeLess pairs input scripts with standard output scripts they are
	// shaped to spend.
	ModeLess Mode = "less"
)

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeVerify, ModeLess:
		return Mode(s), nil
	}
	return "", errors.Errorf("unknown mode %q, expected %q or %q", s, ModeVerify, ModeLess)
}

const (
	// txReuseCount is the number of fixtures sharing one random transaction.
	txReuseCount = 500

	maxInputs         = 5
	maxOutputs        = 5
	maxPushes         = 100
	maxPushSize       = 100
	maxOutputScript   = fixture.MaxLineLength
	pushOverhead      = 3
	maxOutputAmount   = 1e8
	maxMultisigKeys   = 16
	compressedKeySize = 33
	fullKeySize       = 65
)

// maxFixtureBytes is the largest byte string whose hex line, newline included,
// fits into the raw line buffer of the fixture reader.
const maxFixtureBytes = (fixture.MaxRawLineLength - 1) / 2

// Generator produces fixtures for a fixed mode and flags. It is not safe for
// concurrent use.
type Generator struct {
	mode  Mode
	flags uint32
	rand  *rand.Rand

	tx    *wire.MsgTx
	count uint64
}

// New returns a Generator seeded with seed.
func New(mode Mode, flags uint32, seed int64) *Generator {
	return &Generator{
		mode:  mode,
		flags: flags,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

// Count returns the number of fixtures generated so far.
func (g *Generator) Count() uint64 {
	return g.count
}

// Next returns a new fixture. The first input of the current transaction gets
// the new input script and is the input the fixture verifies.
func (g *Generator) Next() (*fixture.Fixture, error) {
	if g.tx == nil || g.count%txReuseCount == 0 {
		g.tx = g.randomTx()
	}
	g.count++

	g.tx.TxIn[0].SignatureScript = nil
	budget := maxFixtureBytes - g.tx.SerializeSize() - wire.MaxVarIntPayload

	var inputScript, outputScript []byte
	switch g.mode {
	case ModeVerify:
		inputScript = g.randomInputScript(nil, budget)
		outputScript = g.randomBytes(g.between(1, maxOutputScript))
	case ModeLess:
		inputScript, outputScript = g.randomContext(budget)
	default:
		return nil, errors.Errorf("unknown mode %q", g.mode)
	}
	g.tx.TxIn[0].SignatureScript = inputScript

	var buf bytes.Buffer
	err := g.tx.Serialize(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize transaction")
	}

	return &fixture.Fixture{
		ScriptPubKey: outputScript,
		Transaction:  buf.Bytes(),
		InputIndex:   0,
		Flags:        g.flags,
	}, nil
}

// between returns a random integer in [min, max).
func (g *Generator) between(min, max int) int {
	return min + g.rand.Intn(max-min)
}

func (g *Generator) oneIn(n int) bool {
	return g.rand.Intn(n) == 0
}

func (g *Generator) randomBytes(length int) []byte {
	b := make([]byte, length)
	_, _ = g.rand.Read(b)
	return b
}

func (g *Generator) randomOutPoint() *wire.OutPoint {
	var hash chainhash.Hash
	_, _ = g.rand.Read(hash[:])
	return wire.NewOutPoint(&hash, g.rand.Uint32())
}

func (g *Generator) randomTx() *wire.MsgTx {
	tx := wire.NewMsgTx(int32(g.rand.Uint32()))

	inputCount := g.between(1, maxInputs)
	for i := 0; i < inputCount; i++ {
		txIn := wire.NewTxIn(g.randomOutPoint(), nil, nil)
		if g.oneIn(5) {
			txIn.Sequence = g.rand.Uint32()
		}
		tx.AddTxIn(txIn)
	}

	outputCount := g.between(0, maxOutputs)
	for i := 0; i < outputCount; i++ {
		tx.AddTxOut(wire.NewTxOut(int64(g.between(0, maxOutputAmount)), g.randomScript()))
	}

	if g.oneIn(5) {
		tx.LockTime = g.rand.Uint32()
	}
	return tx
}

// randomInputScript returns up to maxPushes random data pushes, followed by a
// push of redeemScript if not nil. The pushes stop once the script would grow
// beyond budget bytes.
func (g *Generator) randomInputScript(redeemScript []byte, budget int) []byte {
	builder := txscript.NewScriptBuilder()
	if redeemScript != nil {
		budget -= len(redeemScript) + pushOverhead
	}
	size := 0
	pushes := g.between(1, maxPushes)
	for i := 0; i < pushes; i++ {
		data := g.randomBytes(g.between(0, maxPushSize))
		size += len(data) + pushOverhead
		if size > budget {
			break
		}
		builder.AddData(data)
	}
	if redeemScript != nil {
		builder.AddFullData(redeemScript)
	}
	return scriptOrPartial(builder)
}

func (g *Generator) randomKey() []byte {
	if g.oneIn(2) {
		return g.randomBytes(compressedKeySize)
	}
	return g.randomBytes(fullKeySize)
}

func (g *Generator) randomPubKeyScript() []byte {
	builder := txscript.NewScriptBuilder().
		AddData(g.randomKey()).
		AddOp(txscript.OP_CHECKSIG)
	return scriptOrPartial(builder)
}

func (g *Generator) randomPubKeyHashScript() []byte {
	builder := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(g.randomBytes(20)).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG)
	return scriptOrPartial(builder)
}

func (g *Generator) randomMultisigScript() []byte {
	n := g.between(1, maxMultisigKeys)
	m := g.between(1, n+1)
	builder := txscript.NewScriptBuilder().AddInt64(int64(m))
	for i := 0; i < n; i++ {
		builder.AddData(g.randomKey())
	}
	builder.AddInt64(int64(n)).AddOp(txscript.OP_CHECKMULTISIG)
	return scriptOrPartial(builder)
}

func scriptHashScript(scriptHash []byte) []byte {
	builder := txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(scriptHash).
		AddOp(txscript.OP_EQUAL)
	return scriptOrPartial(builder)
}

func (g *Generator) randomScriptHashScript() []byte {
	return scriptHashScript(g.randomBytes(20))
}

func (g *Generator) randomRedeemScript() []byte {
	switch g.rand.Intn(3) {
	case 0:
		return g.randomPubKeyScript()
	case 1:
		return g.randomPubKeyHashScript()
	default:
		return g.randomMultisigScript()
	}
}

func (g *Generator) randomScript() []byte {
	switch g.rand.Intn(4) {
	case 0:
		return g.randomPubKeyScript()
	case 1:
		return g.randomPubKeyHashScript()
	case 2:
		return g.randomMultisigScript()
	default:
		return g.randomScriptHashScript()
	}
}

// randomContext returns an input script and the output script it is shaped to
// spend: a pay-to-pubkey, a pay-to-pubkey-hash, or a pay-to-script-hash
// output whose redeem script is the last push of the input script.
func (g *Generator) randomContext(budget int) (inputScript, outputScript []byte) {
	switch g.rand.Intn(3) {
	case 0:
		return g.randomInputScript(nil, budget), g.randomPubKeyScript()
	case 1:
		return g.randomInputScript(nil, budget), g.randomPubKeyHashScript()
	default:
		redeemScript := g.randomRedeemScript()
		return g.randomInputScript(redeemScript, budget), scriptHashScript(btcutil.Hash160(redeemScript))
	}
}

// scriptOrPartial returns the script built so far. The builder refuses
// additions that would exceed the maximum script size, leaving the script
// as it was before them.
func scriptOrPartial(builder *txscript.ScriptBuilder) []byte {
	script, err := builder.Script()
	if err != nil {
		log.Tracef("Script truncated to %d bytes: %s", len(script), err)
	}
	return script
}
