package fixturegen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/scriptfuzz/domain/fixture"
	"github.com/kaspanet/scriptfuzz/domain/verification"
	"github.com/kaspanet/scriptfuzz/domain/verification/btcdconsensus"
)

const testFixtureCount = 300

func lastPush(t *testing.T, script []byte) []byte {
	var data []byte
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		data = tokenizer.Data()
	}
	if err := tokenizer.Err(); err != nil {
		t.Fatalf("failed to parse input script %x: %s", script, err)
	}
	return data
}

func TestGeneratorProducesReadableFixtures(t *testing.T) {
	library := btcdconsensus.New(btcdconsensus.DefaultSigCacheSize)

	for _, mode := range []Mode{ModeVerify, ModeLess} {
		generator := New(mode, verification.StandardVerifyFlags, 1)
		for i := 0; i < testFixtureCount; i++ {
			generated, err := generator.Next()
			if err != nil {
				t.Fatalf("%s: Next: %s", mode, err)
			}

			parsed, err := fixture.ParseFixture(bytes.NewReader(generated.Encode()))
			if err != nil {
				t.Fatalf("%s: ParseFixture: %s", mode, err)
			}
			if parsed.ID() != generated.ID() || !parsed.IsComplete() {
				t.Fatalf("%s: fixture #%d does not survive encoding:\n%s", mode, i, spew.Sdump(parsed))
			}

			tx := &wire.MsgTx{}
			err = tx.Deserialize(bytes.NewReader(generated.Transaction))
			if err != nil {
				t.Fatalf("%s: fixture #%d holds an invalid transaction: %s", mode, i, err)
			}
			if len(tx.TxIn) == 0 || len(tx.TxIn) >= maxInputs || len(tx.TxOut) >= maxOutputs {
				t.Fatalf("%s: fixture #%d has %d inputs and %d outputs", mode, i, len(tx.TxIn), len(tx.TxOut))
			}

			_, errorCode := library.VerifyScript(generated.ScriptPubKey, generated.Transaction,
				generated.InputIndex, generated.Flags)
			if errorCode != verification.ErrOK {
				t.Fatalf("%s: fixture #%d was refused by the library: %s", mode, i, errorCode)
			}

			if mode == ModeLess && txscript.IsPayToScriptHash(generated.ScriptPubKey) {
				redeemScript := lastPush(t, tx.TxIn[0].SignatureScript)
				if !bytes.Equal(generated.ScriptPubKey[2:22], btcutil.Hash160(redeemScript)) {
					t.Fatalf("%s: fixture #%d does not push its redeem script last", mode, i)
				}
			}
		}
		if generator.Count() != testFixtureCount {
			t.Errorf("%s: expected count %d, got %d", mode, testFixtureCount, generator.Count())
		}
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	first := New(ModeLess, verification.MandatoryVerifyFlags, 42)
	second := New(ModeLess, verification.MandatoryVerifyFlags, 42)
	for i := 0; i < 20; i++ {
		a, err := first.Next()
		if err != nil {
			t.Fatalf("Next: %s", err)
		}
		b, err := second.Next()
		if err != nil {
			t.Fatalf("Next: %s", err)
		}
		if a.ID() != b.ID() {
			t.Fatalf("fixture #%d differs between generators with the same seed", i)
		}
	}
}

func TestGeneratorRun(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	generator := New(ModeVerify, verification.MandatoryVerifyFlags, 7)

	written, err := generator.Run(context.Background(), dataDir, 25)
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if written != 25 {
		t.Errorf("expected 25 fixtures, got %d", written)
	}
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		t.Fatalf("ReadDir: %s", err)
	}
	if len(entries) != 25 {
		t.Errorf("expected 25 files, got %d", len(entries))
	}
	for _, entry := range entries {
		f, err := fixture.ReadFixture(filepath.Join(dataDir, entry.Name()))
		if err != nil {
			t.Fatalf("ReadFixture: %s", err)
		}
		if f.ID() != entry.Name() {
			t.Errorf("file %s holds fixture %s", entry.Name(), f.ID())
		}
		if f.Flags != verification.MandatoryVerifyFlags {
			t.Errorf("file %s has flags %d", entry.Name(), f.Flags)
		}
	}
}

func TestGeneratorRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	written, err := New(ModeVerify, 0, 1).Run(ctx, t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if written != 0 {
		t.Errorf("expected no fixtures after cancellation, got %d", written)
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"verify", "less"} {
		mode, err := ParseMode(s)
		if err != nil || string(mode) != s {
			t.Errorf("ParseMode(%q) = %q, %v", s, mode, err)
		}
	}
	_, err := ParseMode("more")
	if err == nil {
		t.Errorf("expected an error for an unknown mode")
	}
}
