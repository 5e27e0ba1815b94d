package detect

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/scriptfuzz/domain/fixture"
	"github.com/kaspanet/scriptfuzz/domain/verification"
	"github.com/pkg/errors"
)

type constantLibrary struct {
	status int
}

func (l *constantLibrary) VerifyScript(scriptPubKey []byte, tx []byte, inputIndex uint32,
	flags uint32) (int, verification.ErrorCode) {

	return l.status, verification.ErrOK
}

func (l *constantLibrary) VerifyScriptWithAmount(scriptPubKey []byte, amount int64, tx []byte, inputIndex uint32,
	flags uint32) (int, verification.ErrorCode) {

	return l.status, verification.ErrOK
}

type panickingLibrary struct {
	constantLibrary
}

func (l *panickingLibrary) VerifyScript(scriptPubKey []byte, tx []byte, inputIndex uint32,
	flags uint32) (int, verification.ErrorCode) {

	panic("boom")
}

type checkerFunc func(ctx context.Context, path string) (string, error)

func (f checkerFunc) Check(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

func (f checkerFunc) String() string {
	return "checkerFunc"
}

func writeFixtures(t *testing.T, fixtures ...*fixture.Fixture) string {
	dir := t.TempDir()
	for _, f := range fixtures {
		err := os.WriteFile(filepath.Join(dir, f.ID()), f.Encode(), 0600)
		if err != nil {
			t.Fatalf("WriteFile: %s", err)
		}
	}
	err := os.Mkdir(filepath.Join(dir, "subdirectory"), 0700)
	if err != nil {
		t.Fatalf("Mkdir: %s", err)
	}
	return dir
}

func TestRunner(t *testing.T) {
	disputed := &fixture.Fixture{ScriptPubKey: []byte{0x00}, Transaction: []byte{0x01}}
	dataDir := writeFixtures(t,
		&fixture.Fixture{ScriptPubKey: []byte{0x51}, Transaction: []byte{0x01}},
		&fixture.Fixture{ScriptPubKey: []byte{0x52}, Transaction: []byte{0x01}, Flags: 1},
		disputed,
	)
	mismatchDir := filepath.Join(t.TempDir(), "mismatches")

	var progressCalls int32
	runner := &Runner{
		Left: &InProcessChecker{Library: &constantLibrary{status: 1}},
		Right: checkerFunc(func(ctx context.Context, path string) (string, error) {
			if filepath.Base(path) == disputed.ID() {
				return "0", nil
			}
			return "1", nil
		}),
		Workers:     2,
		MismatchDir: mismatchDir,
		OnProgress: func(done, total int) {
			atomic.AddInt32(&progressCalls, 1)
		},
	}

	report, err := runner.Run(context.Background(), dataDir)
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if report.Total != 3 || report.Matched != 2 || len(report.Mismatches) != 1 {
		t.Fatalf("unexpected report: %s", spew.Sdump(report))
	}
	expectedMismatch := Mismatch{Fixture: disputed.ID(), Left: "1", Right: "0"}
	if report.Mismatches[0] != expectedMismatch {
		t.Errorf("expected mismatch %s, got %s", spew.Sdump(expectedMismatch), spew.Sdump(report.Mismatches[0]))
	}
	if atomic.LoadInt32(&progressCalls) != 3 {
		t.Errorf("expected 3 progress calls, got %d", progressCalls)
	}

	saved, err := os.ReadFile(filepath.Join(mismatchDir, disputed.ID()))
	if err != nil {
		t.Fatalf("mismatching fixture was not saved: %s", err)
	}
	if string(saved) != string(disputed.Encode()) {
		t.Errorf("saved fixture differs from the original: %q", saved)
	}
}

func TestRunnerCheckerErrorIsMismatch(t *testing.T) {
	f := &fixture.Fixture{ScriptPubKey: []byte{0x51}}
	dataDir := writeFixtures(t, f)

	runner := &Runner{
		Left: &InProcessChecker{Library: &panickingLibrary{}},
		Right: checkerFunc(func(ctx context.Context, path string) (string, error) {
			return "", errors.New("harness crashed")
		}),
	}
	report, err := runner.Run(context.Background(), dataDir)
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if len(report.Mismatches) != 1 {
		t.Fatalf("expected one mismatch: %s", spew.Sdump(report))
	}
	if !strings.Contains(report.Mismatches[0].Left, "boom") ||
		report.Mismatches[0].Right != "harness crashed" {

		t.Errorf("unexpected mismatch: %s", spew.Sdump(report.Mismatches[0]))
	}
}

func TestRunnerCancelled(t *testing.T) {
	dataDir := writeFixtures(t, &fixture.Fixture{ScriptPubKey: []byte{0x51}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &Runner{
		Left:  &InProcessChecker{Library: &constantLibrary{status: 1}},
		Right: &InProcessChecker{Library: &constantLibrary{status: 1}},
	}
	_, err := runner.Run(ctx, dataDir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunnerMissingDataDir(t *testing.T) {
	runner := &Runner{
		Left:  &InProcessChecker{Library: &constantLibrary{}},
		Right: &InProcessChecker{Library: &constantLibrary{}},
	}
	_, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatalf("expected an error for a missing data directory")
	}
}

func TestProcessChecker(t *testing.T) {
	f := &fixture.Fixture{ScriptPubKey: []byte{0x51}, Flags: 3}
	dataDir := writeFixtures(t, f)
	path := filepath.Join(dataDir, f.ID())

	checker, err := NewProcessChecker(`sh -c 'tail -n 1 "$1"' --`)
	if err != nil {
		t.Fatalf("NewProcessChecker: %s", err)
	}
	result, err := checker.Check(context.Background(), path)
	if err != nil {
		t.Fatalf("Check: %s", err)
	}
	if result != "3" {
		t.Errorf("expected the last fixture line, got %q", result)
	}

	failing, err := NewProcessChecker("sh -c 'echo broken >&2; exit 2' --")
	if err != nil {
		t.Fatalf("NewProcessChecker: %s", err)
	}
	_, err = failing.Check(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Errorf("expected an error carrying stderr, got %v", err)
	}
}

func TestNewChecker(t *testing.T) {
	checker, err := NewChecker(BuiltinCommand, &constantLibrary{})
	if err != nil {
		t.Fatalf("NewChecker: %s", err)
	}
	if _, ok := checker.(*InProcessChecker); !ok {
		t.Errorf("expected an in-process checker for %q, got %T", BuiltinCommand, checker)
	}

	checker, err = NewChecker("node verify.js", nil)
	if err != nil {
		t.Fatalf("NewChecker: %s", err)
	}
	if checker.String() != "node verify.js" {
		t.Errorf("unexpected command line %q", checker.String())
	}

	_, err = NewChecker("", nil)
	if err == nil {
		t.Errorf("expected an error for an empty command line")
	}
	_, err = NewChecker("node 'unterminated", nil)
	if err == nil {
		t.Errorf("expected an error for an unterminated quote")
	}
}
