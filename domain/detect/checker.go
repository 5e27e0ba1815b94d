package detect

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/kaspanet/scriptfuzz/domain/verification"
	"github.com/pkg/errors"
)

// BuiltinCommand selects the in-process consensus library in NewChecker.
const BuiltinCommand = "builtin"

// Checker verifies the fixture stored at path and returns the line the
// verification harness prints for it.
type Checker interface {
	Check(ctx context.Context, path string) (string, error)
	String() string
}

// NewChecker returns an InProcessChecker over library for BuiltinCommand, and
// a ProcessChecker running commandLine otherwise.
func NewChecker(commandLine string, library verification.ConsensusLibrary) (Checker, error) {
	if commandLine == BuiltinCommand {
		return &InProcessChecker{Library: library}, nil
	}
	return NewProcessChecker(commandLine)
}

// InProcessChecker verifies fixtures by dispatching them to a consensus
// library in the current process.
type InProcessChecker struct {
	Library verification.ConsensusLibrary
}

// Check implements Checker. A panic inside the library is returned as an
// error so that a single fixture can not abort a differential run.
func (c *InProcessChecker) Check(ctx context.Context, path string) (result string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.Errorf("panic while verifying %s: %+v", path, recovered)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	outcome, err := verification.VerifyFixtureFile(c.Library, path)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(outcome.Status), nil
}

func (c *InProcessChecker) String() string {
	return BuiltinCommand
}

// ProcessChecker verifies fixtures by running an external harness with the
// fixture path appended to its arguments and reading its standard output.
type ProcessChecker struct {
	args []string
}

// NewProcessChecker splits commandLine with shell quoting rules.
func NewProcessChecker(commandLine string) (*ProcessChecker, error) {
	args, err := shellquote.Split(commandLine)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid command line %q", commandLine)
	}
	if len(args) == 0 {
		return nil, errors.New("empty command line")
	}
	return &ProcessChecker{args: args}, nil
}

// Check implements Checker. A harness exiting with a nonzero status is
// reported as an error together with its standard error output.
func (c *ProcessChecker) Check(ctx context.Context, path string) (string, error) {
	args := append(append([]string{}, c.args[1:]...), path)
	cmd := exec.CommandContext(ctx, c.args[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", errors.Wrapf(err, "%s %s failed: %s", c, path, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (c *ProcessChecker) String() string {
	return shellquote.Join(c.args...)
}
