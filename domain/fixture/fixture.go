package fixture

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ripemd160"
)

// ErrFixtureNotFound is returned by ReadFixture when the fixture file can not
// be opened.
var ErrFixtureNotFound = errors.New("fixture not found")

// FieldState tells how a fixture field got its value.
type FieldState uint8

const (
	// FieldAbsent means the line of the field was missing and the field holds
	// its zero value.
	FieldAbsent FieldState = iota

	// FieldMalformed means the line was present but could only be decoded on
	// a best-effort basis.
	FieldMalformed

	// FieldParsed means the line was present and decoded cleanly.
	FieldParsed
)

var fieldStateStrings = map[FieldState]string{
	FieldAbsent:    "absent",
	FieldMalformed: "malformed",
	FieldParsed:    "parsed",
}

func (s FieldState) String() string {
	if str, ok := fieldStateStrings[s]; ok {
		return str
	}
	return fmt.Sprintf("FieldState(%d)", s)
}

// Fixture is a single decoded script test case.
type Fixture struct {
	ScriptPubKey []byte
	Transaction  []byte
	InputIndex   uint32
	Flags        uint32

	ScriptPubKeyState FieldState
	TransactionState  FieldState
	InputIndexState   FieldState
	FlagsState        FieldState
}

// IsComplete returns true if all four lines were present.
func (f *Fixture) IsComplete() bool {
	return f.ScriptPubKeyState != FieldAbsent &&
		f.TransactionState != FieldAbsent &&
		f.InputIndexState != FieldAbsent &&
		f.FlagsState != FieldAbsent
}

// Encode renders the fixture in its four line text form.
func (f *Fixture) Encode() []byte {
	encoded := make([]byte, 0, 2*len(f.ScriptPubKey)+2*len(f.Transaction)+24)
	encoded = append(encoded, hex.EncodeToString(f.ScriptPubKey)...)
	encoded = append(encoded, '\n')
	encoded = append(encoded, hex.EncodeToString(f.Transaction)...)
	encoded = append(encoded, '\n')
	encoded = strconv.AppendUint(encoded, uint64(f.InputIndex), 10)
	encoded = append(encoded, '\n')
	encoded = strconv.AppendUint(encoded, uint64(f.Flags), 10)
	encoded = append(encoded, '\n')
	return encoded
}

// ID returns the hex encoded RIPEMD-160 digest of the encoded fixture. It is
// used as the fixture's file name.
func (f *Fixture) ID() string {
	hasher := ripemd160.New()
	_, _ = hasher.Write(f.Encode())
	return hex.EncodeToString(hasher.Sum(nil))
}

// ReadFixture opens the file at path and parses it with ParseFixture. The file
// is closed before returning.
func ReadFixture(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFixtureNotFound, "%s", err)
	}
	defer file.Close()

	fixture, err := ParseFixture(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading fixture %s", path)
	}
	log.Tracef("Read fixture %s: scriptPubKey %d bytes (%s), transaction %d bytes (%s), "+
		"input index %d (%s), flags %d (%s)", path,
		len(fixture.ScriptPubKey), fixture.ScriptPubKeyState,
		len(fixture.Transaction), fixture.TransactionState,
		fixture.InputIndex, fixture.InputIndexState,
		fixture.Flags, fixture.FlagsState)
	return fixture, nil
}

// ParseFixture reads up to four lines from r: the scriptPubKey in hex, the
// transaction in hex, the input index and the verification flags. Lines
// missing at the end of the input leave their fields absent. Only I/O errors
// other than io.EOF are returned.
func ParseFixture(r io.Reader) (*Fixture, error) {
	reader := bufio.NewReaderSize(r, MaxRawLineLength)
	fixture := &Fixture{}

	line, err := readRawLine(reader)
	if err != nil {
		return nil, err
	}
	if line != nil {
		fixture.ScriptPubKey, fixture.ScriptPubKeyState = decodeHexField(line)
	}

	line, err = readRawLine(reader)
	if err != nil {
		return nil, err
	}
	if line != nil {
		fixture.Transaction, fixture.TransactionState = decodeHexField(line)
	}

	line, err = readRawLine(reader)
	if err != nil {
		return nil, err
	}
	if line != nil {
		fixture.InputIndex, fixture.InputIndexState = ParseDecimal(line)
	}

	line, err = readRawLine(reader)
	if err != nil {
		return nil, err
	}
	if line != nil {
		fixture.Flags, fixture.FlagsState = ParseDecimal(line)
	}

	return fixture, nil
}

func decodeHexField(line []byte) ([]byte, FieldState) {
	decoded, wellFormed := DecodeHexLine(line, MaxLineLength)
	if !wellFormed {
		return decoded, FieldMalformed
	}
	return decoded, FieldParsed
}

// readRawLine reads up to and including the next newline, but no more than
// MaxRawLineLength-1 bytes. It returns nil once the input is exhausted.
func readRawLine(reader *bufio.Reader) ([]byte, error) {
	line := make([]byte, 0, 128)
	for len(line) < MaxRawLineLength-1 {
		b, err := reader.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		line = append(line, b)
		if b == '\n' {
			break
		}
	}
	if len(line) == 0 {
		return nil, nil
	}
	return line, nil
}
