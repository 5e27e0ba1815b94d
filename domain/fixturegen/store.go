package fixturegen

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kaspanet/scriptfuzz/domain/fixture"
	"github.com/pkg/errors"
)

const progressInterval = 1000

// Save writes f to dataDir under its ID and returns the path of the file.
func Save(dataDir string, f *fixture.Fixture) (string, error) {
	path := filepath.Join(dataDir, f.ID())
	err := os.WriteFile(path, f.Encode(), 0600)
	if err != nil {
		return "", errors.Wrapf(err, "failed to write fixture %s", path)
	}
	return path, nil
}

// Run saves fixtures from g into dataDir until count fixtures were written or
// ctx is cancelled. A zero count runs until cancellation. It returns the
// number of fixtures written.
func (g *Generator) Run(ctx context.Context, dataDir string, count uint64) (uint64, error) {
	err := os.MkdirAll(dataDir, 0700)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create data directory %s", dataDir)
	}

	var written uint64
	for count == 0 || written < count {
		select {
		case <-ctx.Done():
			log.Infof("Generation interrupted after %d fixtures", written)
			return written, nil
		default:
		}

		if written%progressInterval == 0 {
			log.Infof("Fuzzed %d scripts.", written)
		}

		f, err := g.Next()
		if err != nil {
			return written, err
		}
		path, err := Save(dataDir, f)
		if err != nil {
			return written, err
		}
		log.Debugf("Writing file %s", path)
		written++
	}
	return written, nil
}
