package config

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/kaspanet/scriptfuzz/infrastructure/logger"
	"github.com/pkg/errors"
)

const defaultLogLevel = "info"

// LogFlags holds the logging configuration shared by the fuzzing tools.
type LogFlags struct {
	LogDir   string `long:"logdir" description:"Directory to log output"`
	LogLevel string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off}"`
}

// DefaultLogDir returns the log directory used when --logdir is not given.
func DefaultLogDir(appName string) string {
	return btcutil.AppDataDir(appName, false)
}

// InitLog validates the logging configuration, sets the level of every
// subsystem and starts logger.BackendLog writing to appName's log files and
// to stderr.
func (logFlags *LogFlags) InitLog(appName string) error {
	if logFlags.LogDir == "" {
		logFlags.LogDir = DefaultLogDir(appName)
	}
	if logFlags.LogLevel == "" {
		logFlags.LogLevel = defaultLogLevel
	}

	err := logger.SetLogLevels(logFlags.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "The specified debug level is invalid, supported subsystems are %v",
			logger.SupportedSubsystems())
	}
	stderrLevel, _ := logger.LevelFromString(logFlags.LogLevel)

	logFile, errLogFile := logger.LogFilePaths(logFlags.LogDir, appName)
	return logger.InitLog(logFile, errLogFile, stderrLevel)
}
